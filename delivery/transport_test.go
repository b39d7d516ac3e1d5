package delivery_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/labnet/testorders/config"
	"github.com/labnet/testorders/delivery"
)

var _ = Describe("HTTPTransport", func() {
	var server *httptest.Server
	var requests []*http.Request
	var status int

	BeforeEach(func() {
		requests = nil
		status = http.StatusAccepted
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/oauth/token":
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"access_token":"secret-token","token_type":"bearer","expires_in":3600}`))
			default:
				requests = append(requests, r)
				w.WriteHeader(status)
			}
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newTransport := func() *delivery.HTTPTransport {
		return delivery.NewHTTPTransport(config.DeliveryConfig{
			BaseUrl:      server.URL + "/",
			ClientId:     "orders",
			ClientSecret: "secret",
			TokenUrl:     server.URL + "/oauth/token",
			Timeout:      time.Second,
		})
	}

	It("posts sms notifications with a bearer token", func() {
		Expect(newTransport().SendSMS(context.Background(), "link-1")).To(Succeed())
		Expect(requests).To(HaveLen(1))
		Expect(requests[0].Method).To(Equal(http.MethodPost))
		Expect(requests[0].URL.Path).To(Equal("/v1/links/link-1/sms"))
		Expect(requests[0].Header.Get("Authorization")).To(Equal("Bearer secret-token"))
	})

	It("reuses the token across requests", func() {
		transport := newTransport()
		Expect(transport.SendEmail(context.Background(), "link-1")).To(Succeed())
		Expect(transport.SendEmail(context.Background(), "link-2")).To(Succeed())
		Expect(requests).To(HaveLen(2))
		Expect(requests[1].URL.Path).To(Equal("/v1/links/link-2/email"))
	})

	It("fails on non success statuses", func() {
		status = http.StatusBadGateway
		Expect(newTransport().SendEmail(context.Background(), "link-1")).ToNot(Succeed())
	})
})
