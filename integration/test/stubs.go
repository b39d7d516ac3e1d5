package test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
)

const (
	TestClientId     = "integration-client"
	TestClientSecret = "integration-secret"
	TestAccessToken  = "integration-token"
	TokenEndpoint    = "/oauth2/token"
)

var linkNotificationUrlRegexp = regexp.MustCompile("^/v1/links/([^/]+)/(sms|email)$")

type Notification struct {
	LinkId  string
	Channel string
}

// GatewayServer stubs the notification gateway and records every accepted notification.
type GatewayServer struct {
	*httptest.Server

	mu            sync.Mutex
	notifications []Notification
}

func (g *GatewayServer) Notifications() []Notification {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]Notification(nil), g.notifications...)
}

func GatewayStub() *GatewayServer {
	gateway := &GatewayServer{}
	gateway.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == TokenEndpoint {
			clientId, clientSecret, ok := r.BasicAuth()
			if !ok || clientId != TestClientId || clientSecret != TestClientSecret {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			resp, _ := json.Marshal(map[string]interface{}{
				"access_token": TestAccessToken,
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(resp)
			return
		}

		matches := linkNotificationUrlRegexp.FindStringSubmatch(r.URL.Path)
		if r.Method != http.MethodPost || matches == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != fmt.Sprintf("Bearer %s", TestAccessToken) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		gateway.mu.Lock()
		gateway.notifications = append(gateway.notifications, Notification{
			LinkId:  matches[1],
			Channel: matches[2],
		})
		gateway.mu.Unlock()

		w.WriteHeader(http.StatusAccepted)
	}))
	return gateway
}
