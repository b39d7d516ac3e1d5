package errors_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/labnet/testorders/errors"
)

var _ = Describe("Errors", func() {
	DescribeTable("StatusCode",
		func(err error, expected int) {
			Expect(errors.StatusCode(err)).To(Equal(expected))
		},
		Entry("not found", fmt.Errorf("result %w", errors.NotFound), http.StatusNotFound),
		Entry("forbidden", fmt.Errorf("%w: denied", errors.Forbidden), http.StatusForbidden),
		Entry("unavailable", fmt.Errorf("%w: storage", errors.ServiceUnavailable), http.StatusServiceUnavailable),
		Entry("plain error", fmt.Errorf("boom"), http.StatusInternalServerError),
	)

	It("renders wrapped sentinels with their status", func() {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		errors.CustomHTTPErrorHandler(fmt.Errorf("%w: patient is already in the queue", errors.Duplicate), c)
		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(rec.Body.String()).To(ContainSubstring("patient is already in the queue"))
	})
})
