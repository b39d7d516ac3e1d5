package api

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/labnet/testorders/access"
	"github.com/labnet/testorders/errors"
)

// Identity headers are set by the gateway after the caller was authenticated.
const (
	subjectHeaderName      = "X-Auth-Subject"
	organizationHeaderName = "X-Auth-Organization"
	rolesHeaderName        = "X-Auth-Roles"
	facilitiesHeaderName   = "X-Auth-Facilities"
	siteAdminHeaderName    = "X-Auth-Site-Admin"
)

var ErrMissingSubject = fmt.Errorf("%w: missing %s header", errors.Unauthorized, subjectHeaderName)

// NewCallerMiddleware attaches the access.Caller described by the identity headers to the
// request context.
func NewCallerMiddleware(skipper middleware.Skipper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			if skipper != nil && skipper(ec) {
				return next(ec)
			}

			caller, err := getCaller(ec)
			if err != nil {
				return err
			}

			req := ec.Request()
			ec.SetRequest(req.WithContext(access.NewContext(req.Context(), caller)))
			return next(ec)
		}
	}
}

func getCaller(ec echo.Context) (access.Caller, error) {
	headers := ec.Request().Header
	caller := access.Caller{
		SubjectId:      strings.TrimSpace(headers.Get(subjectHeaderName)),
		OrganizationId: strings.TrimSpace(headers.Get(organizationHeaderName)),
		FacilityIds:    splitHeader(headers.Get(facilitiesHeaderName)),
		SiteAdmin:      headers.Get(siteAdminHeaderName) == "true",
	}
	if caller.SubjectId == "" {
		return access.Caller{}, ErrMissingSubject
	}

	for _, value := range splitHeader(headers.Get(rolesHeaderName)) {
		role, err := access.ParseRole(value)
		if err != nil {
			return access.Caller{}, err
		}
		caller.Roles = append(caller.Roles, role)
	}

	return caller, nil
}

func splitHeader(value string) []string {
	var values []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
