package api

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/labnet/testorders/errors"
	"github.com/labnet/testorders/orders"
	"github.com/labnet/testorders/patients"
	"github.com/labnet/testorders/results"
	"github.com/labnet/testorders/results/service"
)

const (
	dateLayout      = time.DateOnly
	cursorSeparator = "_"
)

var (
	ErrInvalidDate   = fmt.Errorf("%w: dates must be formatted as YYYY-MM-DD or RFC 3339", errors.BadRequest)
	ErrInvalidCursor = fmt.Errorf("%w: invalid cursor", errors.BadRequest)
	ErrInvalidRole   = fmt.Errorf("%w: unknown patient role", errors.BadRequest)
	ErrInvalidPage   = fmt.Errorf("%w: page and pageSize must be integers", errors.BadRequest)
)

// FormatCursor encodes the position of a result for the before query parameter.
func FormatCursor(cursor results.Cursor) string {
	return cursor.CreatedTime.UTC().Format(time.RFC3339Nano) + cursorSeparator + cursor.Id.Hex()
}

func ParseCursor(value string) (*results.Cursor, error) {
	createdTime, id, ok := strings.Cut(value, cursorSeparator)
	if !ok {
		return nil, ErrInvalidCursor
	}
	t, err := time.Parse(time.RFC3339Nano, createdTime)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	objectId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	return &results.Cursor{CreatedTime: t, Id: objectId}, nil
}

// parseDate accepts a calendar date or a timestamp. A calendar date used as an upper bound
// includes the whole day.
func parseDate(value string, upperBound bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(dateLayout, value, time.UTC); err == nil {
		if upperBound {
			t = t.AddDate(0, 0, 1).Add(-time.Millisecond)
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, ErrInvalidDate
	}
	t = t.UTC()
	return &t, nil
}

func parseDateRange(ec echo.Context) (from *time.Time, to *time.Time, err error) {
	if from, err = parseDate(ec.QueryParam("from"), false); err != nil {
		return nil, nil, err
	}
	if to, err = parseDate(ec.QueryParam("to"), true); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func parsePage(ec echo.Context) (page int, pageSize int, err error) {
	err = echo.QueryParamsBinder(ec).
		Int("page", &page).
		Int("pageSize", &pageSize).
		BindError()
	if err != nil {
		return 0, 0, ErrInvalidPage
	}
	return page, pageSize, nil
}

func parseResultsQuery(ec echo.Context) (service.Query, error) {
	query := service.Query{
		FacilityId: ec.Param("facilityId"),
	}

	var err error
	if query.Page, query.PageSize, err = parsePage(ec); err != nil {
		return query, err
	}
	if query.From, query.To, err = parseDateRange(ec); err != nil {
		return query, err
	}

	if value := ec.QueryParam("patientId"); value != "" {
		query.PatientId = &value
	}
	if value := ec.QueryParam("outcome"); value != "" {
		outcome, err := orders.ParseOutcome(strings.ToUpper(value))
		if err != nil {
			return query, err
		}
		query.Outcome = &outcome
	}
	if value := ec.QueryParam("role"); value != "" {
		role := patients.Role(strings.ToUpper(value))
		if !slices.Contains(patients.Roles, role) {
			return query, ErrInvalidRole
		}
		query.Role = &role
	}
	if value := ec.QueryParam("before"); value != "" {
		if query.Before, err = ParseCursor(value); err != nil {
			return query, err
		}
	}

	return query, nil
}
