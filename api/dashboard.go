package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) GetOrganizationDashboard(ec echo.Context) error {
	ctx := ec.Request().Context()
	from, to, err := parseDateRange(ec)
	if err != nil {
		return err
	}

	metrics, err := h.results.OrganizationMetrics(ctx, from, to)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, metrics)
}

func (h *Handler) GetTopLevelDashboard(ec echo.Context) error {
	ctx := ec.Request().Context()
	from, to, err := parseDateRange(ec)
	if err != nil {
		return err
	}

	var facilityId *string
	if value := ec.QueryParam("facilityId"); value != "" {
		facilityId = &value
	}

	metrics, err := h.results.TopLevelMetrics(ctx, facilityId, from, to)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, metrics)
}
