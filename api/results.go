package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/labnet/testorders/results"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MarkAsErrorRequest struct {
	Reason string `json:"reason"`
}

type ResultsPage struct {
	Data []*results.Result `json:"data"`
	// NextCursor continues the listing when the page was full.
	NextCursor *string `json:"nextCursor,omitempty"`
}

type ResultsCount struct {
	Count int `json:"count"`
}

// NewResultsPage expects the page size the listing was served with, not the requested one.
func NewResultsPage(list []*results.Result, pageSize int) ResultsPage {
	page := ResultsPage{Data: list}
	if page.Data == nil {
		page.Data = []*results.Result{}
	}
	if pageSize > 0 && len(list) == pageSize {
		cursor := FormatCursor(list[len(list)-1].Cursor())
		page.NextCursor = &cursor
	}
	return page
}

func (h *Handler) GetResult(ec echo.Context) error {
	ctx := ec.Request().Context()
	result, err := h.results.Get(ctx, ec.Param("resultId"))
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, result)
}

func (h *Handler) GetResultHistory(ec echo.Context) error {
	ctx := ec.Request().Context()
	history, err := h.results.History(ctx, ec.Param("resultId"))
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, history)
}

func (h *Handler) MarkResultAsError(ec echo.Context) error {
	ctx := ec.Request().Context()
	request := MarkAsErrorRequest{}
	if err := ec.Bind(&request); err != nil {
		return err
	}

	correction, err := h.manager.CorrectMarkAsError(ctx, ec.Param("resultId"), request.Reason)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusCreated, correction)
}

func (h *Handler) ListResults(ec echo.Context) error {
	ctx := ec.Request().Context()
	query, err := parseResultsQuery(ec)
	if err != nil {
		return err
	}

	list, err := h.results.List(ctx, query)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, NewResultsPage(list, h.config.PageSize(query.PageSize)))
}

func (h *Handler) CountResults(ec echo.Context) error {
	ctx := ec.Request().Context()
	query, err := parseResultsQuery(ec)
	if err != nil {
		return err
	}

	count, err := h.results.Count(ctx, query)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, ResultsCount{Count: count})
}

func (h *Handler) ExportResults(ec echo.Context) error {
	ctx := ec.Request().Context()
	query, err := parseResultsQuery(ec)
	if err != nil {
		return err
	}

	file, err := h.results.Export(ctx, query)
	if err != nil {
		return err
	}

	buffer := &bytes.Buffer{}
	if err := file.Write(buffer); err != nil {
		return fmt.Errorf("unable to write export: %w", err)
	}

	filename := fmt.Sprintf("results-%s.xlsx", query.FacilityId)
	ec.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ec.Blob(http.StatusOK, xlsxContentType, buffer.Bytes())
}

func (h *Handler) ListResultsForPatient(ec echo.Context) error {
	ctx := ec.Request().Context()
	page, pageSize, err := parsePage(ec)
	if err != nil {
		return err
	}

	list, err := h.results.ListForPatient(ctx, ec.Param("patientId"), page, pageSize)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*results.Result{}
	}

	return ec.JSON(http.StatusOK, list)
}
