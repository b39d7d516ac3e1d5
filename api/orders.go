package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/labnet/testorders/errors"
	"github.com/labnet/testorders/orders"
	"github.com/labnet/testorders/orders/manager"
	"github.com/labnet/testorders/results"
)

type EnqueueRequest struct {
	PatientId        string                 `json:"patientId"`
	DeviceSpecimenId *string                `json:"deviceSpecimenId,omitempty"`
	Survey           map[string]interface{} `json:"survey,omitempty"`
}

type EditQueueItemRequest struct {
	Revision         *int                   `json:"revision,omitempty"`
	DeviceSpecimenId *string                `json:"deviceSpecimenId,omitempty"`
	Outcome          *orders.Outcome        `json:"outcome,omitempty"`
	DateTested       *time.Time             `json:"dateTested,omitempty"`
	Survey           map[string]interface{} `json:"survey,omitempty"`
}

type SubmitResultRequest struct {
	PatientId        string          `json:"patientId"`
	DeviceSpecimenId *string         `json:"deviceSpecimenId,omitempty"`
	Outcome          *orders.Outcome `json:"outcome,omitempty"`
	DateTested       *time.Time      `json:"dateTested,omitempty"`
}

type SubmitResultResponse struct {
	Order           *orders.Order   `json:"order"`
	Result          *results.Result `json:"result"`
	DeliverySuccess bool            `json:"deliverySuccess"`
}

var ErrMissingPatientId = fmt.Errorf("%w: patientId is required", errors.BadRequest)

func (h *Handler) Enqueue(ec echo.Context) error {
	ctx := ec.Request().Context()
	request := EnqueueRequest{}
	if err := ec.Bind(&request); err != nil {
		return err
	}
	if request.PatientId == "" {
		return ErrMissingPatientId
	}

	order, err := h.manager.Enqueue(ctx, manager.Enqueue{
		PatientId:        request.PatientId,
		FacilityId:       ec.Param("facilityId"),
		DeviceSpecimenId: request.DeviceSpecimenId,
		Survey:           request.Survey,
	})
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusCreated, order)
}

func (h *Handler) GetQueue(ec echo.Context) error {
	ctx := ec.Request().Context()
	queue, err := h.manager.GetQueue(ctx, ec.Param("facilityId"))
	if err != nil {
		return err
	}
	if queue == nil {
		queue = []*orders.Order{}
	}

	return ec.JSON(http.StatusOK, queue)
}

func (h *Handler) EditQueueItem(ec echo.Context) error {
	ctx := ec.Request().Context()
	request := EditQueueItemRequest{}
	if err := ec.Bind(&request); err != nil {
		return err
	}

	order, err := h.manager.EditQueueItem(ctx, manager.EditQueueItem{
		OrderId:          ec.Param("orderId"),
		Revision:         request.Revision,
		DeviceSpecimenId: request.DeviceSpecimenId,
		Outcome:          request.Outcome,
		DateTested:       request.DateTested,
		Survey:           request.Survey,
	})
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, order)
}

func (h *Handler) CancelOrder(ec echo.Context) error {
	ctx := ec.Request().Context()
	order, err := h.manager.CancelOrder(ctx, ec.Param("orderId"))
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, order)
}

func (h *Handler) SubmitResult(ec echo.Context) error {
	ctx := ec.Request().Context()
	request := SubmitResultRequest{}
	if err := ec.Bind(&request); err != nil {
		return err
	}
	if request.PatientId == "" {
		return ErrMissingPatientId
	}

	response, err := h.manager.SubmitResult(ctx, manager.SubmitResult{
		PatientId:        request.PatientId,
		FacilityId:       ec.Param("facilityId"),
		DeviceSpecimenId: request.DeviceSpecimenId,
		Outcome:          request.Outcome,
		DateTested:       request.DateTested,
	})
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusCreated, SubmitResultResponse{
		Order:           response.Order,
		Result:          response.Result,
		DeliverySuccess: response.DeliverySuccess,
	})
}
