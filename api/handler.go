package api

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/labnet/testorders/config"
	"github.com/labnet/testorders/orders/manager"
	"github.com/labnet/testorders/results/service"
)

type Handler struct {
	manager manager.Manager
	results service.Service
	config  *config.Config
	logger  *zap.SugaredLogger
}

type Params struct {
	fx.In

	Manager manager.Manager
	Results service.Service
	Config  *config.Config
	Logger  *zap.SugaredLogger
}

func NewHandler(p Params) *Handler {
	return &Handler{
		manager: p.Manager,
		results: p.Results,
		config:  p.Config,
		logger:  p.Logger,
	}
}

func RegisterHandlers(e *echo.Echo, h *Handler) {
	v1 := e.Group("/v1")

	v1.POST("/facilities/:facilityId/queue", h.Enqueue)
	v1.GET("/facilities/:facilityId/queue", h.GetQueue)
	v1.PATCH("/orders/:orderId", h.EditQueueItem)
	v1.POST("/orders/:orderId/cancel", h.CancelOrder)

	v1.POST("/facilities/:facilityId/results", h.SubmitResult)
	v1.GET("/facilities/:facilityId/results", h.ListResults)
	v1.GET("/facilities/:facilityId/results/count", h.CountResults)
	v1.GET("/facilities/:facilityId/results/export", h.ExportResults)
	v1.GET("/results/:resultId", h.GetResult)
	v1.GET("/results/:resultId/history", h.GetResultHistory)
	v1.POST("/results/:resultId/mark_as_error", h.MarkResultAsError)
	v1.GET("/patients/:patientId/results", h.ListResultsForPatient)

	v1.GET("/dashboard/organization", h.GetOrganizationDashboard)
	v1.GET("/dashboard/top_level", h.GetTopLevelDashboard)
}
