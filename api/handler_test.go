package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gstruct"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tealeg/xlsx/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/labnet/testorders/access"
	"github.com/labnet/testorders/api"
	"github.com/labnet/testorders/config"
	"github.com/labnet/testorders/orders"
	"github.com/labnet/testorders/orders/manager"
	managerTest "github.com/labnet/testorders/orders/manager/test"
	ordersTest "github.com/labnet/testorders/orders/test"
	"github.com/labnet/testorders/patients"
	"github.com/labnet/testorders/results"
	"github.com/labnet/testorders/results/service"
	serviceTest "github.com/labnet/testorders/results/service/test"
	resultsTest "github.com/labnet/testorders/results/test"
	"github.com/labnet/testorders/store"
	"github.com/labnet/testorders/test"
)

var _ = Describe("Handler", func() {
	var ctrl *gomock.Controller
	var mngr *managerTest.MockManager
	var svc *serviceTest.MockService
	var healthCheck *api.HealthCheck
	var server *echo.Echo

	organizationId := primitive.NewObjectID()
	facilityId := primitive.NewObjectID()
	patientId := primitive.NewObjectID()

	authorized := func(req *http.Request) *http.Request {
		req.Header.Set("X-Auth-Subject", "subject-1")
		req.Header.Set("X-Auth-Organization", organizationId.Hex())
		req.Header.Set("X-Auth-Roles", "USER")
		req.Header.Set("X-Auth-Facilities", facilityId.Hex())
		return req
	}

	do := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		return rec
	}

	jsonRequest := func(method, target string, body interface{}) *http.Request {
		payload, err := json.Marshal(body)
		Expect(err).ToNot(HaveOccurred())
		req := httptest.NewRequest(method, target, strings.NewReader(string(payload)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return authorized(req)
	}

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		mngr = managerTest.NewMockManager(ctrl)
		svc = serviceTest.NewMockService(ctrl)
		healthCheck = api.NewHealthCheck()

		handler := api.NewHandler(api.Params{
			Manager: mngr,
			Results: svc,
			Config:  &config.Config{DefaultPageSize: 2, MaxPageSize: 3},
			Logger:  zap.NewNop().Sugar(),
		})
		server = api.NewServer(handler, healthCheck, prometheus.NewRegistry(), zap.NewNop())
	})

	Describe("Caller", func() {
		It("rejects requests without a subject", func() {
			req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/facilities/%s/queue", facilityId.Hex()), nil)
			rec := do(req)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects unknown roles", func() {
			req := authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/facilities/%s/queue", facilityId.Hex()), nil))
			req.Header.Set("X-Auth-Roles", "USER, OWNER")
			rec := do(req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("attaches the caller to the request context", func() {
			var caller access.Caller
			mngr.EXPECT().GetQueue(gomock.Any(), facilityId.Hex()).DoAndReturn(func(ctx context.Context, _ string) ([]*orders.Order, error) {
				caller, _ = access.CallerFromContext(ctx)
				return nil, nil
			})

			req := authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/facilities/%s/queue", facilityId.Hex()), nil))
			req.Header.Set("X-Auth-Roles", "USER, ALL_FACILITIES")
			req.Header.Set("X-Auth-Site-Admin", "true")
			rec := do(req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`[]`))
			Expect(caller).To(Equal(access.Caller{
				SubjectId:      "subject-1",
				OrganizationId: organizationId.Hex(),
				Roles:          []access.Role{access.RoleUser, access.RoleAllFacilities},
				FacilityIds:    []string{facilityId.Hex()},
				SiteAdmin:      true,
			}))
		})

		It("does not require a caller for the readiness probe", func() {
			rec := do(httptest.NewRequest(http.MethodGet, "/ready", nil))
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))

			healthCheck.SetReady(true)
			rec = do(httptest.NewRequest(http.MethodGet, "/ready", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("does not require a caller for metrics", func() {
			rec := do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("Queue", func() {
		It("enqueues an order for the facility", func() {
			order := ordersTest.RandomOrder(organizationId, facilityId, patientId)
			id := primitive.NewObjectID()
			order.Id = &id

			mngr.EXPECT().Enqueue(gomock.Any(), test.Match(func(e manager.Enqueue) bool {
				return e.PatientId == patientId.Hex() && e.FacilityId == facilityId.Hex() &&
					e.DeviceSpecimenId != nil && *e.DeviceSpecimenId == "abbott-nasal" &&
					e.Survey["noSymptoms"] == true
			})).Return(order, nil)

			rec := do(jsonRequest(http.MethodPost, fmt.Sprintf("/v1/facilities/%s/queue", facilityId.Hex()), map[string]interface{}{
				"patientId":        patientId.Hex(),
				"deviceSpecimenId": "abbott-nasal",
				"survey":           map[string]interface{}{"noSymptoms": true},
			}))

			Expect(rec.Code).To(Equal(http.StatusCreated))
			created := orders.Order{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(Succeed())
			Expect(created.Id).To(gstruct.PointTo(Equal(id)))
		})

		It("requires a patient", func() {
			rec := do(jsonRequest(http.MethodPost, fmt.Sprintf("/v1/facilities/%s/queue", facilityId.Hex()), map[string]interface{}{}))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps duplicate orders to conflicts", func() {
			mngr.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil, orders.ErrDuplicateOrder)

			rec := do(jsonRequest(http.MethodPost, fmt.Sprintf("/v1/facilities/%s/queue", facilityId.Hex()), map[string]interface{}{
				"patientId": patientId.Hex(),
			}))
			Expect(rec.Code).To(Equal(http.StatusConflict))
		})

		It("maps denied access to forbidden", func() {
			mngr.EXPECT().GetQueue(gomock.Any(), gomock.Any()).Return(nil, access.ErrUnauthorized)

			rec := do(authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/facilities/%s/queue", facilityId.Hex()), nil)))
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("maps storage outages to service unavailable", func() {
			mngr.EXPECT().GetQueue(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("error listing queue: %w", store.ErrUnavailable))

			rec := do(authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/facilities/%s/queue", facilityId.Hex()), nil)))
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		})

		It("edits a pending order", func() {
			orderId := primitive.NewObjectID()
			dateTested := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
			order := ordersTest.RandomOrder(organizationId, facilityId, patientId)

			var edit manager.EditQueueItem
			mngr.EXPECT().EditQueueItem(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e manager.EditQueueItem) (*orders.Order, error) {
				edit = e
				return order, nil
			})

			rec := do(jsonRequest(http.MethodPatch, fmt.Sprintf("/v1/orders/%s", orderId.Hex()), map[string]interface{}{
				"revision":   2,
				"outcome":    "NEGATIVE",
				"dateTested": dateTested,
			}))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(edit.OrderId).To(Equal(orderId.Hex()))
			Expect(edit.Revision).To(gstruct.PointTo(Equal(2)))
			Expect(edit.Outcome).To(gstruct.PointTo(Equal(orders.OutcomeNegative)))
			Expect(edit.DateTested).To(gstruct.PointTo(BeTemporally("==", dateTested)))
			Expect(edit.DeviceSpecimenId).To(BeNil())
		})

		It("maps stale edits to conflicts", func() {
			mngr.EXPECT().EditQueueItem(gomock.Any(), gomock.Any()).Return(nil, orders.ErrConcurrentUpdate)

			rec := do(jsonRequest(http.MethodPatch, fmt.Sprintf("/v1/orders/%s", primitive.NewObjectID().Hex()), map[string]interface{}{
				"revision": 1,
			}))
			Expect(rec.Code).To(Equal(http.StatusConflict))
		})

		It("cancels an order", func() {
			orderId := primitive.NewObjectID()
			order := ordersTest.RandomOrder(organizationId, facilityId, patientId)
			order.Status = orders.StatusCanceled
			mngr.EXPECT().CancelOrder(gomock.Any(), orderId.Hex()).Return(order, nil)

			rec := do(authorized(httptest.NewRequest(http.MethodPost, fmt.Sprintf("/v1/orders/%s/cancel", orderId.Hex()), nil)))
			Expect(rec.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("Results", func() {
		It("submits a result", func() {
			order, result := resultsTest.CompletedOrder(organizationId, facilityId, patientId, orders.OutcomePositive, time.Now().UTC())
			mngr.EXPECT().SubmitResult(gomock.Any(), test.Match(func(s manager.SubmitResult) bool {
				return s.PatientId == patientId.Hex() && s.FacilityId == facilityId.Hex() &&
					s.Outcome != nil && *s.Outcome == orders.OutcomePositive && s.DateTested == nil
			})).Return(&manager.SubmitResponse{Order: order, Result: result, DeliverySuccess: false}, nil)

			rec := do(jsonRequest(http.MethodPost, fmt.Sprintf("/v1/facilities/%s/results", facilityId.Hex()), map[string]interface{}{
				"patientId": patientId.Hex(),
				"outcome":   "POSITIVE",
			}))

			Expect(rec.Code).To(Equal(http.StatusCreated))
			response := api.SubmitResultResponse{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &response)).To(Succeed())
			Expect(response.DeliverySuccess).To(BeFalse())
			Expect(response.Result.Id).To(gstruct.PointTo(Equal(*result.Id)))
		})

		It("maps a missing pending order to not found", func() {
			mngr.EXPECT().SubmitResult(gomock.Any(), gomock.Any()).Return(nil, orders.ErrNoPendingOrder)

			rec := do(jsonRequest(http.MethodPost, fmt.Sprintf("/v1/facilities/%s/results", facilityId.Hex()), map[string]interface{}{
				"patientId": patientId.Hex(),
			}))
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("marks a result as error", func() {
			_, result := resultsTest.CompletedOrder(organizationId, facilityId, patientId, orders.OutcomePositive, time.Now().UTC())
			correction := results.NewCorrection(*result, orders.CorrectionStatusRemoved, "wrong patient")
			mngr.EXPECT().CorrectMarkAsError(gomock.Any(), result.Id.Hex(), "wrong patient").Return(&correction, nil)

			rec := do(jsonRequest(http.MethodPost, fmt.Sprintf("/v1/results/%s/mark_as_error", result.Id.Hex()), map[string]interface{}{
				"reason": "wrong patient",
			}))
			Expect(rec.Code).To(Equal(http.StatusCreated))
		})

		It("maps superseded corrections to conflicts", func() {
			mngr.EXPECT().CorrectMarkAsError(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, orders.ErrResultSuperseded)

			rec := do(jsonRequest(http.MethodPost, fmt.Sprintf("/v1/results/%s/mark_as_error", primitive.NewObjectID().Hex()), map[string]interface{}{
				"reason": "duplicate",
			}))
			Expect(rec.Code).To(Equal(http.StatusConflict))
		})

		It("returns a result and its history", func() {
			_, result := resultsTest.CompletedOrder(organizationId, facilityId, patientId, orders.OutcomeNegative, time.Now().UTC())
			svc.EXPECT().Get(gomock.Any(), result.Id.Hex()).Return(result, nil)
			svc.EXPECT().History(gomock.Any(), result.Id.Hex()).Return([]*results.Result{result}, nil)

			rec := do(authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/results/%s", result.Id.Hex()), nil)))
			Expect(rec.Code).To(Equal(http.StatusOK))

			rec = do(authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/results/%s/history", result.Id.Hex()), nil)))
			Expect(rec.Code).To(Equal(http.StatusOK))
			history := []results.Result{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &history)).To(Succeed())
			Expect(history).To(HaveLen(1))
		})

		It("parses listing filters", func() {
			var query service.Query
			svc.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, q service.Query) ([]*results.Result, error) {
				query = q
				return nil, nil
			})

			target := fmt.Sprintf("/v1/facilities/%s/results?outcome=positive&role=resident&from=2024-06-01&to=2024-06-03&page=2&pageSize=5&patientId=%s", facilityId.Hex(), patientId.Hex())
			rec := do(authorized(httptest.NewRequest(http.MethodGet, target, nil)))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"data":[]}`))
			Expect(query.FacilityId).To(Equal(facilityId.Hex()))
			Expect(query.PatientId).To(gstruct.PointTo(Equal(patientId.Hex())))
			Expect(query.Outcome).To(gstruct.PointTo(Equal(orders.OutcomePositive)))
			Expect(query.Role).To(gstruct.PointTo(Equal(patients.RoleResident)))
			Expect(query.From).To(gstruct.PointTo(BeTemporally("==", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))))
			Expect(query.To).To(gstruct.PointTo(BeTemporally("==", time.Date(2024, 6, 3, 23, 59, 59, int(999*time.Millisecond), time.UTC))))
			Expect(query.Page).To(Equal(2))
			Expect(query.PageSize).To(Equal(5))
			Expect(query.Before).To(BeNil())
		})

		It("returns a cursor for full pages and accepts it back", func() {
			list := make([]*results.Result, 2)
			for i := range list {
				_, list[i] = resultsTest.CompletedOrder(organizationId, facilityId, patientId, orders.OutcomeNegative, time.Now().UTC())
				list[i].CreatedTime = time.Date(2024, 6, 2-i, 12, 0, 0, 0, time.UTC)
			}
			svc.EXPECT().List(gomock.Any(), gomock.Any()).Return(list, nil)

			rec := do(authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/facilities/%s/results?pageSize=2", facilityId.Hex()), nil)))
			Expect(rec.Code).To(Equal(http.StatusOK))
			page := api.ResultsPage{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &page)).To(Succeed())
			Expect(page.Data).To(HaveLen(2))
			Expect(page.NextCursor).ToNot(BeNil())

			var query service.Query
			svc.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, q service.Query) ([]*results.Result, error) {
				query = q
				return nil, nil
			})
			rec = do(authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/facilities/%s/results?pageSize=2&before=%s", facilityId.Hex(), *page.NextCursor), nil)))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(query.Before).To(gstruct.PointTo(Equal(list[1].Cursor())))
		})

		It("returns a cursor when the page is filled to the default size", func() {
			list := make([]*results.Result, 2)
			for i := range list {
				_, list[i] = resultsTest.CompletedOrder(organizationId, facilityId, patientId, orders.OutcomeNegative, time.Now().UTC())
			}
			svc.EXPECT().List(gomock.Any(), gomock.Any()).Return(list, nil)

			rec := do(authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/facilities/%s/results", facilityId.Hex()), nil)))
			Expect(rec.Code).To(Equal(http.StatusOK))
			page := api.ResultsPage{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &page)).To(Succeed())
			Expect(page.NextCursor).To(gstruct.PointTo(Equal(api.FormatCursor(list[1].Cursor()))))
		})

		It("returns a cursor when the page is filled to the capped size", func() {
			list := make([]*results.Result, 3)
			for i := range list {
				_, list[i] = resultsTest.CompletedOrder(organizationId, facilityId, patientId, orders.OutcomeNegative, time.Now().UTC())
			}
			svc.EXPECT().List(gomock.Any(), gomock.Any()).Return(list, nil)

			rec := do(authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/facilities/%s/results?pageSize=50", facilityId.Hex()), nil)))
			Expect(rec.Code).To(Equal(http.StatusOK))
			page := api.ResultsPage{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &page)).To(Succeed())
			Expect(page.NextCursor).To(gstruct.PointTo(Equal(api.FormatCursor(list[2].Cursor()))))
		})

		It("omits the cursor for partial pages", func() {
			list := make([]*results.Result, 1)
			_, list[0] = resultsTest.CompletedOrder(organizationId, facilityId, patientId, orders.OutcomeNegative, time.Now().UTC())
			svc.EXPECT().List(gomock.Any(), gomock.Any()).Return(list, nil)

			rec := do(authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/facilities/%s/results", facilityId.Hex()), nil)))
			Expect(rec.Code).To(Equal(http.StatusOK))
			page := api.ResultsPage{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &page)).To(Succeed())
			Expect(page.NextCursor).To(BeNil())
		})

		It("rejects malformed filters", func() {
			for _, params := range []string{"from=06/01/2024", "outcome=maybe", "role=teacher", "before=nope", "page=first"} {
				rec := do(authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/facilities/%s/results?%s", facilityId.Hex(), params), nil)))
				Expect(rec.Code).To(Equal(http.StatusBadRequest), params)
			}
		})

		It("counts results", func() {
			svc.EXPECT().Count(gomock.Any(), test.Match(func(q service.Query) bool {
				return q.FacilityId == facilityId.Hex() && q.Outcome != nil && *q.Outcome == orders.OutcomeNegative
			})).Return(7, nil)

			rec := do(authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/facilities/%s/results/count?outcome=NEGATIVE", facilityId.Hex()), nil)))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"count":7}`))
		})

		It("exports results as a spreadsheet", func() {
			file := xlsx.NewFile()
			_, err := file.AddSheet(service.ExportSheetName)
			Expect(err).ToNot(HaveOccurred())
			svc.EXPECT().Export(gomock.Any(), gomock.Any()).Return(file, nil)

			rec := do(authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/facilities/%s/results/export", facilityId.Hex()), nil)))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get(echo.HeaderContentType)).To(Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
			Expect(rec.Header().Get(echo.HeaderContentDisposition)).To(ContainSubstring(facilityId.Hex()))

			exported, err := xlsx.OpenBinary(rec.Body.Bytes())
			Expect(err).ToNot(HaveOccurred())
			Expect(exported.Sheet).To(HaveKey(service.ExportSheetName))
		})

		It("lists the results of a patient", func() {
			svc.EXPECT().ListForPatient(gomock.Any(), patientId.Hex(), 1, 10).Return(nil, nil)

			rec := do(authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/patients/%s/results?page=1&pageSize=10", patientId.Hex()), nil)))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`[]`))
		})
	})

	Describe("Dashboards", func() {
		It("returns organization metrics for a date range", func() {
			svc.EXPECT().OrganizationMetrics(gomock.Any(), gomock.Not(gomock.Nil()), gomock.Nil()).Return(&results.OrganizationMetrics{
				Metrics:    results.Metrics{PositiveCount: 1, NegativeCount: 2, TotalCount: 3},
				Facilities: []results.FacilityMetrics{},
			}, nil)

			rec := do(authorized(httptest.NewRequest(http.MethodGet, "/v1/dashboard/organization?from=2024-06-01", nil)))
			Expect(rec.Code).To(Equal(http.StatusOK))
			metrics := results.OrganizationMetrics{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &metrics)).To(Succeed())
			Expect(metrics.TotalCount).To(Equal(3))
		})

		It("scopes top level metrics to a facility when given", func() {
			svc.EXPECT().TopLevelMetrics(gomock.Any(), test.Match(func(id *string) bool {
				return id != nil && *id == facilityId.Hex()
			}), gomock.Nil(), gomock.Nil()).Return(&results.Metrics{TotalCount: 4}, nil)

			rec := do(authorized(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/dashboard/top_level?facilityId=%s", facilityId.Hex()), nil)))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"positiveCount":0,"negativeCount":0,"totalCount":4}`))
		})

		It("maps denied organization access to forbidden", func() {
			svc.EXPECT().TopLevelMetrics(gomock.Any(), gomock.Nil(), gomock.Nil(), gomock.Nil()).Return(nil, access.ErrUnauthorized)

			rec := do(authorized(httptest.NewRequest(http.MethodGet, "/v1/dashboard/top_level", nil)))
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})
	})
})
