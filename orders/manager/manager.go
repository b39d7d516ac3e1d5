package manager

import (
	"context"
	errs "errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/labnet/testorders/access"
	"github.com/labnet/testorders/delivery"
	"github.com/labnet/testorders/errors"
	"github.com/labnet/testorders/facilities"
	"github.com/labnet/testorders/links"
	"github.com/labnet/testorders/orders"
	"github.com/labnet/testorders/patients"
	"github.com/labnet/testorders/reporting"
	"github.com/labnet/testorders/results"
	"github.com/labnet/testorders/store"
)

var (
	ErrUnsupportedDeviceSpecimen = fmt.Errorf("%w: the device specimen is not configured for the facility", errors.BadRequest)
	ErrPatientOutsideOrganization = fmt.Errorf("%w: the patient does not belong to the facility's organization", errors.BadRequest)
	ErrMissingOutcome            = fmt.Errorf("%w: a valid outcome is required", errors.BadRequest)
	ErrMissingReason             = fmt.Errorf("%w: a correction reason is required", errors.BadRequest)
)

type Enqueue struct {
	PatientId        string
	FacilityId       string
	DeviceSpecimenId *string
	Survey           map[string]interface{}
}

type EditQueueItem struct {
	OrderId string
	// Revision of the order the edit was made against. The current revision is used when nil.
	Revision         *int
	DeviceSpecimenId *string
	Outcome          *orders.Outcome
	DateTested       *time.Time
	Survey           map[string]interface{}
}

type SubmitResult struct {
	PatientId        string
	FacilityId       string
	DeviceSpecimenId *string
	// Outcome falls back to the tentative outcome recorded on the pending order.
	Outcome    *orders.Outcome
	DateTested *time.Time
}

type SubmitResponse struct {
	Order           *orders.Order
	Result          *results.Result
	DeliverySuccess bool
}

//go:generate go tool mockgen -source=./manager.go -destination=./test/mock_manager.go -package test

type Manager interface {
	Enqueue(ctx context.Context, enqueue Enqueue) (*orders.Order, error)
	GetQueue(ctx context.Context, facilityId string) ([]*orders.Order, error)
	EditQueueItem(ctx context.Context, edit EditQueueItem) (*orders.Order, error)
	CancelOrder(ctx context.Context, orderId string) (*orders.Order, error)
	// SubmitResult completes the pending order of the patient at the facility. Delivery and
	// reporting run after the result is committed and never fail the submission.
	SubmitResult(ctx context.Context, submit SubmitResult) (*SubmitResponse, error)
	// CorrectMarkAsError supersedes a result with a removed copy carrying reason.
	CorrectMarkAsError(ctx context.Context, resultId string, reason string) (*results.Result, error)
}

type Params struct {
	fx.In

	DbClient   *mongo.Client
	Resolver   access.Resolver
	Facilities facilities.Repository
	Patients   patients.Repository
	Orders     orders.Repository
	Results    results.Repository
	Links      links.Repository
	Dispatcher delivery.Dispatcher
	Reporter   reporting.Reporter
	Logger     *zap.SugaredLogger
}

func NewManager(p Params) (Manager, error) {
	return &manager{
		dbClient:   p.DbClient,
		resolver:   p.Resolver,
		facilities: p.Facilities,
		patients:   p.Patients,
		orders:     p.Orders,
		results:    p.Results,
		links:      p.Links,
		dispatcher: p.Dispatcher,
		reporter:   p.Reporter,
		logger:     p.Logger,
	}, nil
}

type manager struct {
	dbClient   *mongo.Client
	resolver   access.Resolver
	facilities facilities.Repository
	patients   patients.Repository
	orders     orders.Repository
	results    results.Repository
	links      links.Repository
	dispatcher delivery.Dispatcher
	reporter   reporting.Reporter
	logger     *zap.SugaredLogger
}

func (m *manager) Enqueue(ctx context.Context, enqueue Enqueue) (*orders.Order, error) {
	if err := m.resolver.Authorize(ctx, access.PermissionStartTest, access.Facility(enqueue.FacilityId)); err != nil {
		return nil, err
	}

	facility, err := m.facilities.Get(ctx, enqueue.FacilityId)
	if err != nil {
		return nil, err
	}
	patient, err := m.patients.Get(ctx, enqueue.PatientId)
	if err != nil {
		return nil, err
	}
	if patient.OrganizationId != facility.OrganizationId {
		return nil, ErrPatientOutsideOrganization
	}

	deviceSpecimenId := facility.DefaultDeviceSpecimenId
	if enqueue.DeviceSpecimenId != nil {
		deviceSpecimenId = *enqueue.DeviceSpecimenId
	}
	if !facility.SupportsDeviceSpecimen(deviceSpecimenId) {
		return nil, ErrUnsupportedDeviceSpecimen
	}

	survey, err := orders.ParseSurvey(enqueue.Survey)
	if err != nil {
		return nil, err
	}

	order, err := m.orders.Create(ctx, &orders.Order{
		OrganizationId:   facility.OrganizationId,
		FacilityId:       *facility.Id,
		PatientId:        *patient.Id,
		DeviceSpecimenId: deviceSpecimenId,
		Survey:           survey,
	})
	if err != nil {
		return nil, err
	}

	m.logger.Infow("order enqueued", "orderId", order.Id.Hex(), "facilityId", enqueue.FacilityId)
	return order, nil
}

func (m *manager) GetQueue(ctx context.Context, facilityId string) ([]*orders.Order, error) {
	if err := m.resolver.Authorize(ctx, access.PermissionStartTest, access.Facility(facilityId)); err != nil {
		return nil, err
	}
	return m.orders.ListQueue(ctx, facilityId)
}

func (m *manager) EditQueueItem(ctx context.Context, edit EditQueueItem) (*orders.Order, error) {
	order, err := m.orders.Get(ctx, edit.OrderId)
	if errs.Is(err, orders.ErrNotFound) {
		return nil, orders.ErrNoPendingOrder
	} else if err != nil {
		return nil, err
	}
	if err := m.resolver.Authorize(ctx, access.PermissionUpdateTest, access.Facility(order.FacilityId.Hex())); err != nil {
		return nil, err
	}
	if order.Status != orders.StatusPending {
		return nil, orders.ErrOrderNotPending
	}

	update := orders.PendingUpdate{
		Outcome:    edit.Outcome,
		DateTested: edit.DateTested,
		Revision:   order.Revision,
	}
	if edit.Revision != nil {
		update.Revision = *edit.Revision
	}
	if edit.Outcome != nil && !slices.Contains(orders.Outcomes, *edit.Outcome) {
		return nil, ErrMissingOutcome
	}
	if edit.DeviceSpecimenId != nil {
		if err := m.checkDeviceSpecimen(ctx, order.FacilityId, *edit.DeviceSpecimenId); err != nil {
			return nil, err
		}
		update.DeviceSpecimenId = edit.DeviceSpecimenId
	}
	if len(edit.Survey) > 0 {
		survey, err := orders.MergeSurvey(order.Survey, edit.Survey)
		if err != nil {
			return nil, err
		}
		update.Survey = &survey
	}

	return m.orders.UpdatePending(ctx, edit.OrderId, update)
}

func (m *manager) CancelOrder(ctx context.Context, orderId string) (*orders.Order, error) {
	order, err := m.orders.Get(ctx, orderId)
	if errs.Is(err, orders.ErrNotFound) {
		return nil, orders.ErrNoPendingOrder
	} else if err != nil {
		return nil, err
	}
	if err := m.resolver.Authorize(ctx, access.PermissionUpdateTest, access.Facility(order.FacilityId.Hex())); err != nil {
		return nil, err
	}

	canceled, err := m.orders.Cancel(ctx, orderId)
	if err != nil {
		return nil, err
	}

	m.logger.Infow("order canceled", "orderId", orderId)
	return canceled, nil
}

func (m *manager) SubmitResult(ctx context.Context, submit SubmitResult) (*SubmitResponse, error) {
	if err := m.resolver.Authorize(ctx, access.PermissionUpdateTest, access.Facility(submit.FacilityId)); err != nil {
		return nil, err
	}
	if submit.Outcome != nil && !slices.Contains(orders.Outcomes, *submit.Outcome) {
		return nil, ErrMissingOutcome
	}

	patient, err := m.patients.Get(ctx, submit.PatientId)
	if errs.Is(err, patients.ErrNotFound) {
		return nil, orders.ErrNoPendingOrder
	} else if err != nil {
		return nil, err
	}
	facility, err := m.facilities.Get(ctx, submit.FacilityId)
	if err != nil {
		return nil, err
	}
	if submit.DeviceSpecimenId != nil && !facility.SupportsDeviceSpecimen(*submit.DeviceSpecimenId) {
		return nil, ErrUnsupportedDeviceSpecimen
	}

	resultId := primitive.NewObjectID()
	linkId := uuid.NewString()

	var link *links.Link
	transaction := func(sessionCtx mongo.SessionContext) (any, error) {
		order, err := m.orders.FindPending(sessionCtx, submit.PatientId, submit.FacilityId)
		if err != nil {
			return nil, err
		}

		completion, err := newCompletion(order, submit)
		if err != nil {
			return nil, err
		}
		completion.ResultId = resultId
		completion.LinkId = linkId

		order, err = m.orders.Complete(sessionCtx, *order.Id, completion)
		if err != nil {
			return nil, err
		}

		prior, err := m.orders.HasPriorResult(sessionCtx, order.PatientId, order.FacilityId, *order.Id)
		if err != nil {
			return nil, err
		}

		result := results.NewResult(*order, prior)
		result.Id = &resultId
		created, err := m.results.Create(sessionCtx, &result)
		if err != nil {
			return nil, err
		}

		link, err = m.links.Ensure(sessionCtx, links.Link{
			Id:         linkId,
			OrderId:    *order.Id,
			PatientId:  order.PatientId,
			FacilityId: order.FacilityId,
		})
		if err != nil {
			return nil, err
		}

		return &SubmitResponse{Order: order, Result: created}, nil
	}

	res, err := store.WithTransaction(ctx, m.dbClient, transaction)
	if err != nil {
		return nil, err
	}

	response := res.(*SubmitResponse)
	response.DeliverySuccess = m.dispatcher.Dispatch(ctx, patient.DeliveryPreference, *link)
	m.reporter.Report(ctx, *response.Result)

	m.logger.Infow("result submitted", "orderId", response.Order.Id.Hex(), "resultId", resultId.Hex(), "deliverySuccess", response.DeliverySuccess)
	return response, nil
}

func newCompletion(order *orders.Order, submit SubmitResult) (orders.Completion, error) {
	completion := orders.Completion{
		DeviceSpecimenId: order.DeviceSpecimenId,
		DateTested:       time.Now().UTC().Truncate(time.Millisecond),
	}
	if submit.DeviceSpecimenId != nil {
		completion.DeviceSpecimenId = *submit.DeviceSpecimenId
	}

	switch {
	case submit.Outcome != nil:
		completion.Outcome = *submit.Outcome
	case order.Outcome != nil:
		completion.Outcome = *order.Outcome
	default:
		return completion, ErrMissingOutcome
	}

	if submit.DateTested != nil {
		completion.DateTested = submit.DateTested.UTC()
	} else if order.DateTested != nil {
		completion.DateTested = order.DateTested.UTC()
	}

	return completion, nil
}

func (m *manager) CorrectMarkAsError(ctx context.Context, resultId string, reason string) (*results.Result, error) {
	original, err := m.results.Get(ctx, resultId)
	if err != nil {
		return nil, err
	}
	if err := m.resolver.Authorize(ctx, access.PermissionUpdateTest, access.Facility(original.FacilityId.Hex())); err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrMissingReason
	}
	if original.CorrectionStatus == orders.CorrectionStatusRemoved {
		return nil, results.ErrAlreadyRemoved
	}

	correctionId := primitive.NewObjectID()
	transaction := func(sessionCtx mongo.SessionContext) (any, error) {
		_, err := m.orders.AdvanceResult(sessionCtx, orders.Correction{
			OrderId:          original.OrderId,
			PreviousResultId: *original.Id,
			ResultId:         correctionId,
			Status:           orders.CorrectionStatusRemoved,
			Reason:           reason,
		})
		if err != nil {
			return nil, err
		}

		correction := results.NewCorrection(*original, orders.CorrectionStatusRemoved, reason)
		correction.Id = &correctionId
		return m.results.Create(sessionCtx, &correction)
	}

	res, err := store.WithTransaction(ctx, m.dbClient, transaction)
	if err != nil {
		return nil, err
	}

	correction := res.(*results.Result)
	m.reporter.Report(ctx, *correction)

	m.logger.Infow("result marked as error", "orderId", original.OrderId.Hex(), "resultId", resultId, "correctionId", correctionId.Hex())
	return correction, nil
}

func (m *manager) checkDeviceSpecimen(ctx context.Context, facilityId primitive.ObjectID, deviceSpecimenId string) error {
	facility, err := m.facilities.Get(ctx, facilityId.Hex())
	if err != nil {
		return err
	}
	if !facility.SupportsDeviceSpecimen(deviceSpecimenId) {
		return ErrUnsupportedDeviceSpecimen
	}
	return nil
}
