package results

import (
	"context"
	"fmt"
	"time"

	"github.com/mohae/deepcopy"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/labnet/testorders/errors"
	"github.com/labnet/testorders/orders"
	"github.com/labnet/testorders/patients"
	"github.com/labnet/testorders/store"
)

const CollectionName = "results"

var (
	ErrNotFound       = fmt.Errorf("result %w", errors.NotFound)
	ErrAlreadyRemoved = fmt.Errorf("%w: the result has already been removed", errors.Conflict)
)

// Result is an immutable snapshot of a completed or corrected order.
type Result struct {
	Id                   *primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	OrderId              primitive.ObjectID      `bson:"orderId" json:"orderId"`
	OrganizationId       primitive.ObjectID      `bson:"organizationId" json:"organizationId"`
	FacilityId           primitive.ObjectID      `bson:"facilityId" json:"facilityId"`
	PatientId            primitive.ObjectID      `bson:"patientId" json:"patientId"`
	DeviceSpecimenId     string                  `bson:"deviceSpecimenId" json:"deviceSpecimenId"`
	Outcome              orders.Outcome          `bson:"outcome" json:"outcome"`
	DateTested           time.Time               `bson:"dateTested" json:"dateTested"`
	CorrectionStatus     orders.CorrectionStatus `bson:"correctionStatus" json:"correctionStatus"`
	CorrectionReason     *string                 `bson:"correctionReason,omitempty" json:"correctionReason,omitempty"`
	Supersedes           *primitive.ObjectID     `bson:"supersedes,omitempty" json:"supersedes,omitempty"`
	PatientHasPriorTests bool                    `bson:"patientHasPriorTests" json:"patientHasPriorTests"`
	Survey               orders.Survey           `bson:"survey" json:"survey"`
	CreatedTime          time.Time               `bson:"createdTime" json:"createdTime"`

	// Populated by listings only.
	Patient *patients.Patient `bson:"patient,omitempty" json:"patient,omitempty"`
}

// NewResult snapshots a completed order.
func NewResult(order orders.Order, patientHasPriorTests bool) Result {
	result := Result{
		OrderId:              *order.Id,
		OrganizationId:       order.OrganizationId,
		FacilityId:           order.FacilityId,
		PatientId:            order.PatientId,
		DeviceSpecimenId:     order.DeviceSpecimenId,
		CorrectionStatus:     orders.CorrectionStatusNone,
		PatientHasPriorTests: patientHasPriorTests,
		Survey:               deepcopy.Copy(order.Survey).(orders.Survey),
	}
	if order.Outcome != nil {
		result.Outcome = *order.Outcome
	}
	if order.DateTested != nil {
		result.DateTested = *order.DateTested
	}
	return result
}

// NewCorrection returns a copy of original superseding it with the given status and reason.
func NewCorrection(original Result, status orders.CorrectionStatus, reason string) Result {
	correction := deepcopy.Copy(original).(Result)
	correction.Id = nil
	correction.Patient = nil
	correction.CreatedTime = time.Time{}
	correction.Supersedes = original.Id
	correction.CorrectionStatus = status
	correction.CorrectionReason = &reason
	return correction
}

// Cursor identifies a position in the newest first ordering of results.
type Cursor struct {
	CreatedTime time.Time
	Id          primitive.ObjectID
}

func (r Result) Cursor() Cursor {
	return Cursor{CreatedTime: r.CreatedTime, Id: *r.Id}
}

// Filter criteria are combined with AND. Date bounds are inclusive.
type Filter struct {
	OrganizationId *string
	FacilityIds    []string
	PatientId      *string
	Outcome        *orders.Outcome
	Role           *patients.Role
	From           *time.Time
	To             *time.Time
	// Before restricts results to those strictly older than the cursor.
	Before *Cursor
}

type Metrics struct {
	PositiveCount int `bson:"positiveCount" json:"positiveCount"`
	NegativeCount int `bson:"negativeCount" json:"negativeCount"`
	TotalCount    int `bson:"totalCount" json:"totalCount"`
}

func (m Metrics) Add(other Metrics) Metrics {
	return Metrics{
		PositiveCount: m.PositiveCount + other.PositiveCount,
		NegativeCount: m.NegativeCount + other.NegativeCount,
		TotalCount:    m.TotalCount + other.TotalCount,
	}
}

type FacilityMetrics struct {
	FacilityId primitive.ObjectID `bson:"_id" json:"facilityId"`
	Metrics    `bson:",inline"`
}

type OrganizationMetrics struct {
	Metrics
	Facilities []FacilityMetrics `json:"facilities"`
}

//go:generate go tool mockgen -source=./results.go -destination=./test/mock_results.go -package test

type Repository interface {
	Create(ctx context.Context, result *Result) (*Result, error)
	// Get returns any result, including superseded ones.
	Get(ctx context.Context, id string) (*Result, error)
	// ListByOrder returns every result of an order, oldest first.
	ListByOrder(ctx context.Context, orderId primitive.ObjectID) ([]*Result, error)
	// List returns the current result of each order matching filter, newest first, with patients attached.
	List(ctx context.Context, filter Filter, pagination store.Pagination) ([]*Result, error)
	Count(ctx context.Context, filter Filter) (int, error)
	// Metrics aggregates current, non removed results per facility.
	Metrics(ctx context.Context, filter Filter) ([]FacilityMetrics, error)
}
