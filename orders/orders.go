package orders

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/labnet/testorders/errors"
	"github.com/labnet/testorders/patients"
)

const CollectionName = "orders"

var (
	ErrNotFound         = fmt.Errorf("order %w", errors.NotFound)
	ErrDuplicateOrder   = fmt.Errorf("%w: the patient already has a pending order at this facility", errors.Duplicate)
	ErrNoPendingOrder   = fmt.Errorf("pending order %w", errors.NotFound)
	ErrOrderNotPending  = fmt.Errorf("%w: the order is no longer pending", errors.Conflict)
	ErrResultSuperseded = fmt.Errorf("%w: the result has already been superseded", errors.Conflict)
	ErrConcurrentUpdate = fmt.Errorf("%w: the order was modified concurrently", errors.Conflict)
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCanceled  Status = "CANCELED"
)

type Outcome string

const (
	OutcomePositive     Outcome = "POSITIVE"
	OutcomeNegative     Outcome = "NEGATIVE"
	OutcomeUndetermined Outcome = "UNDETERMINED"
)

var Outcomes = []Outcome{OutcomePositive, OutcomeNegative, OutcomeUndetermined}

func ParseOutcome(value string) (Outcome, error) {
	for _, o := range Outcomes {
		if string(o) == value {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w: unknown outcome %q", errors.BadRequest, value)
}

type CorrectionStatus string

const (
	CorrectionStatusNone      CorrectionStatus = "NONE"
	CorrectionStatusRemoved   CorrectionStatus = "REMOVED"
	CorrectionStatusCorrected CorrectionStatus = "CORRECTED"
)

// Order is a queued request for one test of one patient at one facility.
type Order struct {
	Id               *primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrganizationId   primitive.ObjectID  `bson:"organizationId" json:"organizationId"`
	FacilityId       primitive.ObjectID  `bson:"facilityId" json:"facilityId"`
	PatientId        primitive.ObjectID  `bson:"patientId" json:"patientId"`
	DeviceSpecimenId string              `bson:"deviceSpecimenId" json:"deviceSpecimenId"`
	Survey           Survey              `bson:"survey" json:"survey"`
	Status           Status              `bson:"status" json:"status"`
	Outcome          *Outcome            `bson:"outcome,omitempty" json:"outcome,omitempty"`
	DateTested       *time.Time          `bson:"dateTested,omitempty" json:"dateTested,omitempty"`
	ResultId         *primitive.ObjectID `bson:"resultId,omitempty" json:"resultId,omitempty"`
	LinkId           *string             `bson:"linkId,omitempty" json:"linkId,omitempty"`
	CorrectionStatus *CorrectionStatus   `bson:"correctionStatus,omitempty" json:"correctionStatus,omitempty"`
	CorrectionReason *string             `bson:"correctionReason,omitempty" json:"correctionReason,omitempty"`
	Revision         int                 `bson:"revision" json:"revision"`
	CreatedTime      time.Time           `bson:"createdTime" json:"createdTime"`
	UpdatedTime      time.Time           `bson:"updatedTime" json:"updatedTime"`

	// Populated by queue listings only.
	Patient *patients.Patient `bson:"patient,omitempty" json:"patient,omitempty"`
}

// PendingUpdate replaces fields of a pending order. Nil fields are left unchanged.
// Revision must match the revision the update was computed from.
type PendingUpdate struct {
	DeviceSpecimenId *string
	Outcome          *Outcome
	DateTested       *time.Time
	Survey           *Survey
	Revision         int
}

type Completion struct {
	DeviceSpecimenId string
	Outcome          Outcome
	DateTested       time.Time
	ResultId         primitive.ObjectID
	LinkId           string
}

type Correction struct {
	OrderId          primitive.ObjectID
	PreviousResultId primitive.ObjectID
	ResultId         primitive.ObjectID
	Status           CorrectionStatus
	Reason           string
}

type Repository interface {
	// Create inserts a pending order. Returns ErrDuplicateOrder if the patient already has a
	// pending order at the facility.
	Create(ctx context.Context, order *Order) (*Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	FindPending(ctx context.Context, patientId, facilityId string) (*Order, error)
	// ListQueue returns the pending orders of a facility, oldest first, with their patients.
	ListQueue(ctx context.Context, facilityId string) ([]*Order, error)
	UpdatePending(ctx context.Context, id string, update PendingUpdate) (*Order, error)
	// Complete flips a pending order to completed. Returns ErrNoPendingOrder if the order
	// is no longer pending.
	Complete(ctx context.Context, id primitive.ObjectID, completion Completion) (*Order, error)
	Cancel(ctx context.Context, id string) (*Order, error)
	// AdvanceResult points a completed order at a correcting result. Returns ErrResultSuperseded
	// if the order no longer points at the previous result.
	AdvanceResult(ctx context.Context, correction Correction) (*Order, error)
	// HasPriorResult returns true if the patient has another completed order at the facility
	// whose current result was not removed.
	HasPriorResult(ctx context.Context, patientId, facilityId, excludeOrderId primitive.ObjectID) (bool, error)
}
