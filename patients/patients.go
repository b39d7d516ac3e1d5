package patients

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/labnet/testorders/errors"
)

const CollectionName = "patients"

var ErrNotFound = fmt.Errorf("patient %w", errors.NotFound)

type Repository interface {
	Get(ctx context.Context, id string) (*Patient, error)
	Create(ctx context.Context, patient *Patient) (*Patient, error)
	UpdateDeliveryPreference(ctx context.Context, id string, preference DeliveryPreference) (*Patient, error)
}

type Role string

const (
	RoleStaff    Role = "STAFF"
	RoleResident Role = "RESIDENT"
	RoleStudent  Role = "STUDENT"
	RoleVisitor  Role = "VISITOR"
	RoleUnknown  Role = "UNKNOWN"
)

var Roles = []Role{RoleStaff, RoleResident, RoleStudent, RoleVisitor, RoleUnknown}

// DeliveryPreference controls how a patient is notified of a result.
type DeliveryPreference string

const (
	DeliveryPreferenceNone  DeliveryPreference = "NONE"
	DeliveryPreferenceSMS   DeliveryPreference = "SMS"
	DeliveryPreferenceEmail DeliveryPreference = "EMAIL"
	DeliveryPreferenceAll   DeliveryPreference = "ALL"
)

var DeliveryPreferences = []DeliveryPreference{
	DeliveryPreferenceNone,
	DeliveryPreferenceSMS,
	DeliveryPreferenceEmail,
	DeliveryPreferenceAll,
}

func ParseDeliveryPreference(value string) (DeliveryPreference, error) {
	for _, p := range DeliveryPreferences {
		if string(p) == value {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown delivery preference %q", errors.BadRequest, value)
}

type Patient struct {
	Id                 *primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrganizationId     primitive.ObjectID  `bson:"organizationId" json:"organizationId"`
	FacilityId         *primitive.ObjectID `bson:"facilityId,omitempty" json:"facilityId,omitempty"`
	FirstName          string              `bson:"firstName" json:"firstName"`
	MiddleName         *string             `bson:"middleName,omitempty" json:"middleName,omitempty"`
	LastName           string              `bson:"lastName" json:"lastName"`
	BirthDate          string              `bson:"birthDate" json:"birthDate"`
	Role               Role                `bson:"role" json:"role"`
	Phone              *string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email              *string             `bson:"email,omitempty" json:"email,omitempty"`
	DeliveryPreference DeliveryPreference  `bson:"deliveryPreference" json:"deliveryPreference"`
	CreatedTime        time.Time           `bson:"createdTime" json:"createdTime"`
	UpdatedTime        time.Time           `bson:"updatedTime" json:"updatedTime"`
}

func (p Patient) FullName() string {
	if p.MiddleName != nil && *p.MiddleName != "" {
		return fmt.Sprintf("%s %s %s", p.FirstName, *p.MiddleName, p.LastName)
	}
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}
