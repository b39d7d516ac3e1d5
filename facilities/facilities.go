package facilities

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/labnet/testorders/errors"
)

const (
	CollectionName             = "facilities"
	OrganizationCollectionName = "organizations"
)

var (
	ErrNotFound             = fmt.Errorf("facility %w", errors.NotFound)
	ErrOrganizationNotFound = fmt.Errorf("organization %w", errors.NotFound)
)

//go:generate go tool mockgen -source=./facilities.go -destination=./test/mock_facilities.go -package test

type Repository interface {
	Get(ctx context.Context, id string) (*Facility, error)
	List(ctx context.Context, organizationId string) ([]*Facility, error)
	Create(ctx context.Context, facility *Facility) (*Facility, error)
	GetOrganization(ctx context.Context, id string) (*Organization, error)
	CreateOrganization(ctx context.Context, organization *Organization) (*Organization, error)
}

// Organization is a tenant of the network.
type Organization struct {
	Id          *primitive.ObjectID `bson:"_id,omitempty"`
	ExternalId  string              `bson:"externalId"`
	Name        string              `bson:"name"`
	CreatedTime time.Time           `bson:"createdTime"`
}

// Facility is the unit of authorization for queue and result operations.
type Facility struct {
	Id                      *primitive.ObjectID `bson:"_id,omitempty"`
	OrganizationId          primitive.ObjectID  `bson:"organizationId"`
	Name                    string              `bson:"name"`
	DefaultDeviceSpecimenId string              `bson:"defaultDeviceSpecimenId"`
	DeviceSpecimenIds       []string            `bson:"deviceSpecimenIds"`
	CreatedTime             time.Time           `bson:"createdTime"`
}

// SupportsDeviceSpecimen returns true if the device specimen combination is configured for the facility.
func (f Facility) SupportsDeviceSpecimen(id string) bool {
	return id == f.DefaultDeviceSpecimenId || slices.Contains(f.DeviceSpecimenIds, id)
}
