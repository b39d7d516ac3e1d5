package access

import (
	"context"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/labnet/testorders/errors"
)

var ErrUnauthorized = fmt.Errorf("%w: the caller is not authorized for the requested action", errors.Forbidden)

type Permission string

const (
	PermissionReadPatientList  Permission = "READ_PATIENT_LIST"
	PermissionReadResultList   Permission = "READ_RESULT_LIST"
	PermissionEditPatient      Permission = "EDIT_PATIENT"
	PermissionEditFacility     Permission = "EDIT_FACILITY"
	PermissionEditOrganization Permission = "EDIT_ORGANIZATION"
	PermissionStartTest        Permission = "START_TEST"
	PermissionUpdateTest       Permission = "UPDATE_TEST"
)

var Permissions = []Permission{
	PermissionReadPatientList,
	PermissionReadResultList,
	PermissionEditPatient,
	PermissionEditFacility,
	PermissionEditOrganization,
	PermissionStartTest,
	PermissionUpdateTest,
}

func (p Permission) Valid() bool {
	return slices.Contains(Permissions, p)
}

type Role string

const (
	RoleNoAccess      Role = "NO_ACCESS"
	RoleEntryOnly     Role = "ENTRY_ONLY"
	RoleUser          Role = "USER"
	RoleAdmin         Role = "ADMIN"
	RoleAllFacilities Role = "ALL_FACILITIES"
)

var rolePermissions = map[Role]mapset.Set[Permission]{
	RoleNoAccess:      mapset.NewSet[Permission](),
	RoleAllFacilities: mapset.NewSet[Permission](),
	RoleEntryOnly: mapset.NewSet(
		PermissionStartTest,
		PermissionUpdateTest,
	),
	RoleUser: mapset.NewSet(
		PermissionReadPatientList,
		PermissionReadResultList,
		PermissionEditPatient,
		PermissionStartTest,
		PermissionUpdateTest,
	),
	RoleAdmin: mapset.NewSet(Permissions...),
}

func ParseRole(value string) (Role, error) {
	role := Role(value)
	if _, ok := rolePermissions[role]; !ok {
		return "", fmt.Errorf("%w: unknown role %q", errors.BadRequest, value)
	}
	return role, nil
}

// Caller is the principal on whose behalf an operation runs.
type Caller struct {
	SubjectId      string
	OrganizationId string
	Roles          []Role
	FacilityIds    []string
	SiteAdmin      bool
}

// Permissions returns the union of the permissions granted by the caller's roles.
func (c Caller) Permissions() mapset.Set[Permission] {
	granted := mapset.NewSet[Permission]()
	for _, role := range c.Roles {
		if set, ok := rolePermissions[role]; ok {
			granted = granted.Union(set)
		}
	}
	return granted
}

func (c Caller) HasAllFacilities() bool {
	return slices.Contains(c.Roles, RoleAdmin) || slices.Contains(c.Roles, RoleAllFacilities)
}

func (c Caller) IsOrganizationAdmin() bool {
	return slices.Contains(c.Roles, RoleAdmin)
}

type callerContextKey struct{}

func NewContext(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerContextKey{}, caller)
}

func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerContextKey{}).(Caller)
	return caller, ok
}

// Target is either a facility or a whole organization. Facility targets may omit
// the organization, which is then resolved from the facility.
type Target struct {
	OrganizationId string
	FacilityId     string
}

func Facility(facilityId string) Target {
	return Target{FacilityId: facilityId}
}

func Organization(organizationId string) Target {
	return Target{OrganizationId: organizationId}
}

//go:generate go tool mockgen -source=./access.go -destination=./test/mock_access.go -package test

type Resolver interface {
	// Authorize returns nil if the caller in ctx holds permission for target, and an error
	// wrapping ErrUnauthorized (or store.ErrUnavailable) otherwise.
	Authorize(ctx context.Context, permission Permission, target Target) error
	// AccessibleFacilities returns the ids of the facilities in the caller's organization
	// for which the caller holds permission.
	AccessibleFacilities(ctx context.Context, permission Permission) ([]string, error)
}
