package test

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/labnet/testorders/patients"
	"github.com/labnet/testorders/pointer"
	"github.com/labnet/testorders/test"
)

func RandomPatient(organizationId primitive.ObjectID, facilityId *primitive.ObjectID) *patients.Patient {
	return &patients.Patient{
		OrganizationId:     organizationId,
		FacilityId:         facilityId,
		FirstName:          test.Faker.Person().FirstName(),
		LastName:           test.Faker.Person().LastName(),
		BirthDate:          test.Faker.Time().ISO8601(time.Now())[:10],
		Role:               RandomRole(),
		Phone:              pointer.FromAny(test.Faker.Phone().Number()),
		Email:              pointer.FromAny(test.Faker.Internet().Email()),
		DeliveryPreference: patients.DeliveryPreferenceNone,
	}
}

func RandomRole() patients.Role {
	return patients.Roles[test.Faker.IntBetween(0, len(patients.Roles)-1)]
}
