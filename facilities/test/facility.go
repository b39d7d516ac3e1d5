package test

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/labnet/testorders/facilities"
	"github.com/labnet/testorders/test"
)

func RandomOrganization() *facilities.Organization {
	return &facilities.Organization{
		ExternalId: test.Faker.UUID().V4(),
		Name:       test.Faker.Company().Name(),
	}
}

func RandomFacility(organizationId primitive.ObjectID) *facilities.Facility {
	return &facilities.Facility{
		OrganizationId:          organizationId,
		Name:                    test.Faker.Company().Name() + " " + test.Faker.UUID().V4()[:8],
		DefaultDeviceSpecimenId: RandomDeviceSpecimenId(),
		DeviceSpecimenIds:       []string{RandomDeviceSpecimenId(), RandomDeviceSpecimenId()},
	}
}

func RandomDeviceSpecimenId() string {
	return test.Faker.UUID().V4()
}
