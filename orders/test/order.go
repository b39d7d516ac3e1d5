package test

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/labnet/testorders/orders"
	"github.com/labnet/testorders/pointer"
	"github.com/labnet/testorders/test"
)

var symptoms = []string{"fever", "cough", "fatigue", "headache", "chills"}

func RandomSurvey() orders.Survey {
	noSymptoms := test.Faker.Bool()
	survey := orders.Survey{
		Pregnancy:     pointer.FromAny(test.Faker.RandomStringElement([]string{"yes", "no", "unknown"})),
		NoSymptoms:    pointer.FromAny(noSymptoms),
		FirstTest:     pointer.FromAny(test.Faker.Bool()),
		PriorTestType: pointer.FromAny(test.Faker.RandomStringElement([]string{"antigen", "pcr"})),
	}
	if !noSymptoms {
		survey.Symptoms = map[string]bool{
			test.Faker.RandomStringElement(symptoms): true,
		}
		onset := test.RandomTimeBetween(time.Now().AddDate(0, 0, -10), time.Now())
		survey.SymptomOnset = &onset
	}
	return survey
}

func RandomOutcome() orders.Outcome {
	return orders.Outcomes[test.Faker.IntBetween(0, len(orders.Outcomes)-1)]
}

func RandomOrder(organizationId, facilityId, patientId primitive.ObjectID) *orders.Order {
	return &orders.Order{
		OrganizationId:   organizationId,
		FacilityId:       facilityId,
		PatientId:        patientId,
		DeviceSpecimenId: test.Faker.UUID().V4(),
		Survey:           RandomSurvey(),
	}
}
