package repository_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/labnet/testorders/patients"
	patientsRepository "github.com/labnet/testorders/patients/repository"
	patientsTest "github.com/labnet/testorders/patients/test"
	dbTest "github.com/labnet/testorders/store/test"
)

var _ = Describe("Patients Repository", func() {
	var repo patients.Repository

	BeforeEach(func() {
		var err error
		lifecycle := fxtest.NewLifecycle(GinkgoT())
		repo, err = patientsRepository.NewRepository(dbTest.GetTestDatabase(), zap.NewNop().Sugar(), lifecycle)
		Expect(err).ToNot(HaveOccurred())
		lifecycle.RequireStart()
	})

	AfterEach(func() {
		dbTest.DropCollections(patients.CollectionName)
	})

	It("creates floating patients", func() {
		patient := patientsTest.RandomPatient(primitive.NewObjectID(), nil)
		created, err := repo.Create(context.Background(), patient)
		Expect(err).ToNot(HaveOccurred())
		Expect(created.Id).ToNot(BeNil())
		Expect(created.FacilityId).To(BeNil())
		Expect(created.FullName()).To(Equal(patient.FirstName + " " + patient.LastName))
	})

	It("defaults role and delivery preference", func() {
		patient := patientsTest.RandomPatient(primitive.NewObjectID(), nil)
		patient.Role = ""
		patient.DeliveryPreference = ""
		created, err := repo.Create(context.Background(), patient)
		Expect(err).ToNot(HaveOccurred())
		Expect(created.Role).To(Equal(patients.RoleUnknown))
		Expect(created.DeliveryPreference).To(Equal(patients.DeliveryPreferenceNone))
	})

	It("updates the delivery preference", func() {
		facilityId := primitive.NewObjectID()
		created, err := repo.Create(context.Background(), patientsTest.RandomPatient(primitive.NewObjectID(), &facilityId))
		Expect(err).ToNot(HaveOccurred())

		updated, err := repo.UpdateDeliveryPreference(context.Background(), created.Id.Hex(), patients.DeliveryPreferenceAll)
		Expect(err).ToNot(HaveOccurred())
		Expect(updated.DeliveryPreference).To(Equal(patients.DeliveryPreferenceAll))
		Expect(*updated.FacilityId).To(Equal(facilityId))
	})

	It("returns not found for unknown patients", func() {
		_, err := repo.Get(context.Background(), primitive.NewObjectID().Hex())
		Expect(err).To(MatchError(patients.ErrNotFound))

		_, err = repo.UpdateDeliveryPreference(context.Background(), primitive.NewObjectID().Hex(), patients.DeliveryPreferenceSMS)
		Expect(err).To(MatchError(patients.ErrNotFound))
	})
})
