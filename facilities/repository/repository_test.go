package repository_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/labnet/testorders/facilities"
	facilitiesRepository "github.com/labnet/testorders/facilities/repository"
	facilitiesTest "github.com/labnet/testorders/facilities/test"
	dbTest "github.com/labnet/testorders/store/test"
)

var _ = Describe("Facilities Repository", func() {
	var repo facilities.Repository

	BeforeEach(func() {
		var err error
		lifecycle := fxtest.NewLifecycle(GinkgoT())
		repo, err = facilitiesRepository.NewRepository(dbTest.GetTestDatabase(), zap.NewNop().Sugar(), lifecycle)
		Expect(err).ToNot(HaveOccurred())
		lifecycle.RequireStart()
	})

	AfterEach(func() {
		dbTest.DropCollections(facilities.CollectionName, facilities.OrganizationCollectionName)
	})

	It("creates and fetches organizations", func() {
		org, err := repo.CreateOrganization(context.Background(), facilitiesTest.RandomOrganization())
		Expect(err).ToNot(HaveOccurred())
		Expect(org.Id).ToNot(BeNil())

		fetched, err := repo.GetOrganization(context.Background(), org.Id.Hex())
		Expect(err).ToNot(HaveOccurred())
		Expect(fetched.Name).To(Equal(org.Name))
	})

	It("lists facilities of an organization only", func() {
		orgId := primitive.NewObjectID()
		for i := 0; i < 3; i++ {
			_, err := repo.Create(context.Background(), facilitiesTest.RandomFacility(orgId))
			Expect(err).ToNot(HaveOccurred())
		}
		_, err := repo.Create(context.Background(), facilitiesTest.RandomFacility(primitive.NewObjectID()))
		Expect(err).ToNot(HaveOccurred())

		list, err := repo.List(context.Background(), orgId.Hex())
		Expect(err).ToNot(HaveOccurred())
		Expect(list).To(HaveLen(3))
		for _, f := range list {
			Expect(f.OrganizationId).To(Equal(orgId))
		}
	})

	It("returns not found for unknown and malformed ids", func() {
		_, err := repo.Get(context.Background(), primitive.NewObjectID().Hex())
		Expect(err).To(MatchError(facilities.ErrNotFound))

		_, err = repo.Get(context.Background(), "not-an-id")
		Expect(err).To(MatchError(facilities.ErrNotFound))
	})

	It("reports configured device specimens", func() {
		facility := facilitiesTest.RandomFacility(primitive.NewObjectID())
		Expect(facility.SupportsDeviceSpecimen(facility.DefaultDeviceSpecimenId)).To(BeTrue())
		Expect(facility.SupportsDeviceSpecimen(facility.DeviceSpecimenIds[0])).To(BeTrue())
		Expect(facility.SupportsDeviceSpecimen("unknown")).To(BeFalse())
	})
})
