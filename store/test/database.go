package test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/labnet/testorders/store"
	"github.com/labnet/testorders/test"
)

const (
	mongoTestHost = "mongodb://127.0.0.1:27017/?directConnection=true"
	mongoTimeout  = time.Second * 5
)

var database *mongo.Database

func SetupDatabase() {
	client, err := store.NewClient(mongoTestHost)
	Expect(err).ToNot(HaveOccurred())

	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	Expect(client.Ping(ctx, nil)).To(Succeed())

	databaseName := fmt.Sprintf("testorders_test_%s_%d", test.Faker.Lorem().Word(), GinkgoParallelProcess())
	database = client.Database(databaseName)
}

func TeardownDatabase() {
	Expect(database).ToNot(BeNil())
	Expect(database.Drop(context.Background())).To(Succeed())

	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	Expect(database.Client().Disconnect(ctx)).To(Succeed())
	database = nil
}

func GetTestDatabase() *mongo.Database {
	Expect(database).ToNot(BeNil())
	return database
}

// DropCollections empties the named collections between specs.
func DropCollections(names ...string) {
	for _, name := range names {
		Expect(GetTestDatabase().Collection(name).Drop(context.Background())).To(Succeed())
	}
}
