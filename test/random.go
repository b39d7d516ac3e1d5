package test

import (
	"math/rand"
	"time"

	"github.com/jaswdr/faker"
	"github.com/onsi/ginkgo/v2"
)

var (
	Faker  = faker.NewWithSeed(Source)
	Rand   = rand.New(Source)
	Source = rand.NewSource(ginkgo.GinkgoRandomSeed())
)

// RandomTimeBetween returns a UTC time truncated to milliseconds, the precision mongo keeps.
func RandomTimeBetween(from, to time.Time) time.Time {
	return Faker.Time().TimeBetween(from, to).UTC().Truncate(time.Millisecond)
}
