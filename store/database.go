package store

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/labnet/testorders/errors"
)

var ErrMissingDatabaseName = fmt.Errorf("%w: database name is not configured", errors.InternalServerError)

// NewDatabase returns the configured database. Writes outside transactions are acknowledged
// by a majority so that a result is never reported before it is durable.
func NewDatabase(client *mongo.Client, cfg *Config) (*mongo.Database, error) {
	if cfg.DatabaseName == "" {
		return nil, ErrMissingDatabaseName
	}

	opts := options.Database().SetWriteConcern(writeconcern.Majority())
	return client.Database(cfg.DatabaseName, opts), nil
}
