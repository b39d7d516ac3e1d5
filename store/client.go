package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

const serverSelectionTimeout = 10 * time.Second

func NewClient(host string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(host).
		SetServerSelectionTimeout(serverSelectionTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), ContextTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}

	return client, nil
}

// NewClientFromConfig connects to the configured deployment and disconnects when the app stops.
func NewClientFromConfig(cfg *Config, lifecycle fx.Lifecycle) (*mongo.Client, error) {
	connectionString, err := cfg.GetConnectionString()
	if err != nil {
		return nil, err
	}
	client, err := NewClient(connectionString)
	if err != nil {
		return nil, err
	}

	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})
	return client, nil
}
