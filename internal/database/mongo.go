package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

// MongoClient owns the single driver client shared by every repository.
type MongoClient struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewMongoClient builds the driver client. The driver connects lazily, so a
// nil error here says nothing about reachability; call Ping for that.
func NewMongoClient(config MongoConfig) (*MongoClient, error) {
	if config.URI == "" {
		return nil, errors.New("mongo URI is required")
	}
	if config.Database == "" {
		return nil, errors.New("mongo database name is required")
	}

	opts := options.Client().
		ApplyURI(config.URI).
		SetConnectTimeout(config.ConnectTimeout).
		SetServerSelectionTimeout(config.ConnectTimeout)
	if config.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(config.MaxPoolSize)
	}

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	return &MongoClient{
		Client: client,
		DB:     client.Database(config.Database),
	}, nil
}

func (m *MongoClient) Ping(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return errors.New("mongo client is nil")
	}
	return m.Client.Ping(ctx, readpref.Primary())
}

func (m *MongoClient) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}
	return m.Client.Disconnect(ctx)
}
