package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTimeout = 10 * time.Second

// ErrNotConfigured is returned by Connect when no URI is set.
var ErrNotConfigured = errors.New("mongo uri not configured")

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoDB holds a client bound to the posts collection.
type MongoDB struct {
	cfg    MongoConfig
	client *mongo.Client
}

func NewMongoDB(cfg MongoConfig) *MongoDB {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &MongoDB{cfg: cfg}
}

// Connect dials the server and pings the primary within the configured timeout.
func (m *MongoDB) Connect(ctx context.Context) error {
	if m.cfg.URI == "" {
		return ErrNotConfigured
	}
	if m.client != nil {
		return fmt.Errorf("mongo already connected")
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(m.cfg.URI).
		SetServerSelectionTimeout(m.cfg.Timeout).
		SetTimeout(m.cfg.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping mongo: %w", err)
	}

	log.Info().
		Str("database", m.cfg.Database).
		Str("collection", m.cfg.Collection).
		Msg("Connected to mongo")

	m.client = client
	return nil
}

// Collection returns the posts collection, or nil before Connect.
func (m *MongoDB) Collection() *mongo.Collection {
	if m.client == nil {
		return nil
	}
	return m.client.Database(m.cfg.Database).Collection(m.cfg.Collection)
}

func (m *MongoDB) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	err := m.client.Disconnect(ctx)
	m.client = nil
	return err
}
