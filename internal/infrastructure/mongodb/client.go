package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-care-nosql/internal/config"
	"github.com/go-care-nosql/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DB wraps a connected database with a per-call timeout.
type DB struct {
	Client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// Connect dials cfg.MongoURI and pings the server.
func Connect(ctx context.Context, cfg *config.Config) (*DB, error) {
	timeout := time.Duration(cfg.MongoTimeoutSeconds) * time.Second

	connCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(connCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, timeout)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &DB{Client: client, db: client.Database(cfg.MongoDatabase), timeout: timeout}, nil
}

func (d *DB) getContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.timeout)
}

func (d *DB) collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

// CreateDefaultIndexes adds a unique email index to every account collection
// and an email index to every booking collection.
func (d *DB) CreateDefaultIndexes(ctx context.Context) {
	for _, coll := range []domain.Collection{domain.CollectionUsers, domain.CollectionDoctors, domain.CollectionPendingDoctors} {
		d.createIndexes(ctx, string(coll), []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		})
	}
	for _, coll := range []string{domain.CollectionAppointments, domain.CollectionLabBookings, domain.CollectionMedicineBookings} {
		d.createIndexes(ctx, coll, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}},
		})
	}
}

func (d *DB) createIndexes(ctx context.Context, coll string, models []mongo.IndexModel) {
	ctx, cancel := d.getContext(ctx)
	defer cancel()
	if _, err := d.collection(coll).Indexes().CreateMany(ctx, models); err != nil {
		slog.Warn("could not create indexes", "collection", coll, "err", err)
	}
}

// Disconnect closes the client.
func (d *DB) Disconnect(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}
