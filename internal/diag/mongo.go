// Package diag reports on the optional MongoDB connection behind
// GET /api/db-test.
package diag

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// DefaultDatabase is used when the URI names no database.
const DefaultDatabase = "test"

type Report struct {
	Database    string   `json:"database"`
	Collections []string `json:"collections"`
}

// Prober is what the HTTP layer needs from a diagnostics backend.
type Prober interface {
	Report(ctx context.Context) (Report, error)
}

type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func ConnectMongo(ctx context.Context, uri string) (*Mongo, error) {
	name, err := DatabaseName(uri)
	if err != nil {
		return nil, err
	}

	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	return &Mongo{client: client, db: client.Database(name)}, nil
}

// Report lists the collection names of the configured database, sorted.
func (m *Mongo) Report(ctx context.Context) (Report, error) {
	names, err := m.db.ListCollectionNames(ctx, bson.D{}, options.ListCollections().SetNameOnly(true))
	if err != nil {
		return Report{}, fmt.Errorf("list collections: %w", err)
	}
	sort.Strings(names)
	return Report{Database: m.db.Name(), Collections: names}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// DatabaseName returns the database named in a mongodb:// URI.
func DatabaseName(uri string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("parse MONGODB_URI: %w", err)
	}
	if cs.Database == "" {
		return DefaultDatabase, nil
	}
	return cs.Database, nil
}
