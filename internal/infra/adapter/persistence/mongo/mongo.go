// Package mongo implements the Store on top of
// go.mongodb.org/mongo-driver, grounded on original_source/src/storage/mongo.py's
// MongoDBManager: one collection per aggregate, the same index set, and the
// same DuplicateKeyError-to-no-op translation, carried into Go's typed
// repository interfaces instead of a single manager god-object.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names, matching original_source's db.sources / db.documents /
// db.crawl_stats / db.projects.
const (
	collProjects   = "projects"
	collSources    = "sources"
	collDocuments  = "documents"
	collCrawlStats = "crawl_stats"
)

// DB wraps a connected *mongo.Database and exposes the four repositories
// built on top of it. Connect and Disconnect are the two halves of the
// "database connections established on startup, released on shutdown"
// lifecycle rule.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, pings the primary, selects dbName, and bootstraps the
// indexes _initialize_collections creates in original_source/src/storage/mongo.py.
// The 5s server-selection timeout mirrors the original's serverSelectionTimeoutMS.
func Connect(ctx context.Context, uri, dbName string) (*DB, error) {
	clientOpts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(5 * time.Second)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo.Connect: ping: %w", err)
	}

	d := &DB{client: client, db: client.Database(dbName)}
	if err := d.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo.Connect: ensureIndexes: %w", err)
	}
	return d, nil
}

// Disconnect closes the underlying client. Part of the clean shutdown
// sequence: stop scheduler -> close fetcher sessions -> disconnect store.
func (d *DB) Disconnect(ctx context.Context) error {
	if err := d.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo.DB.Disconnect: %w", err)
	}
	return nil
}

// ensureIndexes creates the index set this store relies on: unique source URL,
// unique (url, source_id) document pair, status/created_at/source_id/
// crawled_at/content_type secondary indexes, the cleaned_text full-text
// index, and the crawl_stats (source_id, started_at desc) index.
func (d *DB) ensureIndexes(ctx context.Context) error {
	sources := d.db.Collection(collSources)
	if _, err := sources.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("sources indexes: %w", err)
	}

	documents := d.db.Collection(collDocuments)
	if _, err := documents.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "url", Value: 1}, {Key: "source_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "source_id", Value: 1}}},
		{Keys: bson.D{{Key: "crawled_at", Value: -1}}},
		{Keys: bson.D{{Key: "content_type", Value: 1}}},
		{Keys: bson.D{{Key: "cleaned_text", Value: "text"}}},
	}); err != nil {
		return fmt.Errorf("documents indexes: %w", err)
	}

	stats := d.db.Collection(collCrawlStats)
	if _, err := stats.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "source_id", Value: 1}, {Key: "started_at", Value: -1}},
	}); err != nil {
		return fmt.Errorf("crawl_stats indexes: %w", err)
	}

	projects := d.db.Collection(collProjects)
	if _, err := projects.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "domain", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("projects indexes: %w", err)
	}

	return nil
}

// isDuplicateKey reports whether err is a Mongo duplicate-key violation
// (code 11000), the driver's equivalent of original_source's DuplicateKeyError.
func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
