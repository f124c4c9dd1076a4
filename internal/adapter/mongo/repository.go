// Package mongo stores METAR and TAF reports in MongoDB.
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/met-update-db/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	metarCollection = "metar"
	tafCollection   = "taf"
)

// Repository implements domain.ReportRepository on two MongoDB collections.
type Repository struct {
	client  *mongodriver.Client
	metars  *mongodriver.Collection
	tafs    *mongodriver.Collection
	timeout time.Duration
}

// Connect dials MongoDB, verifies the connection, and ensures indexes exist.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Repository, error) {
	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri).SetTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	repo := New(client, database, timeout)
	if err := repo.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return repo, nil
}

// New wraps an existing client. Each operation is bounded by timeout.
func New(client *mongodriver.Client, database string, timeout time.Duration) *Repository {
	db := client.Database(database)
	return &Repository{
		client:  client,
		metars:  db.Collection(metarCollection),
		tafs:    db.Collection(tafCollection),
		timeout: timeout,
	}
}

// EnsureIndexes creates the single-field indexes used by the selectors.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.metars.Indexes().CreateMany(ctx, ascendingIndexes("airport_icao", "time", "created_at")); err != nil {
		return fmt.Errorf("create metar indexes: %w", err)
	}
	if _, err := r.tafs.Indexes().CreateMany(ctx, ascendingIndexes("airport_icao", "start_time", "end_time", "created_at")); err != nil {
		return fmt.Errorf("create taf indexes: %w", err)
	}
	return nil
}

// Ping checks that the primary is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

// CheckReadiness reports the store as ready when MongoDB answers a ping.
func (r *Repository) CheckReadiness(ctx context.Context) error {
	return r.Ping(ctx)
}

// Close disconnects the underlying client.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *Repository) InsertMetar(ctx context.Context, report domain.MetarReport) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.metars.InsertOne(ctx, toMetarDocument(report)); err != nil {
		return insertError("metar", err)
	}
	return nil
}

func (r *Repository) InsertTaf(ctx context.Context, report domain.TafReport) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.tafs.InsertOne(ctx, toTafDocument(report)); err != nil {
		return insertError("taf", err)
	}
	return nil
}

func (r *Repository) FindMetars(ctx context.Context, filter domain.MetarFilter) ([]domain.MetarReport, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := r.metars.Find(ctx, metarQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find metars: %w", err)
	}
	var docs []metarDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode metars: %w", err)
	}

	reports := make([]domain.MetarReport, len(docs))
	for i := range docs {
		reports[i] = docs[i].toDomain()
	}
	return reports, nil
}

func (r *Repository) FindTafs(ctx context.Context, filter domain.TafFilter) ([]domain.TafReport, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sortKey := "created_at"
	if filter.OrderByEndTime {
		sortKey = "end_time"
	}
	opts := options.Find().SetSort(bson.D{{Key: sortKey, Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := r.tafs.Find(ctx, tafQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find tafs: %w", err)
	}
	var docs []tafDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tafs: %w", err)
	}

	reports := make([]domain.TafReport, len(docs))
	for i := range docs {
		reports[i] = docs[i].toDomain()
	}
	return reports, nil
}

func insertError(kind string, err error) error {
	if mongodriver.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert %s: %w", kind, domain.ErrDuplicateReport)
	}
	return fmt.Errorf("insert %s: %w", kind, err)
}

func ascendingIndexes(keys ...string) []mongodriver.IndexModel {
	models := make([]mongodriver.IndexModel, len(keys))
	for i, key := range keys {
		models[i] = mongodriver.IndexModel{Keys: bson.D{{Key: key, Value: 1}}}
	}
	return models
}
