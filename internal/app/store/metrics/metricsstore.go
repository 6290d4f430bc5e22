package metricsstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of record totals exposed as gauges.
type Counts struct {
	ListingsOpen  int64
	ListingsTaken int64
	Profiles      int64
	Subscribers   int64
}

// FetchCounts returns current record totals.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchCounts(ctx context.Context, db *mongo.Database) Counts {
	var out Counts

	if n, err := db.Collection("listings").CountDocuments(ctx, bson.M{"is_taken": false}); err == nil {
		out.ListingsOpen = n
	}
	if n, err := db.Collection("listings").CountDocuments(ctx, bson.M{"is_taken": true}); err == nil {
		out.ListingsTaken = n
	}
	if n, err := db.Collection("profiles").EstimatedDocumentCount(ctx); err == nil {
		out.Profiles = n
	}
	if n, err := db.Collection("newsletter_subscribers").EstimatedDocumentCount(ctx); err == nil {
		out.Subscribers = n
	}

	return out
}

// Map flattens c for metrics.RegisterStoreGauges.
func (c Counts) Map() map[string]int64 {
	return map[string]int64{
		"listings_open":  c.ListingsOpen,
		"listings_taken": c.ListingsTaken,
		"profiles":       c.Profiles,
		"subscribers":    c.Subscribers,
	}
}
