package mongoadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/samirrijal/geomatch/internal/core/domain"
	"github.com/samirrijal/geomatch/internal/pkg/logging"
)

// DefaultCollections maps each kind to the collection the upstream application writes.
var DefaultCollections = map[domain.Kind]string{
	domain.KindWorker:    "labors",
	domain.KindArchitect: "architects",
	domain.KindMerchant:  "merchants",
}

// Source reads candidate records straight from the upstream MongoDB database.
type Source struct {
	client      *mongo.Client
	db          *mongo.Database
	collections map[domain.Kind]string
}

// Connect dials MongoDB and pings the primary. A nil collections map uses DefaultCollections.
func Connect(ctx context.Context, uri, database string, collections map[domain.Kind]string) (*Source, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	if collections == nil {
		collections = DefaultCollections
	}
	return &Source{client: client, db: client.Database(database), collections: collections}, nil
}

func (s *Source) collection(kind domain.Kind) (*mongo.Collection, error) {
	name, ok := s.collections[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	return s.db.Collection(name), nil
}

// FetchRecords implements ports.CandidateSource in natural collection order.
func (s *Source) FetchRecords(ctx context.Context, kind domain.Kind) ([]domain.CandidateRecord, error) {
	coll, err := s.collection(kind)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: find %s: %w", domain.ErrUpstreamUnavailable, kind, err)
	}
	defer cursor.Close(ctx)

	records := make([]domain.CandidateRecord, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", kind, err)
		}
		rec, err := RecordFromDocument(doc)
		if err != nil {
			logging.FromContext(ctx).Warn("unreadable candidate document, skipping", "kind", kind, "error", err)
			continue
		}
		records = append(records, rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s: %w", domain.ErrUpstreamUnavailable, kind, err)
	}
	return records, nil
}

// Stats counts documents per kind. Mongo sources are not seeded, so LastSeed stays empty.
func (s *Source) Stats(ctx context.Context) ([]domain.SourceStats, error) {
	stats := make([]domain.SourceStats, 0, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		coll, err := s.collection(kind)
		if err != nil {
			continue
		}
		total, err := coll.CountDocuments(ctx, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", kind, err)
		}
		available, err := coll.CountDocuments(ctx, availableFilter(kind))
		if err != nil {
			return nil, fmt.Errorf("count available %s: %w", kind, err)
		}
		stats = append(stats, domain.SourceStats{Kind: kind, Total: int(total), Available: int(available)})
	}
	return stats, nil
}

// Spellings domain.Flag reads as true or false. Numbers compare across BSON types.
var (
	truthyFlags = bson.A{true, "1", "t", "T", "true", "TRUE", "True"}
	falsyFlags  = bson.A{false, 0, "0", "f", "F", "false", "FALSE", "False"}
)

// availableFilter matches the documents normalization keeps as available.
func availableFilter(kind domain.Kind) bson.M {
	if kind == domain.KindMerchant {
		return bson.M{"avalablity_status": bson.M{"$nin": falsyFlags}}
	}
	return bson.M{"$or": bson.A{
		bson.M{"avalablity_status": bson.M{"$in": truthyFlags}},
		bson.M{"avalablity_status": bson.M{"$type": "number", "$ne": 0}},
	}}
}

// Ping checks connectivity for readiness probes.
func (s *Source) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Source) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// RecordFromDocument converts a raw document to a CandidateRecord through relaxed
// extended JSON, so the record's lenient scalar decoding applies unchanged.
func RecordFromDocument(doc bson.M) (domain.CandidateRecord, error) {
	if oid, ok := doc["_id"].(primitive.ObjectID); ok {
		doc["_id"] = oid.Hex()
	}
	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return domain.CandidateRecord{}, fmt.Errorf("ext json: %w", err)
	}
	var rec domain.CandidateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.CandidateRecord{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
