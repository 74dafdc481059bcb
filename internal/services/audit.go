package services

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/AnshRaj112/pulse-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ScannerEventsCollection = "scanner_events"
	defaultScanListLimit    = 50
	maxScanListLimit        = 200
)

// ScanAuditor keeps a history of scanner-pattern flaggings.
type ScanAuditor interface {
	RecordScan(ctx context.Context, event models.ScannerEvent) error
	ListScans(ctx context.Context, surveyID string, limit int64) ([]models.ScannerEvent, error)
}

// MongoScanAuditor stores events in the scanner_events collection.
type MongoScanAuditor struct {
	col *mongo.Collection
}

func NewMongoScanAuditor(db *mongo.Database) *MongoScanAuditor {
	return &MongoScanAuditor{col: db.Collection(ScannerEventsCollection)}
}

// EnsureIndexes configures indexes for the scanner_events collection.
// Called on startup from main after Mongo has connected.
func (a *MongoScanAuditor) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "survey_ids", Value: 1},
				{Key: "detected_at", Value: -1},
			},
			Options: options.Index().SetName("idx_survey_detected"),
		},
		{
			Keys:    bson.D{{Key: "ip_address", Value: 1}},
			Options: options.Index().SetName("idx_ip"),
		},
	}
	_, err := a.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (a *MongoScanAuditor) RecordScan(ctx context.Context, event models.ScannerEvent) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.DetectedAt.IsZero() {
		event.DetectedAt = time.Now().UTC()
	}
	_, err := a.col.InsertOne(ctx, event)
	return err
}

// ListScans returns events that touched surveyID, newest first.
func (a *MongoScanAuditor) ListScans(ctx context.Context, surveyID string, limit int64) ([]models.ScannerEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "detected_at", Value: -1}}).
		SetLimit(clampScanLimit(limit))

	cur, err := a.col.Find(ctx, bson.M{"survey_ids": surveyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := make([]models.ScannerEvent, 0)
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// MemoryScanAuditor keeps events in process. Used when Mongo is not configured.
type MemoryScanAuditor struct {
	mu     sync.Mutex
	events []models.ScannerEvent
}

func (m *MemoryScanAuditor) RecordScan(ctx context.Context, event models.ScannerEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MemoryScanAuditor) ListScans(ctx context.Context, surveyID string, limit int64) ([]models.ScannerEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit = clampScanLimit(limit)
	out := make([]models.ScannerEvent, 0)
	for i := len(m.events) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if slices.Contains(m.events[i].SurveyIDs, surveyID) {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

func clampScanLimit(limit int64) int64 {
	if limit <= 0 {
		return defaultScanListLimit
	}
	return min(limit, maxScanListLimit)
}
