package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cortexbuild/platform/internal/core/domain"
)

const auditCollection = "audit_events"

// AuditRepository implements ports.AuditRepository using MongoDB. Events feed
// the activity trail behind the reporting views.
type AuditRepository struct {
	db *mongo.Database
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, event domain.AuditEvent) error {
	doc := bson.M{
		"actor":       event.Actor,
		"action":      string(event.Action),
		"outcome":     event.Outcome,
		"remote_addr": event.RemoteAddr,
		"timestamp":   event.Timestamp.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.Detail != "" {
		doc["detail"] = event.Detail
	}

	_, err := r.db.Collection(auditCollection).InsertOne(ctx, doc)
	return err
}
