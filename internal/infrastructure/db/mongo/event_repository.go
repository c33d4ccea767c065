package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/newmedia/membership-api/internal/core/domain"
	"github.com/newmedia/membership-api/internal/core/ports"
)

const collectionAuthEvents = "auth_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	coll *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{coll: db.Collection(collectionAuthEvents)}
}

var _ ports.EventRepository = (*EventRepository)(nil)

// InsertEvent appends an event to the auth_events audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"type":       string(event.Type),
		"subject":    event.Subject,
		"occurredAt": event.OccurredAt.UTC(),
		"recordedAt": time.Now().UTC(),
	}
	if event.ID != "" {
		doc["_id"] = event.ID
	}
	if event.UserID != "" {
		doc["userId"] = event.UserID
	}
	if event.Mode != "" {
		doc["mode"] = string(event.Mode)
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return storeErr("insert auth event", err)
	}
	return nil
}

func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "occurredAt", Value: -1}}},
		{Keys: bson.D{{Key: "subject", Value: 1}, {Key: "occurredAt", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}, Options: options.Index().SetName("type")},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return storeErr("create auth event indexes", err)
	}
	return nil
}
