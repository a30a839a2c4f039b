package mongo

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/flywinger/bolt-user-auth/internal/core/domain"
	"github.com/flywinger/bolt-user-auth/internal/core/ports"
)

// EventRepository persists auth audit events using MongoDB.
type EventRepository struct {
	coll *mongo.Collection
}

func NewEventRepository(db *mongo.Database) ports.AuthEventRepository {
	return &EventRepository{coll: db.Collection(eventsCollection)}
}

type mongoAuthEvent struct {
	ID        string `bson:"_id"`
	Kind      string `bson:"kind"`
	Username  string `bson:"username"`
	UserID    string `bson:"user_id,omitempty"`
	Timestamp int64  `bson:"timestamp"`
}

func (r *EventRepository) Insert(ctx context.Context, event *domain.AuthEvent) error {
	doc := mongoAuthEvent{
		ID:        uuid.NewString(),
		Kind:      event.Kind,
		Username:  event.Username,
		UserID:    event.UserID,
		Timestamp: event.Timestamp.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return storageErr("insert auth event", err)
	}
	return nil
}
