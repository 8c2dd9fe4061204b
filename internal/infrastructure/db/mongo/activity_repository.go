package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/brightops/admin-gateway/internal/core/domain"
)

const activityCollection = "activity_feed"

// ActivityRepository persists the recent-activity feed in MongoDB.
type ActivityRepository struct {
	coll *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{coll: db.Collection(activityCollection)}
}

type mongoActivity struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Actor      string             `bson:"actor"`
	Role       string             `bson:"role"`
	Action     string             `bson:"action"`
	Resource   string             `bson:"resource"`
	ResourceID string             `bson:"resource_id,omitempty"`
	Timestamp  int64              `bson:"timestamp"`
}

func (r *ActivityRepository) Insert(ctx context.Context, entry *domain.ActivityEntry) error {
	doc := mongoActivity{
		Actor:      entry.Actor,
		Role:       entry.Role,
		Action:     entry.Action,
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		Timestamp:  entry.Timestamp.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoActivity
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}

	entries := make([]domain.ActivityEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, domain.ActivityEntry{
			ID:         d.ID.Hex(),
			Actor:      d.Actor,
			Role:       d.Role,
			Action:     d.Action,
			Resource:   d.Resource,
			ResourceID: d.ResourceID,
			Timestamp:  unixToTime(d.Timestamp),
		})
	}
	return entries, nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
