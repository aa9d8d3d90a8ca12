package activity

import (
	"context"
	"fmt"

	"agora-node/modules/db"
	"agora-node/modules/db/agora"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type activity struct {
	*db.Collection
}

func New(d *agora.AgoraDb) Activity {
	return &activity{db.NewCollection(d.DbInstance, "activity")}
}

func (a *activity) Insert(ctx context.Context, event Event) error {
	_, err := a.InsertOne(ctx, event)
	return err
}

func (a *activity) Latest(ctx context.Context, limit int64) ([]Event, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{
		Key:   "ts",
		Value: -1,
	}})
	cursor, err := a.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := make([]Event, 0)
	for cursor.Next(ctx) {
		event := Event{}
		if err := cursor.Decode(&event); err != nil {
			return nil, fmt.Errorf("failed to decode activity event: %w", err)
		}
		results = append(results, event)
	}
	return results, cursor.Err()
}
