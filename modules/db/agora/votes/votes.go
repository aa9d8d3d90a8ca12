package votes

import (
	"context"
	"fmt"
	"time"

	"agora-node/modules/db"
	"agora-node/modules/db/agora"

	"github.com/moznion/go-optional"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type votes struct {
	*db.Collection
}

func New(d *agora.AgoraDb) Votes {
	return &votes{db.NewCollection(d.DbInstance, "votes")}
}

func (v *votes) Init() error {
	err := v.Collection.Init()
	if err != nil {
		return err
	}

	for _, indexModel := range []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// At most one active record per (member, proposal). The partial
			// filter keeps withdrawn history out of the uniqueness check, so
			// re-casting after a withdraw is allowed.
			Keys: bson.D{{Key: "member_id", Value: 1}, {Key: "proposal_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{
			Keys: bson.D{{Key: "active", Value: 1}},
		},
	} {
		_, err = v.Collection.Indexes().CreateOne(context.Background(), indexModel)
		if err != nil {
			return fmt.Errorf("failed to create vote index: %w", err)
		}
	}
	return nil
}

func (v *votes) Insert(ctx context.Context, record VoteRecord) error {
	_, err := v.InsertOne(ctx, record)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateActiveVote
	}
	return err
}

func (v *votes) FindActive(ctx context.Context, memberId string, proposalId string) (optional.Option[VoteRecord], error) {
	return v.findOne(ctx, bson.M{
		"member_id":   memberId,
		"proposal_id": proposalId,
		"active":      true,
	})
}

func (v *votes) FindById(ctx context.Context, id string) (optional.Option[VoteRecord], error) {
	return v.findOne(ctx, bson.M{"id": id})
}

func (v *votes) findOne(ctx context.Context, filter bson.M) (optional.Option[VoteRecord], error) {
	result := v.FindOne(ctx, filter)

	record := VoteRecord{}
	err := result.Decode(&record)
	if err == mongo.ErrNoDocuments {
		return optional.None[VoteRecord](), nil
	}
	if err != nil {
		return optional.None[VoteRecord](), err
	}
	return optional.Some(record), nil
}

func (v *votes) ListActive(ctx context.Context) ([]VoteRecord, error) {
	cursor, err := v.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := make([]VoteRecord, 0)
	for cursor.Next(ctx) {
		record := VoteRecord{}
		if err := cursor.Decode(&record); err != nil {
			return nil, fmt.Errorf("failed to decode vote record: %w", err)
		}
		results = append(results, record)
	}
	return results, cursor.Err()
}

func (v *votes) UpdateConviction(ctx context.Context, id string, prevUpdate time.Time, conviction float64, now time.Time) (bool, error) {
	res, err := v.UpdateOne(ctx, bson.M{
		"id":                     id,
		"active":                 true,
		"last_conviction_update": prevUpdate,
	}, bson.M{
		"$set": bson.M{
			"conviction":             conviction,
			"last_conviction_update": now,
		},
	})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (v *votes) Deactivate(ctx context.Context, id string, prevUpdate time.Time, conviction float64, now time.Time) (bool, error) {
	res, err := v.UpdateOne(ctx, bson.M{
		"id":                     id,
		"active":                 true,
		"last_conviction_update": prevUpdate,
	}, bson.M{
		"$set": bson.M{
			"active":                 false,
			"conviction":             conviction,
			"last_conviction_update": now,
			"withdrawn_at":           now,
		},
	})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
