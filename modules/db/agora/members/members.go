package members

import (
	"context"
	"fmt"

	"agora-node/modules/db"
	"agora-node/modules/db/agora"

	"github.com/moznion/go-optional"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type members struct {
	*db.Collection
}

func New(d *agora.AgoraDb) Members {
	return &members{db.NewCollection(d.DbInstance, "members")}
}

func (m *members) Init() error {
	err := m.Collection.Init()
	if err != nil {
		return err
	}

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err = m.Collection.Indexes().CreateOne(context.Background(), indexModel)
	if err != nil {
		return fmt.Errorf("failed to create member id index: %w", err)
	}
	return nil
}

func (m *members) UpsertMember(ctx context.Context, member Member) error {
	findOptions := options.FindOneAndUpdate().SetUpsert(true)
	query := bson.M{
		"id": member.Id,
	}
	update := bson.M{
		"$set": bson.M{
			"username":     member.Username,
			"weight_score": member.WeightScore,
		},
		"$setOnInsert": bson.M{
			"proposals_passed": member.ProposalsPassed,
			"joined_at":        member.JoinedAt,
		},
	}
	res := m.FindOneAndUpdate(ctx, query, update, findOptions)
	if res.Err() != nil && res.Err() != mongo.ErrNoDocuments {
		return res.Err()
	}
	return nil
}

func (m *members) GetMember(ctx context.Context, id string) (optional.Option[Member], error) {
	result := m.FindOne(ctx, bson.M{"id": id})

	member := Member{}
	err := result.Decode(&member)
	if err == mongo.ErrNoDocuments {
		return optional.None[Member](), nil
	}
	if err != nil {
		return optional.None[Member](), err
	}
	return optional.Some(member), nil
}

func (m *members) ListMembers(ctx context.Context) ([]Member, error) {
	cursor, err := m.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := make([]Member, 0)
	for cursor.Next(ctx) {
		member := Member{}
		if err := cursor.Decode(&member); err != nil {
			return nil, fmt.Errorf("failed to decode member: %w", err)
		}
		results = append(results, member)
	}
	return results, cursor.Err()
}

func (m *members) RecordProposalPassed(ctx context.Context, id string, bonus int64, maxScore int64) error {
	// Pipeline update so the clamp and the counter bump land atomically.
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"weight_score": bson.M{
				"$min": bson.A{maxScore, bson.M{"$add": bson.A{"$weight_score", bonus}}},
			},
			"proposals_passed": bson.M{"$add": bson.A{"$proposals_passed", 1}},
		}}},
	}
	res, err := m.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("member %s not found", id)
	}
	return nil
}
