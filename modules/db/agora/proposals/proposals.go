package proposals

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

type proposals struct {
	*db.Collection
}

func New(d *agora.AgoraDb) Proposals {
	return &proposals{db.NewCollection(d.DbInstance, "proposals")}
}

func (p *proposals) Init() error {
	err := p.Collection.Init()
	if err != nil {
		return err
	}

	for _, indexModel := range []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	} {
		_, err = p.Collection.Indexes().CreateOne(context.Background(), indexModel)
		if err != nil {
			return fmt.Errorf("failed to create proposal index: %w", err)
		}
	}
	return nil
}

func (p *proposals) CreateProposal(ctx context.Context, proposal Proposal) error {
	_, err := p.InsertOne(ctx, proposal)
	return err
}

func (p *proposals) GetProposal(ctx context.Context, id string) (optional.Option[Proposal], error) {
	result := p.FindOne(ctx, bson.M{"id": id})

	proposal := Proposal{}
	err := result.Decode(&proposal)
	if err == mongo.ErrNoDocuments {
		return optional.None[Proposal](), nil
	}
	if err != nil {
		return optional.None[Proposal](), err
	}
	return optional.Some(proposal), nil
}

func (p *proposals) ListByStatus(ctx context.Context, status Status) ([]Proposal, error) {
	cursor, err := p.Find(ctx, bson.M{"status": status})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := make([]Proposal, 0)
	for cursor.Next(ctx) {
		proposal := Proposal{}
		if err := cursor.Decode(&proposal); err != nil {
			return nil, fmt.Errorf("failed to decode proposal: %w", err)
		}
		results = append(results, proposal)
	}
	return results, cursor.Err()
}

func (p *proposals) OpenVoting(ctx context.Context, id string, now time.Time) (bool, error) {
	res, err := p.UpdateOne(ctx, bson.M{
		"id":     id,
		"status": StatusDiscussion,
	}, bson.M{
		"$set": bson.M{
			"status":            StatusVoting,
			"voting_started_at": now,
		},
	})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (p *proposals) SetConvictionScore(ctx context.Context, id string, score float64) (bool, error) {
	// The status filter is the guard: once a proposal leaves voting the
	// sweep's aggregate write silently misses.
	res, err := p.UpdateOne(ctx, bson.M{
		"id":     id,
		"status": StatusVoting,
	}, bson.M{
		"$set": bson.M{
			"conviction_score": score,
		},
	})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (p *proposals) Approve(ctx context.Context, id string, now time.Time) (bool, error) {
	res, err := p.UpdateOne(ctx, bson.M{
		"id":     id,
		"status": StatusVoting,
	}, bson.M{
		"$set": bson.M{
			"status":      StatusApproved,
			"approved_at": now,
		},
	})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (p *proposals) IncVoterCount(ctx context.Context, id string, delta int64) error {
	filter := bson.M{"id": id}
	if delta < 0 {
		// Floor at zero: only decrement rows that still have voters.
		filter["voter_count"] = bson.M{"$gte": -delta}
	}
	_, err := p.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"voter_count": delta},
	})
	return err
}
