package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campushub/campus-api/internal/models"
)

type BlockRepository interface {
	Create(ctx context.Context, b *models.Block) error
	Delete(ctx context.Context, blockerID, blockedID string) error
	ListByBlocker(ctx context.Context, blockerID string) ([]*models.Block, error)
	// AnyBetween reports whether a block exists in either direction between
	// userID and any of otherIDs.
	AnyBetween(ctx context.Context, userID string, otherIDs []string) (bool, error)
}

type mongoBlockRepo struct {
	coll *mongo.Collection
}

func NewBlockRepository(coll *mongo.Collection) BlockRepository {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "blocker_id", Value: 1}, {Key: "blocked_id", Value: 1}},
		Options: options.Index().SetName("blocker_blocked_uniq").SetUnique(true),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &mongoBlockRepo{coll: coll}
}

func (r *mongoBlockRepo) Create(ctx context.Context, b *models.Block) error {
	if b.ID == "" {
		b.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.coll.InsertOne(ctx, b)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *mongoBlockRepo) Delete(ctx context.Context, blockerID, blockedID string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"blocker_id": blockerID, "blocked_id": blockedID})
	return err
}

func (r *mongoBlockRepo) ListByBlocker(ctx context.Context, blockerID string) ([]*models.Block, error) {
	cur, err := r.coll.Find(ctx, bson.M{"blocker_id": blockerID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Block
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoBlockRepo) AnyBetween(ctx context.Context, userID string, otherIDs []string) (bool, error) {
	if len(otherIDs) == 0 {
		return false, nil
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"blocker_id": userID, "blocked_id": bson.M{"$in": otherIDs}},
		bson.M{"blocker_id": bson.M{"$in": otherIDs}, "blocked_id": userID},
	}}
	err := r.coll.FindOne(ctx, filter).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
