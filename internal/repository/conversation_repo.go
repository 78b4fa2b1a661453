package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campushub/campus-api/internal/models"
)

type ConversationRepository interface {
	Create(ctx context.Context, c *models.Conversation) (*models.Conversation, error)
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	FindDirectByKey(ctx context.Context, key string) (*models.Conversation, error)
	ListActiveForUser(ctx context.Context, userID string) ([]*models.Conversation, error)
	AppendParticipants(ctx context.Context, convID string, parts []models.Participant) error
	CloseParticipation(ctx context.Context, convID, userID string, at time.Time) error
	SetMuted(ctx context.Context, convID, userID string, muted bool) error
}

type mongoConversationRepo struct {
	coll *mongo.Collection
}

func NewConversationRepository(coll *mongo.Collection) ConversationRepository {
	// unique key for direct pairs; partial so group docs (no direct_key)
	// don't collide on the missing field
	idx := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "direct_key", Value: 1}},
			Options: options.Index().SetName("direct_key_uniq").SetUnique(true).
				SetPartialFilterExpression(bson.M{"direct_key": bson.M{"$exists": true}}),
		},
		{
			Keys:    bson.D{{Key: "participants.user_id", Value: 1}},
			Options: options.Index().SetName("participants_user_idx"),
		},
	}
	_, _ = coll.Indexes().CreateMany(context.Background(), idx)
	return &mongoConversationRepo{coll: coll}
}

func (r *mongoConversationRepo) Create(ctx context.Context, c *models.Conversation) (*models.Conversation, error) {
	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return c, nil
}

func (r *mongoConversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	var c models.Conversation
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *mongoConversationRepo) FindDirectByKey(ctx context.Context, key string) (*models.Conversation, error) {
	var c models.Conversation
	if err := r.coll.FindOne(ctx, bson.M{"direct_key": key}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *mongoConversationRepo) ListActiveForUser(ctx context.Context, userID string) ([]*models.Conversation, error) {
	filter := bson.M{"participants": bson.M{"$elemMatch": bson.M{"user_id": userID, "left_at": nil}}}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Conversation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoConversationRepo) AppendParticipants(ctx context.Context, convID string, parts []models.Participant) error {
	update := bson.M{
		"$push": bson.M{"participants": bson.M{"$each": parts}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.coll.UpdateByID(ctx, convID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CloseParticipation stamps left_at on the user's open membership row. The
// $elemMatch filter targets the active row, so a user who already left is a
// no-match.
func (r *mongoConversationRepo) CloseParticipation(ctx context.Context, convID, userID string, at time.Time) error {
	filter := bson.M{
		"_id":          convID,
		"participants": bson.M{"$elemMatch": bson.M{"user_id": userID, "left_at": nil}},
	}
	update := bson.M{"$set": bson.M{
		"participants.$.left_at": at,
		"updated_at":             time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoConversationRepo) SetMuted(ctx context.Context, convID, userID string, muted bool) error {
	filter := bson.M{
		"_id":          convID,
		"participants": bson.M{"$elemMatch": bson.M{"user_id": userID, "left_at": nil}},
	}
	update := bson.M{"$set": bson.M{
		"participants.$.is_muted": muted,
		"updated_at":              time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
