package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campushub/campus-api/internal/models"
)

const reactionRetries = 5

type MessageRepository interface {
	Insert(ctx context.Context, m *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	// ListPage returns newest-first. A non-nil cutoff limits results to
	// messages created at or before it (the visibility filter for a viewer
	// who left).
	ListPage(ctx context.Context, convID string, cutoff *time.Time, page, limit int64) ([]*models.Message, error)
	Edit(ctx context.Context, id, content string, at time.Time) (*models.Message, error)
	Delete(ctx context.Context, id string) error
	ReplaceReaction(ctx context.Context, msgID, userID string, kind models.ReactionKind, at time.Time) (*models.Message, error)
	RemoveReaction(ctx context.Context, msgID, userID string) (*models.Message, error)
	MarkRead(ctx context.Context, msgID, userID string, at time.Time) (*models.Message, error)
}

type mongoMessageRepo struct {
	coll *mongo.Collection
}

func NewMessageRepository(coll *mongo.Collection) MessageRepository {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("conv_created_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &mongoMessageRepo{coll: coll}
}

func (r *mongoMessageRepo) Insert(ctx context.Context, m *models.Message) error {
	_, err := r.coll.InsertOne(ctx, m)
	return err
}

func (r *mongoMessageRepo) GetByID(ctx context.Context, id string) (*models.Message, error) {
	var m models.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *mongoMessageRepo) ListPage(ctx context.Context, convID string, cutoff *time.Time, page, limit int64) ([]*models.Message, error) {
	filter := bson.M{"conversation_id": convID}
	if cutoff != nil {
		filter["created_at"] = bson.M{"$lte": *cutoff}
	}
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoMessageRepo) Edit(ctx context.Context, id, content string, at time.Time) (*models.Message, error) {
	update := bson.M{"$set": bson.M{
		"content":   content,
		"is_edited": true,
		"edited_at": at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m models.Message
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *mongoMessageRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceReaction swaps the user's reaction for a new one. Drop-then-add is
// two writes on one array, so the whole thing runs as a compare-and-swap on
// the message version and retries on interference.
func (r *mongoMessageRepo) ReplaceReaction(ctx context.Context, msgID, userID string, kind models.ReactionKind, at time.Time) (*models.Message, error) {
	for attempt := 0; attempt < reactionRetries; attempt++ {
		m, err := r.GetByID(ctx, msgID)
		if err != nil {
			return nil, err
		}

		next := make([]models.Reaction, 0, len(m.Reactions)+1)
		for _, re := range m.Reactions {
			if re.UserID != userID {
				next = append(next, re)
			}
		}
		next = append(next, models.Reaction{UserID: userID, Kind: kind, CreatedAt: at})

		filter := bson.M{"_id": msgID, "version": m.Version}
		update := bson.M{
			"$set": bson.M{"reactions": next},
			"$inc": bson.M{"version": 1},
		}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var updated models.Message
		err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
		if err == nil {
			return &updated, nil
		}
		if err != mongo.ErrNoDocuments {
			return nil, err
		}
		// version moved under us; reread and try again
	}
	return nil, ErrConflict
}

func (r *mongoMessageRepo) RemoveReaction(ctx context.Context, msgID, userID string) (*models.Message, error) {
	update := bson.M{
		"$pull": bson.M{"reactions": bson.M{"user_id": userID}},
		"$inc":  bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m models.Message
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": msgID}, update, opts).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// MarkRead appends a receipt unless one exists. The $ne guard makes the
// insert idempotent in a single update.
func (r *mongoMessageRepo) MarkRead(ctx context.Context, msgID, userID string, at time.Time) (*models.Message, error) {
	filter := bson.M{"_id": msgID, "read_by.user_id": bson.M{"$ne": userID}}
	update := bson.M{"$push": bson.M{"read_by": models.ReadReceipt{UserID: userID, ReadAt: at}}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	// no-match means the receipt was already there; return current state
	return r.GetByID(ctx, msgID)
}
