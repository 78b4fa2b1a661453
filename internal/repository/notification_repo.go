package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campushub/campus-api/internal/models"
)

type NotificationRepository interface {
	InsertMany(ctx context.Context, ns []*models.Notification) error
	ListByUser(ctx context.Context, userID string, page, limit int64) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	ListUnpushed(ctx context.Context, limit int64) ([]*models.Notification, error)
	MarkPushSent(ctx context.Context, ids []string) error
}

type mongoNotificationRepo struct {
	coll *mongo.Collection
}

func NewNotificationRepository(coll *mongo.Collection) NotificationRepository {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("user_created_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &mongoNotificationRepo{coll: coll}
}

func (r *mongoNotificationRepo) InsertMany(ctx context.Context, ns []*models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(ns))
	for _, n := range ns {
		if n.ID == "" {
			n.ID = primitive.NewObjectID().Hex()
		}
		docs = append(docs, n)
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}

func (r *mongoNotificationRepo) ListByUser(ctx context.Context, userID string, page, limit int64) ([]*models.Notification, error) {
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"user_id": userID, "is_read": false})
}

func (r *mongoNotificationRepo) MarkRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	filter := bson.M{"_id": id, "user_id": userID}
	update := bson.M{"$set": bson.M{"is_read": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n models.Notification
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&n); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *mongoNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	return err
}

func (r *mongoNotificationRepo) ListUnpushed(ctx context.Context, limit int64) ([]*models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(limit)
	cur, err := r.coll.Find(ctx, bson.M{"is_push_sent": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoNotificationRepo) MarkPushSent(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"is_push_sent": true}})
	return err
}
