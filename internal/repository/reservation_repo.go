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

type ReservationFilter struct {
	Status models.ReservationStatus
	UserID string
	BookID string
}

type ReservationRepository interface {
	Create(ctx context.Context, res *models.Reservation) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	FindActive(ctx context.Context, userID, bookID string) (*models.Reservation, error)
	CountPending(ctx context.Context, bookID string) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Reservation, error)
	List(ctx context.Context, f ReservationFilter) ([]*models.Reservation, error)
	// CancelAndRenumber flips the reservation to cancelled and closes the gap
	// in the waitlist, both inside one transaction. Returns the cancelled
	// reservation, or ErrNotFound if it does not belong to userID or is not
	// cancellable.
	CancelAndRenumber(ctx context.Context, id, userID string) (*models.Reservation, error)
	UpdateStatus(ctx context.Context, id string, status models.ReservationStatus, approval, due, ret *time.Time) (*models.Reservation, error)
}

type mongoReservationRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewReservationRepository(client *mongo.Client, coll *mongo.Collection) ReservationRepository {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "book_id", Value: 1}, {Key: "status", Value: 1}},
		Options: options.Index().SetName("user_book_status_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &mongoReservationRepo{client: client, coll: coll}
}

func (r *mongoReservationRepo) Create(ctx context.Context, res *models.Reservation) error {
	if res.ID == "" {
		res.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.coll.InsertOne(ctx, res)
	return err
}

func (r *mongoReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&res); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *mongoReservationRepo) FindActive(ctx context.Context, userID, bookID string) (*models.Reservation, error) {
	filter := bson.M{
		"user_id": userID,
		"book_id": bookID,
		"status":  bson.M{"$in": bson.A{models.ReservationPending, models.ReservationApproved}},
	}
	var res models.Reservation
	if err := r.coll.FindOne(ctx, filter).Decode(&res); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *mongoReservationRepo) CountPending(ctx context.Context, bookID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"book_id": bookID, "status": models.ReservationPending})
}

func (r *mongoReservationRepo) ListByUser(ctx context.Context, userID string) ([]*models.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "request_date", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Reservation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoReservationRepo) List(ctx context.Context, f ReservationFilter) ([]*models.Reservation, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.BookID != "" {
		filter["book_id"] = f.BookID
	}
	opts := options.Find().SetSort(bson.D{{Key: "request_date", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Reservation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoReservationRepo) CancelAndRenumber(ctx context.Context, id, userID string) (*models.Reservation, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// status filter doubles as the concurrency guard: of two racing
		// cancels only one matches, so the decrement below runs once
		filter := bson.M{
			"_id":     id,
			"user_id": userID,
			"status":  bson.M{"$in": bson.A{models.ReservationPending, models.ReservationApproved}},
		}
		update := bson.M{"$set": bson.M{"status": models.ReservationCancelled}}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var cancelled models.Reservation
		if err := r.coll.FindOneAndUpdate(sc, filter, update, opts).Decode(&cancelled); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrNotFound
			}
			return nil, err
		}

		if cancelled.WaitlistPosition > 0 {
			_, err := r.coll.UpdateMany(sc,
				bson.M{
					"book_id":           cancelled.BookID,
					"status":            bson.M{"$in": bson.A{models.ReservationPending, models.ReservationApproved}},
					"waitlist_position": bson.M{"$gt": cancelled.WaitlistPosition},
				},
				bson.M{"$inc": bson.M{"waitlist_position": -1}})
			if err != nil {
				return nil, err
			}
		}
		return &cancelled, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Reservation), nil
}

func (r *mongoReservationRepo) UpdateStatus(ctx context.Context, id string, status models.ReservationStatus, approval, due, ret *time.Time) (*models.Reservation, error) {
	set := bson.M{"status": status}
	if approval != nil {
		set["approval_date"] = *approval
	}
	if due != nil {
		set["due_date"] = *due
	}
	if ret != nil {
		set["return_date"] = *ret
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var res models.Reservation
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&res); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}
