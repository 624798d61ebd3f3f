package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/models"
)

// FriendRequestRepository persists the directed request edges.
type FriendRequestRepository interface {
	Create(ctx context.Context, fr *models.FriendRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error)
	// FindBetween returns the request between the pair in either direction.
	FindBetween(ctx context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	ListByRecipient(ctx context.Context, recipient primitive.ObjectID, status string) ([]models.FriendRequest, error)
	ListBySender(ctx context.Context, sender primitive.ObjectID, status string) ([]models.FriendRequest, error)
}

type mongoFriendRepo struct {
	col *mongo.Collection
}

func NewFriendRequestRepository(m *Mongo) FriendRequestRepository {
	return &mongoFriendRepo{col: m.FriendRequests}
}

func (r *mongoFriendRepo) Create(ctx context.Context, fr *models.FriendRequest) error {
	now := time.Now().UTC()
	fr.CreatedAt = now
	fr.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, fr)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		fr.ID = id
	}
	return nil
}

func (r *mongoFriendRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	var fr models.FriendRequest
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&fr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fr, nil
}

func (r *mongoFriendRepo) FindBetween(ctx context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error) {
	var fr models.FriendRequest
	err := r.col.FindOne(ctx, bson.M{
		"$or": []bson.M{
			{"sender": a, "recipient": b},
			{"sender": b, "recipient": a},
		},
	}).Decode(&fr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fr, nil
}

func (r *mongoFriendRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoFriendRepo) list(ctx context.Context, filter bson.M) ([]models.FriendRequest, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []models.FriendRequest
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoFriendRepo) ListByRecipient(ctx context.Context, recipient primitive.ObjectID, status string) ([]models.FriendRequest, error) {
	return r.list(ctx, bson.M{"recipient": recipient, "status": status})
}

func (r *mongoFriendRepo) ListBySender(ctx context.Context, sender primitive.ObjectID, status string) ([]models.FriendRequest, error) {
	return r.list(ctx, bson.M{"sender": sender, "status": status})
}
