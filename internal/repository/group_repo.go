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

// GroupRepository persists groups with their embedded membership lists.
// Mutations load the document, apply the transition on the Group value and
// Save it back; the single-document write is the isolation boundary.
type GroupRepository interface {
	Insert(ctx context.Context, g *models.Group) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	Save(ctx context.Context, g *models.Group) error
	ListByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error)
	ListPublic(ctx context.Context, excludeMember primitive.ObjectID, search string, tags []string, page, limit int64) ([]models.Group, int64, error)
}

type mongoGroupRepo struct {
	col *mongo.Collection
}

func NewGroupRepository(m *Mongo) GroupRepository {
	return &mongoGroupRepo{col: m.Groups}
}

func (r *mongoGroupRepo) Insert(ctx context.Context, g *models.Group) error {
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	if g.Tags == nil {
		g.Tags = []string{}
	}
	res, err := r.col.InsertOne(ctx, g)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		g.ID = id
	}
	return nil
}

func (r *mongoGroupRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var g models.Group
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *mongoGroupRepo) Save(ctx context.Context, g *models.Group) error {
	g.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": g.ID}, g)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoGroupRepo) ListByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "lastMessage.sentAt", Value: -1},
		{Key: "updatedAt", Value: -1},
	})
	cursor, err := r.col.Find(ctx, bson.M{
		"isActive": true,
		"members": bson.M{"$elemMatch": bson.M{
			"user":     userID,
			"isActive": true,
		}},
	}, opts)
	if err != nil {
		return nil, err
	}
	var groups []models.Group
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *mongoGroupRepo) ListPublic(ctx context.Context, excludeMember primitive.ObjectID, search string, tags []string, page, limit int64) ([]models.Group, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	filter := bson.M{
		"isActive":           true,
		"settings.isPrivate": false,
		"members.user":       bson.M{"$ne": excludeMember},
	}
	if search != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": search, "$options": "i"}},
			{"description": bson.M{"$regex": search, "$options": "i"}},
		}
	}
	if len(tags) > 0 {
		filter["tags"] = bson.M{"$in": tags}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var groups []models.Group
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}
