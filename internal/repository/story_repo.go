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

// StoryRepository persists ephemeral stories and their view sets.
type StoryRepository interface {
	Insert(ctx context.Context, s *models.Story) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error)
	// FindActiveByAuthors returns live stories by any of the authors, newest
	// first. Callers pass now so expiry filtering is testable.
	FindActiveByAuthors(ctx context.Context, authors []primitive.ObjectID, now time.Time) ([]models.Story, error)
	// AddView records the viewer once. Returns false without error when the
	// viewer already has an entry.
	AddView(ctx context.Context, storyID primitive.ObjectID, view models.StoryView) (bool, error)
	Deactivate(ctx context.Context, storyID primitive.ObjectID) error
	// DeactivateExpired flips isActive off for every story past expiry and
	// returns the number of documents modified.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type mongoStoryRepo struct {
	col *mongo.Collection
}

func NewStoryRepository(m *Mongo) StoryRepository {
	return &mongoStoryRepo{col: m.Stories}
}

func (r *mongoStoryRepo) Insert(ctx context.Context, s *models.Story) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Views == nil {
		s.Views = []models.StoryView{}
	}
	res, err := r.col.InsertOne(ctx, s)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		s.ID = id
	}
	return nil
}

func (r *mongoStoryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	var s models.Story
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *mongoStoryRepo) FindActiveByAuthors(ctx context.Context, authors []primitive.ObjectID, now time.Time) ([]models.Story, error) {
	if len(authors) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.col.Find(ctx, bson.M{
		"author":    bson.M{"$in": authors},
		"isActive":  true,
		"expiresAt": bson.M{"$gt": now},
	}, opts)
	if err != nil {
		return nil, err
	}
	var stories []models.Story
	if err := cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// AddView pushes the view entry only when the viewer is absent from the view
// set. The filtered update is a single atomic document operation, so
// concurrent re-views cannot duplicate the entry.
func (r *mongoStoryRepo) AddView(ctx context.Context, storyID primitive.ObjectID, view models.StoryView) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{
			"_id":        storyID,
			"views.user": bson.M{"$ne": view.User},
		},
		bson.M{
			"$push": bson.M{"views": view},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoStoryRepo) Deactivate(ctx context.Context, storyID primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": storyID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoStoryRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"expiresAt": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": now.UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
