package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MediaTypeText  = "text"
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// StoryMedia describes the attachment of a story, if any.
type StoryMedia struct {
	Type      string `bson:"type" json:"type"`
	URL       string `bson:"url" json:"url"`
	Thumbnail string `bson:"thumbnail" json:"thumbnail"`
	Duration  int    `bson:"duration" json:"duration"` // seconds, videos only
	Size      int64  `bson:"size" json:"size"`         // bytes
}

// StoryView records a single viewer. Each viewer appears at most once.
type StoryView struct {
	User     primitive.ObjectID `bson:"user" json:"user"`
	ViewedAt time.Time          `bson:"viewedAt" json:"viewedAt"`
}

// Story is an ephemeral post. It is visible in feeds only while active and
// before expiresAt; expiry defaults to 24 hours after creation.
type Story struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Content   string             `bson:"content" json:"content"`
	Media     StoryMedia         `bson:"media" json:"media"`
	Views     []StoryView        `bson:"views" json:"views"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// StoryTTL is the default lifetime of a story.
const StoryTTL = 24 * time.Hour

// HasUserViewed reports whether userID already has a view entry.
func (s *Story) HasUserViewed(userID primitive.ObjectID) bool {
	for _, v := range s.Views {
		if v.User == userID {
			return true
		}
	}
	return false
}

// Expired reports whether the story is past its expiry at the given instant.
func (s *Story) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// ViewCount returns the number of distinct viewers.
func (s *Story) ViewCount() int { return len(s.Views) }
