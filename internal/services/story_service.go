package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/apperr"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/models"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/repository"
)

// StoryService owns the ephemeral story lifecycle: creation, the friend
// feed, per-viewer view tracking and the expiry sweep.
type StoryService struct {
	stories repository.StoryRepository
	users   repository.UserRepository
	log     *zap.SugaredLogger

	// NowFunc is swappable in tests.
	NowFunc func() time.Time
}

func NewStoryService(stories repository.StoryRepository, users repository.UserRepository, log *zap.SugaredLogger) *StoryService {
	return &StoryService{
		stories: stories,
		users:   users,
		log:     log,
		NowFunc: time.Now,
	}
}

// CreateStoryInput is the payload for a new story.
type CreateStoryInput struct {
	Content   string
	MediaType string
	MediaURL  string
	Thumbnail string
	Duration  int
	Size      int64
}

// Create posts a story. A story needs content or media; expiry defaults to
// 24 hours out.
func (s *StoryService) Create(ctx context.Context, author primitive.ObjectID, in CreateStoryInput) (*models.Story, error) {
	if in.Content == "" && in.MediaURL == "" {
		return nil, apperr.Validation("story must have at least content or media")
	}
	mediaType := in.MediaType
	if mediaType == "" {
		mediaType = models.MediaTypeText
	}
	story := &models.Story{
		Author:  author,
		Content: in.Content,
		Media: models.StoryMedia{
			Type:      mediaType,
			URL:       in.MediaURL,
			Thumbnail: in.Thumbnail,
			Duration:  in.Duration,
			Size:      in.Size,
		},
		ExpiresAt: s.NowFunc().Add(models.StoryTTL),
		IsActive:  true,
	}
	if err := s.stories.Insert(ctx, story); err != nil {
		return nil, apperr.Internal(err)
	}
	return story, nil
}

// FeedStory is a story annotated with whether the caller has seen it.
type FeedStory struct {
	models.Story
	HasViewed bool `json:"hasViewed"`
}

// FeedEntry groups one author's live stories for the feed.
type FeedEntry struct {
	Author      models.UserProfile `json:"author"`
	Stories     []FeedStory        `json:"stories"`
	HasUnviewed bool               `json:"hasUnviewed"`
}

// Feed returns the viewer's friends' live stories grouped by author.
// Stories inside a group are newest first; group order follows first
// appearance in that ordering.
func (s *StoryService) Feed(ctx context.Context, viewer primitive.ObjectID) ([]FeedEntry, error) {
	user, err := s.users.FindByID(ctx, viewer)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}

	stories, err := s.stories.FindActiveByAuthors(ctx, user.Friends, s.NowFunc())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(stories) == 0 {
		return []FeedEntry{}, nil
	}

	authors, err := s.users.FindByIDs(ctx, authorIDs(stories))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	profiles := make(map[primitive.ObjectID]models.UserProfile, len(authors))
	for _, u := range authors {
		profiles[u.ID] = u.Profile()
	}

	index := make(map[primitive.ObjectID]int)
	var feed []FeedEntry
	for _, story := range stories {
		i, ok := index[story.Author]
		if !ok {
			i = len(feed)
			index[story.Author] = i
			feed = append(feed, FeedEntry{Author: profiles[story.Author]})
		}
		viewed := story.HasUserViewed(viewer)
		feed[i].Stories = append(feed[i].Stories, FeedStory{Story: story, HasViewed: viewed})
		if !viewed {
			feed[i].HasUnviewed = true
		}
	}
	return feed, nil
}

// MyStories returns the caller's own live stories, newest first.
func (s *StoryService) MyStories(ctx context.Context, userID primitive.ObjectID) ([]models.Story, error) {
	stories, err := s.stories.FindActiveByAuthors(ctx, []primitive.ObjectID{userID}, s.NowFunc())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if stories == nil {
		stories = []models.Story{}
	}
	return stories, nil
}

// View records the viewer on the story. Re-viewing neither duplicates the
// entry nor refreshes its timestamp.
func (s *StoryService) View(ctx context.Context, storyID, viewer primitive.ObjectID) error {
	story, err := s.stories.FindByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("story not found")
		}
		return apperr.Internal(err)
	}
	if !story.IsActive || story.Expired(s.NowFunc()) {
		return apperr.Validation("story has expired")
	}
	if _, err := s.stories.AddView(ctx, storyID, models.StoryView{
		User:     viewer,
		ViewedAt: s.NowFunc().UTC(),
	}); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Delete soft-deletes the caller's own story. Views and content stay
// behind the inactive flag.
func (s *StoryService) Delete(ctx context.Context, storyID, owner primitive.ObjectID) error {
	story, err := s.stories.FindByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("story not found")
		}
		return apperr.Internal(err)
	}
	if story.Author != owner {
		return apperr.NotFound("story not found")
	}
	if err := s.stories.Deactivate(ctx, storyID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// ExpirySweep deactivates every story past expiry and returns the count.
// Safe to run repeatedly and concurrently with live traffic: readers filter
// on expiresAt anyway, so a late sweep cannot change visibility.
func (s *StoryService) ExpirySweep(ctx context.Context) (int64, error) {
	n, err := s.stories.DeactivateExpired(ctx, s.NowFunc())
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return n, nil
}

func authorIDs(stories []models.Story) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, st := range stories {
		if !seen[st.Author] {
			seen[st.Author] = true
			ids = append(ids, st.Author)
		}
	}
	return ids
}
