package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/apperr"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/models"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/repository"
)

// FriendService owns the friendship graph: request edges plus the symmetric
// friend sets on both users.
type FriendService struct {
	users    repository.UserRepository
	requests repository.FriendRequestRepository
	log      *zap.SugaredLogger
}

func NewFriendService(users repository.UserRepository, requests repository.FriendRequestRepository, log *zap.SugaredLogger) *FriendService {
	return &FriendService{users: users, requests: requests, log: log}
}

// SendRequest creates a pending edge from sender to recipient. At most one
// request may exist per unordered pair.
func (s *FriendService) SendRequest(ctx context.Context, sender, recipient primitive.ObjectID) (*models.FriendRequest, error) {
	if sender == recipient {
		return nil, apperr.Validation("you can't send a friend request to yourself")
	}
	target, err := s.users.FindByID(ctx, recipient)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("recipient not found")
		}
		return nil, apperr.Internal(err)
	}
	if target.IsFriend(sender) {
		return nil, apperr.Conflict("you are already friends with this user")
	}
	if _, err := s.requests.FindBetween(ctx, sender, recipient); err == nil {
		return nil, apperr.Conflict("a friend request already exists between you and this user")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	fr := &models.FriendRequest{
		Sender:    sender,
		Recipient: recipient,
		Status:    models.FriendRequestPending,
	}
	if err := s.requests.Create(ctx, fr); err != nil {
		return nil, apperr.Internal(err)
	}
	return fr, nil
}

// AcceptRequest marks the request accepted and inserts each user into the
// other's friend set. The friend insert is idempotent, so a double accept
// leaves each side present exactly once.
func (s *FriendService) AcceptRequest(ctx context.Context, requestID, acting primitive.ObjectID) error {
	fr, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("friend request not found")
		}
		return apperr.Internal(err)
	}
	if fr.Recipient != acting {
		return apperr.Forbidden("you are not authorized to accept this request")
	}

	if err := s.requests.UpdateStatus(ctx, fr.ID, models.FriendRequestAccepted); err != nil {
		return apperr.Internal(err)
	}
	if err := s.users.AddFriend(ctx, fr.Sender, fr.Recipient); err != nil {
		return apperr.Internal(err)
	}
	if err := s.users.AddFriend(ctx, fr.Recipient, fr.Sender); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// RequestWithProfile pairs a request with the populated profile of its
// counterpart.
type RequestWithProfile struct {
	Request models.FriendRequest `json:"request"`
	User    models.UserProfile   `json:"user"`
}

// ListIncoming returns pending requests addressed to the user, with sender
// profiles.
func (s *FriendService) ListIncoming(ctx context.Context, userID primitive.ObjectID) ([]RequestWithProfile, error) {
	reqs, err := s.requests.ListByRecipient(ctx, userID, models.FriendRequestPending)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.populate(ctx, reqs, func(fr models.FriendRequest) primitive.ObjectID { return fr.Sender })
}

// ListOutgoing returns pending requests the user has sent, with recipient
// profiles.
func (s *FriendService) ListOutgoing(ctx context.Context, userID primitive.ObjectID) ([]RequestWithProfile, error) {
	reqs, err := s.requests.ListBySender(ctx, userID, models.FriendRequestPending)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.populate(ctx, reqs, func(fr models.FriendRequest) primitive.ObjectID { return fr.Recipient })
}

// ListAccepted returns requests the user sent that were accepted, with
// recipient profiles.
func (s *FriendService) ListAccepted(ctx context.Context, userID primitive.ObjectID) ([]RequestWithProfile, error) {
	reqs, err := s.requests.ListBySender(ctx, userID, models.FriendRequestAccepted)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.populate(ctx, reqs, func(fr models.FriendRequest) primitive.ObjectID { return fr.Recipient })
}

func (s *FriendService) populate(ctx context.Context, reqs []models.FriendRequest, pick func(models.FriendRequest) primitive.ObjectID) ([]RequestWithProfile, error) {
	ids := make([]primitive.ObjectID, 0, len(reqs))
	for _, fr := range reqs {
		ids = append(ids, pick(fr))
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	profiles := make(map[primitive.ObjectID]models.UserProfile, len(users))
	for _, u := range users {
		profiles[u.ID] = u.Profile()
	}
	out := make([]RequestWithProfile, 0, len(reqs))
	for _, fr := range reqs {
		out = append(out, RequestWithProfile{Request: fr, User: profiles[pick(fr)]})
	}
	return out, nil
}

// Friends returns the user's friend profiles.
func (s *FriendService) Friends(ctx context.Context, userID primitive.ObjectID) ([]models.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	return s.profilesFor(ctx, user.Friends)
}

// Recommendations returns onboarded users who are neither the caller nor
// already friends. No ranking beyond the exclusion.
func (s *FriendService) Recommendations(ctx context.Context, userID primitive.ObjectID) ([]models.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	exclude := append([]primitive.ObjectID{userID}, user.Friends...)
	candidates, err := s.users.FindOnboardedExcluding(ctx, exclude)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	out := make([]models.UserProfile, 0, len(candidates))
	for _, u := range candidates {
		out = append(out, u.Profile())
	}
	return out, nil
}

// MutualFriends returns the intersection of two users' friend sets.
func (s *FriendService) MutualFriends(ctx context.Context, a, b primitive.ObjectID) ([]models.UserProfile, error) {
	userA, err := s.users.FindByID(ctx, a)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	userB, err := s.users.FindByID(ctx, b)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}

	inB := make(map[primitive.ObjectID]bool, len(userB.Friends))
	for _, id := range userB.Friends {
		inB[id] = true
	}
	var mutual []primitive.ObjectID
	for _, id := range userA.Friends {
		if inB[id] {
			mutual = append(mutual, id)
		}
	}
	return s.profilesFor(ctx, mutual)
}

// Profile returns the public projection of the given user.
func (s *FriendService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	p := user.Profile()
	return &p, nil
}

func (s *FriendService) profilesFor(ctx context.Context, ids []primitive.ObjectID) ([]models.UserProfile, error) {
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	out := make([]models.UserProfile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	return out, nil
}
