package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/apperr"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/models"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/repository"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/stream"
)

// GroupService owns the group membership state machine and keeps the chat
// provider's channel membership in sync, best-effort.
type GroupService struct {
	groups repository.GroupRepository
	users  repository.UserRepository
	chat   stream.Provider
	log    *zap.SugaredLogger
}

func NewGroupService(groups repository.GroupRepository, users repository.UserRepository, chat stream.Provider, log *zap.SugaredLogger) *GroupService {
	return &GroupService{groups: groups, users: users, chat: chat, log: log}
}

// CreateGroupInput is the payload for a new group.
type CreateGroupInput struct {
	Name        string
	Description string
	IsPrivate   bool
	Tags        []string
	Avatar      string
}

// Create makes the caller the sole member and admin of a new group.
func (s *GroupService) Create(ctx context.Context, creator primitive.ObjectID, in CreateGroupInput) (*models.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("group name is required")
	}
	settings := models.DefaultGroupSettings()
	settings.IsPrivate = in.IsPrivate

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Creator:     creator,
		Members: []models.GroupMember{{
			User:     creator,
			Role:     models.RoleAdmin,
			JoinedAt: time.Now().UTC(),
			IsActive: true,
		}},
		Admins:   []primitive.ObjectID{creator},
		Settings: settings,
		Avatar:   in.Avatar,
		Tags:     in.Tags,
		IsActive: true,
	}
	if err := s.groups.Insert(ctx, group); err != nil {
		return nil, apperr.Internal(err)
	}

	s.syncChannel(group, func(ctx context.Context, channelID string) error {
		return s.chat.EnsureChannel(ctx, channelID, group.Name, group.Avatar, []string{creator.Hex()})
	})
	return group, nil
}

// MyGroups lists active groups the caller belongs to.
func (s *GroupService) MyGroups(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	groups, err := s.groups.ListByMember(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

// PublicGroupsPage is one page of the discovery listing.
type PublicGroupsPage struct {
	Groups      []models.Group `json:"groups"`
	Total       int64          `json:"total"`
	CurrentPage int64          `json:"currentPage"`
	TotalPages  int64          `json:"totalPages"`
}

// PublicGroups lists non-private groups the caller has not joined.
func (s *GroupService) PublicGroups(ctx context.Context, userID primitive.ObjectID, search string, tags []string, page, limit int64) (*PublicGroupsPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	groups, total, err := s.groups.ListPublic(ctx, userID, search, tags, page, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if groups == nil {
		groups = []models.Group{}
	}
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return &PublicGroupsPage{Groups: groups, Total: total, CurrentPage: page, TotalPages: totalPages}, nil
}

// Details returns the group to one of its members.
func (s *GroupService) Details(ctx context.Context, groupID, userID primitive.ObjectID) (*models.Group, error) {
	group, err := s.find(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(userID) {
		return nil, apperr.Forbidden("you are not a member of this group")
	}
	return group, nil
}

// Join adds the caller as a plain member. Private groups are invite-only,
// and the private check fails closed before capacity is even considered.
func (s *GroupService) Join(ctx context.Context, groupID, userID primitive.ObjectID) error {
	group, err := s.find(ctx, groupID)
	if err != nil {
		return err
	}
	if group.IsMember(userID) {
		return apperr.Conflict("you are already a member of this group")
	}
	if group.Settings.IsPrivate {
		return apperr.Forbidden("this is a private group")
	}
	if group.MemberCount() >= group.Settings.MaxMembers {
		return apperr.Conflict("group is full")
	}

	group.AddMember(userID, models.RoleMember)
	if err := s.groups.Save(ctx, group); err != nil {
		return apperr.Internal(err)
	}

	s.syncChannel(group, func(ctx context.Context, channelID string) error {
		return s.chat.AddChannelMembers(ctx, channelID, []string{userID.Hex()})
	})
	return nil
}

// Invite immediately adds the invitee as a member; there is no accept step.
func (s *GroupService) Invite(ctx context.Context, groupID, inviter, invitee primitive.ObjectID) error {
	group, err := s.find(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.IsMember(inviter) {
		return apperr.Forbidden("you are not a member of this group")
	}
	if !group.Settings.AllowMemberInvites && !group.IsAdmin(inviter) {
		return apperr.Forbidden("member invites are not allowed")
	}
	if _, err := s.users.FindByID(ctx, invitee); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}
	if group.IsMember(invitee) {
		return apperr.Conflict("user is already a member of this group")
	}
	if group.MemberCount() >= group.Settings.MaxMembers {
		return apperr.Conflict("group is full")
	}

	group.AddMember(invitee, models.RoleMember)
	if err := s.groups.Save(ctx, group); err != nil {
		return apperr.Internal(err)
	}

	s.syncChannel(group, func(ctx context.Context, channelID string) error {
		return s.chat.AddChannelMembers(ctx, channelID, []string{invitee.Hex()})
	})
	return nil
}

// Leave removes the caller. A departing creator hands the group to another
// admin, or the group goes inactive when no admin remains. Other members'
// rows are untouched.
func (s *GroupService) Leave(ctx context.Context, groupID, userID primitive.ObjectID) error {
	group, err := s.find(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.IsMember(userID) {
		return apperr.Validation("you are not a member of this group")
	}

	if group.Creator == userID {
		transferred := false
		for _, admin := range group.Admins {
			if admin != userID {
				group.Creator = admin
				transferred = true
				break
			}
		}
		if !transferred {
			group.IsActive = false
		}
	}

	group.RemoveMember(userID)
	if err := s.groups.Save(ctx, group); err != nil {
		return apperr.Internal(err)
	}

	s.syncChannel(group, func(ctx context.Context, channelID string) error {
		return s.chat.RemoveChannelMembers(ctx, channelID, []string{userID.Hex()})
	})
	return nil
}

// UpdateRole moves a member between admin, moderator and plain member.
// Only admins may change roles.
func (s *GroupService) UpdateRole(ctx context.Context, groupID, acting, target primitive.ObjectID, newRole string) error {
	switch newRole {
	case models.RoleAdmin, models.RoleModerator, models.RoleMember:
	default:
		return apperr.Validation("invalid role")
	}
	group, err := s.find(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.IsAdmin(acting) {
		return apperr.Forbidden("only admins can change member roles")
	}
	if !group.IsMember(target) {
		return apperr.NotFound("user is not a member of this group")
	}

	group.UpdateMemberRole(target, newRole)
	if err := s.groups.Save(ctx, group); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// GroupSettingsPatch carries the fields an admin may change. Nil pointers
// leave the current value alone.
type GroupSettingsPatch struct {
	Name               *string
	Description        *string
	Avatar             *string
	Tags               []string
	IsPrivate          *bool
	AllowMemberInvites *bool
	AllowFileSharing   *bool
	MaxMembers         *int
}

// UpdateSettings shallow-merges the patch. Admin only.
func (s *GroupService) UpdateSettings(ctx context.Context, groupID, acting primitive.ObjectID, patch GroupSettingsPatch) (*models.Group, error) {
	group, err := s.find(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(acting) {
		return nil, apperr.Forbidden("only admins can update group settings")
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation("group name is required")
		}
		group.Name = name
	}
	if patch.Description != nil {
		group.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Avatar != nil {
		group.Avatar = *patch.Avatar
	}
	if patch.Tags != nil {
		group.Tags = patch.Tags
	}
	if patch.IsPrivate != nil {
		group.Settings.IsPrivate = *patch.IsPrivate
	}
	if patch.AllowMemberInvites != nil {
		group.Settings.AllowMemberInvites = *patch.AllowMemberInvites
	}
	if patch.AllowFileSharing != nil {
		group.Settings.AllowFileSharing = *patch.AllowFileSharing
	}
	if patch.MaxMembers != nil {
		if *patch.MaxMembers < 1 {
			return nil, apperr.Validation("maxMembers must be positive")
		}
		group.Settings.MaxMembers = *patch.MaxMembers
	}

	if err := s.groups.Save(ctx, group); err != nil {
		return nil, apperr.Internal(err)
	}
	return group, nil
}

// Delete soft-deletes the group. Creator only; memberships and history are
// retained.
func (s *GroupService) Delete(ctx context.Context, groupID, acting primitive.ObjectID) error {
	group, err := s.find(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Creator != acting {
		return apperr.Forbidden("only the group creator can delete the group")
	}
	group.IsActive = false
	if err := s.groups.Save(ctx, group); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *GroupService) find(ctx context.Context, groupID primitive.ObjectID) (*models.Group, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("group not found")
		}
		return nil, apperr.Internal(err)
	}
	return group, nil
}

func (s *GroupService) syncChannel(group *models.Group, op func(ctx context.Context, channelID string) error) {
	channelID := stream.GroupChannelID(group.ID.Hex())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := op(ctx, channelID); err != nil {
			s.log.Warnw("chat channel sync failed", "group", group.ID.Hex(), "err", err)
		}
	}()
}
