package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleMember    = "member"
)

// GroupMember is one membership row embedded in a Group. Departures flip
// IsActive instead of removing the row.
type GroupMember struct {
	User     primitive.ObjectID `bson:"user" json:"user"`
	Role     string             `bson:"role" json:"role"`
	JoinedAt time.Time          `bson:"joinedAt" json:"joinedAt"`
	IsActive bool               `bson:"isActive" json:"isActive"`
}

// GroupSettings holds the per-group knobs admins may change.
type GroupSettings struct {
	IsPrivate          bool `bson:"isPrivate" json:"isPrivate"`
	AllowMemberInvites bool `bson:"allowMemberInvites" json:"allowMemberInvites"`
	AllowFileSharing   bool `bson:"allowFileSharing" json:"allowFileSharing"`
	MaxMembers         int  `bson:"maxMembers" json:"maxMembers"`
}

// DefaultGroupSettings returns the settings a new group starts with.
func DefaultGroupSettings() GroupSettings {
	return GroupSettings{
		IsPrivate:          false,
		AllowMemberInvites: true,
		AllowFileSharing:   true,
		MaxMembers:         100,
	}
}

// GroupLastMessage caches the most recent channel message for list views.
type GroupLastMessage struct {
	Content string             `bson:"content" json:"content"`
	Sender  primitive.ObjectID `bson:"sender,omitempty" json:"sender,omitempty"`
	SentAt  time.Time          `bson:"sentAt" json:"sentAt"`
}

// Group is a membership container. The membership list is embedded; admins
// and moderators are derived reference sets kept in sync with member roles.
// Invariants: the creator is in Admins while the group is active, and a user
// holds exactly one of admin/moderator/plain member.
type Group struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Creator     primitive.ObjectID   `bson:"creator" json:"creator"`
	Members     []GroupMember        `bson:"members" json:"members"`
	Admins      []primitive.ObjectID `bson:"admins" json:"admins"`
	Moderators  []primitive.ObjectID `bson:"moderators" json:"moderators"`
	Settings    GroupSettings        `bson:"settings" json:"settings"`
	Avatar      string               `bson:"avatar" json:"avatar"`
	Tags        []string             `bson:"tags" json:"tags"`
	IsActive    bool                 `bson:"isActive" json:"isActive"`
	LastMessage *GroupLastMessage    `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// MemberCount returns the number of active memberships. Computed on read,
// never stored.
func (g *Group) MemberCount() int {
	n := 0
	for _, m := range g.Members {
		if m.IsActive {
			n++
		}
	}
	return n
}

// AdminCount returns the size of the admin set.
func (g *Group) AdminCount() int { return len(g.Admins) }

// IsMember reports whether userID has an active membership row.
func (g *Group) IsMember(userID primitive.ObjectID) bool {
	for _, m := range g.Members {
		if m.User == userID && m.IsActive {
			return true
		}
	}
	return false
}

// IsAdmin reports whether userID is in the admin set.
func (g *Group) IsAdmin(userID primitive.ObjectID) bool {
	return containsID(g.Admins, userID)
}

// IsModerator reports whether userID is in the moderator set.
func (g *Group) IsModerator(userID primitive.ObjectID) bool {
	return containsID(g.Moderators, userID)
}

// AddMember appends an active membership with the given role and keeps the
// derived role sets in sync. No-op if userID is already an active member.
func (g *Group) AddMember(userID primitive.ObjectID, role string) {
	if g.IsMember(userID) {
		return
	}
	g.Members = append(g.Members, GroupMember{
		User:     userID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
		IsActive: true,
	})
	switch role {
	case RoleAdmin:
		if !containsID(g.Admins, userID) {
			g.Admins = append(g.Admins, userID)
		}
	case RoleModerator:
		if !containsID(g.Moderators, userID) {
			g.Moderators = append(g.Moderators, userID)
		}
	}
}

// RemoveMember marks the user's membership inactive and strips them from the
// admin and moderator sets. Their row and join timestamp are retained.
func (g *Group) RemoveMember(userID primitive.ObjectID) {
	for i := range g.Members {
		if g.Members[i].User == userID {
			g.Members[i].IsActive = false
		}
	}
	g.Admins = removeID(g.Admins, userID)
	g.Moderators = removeID(g.Moderators, userID)
}

// UpdateMemberRole moves the user between the admin/moderator/member states.
// The user ends up in exactly one of the derived sets, or neither.
func (g *Group) UpdateMemberRole(userID primitive.ObjectID, newRole string) bool {
	found := false
	for i := range g.Members {
		if g.Members[i].User == userID {
			g.Members[i].Role = newRole
			found = true
		}
	}
	if !found {
		return false
	}
	switch newRole {
	case RoleAdmin:
		if !containsID(g.Admins, userID) {
			g.Admins = append(g.Admins, userID)
		}
		g.Moderators = removeID(g.Moderators, userID)
	case RoleModerator:
		if !containsID(g.Moderators, userID) {
			g.Moderators = append(g.Moderators, userID)
		}
		g.Admins = removeID(g.Admins, userID)
	default:
		g.Admins = removeID(g.Admins, userID)
		g.Moderators = removeID(g.Moderators, userID)
	}
	return true
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
