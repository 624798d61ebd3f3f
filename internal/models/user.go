package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationPreferences is the per-user bag of named notification toggles.
type NotificationPreferences struct {
	EmailNotifications     bool `bson:"emailNotifications" json:"emailNotifications"`
	PushNotifications      bool `bson:"pushNotifications" json:"pushNotifications"`
	FriendRequests         bool `bson:"friendRequests" json:"friendRequests"`
	StoryViews             bool `bson:"storyViews" json:"storyViews"`
	GroupInvites           bool `bson:"groupInvites" json:"groupInvites"`
	VideoCalls             bool `bson:"videoCalls" json:"videoCalls"`
	ShowUnreadBadges       bool `bson:"showUnreadBadges" json:"showUnreadBadges"`
	ShowLastMessagePreview bool `bson:"showLastMessagePreview" json:"showLastMessagePreview"`
}

// DefaultNotificationPreferences returns the toggles a fresh account starts
// with. Push is opt-in, everything else opt-out.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		EmailNotifications:     true,
		PushNotifications:      false,
		FriendRequests:         true,
		StoryViews:             true,
		GroupInvites:           true,
		VideoCalls:             true,
		ShowUnreadBadges:       true,
		ShowLastMessagePreview: true,
	}
}

// User is the identity record. A user holds at least one credential kind
// after verification: a password hash or a Google id.
type User struct {
	ID                       primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	FullName                 string                  `bson:"fullName" json:"fullName"`
	Email                    string                  `bson:"email" json:"email"`
	PasswordHash             string                  `bson:"password,omitempty" json:"-"`
	GoogleID                 string                  `bson:"googleId,omitempty" json:"-"`
	Bio                      string                  `bson:"bio" json:"bio"`
	ProfilePic               string                  `bson:"profilePic" json:"profilePic"`
	Location                 string                  `bson:"location" json:"location"`
	IsEmailVerified          bool                    `bson:"isEmailVerified" json:"isEmailVerified"`
	EmailVerificationOTP     string                  `bson:"emailVerificationOTP,omitempty" json:"-"`
	EmailVerificationExpires *time.Time              `bson:"emailVerificationExpires,omitempty" json:"-"`
	IsOnboarded              bool                    `bson:"isOnboarded" json:"isOnboarded"`
	Friends                  []primitive.ObjectID    `bson:"friends" json:"friends"`
	NotificationPreferences  NotificationPreferences `bson:"notificationPreferences" json:"notificationPreferences"`
	CreatedAt                time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt                time.Time               `bson:"updatedAt" json:"updatedAt"`
}

// HasPendingOTP reports whether an email verification code is still
// outstanding for this account. Google-created accounts never have one.
func (u *User) HasPendingOTP() bool {
	return u.EmailVerificationOTP != "" || u.EmailVerificationExpires != nil
}

// IsFriend reports whether other is in the user's friend set.
func (u *User) IsFriend(other primitive.ObjectID) bool {
	for _, f := range u.Friends {
		if f == other {
			return true
		}
	}
	return false
}

// UserProfile is the public projection of a user returned to other members.
type UserProfile struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	FullName   string             `bson:"fullName" json:"fullName"`
	ProfilePic string             `bson:"profilePic" json:"profilePic"`
	Bio        string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Location   string             `bson:"location,omitempty" json:"location,omitempty"`
}

// Profile returns the public projection of u.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:         u.ID,
		FullName:   u.FullName,
		ProfilePic: u.ProfilePic,
		Bio:        u.Bio,
		Location:   u.Location,
	}
}
