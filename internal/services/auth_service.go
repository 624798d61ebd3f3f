package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/apperr"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/auth"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/mailer"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/models"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/repository"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/stream"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/utils"
)

const otpLength = 6

// AuthService owns the identity and credential store: signup, OTP email
// verification, password and Google login, onboarding.
type AuthService struct {
	users  repository.UserRepository
	mail   mailer.Sender
	chat   stream.Provider
	tokens *auth.JWTManager
	otpTTL time.Duration
	log    *zap.SugaredLogger
}

func NewAuthService(
	users repository.UserRepository,
	mail mailer.Sender,
	chat stream.Provider,
	tokens *auth.JWTManager,
	otpTTL time.Duration,
	log *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		users:  users,
		mail:   mail,
		chat:   chat,
		tokens: tokens,
		otpTTL: otpTTL,
		log:    log,
	}
}

// Register creates an unverified account with a pending OTP. The caller is
// not authenticated; verification must happen first. The provider upsert and
// the OTP email are fire-and-forget.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("account already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	otp := utils.GenerateOTP(otpLength)
	expiresAt := time.Now().Add(s.otpTTL)
	user := &models.User{
		Email:                    email,
		FullName:                 fullName,
		PasswordHash:             string(hash),
		ProfilePic:               randomAvatarURL(),
		IsEmailVerified:          false,
		EmailVerificationOTP:     otp,
		EmailVerificationExpires: &expiresAt,
		NotificationPreferences:  models.DefaultNotificationPreferences(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("account already exists")
		}
		return nil, apperr.Internal(err)
	}

	s.upsertChatUser(user)
	s.sendOTPEmail(user.Email, otp)

	return user, nil
}

// VerifyOTP checks the pending code and activates the account. Verifying an
// already-verified account is idempotent: a session is issued either way.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", apperr.NotFound("user not found")
		}
		return nil, "", apperr.Internal(err)
	}

	if !user.IsEmailVerified {
		if !user.HasPendingOTP() {
			return nil, "", apperr.Validation("no OTP pending for this account")
		}
		if user.EmailVerificationExpires.Before(time.Now()) {
			return nil, "", apperr.Validation("OTP expired, please request a new one")
		}
		if user.EmailVerificationOTP != code {
			return nil, "", apperr.Validation("invalid OTP code")
		}
		user.IsEmailVerified = true
		user.EmailVerificationOTP = ""
		user.EmailVerificationExpires = nil
		if err := s.users.Update(ctx, user); err != nil {
			return nil, "", apperr.Internal(err)
		}
	}

	token, _, err := s.tokens.Generate(user.ID.Hex())
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	return user, token, nil
}

// ResendOTP regenerates the pending code. No-op success when the account is
// already verified.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}
	if user.IsEmailVerified {
		return nil
	}

	otp := utils.GenerateOTP(otpLength)
	expiresAt := time.Now().Add(s.otpTTL)
	user.EmailVerificationOTP = otp
	user.EmailVerificationExpires = &expiresAt
	if err := s.users.Update(ctx, user); err != nil {
		return apperr.Internal(err)
	}

	s.sendOTPEmail(user.Email, otp)
	return nil
}

// Login authenticates with email and password. Missing user and wrong
// password collapse into the same error so the response surface does not
// reveal which one happened.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", apperr.Auth("invalid email or password")
		}
		return nil, "", apperr.Internal(err)
	}
	if user.PasswordHash == "" {
		return nil, "", apperr.Auth("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperr.Auth("invalid email or password")
	}

	// Accounts created before OTP verification existed, and Google-created
	// accounts, have no pending OTP and are exempt.
	if !user.IsEmailVerified && user.HasPendingOTP() {
		return nil, "", apperr.Forbidden("please verify your email via OTP before logging in")
	}

	token, _, err := s.tokens.Generate(user.ID.Hex())
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	return user, token, nil
}

// OAuthProfile is what the federated identity provider hands back after a
// successful login.
type OAuthProfile struct {
	GoogleID  string
	Email     string
	FullName  string
	AvatarURL string
}

// OAuthLogin finds or creates the account keyed by the Google id. Federated
// accounts are verified unconditionally.
func (s *AuthService) OAuthLogin(ctx context.Context, profile OAuthProfile) (*models.User, string, error) {
	if profile.GoogleID == "" {
		return nil, "", apperr.Validation("missing external profile id")
	}
	user, err := s.users.FindByGoogleID(ctx, profile.GoogleID)
	if errors.Is(err, repository.ErrNotFound) {
		user = &models.User{
			GoogleID:                profile.GoogleID,
			Email:                   profile.Email,
			FullName:                profile.FullName,
			ProfilePic:              profile.AvatarURL,
			IsEmailVerified:         true,
			NotificationPreferences: models.DefaultNotificationPreferences(),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, "", apperr.Internal(err)
		}
		s.upsertChatUser(user)
	} else if err != nil {
		return nil, "", apperr.Internal(err)
	}

	token, _, err := s.tokens.Generate(user.ID.Hex())
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	return user, token, nil
}

// Onboard completes the profile and re-upserts the provider-side user.
func (s *AuthService) Onboard(ctx context.Context, userID primitive.ObjectID, fullName, bio, location string) (*models.User, error) {
	if fullName == "" || bio == "" || location == "" {
		return nil, apperr.Validation("fullName, bio and location are required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	user.FullName = fullName
	user.Bio = bio
	user.Location = location
	user.IsOnboarded = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Internal(err)
	}

	s.upsertChatUser(user)
	return user, nil
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// UpdateNotificationPreferences replaces the whole preference bag.
func (s *AuthService) UpdateNotificationPreferences(ctx context.Context, userID primitive.ObjectID, prefs models.NotificationPreferences) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.NotificationPreferences = prefs
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// UpdateProfilePicture points the profile at the stored avatar URL and
// re-upserts the provider-side user so chat surfaces pick it up.
func (s *AuthService) UpdateProfilePicture(ctx context.Context, userID primitive.ObjectID, url string) (*models.User, error) {
	if url == "" {
		return nil, apperr.Validation("profile picture URL is required")
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.ProfilePic = url
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Internal(err)
	}

	s.upsertChatUser(user)
	return user, nil
}

func (s *AuthService) upsertChatUser(user *models.User) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.chat.UpsertUser(ctx, user.ID.Hex(), user.FullName, user.ProfilePic); err != nil {
			s.log.Warnw("chat provider upsert failed", "user", user.ID.Hex(), "err", err)
		}
	}()
}

func (s *AuthService) sendOTPEmail(email, code string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.mail.SendVerificationEmail(ctx, email, code); err != nil {
			s.log.Warnw("verification email failed", "to", email, "err", err)
		}
	}()
}

func randomAvatarURL() string {
	idx := rand.Intn(100) + 1
	return fmt.Sprintf("https://avatar.iran.liara.run/public/%d.png", idx)
}
