package handlers

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/middleware"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/oauth"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/services"
)

const oauthStateCookie = "oauth_state"

// AuthHandler exposes signup, OTP verification, login and the Google
// OAuth flow.
type AuthHandler struct {
	svc         *services.AuthService
	google      *oauth.Google
	validate    *validator.Validate
	cookieTTL   time.Duration
	crossOrigin bool
	frontendURL string
}

func NewAuthHandler(svc *services.AuthService, google *oauth.Google, cookieTTL time.Duration, crossOrigin bool, frontendURL string) *AuthHandler {
	return &AuthHandler{
		svc:         svc,
		google:      google,
		validate:    validator.New(),
		cookieTTL:   cookieTTL,
		crossOrigin: crossOrigin,
		frontendURL: frontendURL,
	}
}

// setSessionCookie delivers the session token as an HTTP-only cookie.
// SameSite relaxes to none only for cross-origin deployments, which are
// TLS-only.
func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	sameSite := fiber.CookieSameSiteStrictMode
	if h.crossOrigin {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(h.cookieTTL),
		HTTPOnly: true,
		Secure:   h.crossOrigin,
		SameSite: sameSite,
		Path:     "/",
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required"`
}

// Signup creates an unverified account. It never issues a session; the
// caller must verify the OTP first.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := h.validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	user, err := h.svc.Register(c.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "signup successful, please verify the OTP sent to your email",
		"userId":  user.ID.Hex(),
	})
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

// VerifyOTP activates the account and issues the session cookie.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := h.validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	user, token, err := h.svc.VerifyOTP(c.Context(), req.Email, req.Code)
	if err != nil {
		return handleError(c, err)
	}
	h.setSessionCookie(c, token)
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "user": user})
}

type resendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var req resendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := h.validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, validationMessage(err))
	}
	if err := h.svc.ResendOTP(c.Context(), req.Email); err != nil {
		return handleError(c, err)
	}
	return jsonMessage(c, fiber.StatusOK, "OTP resent")
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := h.validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	user, token, err := h.svc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return handleError(c, err)
	}
	h.setSessionCookie(c, token)
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "user": user})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearSessionCookie(c)
	return jsonMessage(c, fiber.StatusOK, "logout successful")
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Context(), p.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "user": user})
}

type onboardRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Bio      string `json:"bio" validate:"required"`
	Location string `json:"location" validate:"required"`
}

func (h *AuthHandler) Onboard(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req onboardRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := h.validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, validationMessage(err))
	}
	user, err := h.svc.Onboard(c.Context(), p.UserID, req.FullName, req.Bio, req.Location)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "user": user})
}

// GoogleLogin starts the Google OAuth flow.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	if !h.google.IsConfigured() {
		return jsonError(c, fiber.StatusServiceUnavailable, "google login is not configured")
	}
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Path:     "/",
	})
	return c.Redirect(h.google.AuthURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback completes the flow, issues the session cookie and sends
// the browser back to the frontend.
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return jsonError(c, fiber.StatusBadRequest, "invalid oauth state")
	}
	code := c.Query("code")
	if code == "" {
		return c.Redirect(h.frontendURL+"/login", fiber.StatusTemporaryRedirect)
	}

	profile, err := h.google.Exchange(c.Context(), code)
	if err != nil {
		return c.Redirect(h.frontendURL+"/login", fiber.StatusTemporaryRedirect)
	}
	_, token, err := h.svc.OAuthLogin(c.Context(), services.OAuthProfile{
		GoogleID:  profile.ID,
		Email:     profile.Email,
		FullName:  profile.Name,
		AvatarURL: profile.Picture,
	})
	if err != nil {
		return handleError(c, err)
	}
	h.setSessionCookie(c, token)
	return c.Redirect(h.frontendURL+"/", fiber.StatusTemporaryRedirect)
}

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "email":
			return fe.Field() + " must be a valid email address"
		case "min":
			return fe.Field() + " must be at least " + fe.Param() + " characters"
		case "len":
			return fe.Field() + " must be exactly " + fe.Param() + " characters"
		}
		return "validation failed on " + fe.Field()
	}
	return "invalid request"
}
