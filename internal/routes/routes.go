package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/auth"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/handlers"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/metrics"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/middleware"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Auth    *handlers.AuthHandler
	Users   *handlers.UserHandler
	Stories *handlers.StoryHandler
	Groups  *handlers.GroupHandler
	Chat    *handlers.ChatHandler
	Health  *handlers.HealthHandler

	Tokens      *auth.JWTManager
	SignupLimit *middleware.RateLimiter
	ResendLimit *middleware.RateLimiter
}

// Register wires the API surface. Everything under /api except the auth
// entry points requires a session cookie.
func Register(app *fiber.App, d Deps) {
	app.Use(metrics.RequestCounter())

	app.Get("/healthz", d.Health.Health)

	api := app.Group("/api")
	requireAuth := middleware.RequireAuth(d.Tokens)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", d.SignupLimit.ByKey(clientIP), d.Auth.Signup)
	authGroup.Post("/verify-otp", d.Auth.VerifyOTP)
	authGroup.Post("/resend-otp", d.ResendLimit.ByKey(bodyEmailOrIP), d.Auth.ResendOTP)
	authGroup.Post("/login", d.Auth.Login)
	authGroup.Post("/logout", d.Auth.Logout)
	authGroup.Get("/google", d.Auth.GoogleLogin)
	authGroup.Get("/google/callback", d.Auth.GoogleCallback)
	authGroup.Post("/onboarding", requireAuth, d.Auth.Onboard)
	authGroup.Get("/me", requireAuth, d.Auth.Me)

	users := api.Group("/users", requireAuth)
	users.Get("/", d.Users.Recommendations)
	users.Get("/friends", d.Users.Friends)
	users.Post("/friend-request/:id", d.Users.SendFriendRequest)
	users.Put("/friend-request/:id/accept", d.Users.AcceptFriendRequest)
	users.Get("/friend-requests", d.Users.FriendRequests)
	users.Get("/outgoing-friend-requests", d.Users.OutgoingFriendRequests)
	users.Get("/notification-preferences", d.Users.NotificationPreferences)
	users.Put("/notification-preferences", d.Users.UpdateNotificationPreferences)
	users.Post("/profile-picture", d.Users.UploadProfilePicture)
	users.Get("/:id/mutual-friends", d.Users.MutualFriends)
	users.Get("/:id/profile", d.Users.Profile)

	stories := api.Group("/stories", requireAuth)
	stories.Post("/", d.Stories.Create)
	stories.Post("/upload", d.Stories.Upload)
	stories.Get("/feed", d.Stories.Feed)
	stories.Get("/my-stories", d.Stories.MyStories)
	stories.Put("/:id/view", d.Stories.View)
	stories.Delete("/:id", d.Stories.Delete)
	stories.Post("/cleanup", d.Stories.Cleanup)

	groups := api.Group("/groups", requireAuth)
	groups.Post("/", d.Groups.Create)
	groups.Get("/my-groups", d.Groups.MyGroups)
	groups.Get("/public", d.Groups.PublicGroups)
	groups.Get("/:id", d.Groups.Details)
	groups.Post("/:id/join", d.Groups.Join)
	groups.Post("/:id/leave", d.Groups.Leave)
	groups.Post("/:id/invite", d.Groups.Invite)
	groups.Put("/:id/members/:userId/role", d.Groups.UpdateRole)
	groups.Put("/:id/settings", d.Groups.UpdateSettings)
	groups.Delete("/:id", d.Groups.Delete)

	chat := api.Group("/chat", requireAuth)
	chat.Get("/token", d.Chat.Token)
}

func clientIP(c *fiber.Ctx) string {
	return c.IP()
}

// bodyEmailOrIP keys OTP resends by the target address so one client
// cannot hammer a mailbox from rotating IPs.
func bodyEmailOrIP(c *fiber.Ctx) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err == nil && body.Email != "" {
		return body.Email
	}
	return c.IP()
}
