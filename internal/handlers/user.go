package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/models"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/services"
)

// UserHandler covers the friendship graph and profile maintenance.
type UserHandler struct {
	auth    *services.AuthService
	friends *services.FriendService
	uploads *services.UploadService
}

func NewUserHandler(auth *services.AuthService, friends *services.FriendService, uploads *services.UploadService) *UserHandler {
	return &UserHandler{auth: auth, friends: friends, uploads: uploads}
}

// Recommendations lists onboarded users the caller is not friends with.
func (h *UserHandler) Recommendations(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	users, err := h.friends.Recommendations(c.Context(), p.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "recommendedUsers": users})
}

func (h *UserHandler) Friends(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	users, err := h.friends.Friends(c.Context(), p.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "friends": users})
}

func (h *UserHandler) SendFriendRequest(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	recipient, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	req, err := h.friends.SendRequest(c.Context(), p.UserID, recipient)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusCreated, fiber.Map{"success": true, "friendRequest": req})
}

func (h *UserHandler) AcceptFriendRequest(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	requestID, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.friends.AcceptRequest(c.Context(), requestID, p.UserID); err != nil {
		return handleError(c, err)
	}
	return jsonMessage(c, fiber.StatusOK, "friend request accepted")
}

// FriendRequests returns pending incoming requests plus accepted ones the
// caller sent, mirroring what the client renders on the notifications page.
func (h *UserHandler) FriendRequests(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	incoming, err := h.friends.ListIncoming(c.Context(), p.UserID)
	if err != nil {
		return handleError(c, err)
	}
	accepted, err := h.friends.ListAccepted(c.Context(), p.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{
		"success":          true,
		"incomingRequests": incoming,
		"acceptedRequests": accepted,
	})
}

func (h *UserHandler) OutgoingFriendRequests(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	outgoing, err := h.friends.ListOutgoing(c.Context(), p.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "outgoingRequests": outgoing})
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	if _, err := principal(c); err != nil {
		return err
	}
	userID, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	profile, err := h.friends.Profile(c.Context(), userID)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "user": profile})
}

func (h *UserHandler) MutualFriends(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	other, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	mutual, err := h.friends.MutualFriends(c.Context(), p.UserID, other)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "mutualFriends": mutual})
}

func (h *UserHandler) NotificationPreferences(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	user, err := h.auth.GetUser(c.Context(), p.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{
		"success":                 true,
		"notificationPreferences": user.NotificationPreferences,
	})
}

func (h *UserHandler) UpdateNotificationPreferences(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var prefs models.NotificationPreferences
	if err := c.BodyParser(&prefs); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	user, err := h.auth.UpdateNotificationPreferences(c.Context(), p.UserID, prefs)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{
		"success":                 true,
		"notificationPreferences": user.NotificationPreferences,
	})
}

// UploadProfilePicture stores the avatar and updates the profile in one call.
func (h *UserHandler) UploadProfilePicture(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "file is required")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "could not read file")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.uploads.MaxSize()+1))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "could not read file")
	}

	info, err := h.uploads.Store(c.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		return handleError(c, err)
	}
	if info.Type != models.MediaTypeImage {
		return jsonError(c, fiber.StatusBadRequest, "profile picture must be an image")
	}
	user, err := h.auth.UpdateProfilePicture(c.Context(), p.UserID, info.URL)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "user": user})
}
