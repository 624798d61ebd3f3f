package handlers

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/services"
)

// GroupHandler covers group creation, discovery and the membership
// state machine.
type GroupHandler struct {
	groups   *services.GroupService
	validate *validator.Validate
}

func NewGroupHandler(groups *services.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups, validate: validator.New()}
}

type createGroupRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	IsPrivate   bool     `json:"isPrivate"`
	Tags        []string `json:"tags"`
	Avatar      string   `json:"avatar"`
}

func (h *GroupHandler) Create(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := h.validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, validationMessage(err))
	}
	group, err := h.groups.Create(c.Context(), p.UserID, services.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		Tags:        req.Tags,
		Avatar:      req.Avatar,
	})
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusCreated, fiber.Map{"success": true, "group": group})
}

func (h *GroupHandler) MyGroups(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	groups, err := h.groups.MyGroups(c.Context(), p.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "groups": groups})
}

// PublicGroups lists joinable groups with optional ?search=, ?tags=a,b,
// ?page= and ?limit=.
func (h *GroupHandler) PublicGroups(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var tags []string
	if raw := c.Query("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	page, err := h.groups.PublicGroups(
		c.Context(),
		p.UserID,
		c.Query("search"),
		tags,
		int64(c.QueryInt("page", 1)),
		int64(c.QueryInt("limit", 20)),
	)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{
		"success":     true,
		"groups":      page.Groups,
		"total":       page.Total,
		"currentPage": page.CurrentPage,
		"totalPages":  page.TotalPages,
	})
}

func (h *GroupHandler) Details(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	groupID, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	group, err := h.groups.Details(c.Context(), groupID, p.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "group": group})
}

func (h *GroupHandler) Join(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	groupID, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.groups.Join(c.Context(), groupID, p.UserID); err != nil {
		return handleError(c, err)
	}
	return jsonMessage(c, fiber.StatusOK, "joined group")
}

func (h *GroupHandler) Leave(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	groupID, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.groups.Leave(c.Context(), groupID, p.UserID); err != nil {
		return handleError(c, err)
	}
	return jsonMessage(c, fiber.StatusOK, "left group")
}

type inviteRequest struct {
	UserID string `json:"userId" validate:"required"`
}

func (h *GroupHandler) Invite(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	groupID, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	var req inviteRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := h.validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, validationMessage(err))
	}
	invitee, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid userId")
	}
	if err := h.groups.Invite(c.Context(), groupID, p.UserID, invitee); err != nil {
		return handleError(c, err)
	}
	return jsonMessage(c, fiber.StatusOK, "user added to group")
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin moderator member"`
}

func (h *GroupHandler) UpdateRole(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	groupID, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	target, err := paramObjectID(c, "userId")
	if err != nil {
		return err
	}
	var req updateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := h.validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, validationMessage(err))
	}
	if err := h.groups.UpdateRole(c.Context(), groupID, p.UserID, target, req.Role); err != nil {
		return handleError(c, err)
	}
	return jsonMessage(c, fiber.StatusOK, "role updated")
}

type updateSettingsRequest struct {
	Name               *string  `json:"name"`
	Description        *string  `json:"description"`
	Avatar             *string  `json:"avatar"`
	Tags               []string `json:"tags"`
	IsPrivate          *bool    `json:"isPrivate"`
	AllowMemberInvites *bool    `json:"allowMemberInvites"`
	AllowFileSharing   *bool    `json:"allowFileSharing"`
	MaxMembers         *int     `json:"maxMembers"`
}

func (h *GroupHandler) UpdateSettings(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	groupID, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	group, err := h.groups.UpdateSettings(c.Context(), groupID, p.UserID, services.GroupSettingsPatch{
		Name:               req.Name,
		Description:        req.Description,
		Avatar:             req.Avatar,
		Tags:               req.Tags,
		IsPrivate:          req.IsPrivate,
		AllowMemberInvites: req.AllowMemberInvites,
		AllowFileSharing:   req.AllowFileSharing,
		MaxMembers:         req.MaxMembers,
	})
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "group": group})
}

func (h *GroupHandler) Delete(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	groupID, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.groups.Delete(c.Context(), groupID, p.UserID); err != nil {
		return handleError(c, err)
	}
	return jsonMessage(c, fiber.StatusOK, "group deleted")
}
