package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/apperr"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/auth"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/middleware"
)

func jsonSuccess(c *fiber.Ctx, status int, payload interface{}) error {
	return c.Status(status).JSON(payload)
}

func jsonMessage(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "message": msg})
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// handleError translates a service error into its HTTP response. Unknown
// errors become a bare 500.
func handleError(c *fiber.Ctx, err error) error {
	return jsonError(c, apperr.Status(err), apperr.Message(err))
}

// principal returns the authenticated caller. The error, when non-nil, is a
// *fiber.Error for the app's error handler to render.
func principal(c *fiber.Ctx) (auth.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return auth.Principal{}, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return p, nil
}

// paramObjectID parses a path parameter as an ObjectID.
func paramObjectID(c *fiber.Ctx, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params(name))
	if err != nil {
		return primitive.NilObjectID, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
