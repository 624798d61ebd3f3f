package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/services"
)

// StoryHandler covers story creation, the feed, view tracking and the
// media upload endpoint stories attach to.
type StoryHandler struct {
	stories *services.StoryService
	uploads *services.UploadService
}

func NewStoryHandler(stories *services.StoryService, uploads *services.UploadService) *StoryHandler {
	return &StoryHandler{stories: stories, uploads: uploads}
}

type createStoryRequest struct {
	Content   string `json:"content"`
	MediaType string `json:"mediaType"`
	MediaURL  string `json:"mediaUrl"`
	Thumbnail string `json:"thumbnail"`
	Duration  int    `json:"duration"`
	Size      int64  `json:"size"`
}

func (h *StoryHandler) Create(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createStoryRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	story, err := h.stories.Create(c.Context(), p.UserID, services.CreateStoryInput{
		Content:   req.Content,
		MediaType: req.MediaType,
		MediaURL:  req.MediaURL,
		Thumbnail: req.Thumbnail,
		Duration:  req.Duration,
		Size:      req.Size,
	})
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusCreated, fiber.Map{"success": true, "story": story})
}

// Upload stores a media file and returns its descriptor; the client then
// posts the story referencing the returned URL.
func (h *StoryHandler) Upload(c *fiber.Ctx) error {
	if _, err := principal(c); err != nil {
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
	return jsonSuccess(c, fiber.StatusCreated, fiber.Map{"success": true, "file": info})
}

func (h *StoryHandler) Feed(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	feed, err := h.stories.Feed(c.Context(), p.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "stories": feed})
}

func (h *StoryHandler) MyStories(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	stories, err := h.stories.MyStories(c.Context(), p.UserID)
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "stories": stories})
}

func (h *StoryHandler) View(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	storyID, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.stories.View(c.Context(), storyID, p.UserID); err != nil {
		return handleError(c, err)
	}
	return jsonMessage(c, fiber.StatusOK, "story viewed")
}

func (h *StoryHandler) Delete(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	storyID, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.stories.Delete(c.Context(), storyID, p.UserID); err != nil {
		return handleError(c, err)
	}
	return jsonMessage(c, fiber.StatusOK, "story deleted")
}

// Cleanup triggers the expiry sweep on demand. The cron scheduler calls
// the same service method.
func (h *StoryHandler) Cleanup(c *fiber.Ctx) error {
	if _, err := principal(c); err != nil {
		return err
	}
	n, err := h.stories.ExpirySweep(c.Context())
	if err != nil {
		return handleError(c, err)
	}
	return jsonSuccess(c, fiber.StatusOK, fiber.Map{"success": true, "deactivated": n})
}
