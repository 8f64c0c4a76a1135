package extract

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type extractRequest struct {
	URL   string `json:"url"`
	Fresh bool   `json:"fresh"`
}

// HandleGet serves ?url=&fresh= query requests.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	return h.extract(c, c.Query("url"), c.QueryBool("fresh"))
}

// HandlePost serves {"url": ..., "fresh": ...} body requests.
func (h *Handler) HandlePost(c *fiber.Ctx) error {
	var req extractRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	return h.extract(c, req.URL, req.Fresh)
}

// extract runs the service and maps failures onto HTTP statuses. The
// success body is the bare category mapping so clients can decode it
// without unwrapping an envelope.
func (h *Handler) extract(c *fiber.Ctx, url string, fresh bool) error {
	rep, err := h.service.Extract(c.Context(), url, fresh)
	if err != nil {
		return errorJSON(c, statusFor(err), err.Error())
	}
	return c.JSON(rep)
}

func statusFor(err error) int {
	var upstream *UpstreamError
	switch {
	case errors.Is(err, ErrInvalidURL):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotHTML):
		return fiber.StatusUnprocessableEntity
	case IsTimeout(err):
		return fiber.StatusRequestTimeout
	case errors.As(err, &upstream):
		if upstream.Status == fiber.StatusNotFound {
			return fiber.StatusNotFound
		}
		return fiber.StatusBadGateway
	default:
		return fiber.StatusBadGateway
	}
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}
