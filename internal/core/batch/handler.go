package batch

import (
	"pagereport/internal/core/job"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
	jobs    *job.Service
}

func NewHandler(service *Service, jobs *job.Service) *Handler {
	return &Handler{service: service, jobs: jobs}
}

// HandleCreate accepts a batch request and returns the job id.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}
	if len(req.URLs) == 0 && req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "urls or url is required"})
	}

	id, err := h.service.Enqueue(c.Context(), req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"success": true, "job_id": id})
}

// HandleGetJob returns the stored job record.
func (h *Handler) HandleGetJob(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	j, err := h.jobs.Get(c.Context(), jobID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(j)
}
