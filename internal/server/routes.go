package server

import (
	"pagereport/internal/core/batch"
	"pagereport/internal/core/extract"
	"pagereport/internal/core/job"
	"pagereport/internal/health"
	"pagereport/internal/platform/redis"
	tasks "pagereport/internal/platform/tasks"

	"github.com/gofiber/fiber/v2"
)

type Dependencies struct {
	Job     *job.Service
	Extract *extract.Service
	Batch   *batch.Service
	Tasks   *tasks.Client
	Redis   *redis.Service
}

func RegisterRoutes(app *fiber.App, d Dependencies) *health.Handler {
	// Health endpoints
	healthHandler := health.NewHandler(d.Redis)
	app.Get("/v1/health", health.Limiter(), healthHandler.HandleHealth)

	api := app.Group("/v1")

	extractHandler := extract.NewHandler(d.Extract)
	api.Get("/extract", extractHandler.HandleGet)
	api.Post("/extract", extractHandler.HandlePost)

	batchHandler := batch.NewHandler(d.Batch, d.Job)
	api.Post("/batch", batchHandler.HandleCreate)
	api.Get("/batch/:jobId", batchHandler.HandleGetJob)

	return healthHandler
}
