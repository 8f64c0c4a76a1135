package main

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"pagereport/internal/config"
	"pagereport/internal/core/batch"
	"pagereport/internal/core/extract"
	"pagereport/internal/core/job"
	"pagereport/internal/core/mapper"
	"pagereport/internal/logger"
	rds "pagereport/internal/platform/redis"
	tasks "pagereport/internal/platform/tasks"
	"pagereport/internal/server"
	"pagereport/internal/worker"
)

func main() {
	cfg := config.Load()
	log.Printf("[pagereport] starting at %s (env=%s)\n", cfg.HTTPAddr, cfg.AppEnv)

	logr := logger.New("main")

	// Redis client
	redisSvc, err := rds.New(rds.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer redisSvc.Close()

	// Asynq client and server
	taskClient := tasks.New(redisSvc)
	asynqServer := asynq.NewServer(redisSvc.AsynqRedisOpt(), asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{"default": 1},
	})

	// Core services
	jobSvc := job.NewService(redisSvc)
	mapSvc := mapper.New()
	extractSvc := extract.NewService(redisSvc, time.Duration(cfg.FetchTimeoutSeconds)*time.Second, cfg.CacheTTLSeconds)
	batchSvc := batch.NewService(jobSvc, taskClient, mapSvc, extractSvc, cfg)

	// Worker mux
	mux := worker.NewMux()
	mux.HandleFunc(tasks.TaskTypeBatch, batchSvc.HandleTask)

	go func() {
		if err := asynqServer.Start(mux.Mux()); err != nil {
			log.Printf("[worker] stopped: %v\n", err)
		}
	}()

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName: "pagereport extraction service",
		JSONEncoder: func(v interface{}) ([]byte, error) {
			var buf bytes.Buffer
			encoder := json.NewEncoder(&buf)
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	})

	deps := server.Dependencies{
		Job:     jobSvc,
		Extract: extractSvc,
		Batch:   batchSvc,
		Tasks:   taskClient,
		Redis:   redisSvc,
	}
	healthHandler := server.RegisterRoutes(app, deps)

	// Mark application as ready after services settle.
	go func() {
		time.Sleep(2 * time.Second)
		healthHandler.SetReady()
	}()

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfo("Shutting down...")
		asynqServer.Shutdown()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server listen: %v", err)
	}
}
