package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"pagereport/internal/config"
	"pagereport/internal/core/extract"
	"pagereport/internal/core/job"
	"pagereport/internal/core/mapper"
	"pagereport/internal/core/report"
	"pagereport/internal/logger"
	"pagereport/internal/platform/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Service runs multi-URL extractions in the background. Jobs are
// enqueued on asynq and processed by a bounded worker pool calling the
// extraction service in-process.
type Service struct {
	jobs    *job.Service
	tasks   *tasks.Client
	mapper  *mapper.Service
	extract *extract.Service
	log     *logger.Logger
	config  config.Config
}

func NewService(jobs *job.Service, tc *tasks.Client, m *mapper.Service, ex *extract.Service, cfg config.Config) *Service {
	return &Service{jobs: jobs, tasks: tc, mapper: m, extract: ex, log: logger.New("BatchService"), config: cfg}
}

// Request is either an explicit URL list or a start URL whose same-host
// links are discovered first.
type Request struct {
	URLs      []string `json:"urls"`
	URL       string   `json:"url"`
	LinkLimit int      `json:"link_limit"`
}

func (r Request) startURL() string {
	if r.URL != "" {
		return r.URL
	}
	if len(r.URLs) > 0 {
		return r.URLs[0]
	}
	return ""
}

type TaskPayload struct {
	JobID   string  `json:"job_id"`
	Request Request `json:"request"`
}

// Enqueue registers a pending job and hands the work to asynq.
func (s *Service) Enqueue(ctx context.Context, req Request) (string, error) {
	if len(req.URLs) == 0 && req.URL == "" {
		return "", fmt.Errorf("urls or url is required")
	}

	id := uuid.New().String()
	payload, _ := json.Marshal(TaskPayload{JobID: id, Request: req})
	if err := s.jobs.InitPending(ctx, id, req.startURL()); err != nil {
		return "", err
	}
	task := asynq.NewTask(tasks.TaskTypeBatch, payload)
	if err := s.tasks.Enqueue(task, "default", s.config.TaskMaxRetries); err != nil {
		return "", err
	}
	s.log.LogInfof("enqueued batch job %s with %d urls", id, len(req.URLs))
	return id, nil
}

// HandleTask is the asynq worker entrypoint.
func (s *Service) HandleTask(ctx context.Context, task *asynq.Task) error {
	var p TaskPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return err
	}
	s.log.LogInfof("processing batch job %s", p.JobID)
	if err := s.jobs.SetProcessing(ctx, p.JobID); err != nil {
		return err
	}

	urls, err := s.resolveURLs(p.Request)
	if err != nil {
		_ = s.jobs.Complete(ctx, p.JobID, job.StatusFailed, &job.Result{
			URL:    p.Request.startURL(),
			Errors: map[string]string{p.Request.startURL(): err.Error()},
			Stats:  &job.Stats{},
		})
		return nil
	}

	reports, errs := s.extractAll(ctx, urls)

	result := &job.Result{
		URL:     p.Request.startURL(),
		Reports: reports,
		Errors:  errs,
		Stats: &job.Stats{
			TotalURLs:  len(urls),
			Successful: len(reports),
			Failed:     len(errs),
		},
	}

	status := job.StatusCompleted
	if len(reports) == 0 && len(errs) > 0 {
		status = job.StatusFailed
	}
	s.log.LogInfof("completing batch job %s: success=%d failed=%d total=%d", p.JobID, len(reports), len(errs), len(urls))
	return s.jobs.Complete(ctx, p.JobID, status, result)
}

// resolveURLs expands a start-URL request through the mapper; explicit
// lists pass through unchanged.
func (s *Service) resolveURLs(req Request) ([]string, error) {
	if len(req.URLs) > 0 {
		return dedupe(req.URLs), nil
	}

	limit := req.LinkLimit
	if limit <= 0 {
		limit = s.config.BatchLinkLimit
	}
	res, err := s.mapper.MapURL(mapper.Request{URL: req.URL, LinkLimit: limit})
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", req.URL, err)
	}

	urls := append([]string{req.URL}, res.Links...)
	urls = dedupe(urls)
	if len(urls) > limit {
		urls = urls[:limit]
	}
	return urls, nil
}

// extractAll runs the extraction service over the URL set with a
// bounded worker pool.
func (s *Service) extractAll(ctx context.Context, urls []string) (map[string]*report.Report, map[string]string) {
	reports := make(map[string]*report.Report)
	errs := make(map[string]string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := s.config.BatchWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := make(chan struct{}, workers)

	for _, u := range urls {
		wg.Add(1)
		sem <- struct{}{}
		go func(u string) {
			defer wg.Done()
			defer func() { <-sem }()

			rep, err := s.extract.Extract(ctx, u, false)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[u] = err.Error()
				return
			}
			reports[u] = rep
		}(u)
	}
	wg.Wait()

	return reports, errs
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
