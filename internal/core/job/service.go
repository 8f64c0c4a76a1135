package job

import (
	"context"
	"fmt"

	rds "pagereport/internal/platform/redis"
)

// Service persists job records in Redis. Finished jobs stay readable
// longer than pending ones.
type Service struct{ redis *rds.Service }

func NewService(redis *rds.Service) *Service { return &Service{redis: redis} }

func (s *Service) Get(ctx context.Context, jobID string) (*Job, error) {
	var j Job
	if err := s.redis.CacheGet(ctx, key(jobID), &j); err != nil {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	return &j, nil
}

func (s *Service) store(ctx context.Context, jobID string, status Status, result *Result) error {
	var j Job
	_ = s.redis.CacheGet(ctx, key(jobID), &j)
	j.JobID = jobID
	j.Type = TypeBatch
	j.Status = status
	if result != nil {
		j.Result = result
	}
	return s.redis.CacheSet(ctx, key(jobID), j, ttl(status))
}

func (s *Service) InitPending(ctx context.Context, jobID, url string) error {
	return s.store(ctx, jobID, StatusPending, &Result{URL: url})
}

func (s *Service) SetProcessing(ctx context.Context, jobID string) error {
	return s.store(ctx, jobID, StatusProcessing, nil)
}

func (s *Service) Complete(ctx context.Context, jobID string, status Status, result *Result) error {
	return s.store(ctx, jobID, status, result)
}

func key(id string) string { return "job:" + id }

func ttl(s Status) int {
	if s == StatusCompleted || s == StatusFailed {
		return 3600
	}
	return 600
}
