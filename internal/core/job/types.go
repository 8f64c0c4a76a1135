package job

import "pagereport/internal/core/report"

type Type string

const (
	TypeBatch Type = "batch"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Stats summarizes a finished batch.
type Stats struct {
	TotalURLs  int `json:"total_urls"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Result holds per-URL reports and per-URL failure messages.
type Result struct {
	URL     string                    `json:"url,omitempty"`
	Reports map[string]*report.Report `json:"reports,omitempty"`
	Errors  map[string]string         `json:"errors,omitempty"`
	Stats   *Stats                    `json:"stats,omitempty"`
}

type Job struct {
	JobID  string  `json:"job_id"`
	Type   Type    `json:"type"`
	Status Status  `json:"status"`
	Result *Result `json:"result,omitempty"`
}
