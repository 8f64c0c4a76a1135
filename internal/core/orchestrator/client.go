package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pagereport/internal/core/report"
	"pagereport/internal/logger"
)

// Client talks to the extraction service. Failures are classified into
// the orchestrator error taxonomy at this boundary so the state machine
// never inspects transport details.
type Client struct {
	endpoint string
	http     *http.Client
	log      *logger.Logger
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
		log:      logger.New("ExtractClient"),
	}
}

type scrapeRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Fetch requests a report for url and decodes the category mapping.
func (c *Client) Fetch(ctx context.Context, url string) (*report.Report, error) {
	body, err := json.Marshal(scrapeRequest{URL: url})
	if err != nil {
		return nil, newError(KindInvalidInput, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/extract", bytes.NewReader(body))
	if err != nil {
		return nil, newError(KindInvalidInput, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newError(KindNetworkFailure, "extraction service unreachable", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindNetworkFailure, "read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyStatus(resp.StatusCode, payload)
	}

	rep, dropped, err := report.Decode(payload)
	if err != nil {
		return nil, newError(KindRemoteFailure, "malformed report", err)
	}
	if len(dropped) > 0 {
		c.log.LogWarnf("dropped unknown categories from response: %s", strings.Join(dropped, ", "))
	}
	return rep, nil
}

func (c *Client) classifyStatus(status int, payload []byte) *Error {
	msg := fmt.Sprintf("extraction service returned status %d", status)
	var remote errorResponse
	if err := json.Unmarshal(payload, &remote); err == nil && remote.Error != "" {
		msg = remote.Error
	}

	switch status {
	case http.StatusBadRequest:
		return newError(KindInvalidInput, msg, nil)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return newError(KindNetworkFailure, msg, nil)
	default:
		return newError(KindRemoteFailure, msg, nil)
	}
}
