package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pagereport/internal/core/report"
	"pagereport/internal/logger"
	rds "pagereport/internal/platform/redis"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrInvalidURL = errors.New("invalid url")
	ErrNotHTML    = errors.New("response is not HTML content")
)

// UpstreamError carries the status code the origin answered with.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

type Service struct {
	log      *logger.Logger
	redis    *rds.Service
	client   *http.Client
	cacheTTL int
}

// NewService builds the extraction service. redis may be nil, in which
// case responses are not cached.
func NewService(redis *rds.Service, fetchTimeout time.Duration, cacheTTLSeconds int) *Service {
	return &Service{
		log:      logger.New("ExtractService"),
		redis:    redis,
		client:   &http.Client{Timeout: fetchTimeout},
		cacheTTL: cacheTTLSeconds,
	}
}

// NormalizeURL validates a user-supplied URL and defaults the scheme to
// https when none is given ("example.com" becomes "https://example.com").
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidURL)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u.String(), nil
}

// Extract fetches a page and builds the categorized report. fresh skips
// the cache read; the result is still written back.
func (s *Service) Extract(ctx context.Context, rawURL string, fresh bool) (*report.Report, error) {
	pageURL, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	if !fresh {
		if cached := s.getCached(ctx, pageURL); cached != nil {
			s.log.Info().Str("url", pageURL).Msg("cache hit")
			return cached, nil
		}
	}

	s.log.Info().Str("url", pageURL).Msg("extract start")
	doc, err := s.fetch(ctx, pageURL)
	if err != nil {
		s.log.Info().Str("url", pageURL).Str("error", err.Error()).Msg("extract failed")
		return nil, err
	}

	base, _ := url.Parse(pageURL)
	rep := buildReport(doc, base)

	s.cache(ctx, pageURL, rep)
	s.log.Info().Str("url", pageURL).Int("records", rep.Total()).Msg("extract complete")
	return rep, nil
}

// fetch performs the HTTP request with the primary header profile and
// retries once with the fallback profile on 403, mirroring origins that
// reject the richer Chrome header set.
func (s *Service) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := s.do(ctx, pageURL, primaryProfile)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	if resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		s.log.Info().Str("url", pageURL).Msg("403 with primary headers, retrying with fallback profile")
		resp, err = s.do(ctx, pageURL, fallbackProfile)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode}
	}

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(ct, "text/html") && !strings.Contains(ct, "application/xhtml") {
		return nil, fmt.Errorf("%w: Content-Type %q", ErrNotHTML, ct)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

func (s *Service) do(ctx context.Context, pageURL string, profile HeaderProfile) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	profile.Apply(req)
	return s.client.Do(req)
}

// IsTimeout reports whether the error came from the fetch deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	// http.Client wraps its own timeout without a typed cause on some paths.
	return err != nil && strings.Contains(err.Error(), "Client.Timeout")
}

// Cache helpers

func (s *Service) getCached(ctx context.Context, pageURL string) *report.Report {
	if s.redis == nil {
		return nil
	}
	var raw json.RawMessage
	if err := s.redis.CacheGet(ctx, cacheKey(pageURL), &raw); err != nil {
		return nil
	}
	rep, _, err := report.Decode(raw)
	if err != nil {
		return nil
	}
	return rep
}

func (s *Service) cache(ctx context.Context, pageURL string, rep *report.Report) {
	if s.redis == nil {
		return
	}
	_ = s.redis.CacheSet(ctx, cacheKey(pageURL), rep, s.cacheTTL)
}

func cacheKey(pageURL string) string {
	safe := strings.NewReplacer(":", "_", "/", "_", "?", "_", "&", "_").Replace(pageURL)
	return "extract:" + safe
}
