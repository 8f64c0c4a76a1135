package mapper

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"pagereport/internal/logger"

	"github.com/gocolly/colly"
)

// Service discovers same-host links on a page, feeding batch
// extraction when a caller asks for "this site" instead of a URL list.
type Service struct {
	log *logger.Logger
}

func New() *Service { return &Service{log: logger.New("MapService")} }

type Request struct {
	URL       string
	LinkLimit int
}

type Result struct {
	Links []string `json:"links"`
}

// MapURL visits the page and collects distinct same-host links, capped
// at the requested limit.
func (s *Service) MapURL(req Request) (*Result, error) {
	s.log.LogDebugf("Map start url=%s limit=%d", req.URL, req.LinkLimit)
	links := make(map[string]struct{})
	var mu sync.Mutex

	c := colly.NewCollector(colly.MaxDepth(1), colly.Async(true))
	cleaned := cleanURL(req.URL)
	host := extractHost(cleaned)

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := normalize(e.Request.AbsoluteURL(e.Attr("href")))
		if link == "" {
			return
		}
		if !hostsMatch(extractHost(link), host) {
			return
		}
		mu.Lock()
		if req.LinkLimit <= 0 || len(links) < req.LinkLimit {
			links[link] = struct{}{}
		}
		mu.Unlock()
	})

	c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 10, RandomDelay: 500 * time.Millisecond})

	if err := c.Visit(cleaned); err != nil {
		return nil, fmt.Errorf("visit: %w", err)
	}
	c.Wait()

	out := make([]string, 0, len(links))
	for l := range links {
		out = append(out, l)
	}
	s.log.LogInfof("Map ok url=%s discovered=%d", req.URL, len(out))
	return &Result{Links: out}, nil
}

func cleanURL(u string) string {
	if !strings.HasPrefix(u, "http") {
		u = "https://" + u
	}
	return u
}

func extractHost(u string) string {
	p, _ := url.Parse(u)
	if p != nil {
		return p.Hostname()
	}
	return ""
}

func normalize(u string) string {
	p, _ := url.Parse(u)
	if p == nil {
		return u
	}
	p.Fragment = ""
	if p.Path == "/" {
		p.Path = ""
	}
	return p.String()
}

func hostsMatch(a, b string) bool {
	if a == b {
		return true
	}
	return strings.TrimPrefix(a, "www.") == strings.TrimPrefix(b, "www.")
}
