package extract

import "net/http"

// HeaderProfile represents a complete set of HTTP headers for a
// browser combination. The primary profile imitates a desktop Chrome;
// the fallback is the plainer Safari-style set some origins accept
// after rejecting the first.
type HeaderProfile struct {
	UserAgent       string
	Accept          string
	AcceptLanguage  string
	SecFetchDest    string
	SecFetchMode    string
	SecFetchSite    string
	SecFetchUser    string
	SecChUa         string
	SecChUaMobile   string
	SecChUaPlatform string
}

var primaryProfile = HeaderProfile{
	UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	Accept:          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
	AcceptLanguage:  "en-US,en;q=0.9",
	SecFetchDest:    "document",
	SecFetchMode:    "navigate",
	SecFetchSite:    "none",
	SecFetchUser:    "?1",
	SecChUa:         `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
	SecChUaMobile:   "?0",
	SecChUaPlatform: `"Windows"`,
}

var fallbackProfile = HeaderProfile{
	UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.2 Safari/605.1.15",
	Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	AcceptLanguage: "en-US,en;q=0.9",
}

// Apply sets the profile headers on an outgoing request.
func (p HeaderProfile) Apply(req *http.Request) {
	req.Header.Set("User-Agent", p.UserAgent)
	req.Header.Set("Accept", p.Accept)
	req.Header.Set("Accept-Language", p.AcceptLanguage)
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	if p.SecFetchDest != "" {
		req.Header.Set("Sec-Fetch-Dest", p.SecFetchDest)
		req.Header.Set("Sec-Fetch-Mode", p.SecFetchMode)
		req.Header.Set("Sec-Fetch-Site", p.SecFetchSite)
		if p.SecFetchUser != "" {
			req.Header.Set("Sec-Fetch-User", p.SecFetchUser)
		}
	}
	if p.SecChUa != "" {
		req.Header.Set("Sec-Ch-Ua", p.SecChUa)
		req.Header.Set("Sec-Ch-Ua-Mobile", p.SecChUaMobile)
		req.Header.Set("Sec-Ch-Ua-Platform", p.SecChUaPlatform)
	}
}
