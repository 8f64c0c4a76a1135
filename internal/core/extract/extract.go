package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"pagereport/internal/core/report"

	html2markdown "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// Per-category extraction caps keep pathological pages bounded.
const (
	maxLinks        = 500
	maxImages       = 200
	maxTables       = 20
	maxLists        = 10
	maxContactItems = 10
	maxHeadingText  = 500
	maxLinkText     = 200
	maxListPreview  = 120
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d{1,3}[-. ]?\(?\d{2,4}\)?[-. ]?\d{3,4}[-. ]?\d{3,4}`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// buildReport runs every category extractor over the parsed document.
// Extractors never fail: a page without matches yields empty categories.
func buildReport(doc *goquery.Document, base *url.URL) *report.Report {
	rep := report.New()

	extractHeadings(doc, rep)
	extractLinks(doc, base, rep)
	extractImages(doc, base, rep)
	extractTables(doc, rep)
	extractMetaTags(doc, rep)
	extractSocialLinks(doc, rep)
	extractForms(doc, rep)
	extractLists(doc, rep)

	// Text-derived categories share one normalized text pass with
	// script/style noise stripped.
	text := pageText(doc)
	extractContactInfo(text, rep)
	extractSEOSummary(doc, text, rep)
	extractContent(doc, text, rep)

	return rep
}

func extractHeadings(doc *goquery.Document, rep *report.Report) {
	for _, level := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		doc.Find(level).Each(func(_ int, sel *goquery.Selection) {
			rep.Append(report.CategoryHeadings, report.Record{
				"level": level,
				"text":  truncate(normalizeSpace(sel.Text()), maxHeadingText),
			})
		})
	}
}

func extractLinks(doc *goquery.Document, base *url.URL, rep *report.Report) {
	doc.Find("a[href]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= maxLinks {
			return false
		}
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return true
		}
		abs, linkType := resolveLink(base, href)
		rep.Append(report.CategoryLinks, report.Record{
			"text":   truncate(normalizeSpace(sel.Text()), maxLinkText),
			"url":    abs,
			"type":   linkType,
			"title":  sel.AttrOr("title", ""),
			"target": sel.AttrOr("target", ""),
			"rel":    sel.AttrOr("rel", ""),
		})
		return true
	})
}

// resolveLink absolutizes an href against the page URL and classifies it
// as internal or external by host. Non-navigational schemes (mailto,
// javascript, tel) stay as-is and count as external.
func resolveLink(base *url.URL, href string) (string, string) {
	ref, err := url.Parse(href)
	if err != nil {
		return href, "external"
	}
	switch ref.Scheme {
	case "", "http", "https":
	default:
		return href, "external"
	}
	abs := base.ResolveReference(ref)
	if abs.Host == base.Host {
		return abs.String(), "internal"
	}
	return abs.String(), "external"
}

func extractImages(doc *goquery.Document, base *url.URL, rep *report.Report) {
	count := 0
	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if count >= maxImages {
			return false
		}
		src := sel.AttrOr("src", sel.AttrOr("data-src", ""))
		if strings.TrimSpace(src) == "" {
			return true
		}
		if ref, err := url.Parse(strings.TrimSpace(src)); err == nil {
			src = base.ResolveReference(ref).String()
		}
		rep.Append(report.CategoryImages, report.Record{
			"src":     src,
			"alt":     sel.AttrOr("alt", ""),
			"title":   sel.AttrOr("title", ""),
			"width":   sel.AttrOr("width", ""),
			"height":  sel.AttrOr("height", ""),
			"loading": sel.AttrOr("loading", ""),
		})
		count++
		return true
	})
}

func extractTables(doc *goquery.Document, rep *report.Report) {
	doc.Find("table").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= maxTables {
			return false
		}
		rows := sel.Find("tr").Length()
		columns := 0
		sel.Find("tr").First().Find("td,th").Each(func(_ int, _ *goquery.Selection) {
			columns++
		})
		hasHeaders := sel.Find("tr").First().Find("th").Length() > 0
		rep.Append(report.CategoryTables, report.Record{
			"table_id":    strconv.Itoa(i + 1),
			"rows":        strconv.Itoa(rows),
			"columns":     strconv.Itoa(columns),
			"has_headers": strconv.FormatBool(hasHeaders),
			"caption":     normalizeSpace(sel.Find("caption").First().Text()),
		})
		return true
	})
}

func extractMetaTags(doc *goquery.Document, rep *report.Report) {
	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		name := sel.AttrOr("name", sel.AttrOr("property", sel.AttrOr("http-equiv", "")))
		content, ok := sel.Attr("content")
		if name == "" || !ok {
			return
		}
		rep.Append(report.CategoryMetaTags, report.Record{
			"name":    name,
			"content": content,
		})
	})
}

func extractSocialLinks(doc *goquery.Document, rep *report.Report) {
	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		property := sel.AttrOr("property", sel.AttrOr("name", ""))
		content := sel.AttrOr("content", "")
		if content == "" {
			return
		}
		var platform string
		switch {
		case strings.HasPrefix(property, "og:"):
			platform = "opengraph"
		case strings.HasPrefix(property, "twitter:"):
			platform = "twitter"
		default:
			return
		}
		rep.Append(report.CategorySocialLinks, report.Record{
			"platform": platform,
			"property": property,
			"content":  content,
		})
	})
}

func extractContactInfo(text string, rep *report.Report) {
	for _, email := range dedupe(emailRe.FindAllString(text, -1), maxContactItems) {
		rep.Append(report.CategoryContactInfo, report.Record{
			"type":  "email",
			"value": email,
		})
	}
	var phones []string
	for _, m := range phoneRe.FindAllString(text, -1) {
		if digitCount(m) >= 8 {
			phones = append(phones, strings.TrimSpace(m))
		}
	}
	for _, phone := range dedupe(phones, maxContactItems) {
		rep.Append(report.CategoryContactInfo, report.Record{
			"type":  "phone",
			"value": phone,
		})
	}
}

func extractForms(doc *goquery.Document, rep *report.Report) {
	doc.Find("form").Each(func(i int, sel *goquery.Selection) {
		method := strings.ToUpper(sel.AttrOr("method", "GET"))
		inputs := sel.Find("input,textarea,select")
		required := 0
		inputs.Each(func(_ int, in *goquery.Selection) {
			if _, ok := in.Attr("required"); ok {
				required++
			}
		})
		hasSubmit := sel.Find("input[type='submit'],button[type='submit'],button:not([type])").Length() > 0
		rep.Append(report.CategoryForms, report.Record{
			"form_id":        strconv.Itoa(i + 1),
			"action":         sel.AttrOr("action", ""),
			"method":         method,
			"input_count":    strconv.Itoa(inputs.Length()),
			"required_count": strconv.Itoa(required),
			"has_submit":     strconv.FormatBool(hasSubmit),
		})
	})
}

func extractLists(doc *goquery.Document, rep *report.Report) {
	doc.Find("ul,ol,dl").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= maxLists {
			return false
		}
		listType := goquery.NodeName(sel)
		itemSel := "li"
		if listType == "dl" {
			itemSel = "dt"
		}
		items := sel.Find(itemSel)
		var preview []string
		items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
			if len(preview) >= 3 {
				return false
			}
			if t := normalizeSpace(item.Text()); t != "" {
				preview = append(preview, t)
			}
			return true
		})
		rep.Append(report.CategoryLists, report.Record{
			"list_id":    strconv.Itoa(i + 1),
			"type":       listType,
			"item_count": strconv.Itoa(items.Length()),
			"preview":    truncate(strings.Join(preview, "; "), maxListPreview),
		})
		return true
	})
}

func extractSEOSummary(doc *goquery.Document, text string, rep *report.Report) {
	title := normalizeSpace(doc.Find("title").First().Text())
	description := doc.Find(`meta[name='description']`).First().AttrOr("content", "")

	internal, external := 0, 0
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := sel.AttrOr("href", "")
		switch {
		case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
			external++
		case strings.HasPrefix(href, "/"), strings.HasPrefix(href, "#"):
			internal++
		}
	})

	withoutAlt := 0
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if sel.AttrOr("alt", "") == "" {
			withoutAlt++
		}
	})

	rep.Append(report.CategorySEOSummary, report.Record{
		"title":              title,
		"title_length":       strconv.Itoa(len(title)),
		"description":        description,
		"description_length": strconv.Itoa(len(description)),
		"canonical":          doc.Find(`link[rel='canonical']`).First().AttrOr("href", ""),
		"robots":             doc.Find(`meta[name='robots']`).First().AttrOr("content", ""),
		"language":           doc.Find("html").First().AttrOr("lang", ""),
		"h1_count":           strconv.Itoa(doc.Find("h1").Length()),
		"h2_count":           strconv.Itoa(doc.Find("h2").Length()),
		"internal_links":     strconv.Itoa(internal),
		"external_links":     strconv.Itoa(external),
		"images_without_alt": strconv.Itoa(withoutAlt),
		"word_count":         strconv.Itoa(wordCount(text)),
	})
}

func extractContent(doc *goquery.Document, text string, rep *report.Report) {
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	conv := html2markdown.NewConverter("", true, nil)
	md := strings.TrimSpace(conv.Convert(body))

	rep.Append(report.CategoryContent, report.Record{
		"markdown":   md,
		"word_count": strconv.Itoa(wordCount(text)),
		"char_count": strconv.Itoa(len([]rune(text))),
	})
}

// pageText renders the document text with script and style noise
// removed. Mutates a clone so the markdown conversion still sees the
// full tree.
func pageText(doc *goquery.Document) string {
	clone := doc.Selection.Clone()
	clone.Find("script,style,noscript").Remove()
	return normalizeSpace(clone.Text())
}

func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func wordCount(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Fields(text))
}

func dedupe(values []string, limit int) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
