package report

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Category identifies one class of extracted data. The set is fixed at
// compile time; remote responses carrying anything else are dropped by
// Decode rather than admitted.
type Category string

const (
	CategoryHeadings    Category = "headings"
	CategoryLinks       Category = "links"
	CategoryImages      Category = "images"
	CategoryTables      Category = "tables"
	CategoryMetaTags    Category = "meta_tags"
	CategorySocialLinks Category = "social_links"
	CategoryContactInfo Category = "contact_info"
	CategoryForms       Category = "forms"
	CategoryLists       Category = "lists"
	CategorySEOSummary  Category = "seo_summary"
	CategoryContent     Category = "content"
)

var categories = []Category{
	CategoryHeadings,
	CategoryLinks,
	CategoryImages,
	CategoryTables,
	CategoryMetaTags,
	CategorySocialLinks,
	CategoryContactInfo,
	CategoryForms,
	CategoryLists,
	CategorySEOSummary,
	CategoryContent,
}

var categoryFields = map[Category][]string{
	CategoryHeadings:    {"level", "text"},
	CategoryLinks:       {"text", "url", "type", "title", "target", "rel"},
	CategoryImages:      {"src", "alt", "title", "width", "height", "loading"},
	CategoryTables:      {"table_id", "rows", "columns", "has_headers", "caption"},
	CategoryMetaTags:    {"name", "content"},
	CategorySocialLinks: {"platform", "property", "content"},
	CategoryContactInfo: {"type", "value"},
	CategoryForms:       {"form_id", "action", "method", "input_count", "required_count", "has_submit"},
	CategoryLists:       {"list_id", "type", "item_count", "preview"},
	CategorySEOSummary: {
		"title", "title_length", "description", "description_length",
		"canonical", "robots", "language", "h1_count", "h2_count",
		"internal_links", "external_links", "images_without_alt", "word_count",
	},
	CategoryContent: {"markdown", "word_count", "char_count"},
}

// Categories returns every declared category in a stable order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Parse returns the category for a name, or false for anything outside
// the declared set.
func Parse(name string) (Category, bool) {
	c := Category(name)
	_, ok := categoryFields[c]
	return c, ok
}

// Fields returns the declared record shape for the category. The order
// is the CSV header order.
func (c Category) Fields() []string {
	f := categoryFields[c]
	out := make([]string, len(f))
	copy(out, f)
	return out
}

// Record is one flat extracted item. Values are strings; numeric fields
// are carried as their decimal rendering so exports are lossless.
type Record map[string]string

// Report is the structured result of one extraction, partitioned by
// category. Every declared category is always present, empty ones as an
// empty sequence.
type Report struct {
	data map[Category][]Record
}

// New returns a report with every category initialized empty.
func New() *Report {
	r := &Report{data: make(map[Category][]Record, len(categories))}
	for _, c := range categories {
		r.data[c] = []Record{}
	}
	return r
}

// Append adds records to a category. Unknown categories are ignored.
func (r *Report) Append(c Category, recs ...Record) {
	if _, ok := categoryFields[c]; !ok {
		return
	}
	r.data[c] = append(r.data[c], recs...)
}

// Records returns the record sequence for a category, never nil for a
// declared category.
func (r *Report) Records(c Category) []Record {
	return r.data[c]
}

// Len reports the record count of a category.
func (r *Report) Len(c Category) int { return len(r.data[c]) }

// NonEmpty returns the categories that hold at least one record, in the
// declared order.
func (r *Report) NonEmpty() []Category {
	var out []Category
	for _, c := range categories {
		if len(r.data[c]) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Total returns the record count across all categories.
func (r *Report) Total() int {
	n := 0
	for _, recs := range r.data {
		n += len(recs)
	}
	return n
}

// MarshalJSON renders the category mapping with every declared category
// present.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := make(map[Category][]Record, len(categories))
	for _, c := range categories {
		recs := r.data[c]
		if recs == nil {
			recs = []Record{}
		}
		out[c] = recs
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a category mapping, silently dropping unknown
// categories. Use Decode when the dropped names matter.
func (r *Report) UnmarshalJSON(b []byte) error {
	rep, _, err := Decode(b)
	if err != nil {
		return err
	}
	r.data = rep.data
	return nil
}

// Decode parses a remote category mapping. Unknown categories are
// dropped and returned by name so the caller can log them. Record values
// must be JSON strings or numbers; anything else rejects the whole
// document.
func Decode(b []byte) (*Report, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, nil, fmt.Errorf("malformed report document: %w", err)
	}

	rep := New()
	var dropped []string
	for name, payload := range raw {
		cat, ok := Parse(name)
		if !ok {
			dropped = append(dropped, name)
			continue
		}
		recs, err := decodeRecords(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("category %s: %w", name, err)
		}
		rep.data[cat] = append(rep.data[cat], recs...)
	}
	sort.Strings(dropped)
	return rep, dropped, nil
}

func decodeRecords(payload json.RawMessage) ([]Record, error) {
	var rawRecs []map[string]json.RawMessage
	if err := json.Unmarshal(payload, &rawRecs); err != nil {
		return nil, fmt.Errorf("not a record sequence: %w", err)
	}
	recs := make([]Record, 0, len(rawRecs))
	for i, rawRec := range rawRecs {
		rec := make(Record, len(rawRec))
		for field, val := range rawRec {
			s, err := decodeScalar(val)
			if err != nil {
				return nil, fmt.Errorf("record %d field %q: %w", i, field, err)
			}
			rec[field] = s
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func decodeScalar(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("value %s is neither string nor number", string(raw))
}
