package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadingsFields(t *testing.T) {
	assert.Equal(t, []string{"level", "text"}, CategoryHeadings.Fields())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{name: "known category", input: "headings", ok: true},
		{name: "known category with underscore", input: "seo_summary", ok: true},
		{name: "unknown category", input: "widgets", ok: false},
		{name: "empty name", input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Parse(tt.input)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestMarshalIncludesEveryCategory(t *testing.T) {
	rep := New()
	rep.Append(CategoryHeadings, Record{"level": "h1", "text": "Example"})

	b, err := json.Marshal(rep)
	require.NoError(t, err)

	var raw map[string][]Record
	require.NoError(t, json.Unmarshal(b, &raw))

	assert.Len(t, raw, len(Categories()))
	for _, cat := range Categories() {
		recs, ok := raw[string(cat)]
		assert.True(t, ok, "category %s missing from payload", cat)
		assert.NotNil(t, recs)
	}
	assert.Equal(t, "Example", raw["headings"][0]["text"])
	assert.Empty(t, raw["links"])
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
		dropped []string
		check   func(t *testing.T, rep *Report)
	}{
		{
			name:    "string values",
			payload: `{"headings": [{"level": "h1", "text": "Example"}]}`,
			check: func(t *testing.T, rep *Report) {
				require.Equal(t, 1, rep.Len(CategoryHeadings))
				assert.Equal(t, "h1", rep.Records(CategoryHeadings)[0]["level"])
			},
		},
		{
			name:    "numbers carried as decimal strings",
			payload: `{"tables": [{"table_id": 1, "rows": 12, "has_headers": "true"}]}`,
			check: func(t *testing.T, rep *Report) {
				require.Equal(t, 1, rep.Len(CategoryTables))
				assert.Equal(t, "12", rep.Records(CategoryTables)[0]["rows"])
			},
		},
		{
			name:    "unknown categories dropped and reported",
			payload: `{"widgets": [{"a": "b"}], "aardvarks": [], "headings": []}`,
			dropped: []string{"aardvarks", "widgets"},
			check: func(t *testing.T, rep *Report) {
				assert.Equal(t, 0, rep.Total())
			},
		},
		{
			name:    "boolean value rejects the document",
			payload: `{"headings": [{"level": true}]}`,
			wantErr: true,
		},
		{
			name:    "category not a sequence rejects the document",
			payload: `{"headings": {"level": "h1"}}`,
			wantErr: true,
		},
		{
			name:    "malformed document",
			payload: `{"headings": `,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, dropped, err := Decode([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dropped, dropped)
			if tt.check != nil {
				tt.check(t, rep)
			}
		})
	}
}

func TestDecodedReportHasEveryCategory(t *testing.T) {
	rep, _, err := Decode([]byte(`{"headings": [{"level": "h1", "text": "Example"}]}`))
	require.NoError(t, err)
	for _, cat := range Categories() {
		assert.NotNil(t, rep.Records(cat), "category %s should be initialized", cat)
	}
}

func TestRoundTripThroughJSON(t *testing.T) {
	rep := New()
	rep.Append(CategoryContactInfo, Record{"type": "email", "value": "info@example.com"})

	b, err := json.Marshal(rep)
	require.NoError(t, err)

	var back Report
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, 1, back.Len(CategoryContactInfo))
	assert.Equal(t, "info@example.com", back.Records(CategoryContactInfo)[0]["value"])
}

func TestNonEmptyKeepsDeclaredOrder(t *testing.T) {
	rep := New()
	rep.Append(CategoryContent, Record{"markdown": "x", "word_count": "1", "char_count": "1"})
	rep.Append(CategoryHeadings, Record{"level": "h2", "text": "Second"})

	assert.Equal(t, []Category{CategoryHeadings, CategoryContent}, rep.NonEmpty())
}
