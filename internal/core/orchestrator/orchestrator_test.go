package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pagereport/internal/core/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService imitates the extraction service: the submitted URL picks
// the behavior.
func fakeService(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		switch {
		case strings.Contains(req.URL, "fail"):
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"success": false, "error": "boom"}`))
		case strings.Contains(req.URL, "slow"):
			time.Sleep(250 * time.Millisecond)
			_, _ = w.Write([]byte(`{"headings": [{"level": "h2", "text": "Slow"}]}`))
		default:
			_, _ = w.Write([]byte(`{"headings": [{"level": "h1", "text": "Example"}]}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestOrchestrator(t *testing.T, timeout time.Duration) *Orchestrator {
	t.Helper()
	srv := fakeService(t)
	o := New(NewClient(srv.URL, timeout))
	t.Cleanup(o.Close)
	return o
}

func TestScrapeSuccess(t *testing.T) {
	o := newTestOrchestrator(t, 2*time.Second)
	ctx := context.Background()

	seq, err := o.Start(ctx, "https://example.com")
	require.NoError(t, err)

	update, err := o.Wait(ctx, seq)
	require.NoError(t, err)
	assert.Equal(t, StateReady, update.State)
	assert.Equal(t, StateReady, o.State())
	require.NotNil(t, o.Current())
	assert.Equal(t, "Example", o.Current().Records(report.CategoryHeadings)[0]["text"])
	assert.NoError(t, o.Err())

	path := filepath.Join(t.TempDir(), "headings.csv")
	require.NoError(t, o.ExportCategory(report.CategoryHeadings, path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "level,text\nh1,Example\n", string(b))
}

func TestStartInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "empty url", url: ""},
		{name: "blank url", url: "   "},
		{name: "unsupported scheme", url: "ftp://example.com"},
	}

	o := newTestOrchestrator(t, time.Second)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Start(context.Background(), tt.url)
			require.Error(t, err)
			assert.Equal(t, KindInvalidInput, KindOf(err))
			// Rejected input never leaves Idle.
			assert.Equal(t, StateIdle, o.State())
			assert.Nil(t, o.Current())
		})
	}
}

func TestStartRejectedWhileRequesting(t *testing.T) {
	o := newTestOrchestrator(t, 2*time.Second)
	ctx := context.Background()

	seq, err := o.Start(ctx, "https://example.com/slow")
	require.NoError(t, err)
	assert.Equal(t, StateRequesting, o.State())

	_, err = o.Start(ctx, "https://example.com/other")
	assert.ErrorIs(t, err, ErrRequestInFlight)

	update, err := o.Wait(ctx, seq)
	require.NoError(t, err)
	assert.Equal(t, StateReady, update.State)
	assert.Equal(t, "Slow", o.Current().Records(report.CategoryHeadings)[0]["text"])
}

func TestFailureKeepsPreviousReport(t *testing.T) {
	o := newTestOrchestrator(t, 2*time.Second)
	ctx := context.Background()

	seq, err := o.Start(ctx, "https://example.com")
	require.NoError(t, err)
	_, err = o.Wait(ctx, seq)
	require.NoError(t, err)

	seq, err = o.Start(ctx, "https://example.com/fail")
	require.NoError(t, err)
	update, err := o.Wait(ctx, seq)
	require.Error(t, err)
	assert.Equal(t, KindRemoteFailure, KindOf(err))
	assert.Contains(t, err.Error(), "boom")

	assert.Equal(t, StateFailed, update.State)
	assert.Equal(t, StateFailed, o.State())
	require.NotNil(t, o.Current())
	assert.Equal(t, "Example", o.Current().Records(report.CategoryHeadings)[0]["text"])
	assert.Error(t, o.Err())
}

func TestTimeoutIsNetworkFailure(t *testing.T) {
	o := newTestOrchestrator(t, 50*time.Millisecond)
	ctx := context.Background()

	seq, err := o.Start(ctx, "https://example.com/slow")
	require.NoError(t, err)
	_, err = o.Wait(ctx, seq)
	require.Error(t, err)
	assert.Equal(t, KindNetworkFailure, KindOf(err))
	assert.Equal(t, StateFailed, o.State())
	assert.Nil(t, o.Current())
}

func TestStaleResultDiscarded(t *testing.T) {
	o := newTestOrchestrator(t, 2*time.Second)
	ctx := context.Background()

	seq, err := o.Start(ctx, "https://example.com")
	require.NoError(t, err)
	_, err = o.Wait(ctx, seq)
	require.NoError(t, err)

	// A completion carrying an old sequence tag must not replace the
	// current report.
	stale := report.New()
	stale.Append(report.CategoryHeadings, report.Record{"level": "h6", "text": "Stale"})
	o.results <- result{seq: seq - 1, rep: stale}

	update, err := o.Wait(ctx, seq-1)
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, StateReady, update.State)
	assert.Equal(t, "Example", o.Current().Records(report.CategoryHeadings)[0]["text"])
}

func TestUpdatesChannelObservesCompletions(t *testing.T) {
	o := newTestOrchestrator(t, 2*time.Second)
	ctx := context.Background()

	seq, err := o.Start(ctx, "https://example.com")
	require.NoError(t, err)
	_, err = o.Wait(ctx, seq)
	require.NoError(t, err)

	select {
	case u := <-o.Updates():
		assert.Equal(t, seq, u.Seq)
		assert.Equal(t, StateReady, u.State)
	case <-time.After(time.Second):
		t.Fatal("no update observed")
	}
}

func TestExportWithoutReport(t *testing.T) {
	o := newTestOrchestrator(t, time.Second)

	err := o.ExportCategory(report.CategoryHeadings, filepath.Join(t.TempDir(), "h.csv"))
	require.Error(t, err)
	assert.Equal(t, KindExportFailure, KindOf(err))

	_, err = o.ExportAll(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, KindExportFailure, KindOf(err))
}

func TestExportAllAfterScrape(t *testing.T) {
	o := newTestOrchestrator(t, 2*time.Second)
	ctx := context.Background()

	seq, err := o.Start(ctx, "https://example.com")
	require.NoError(t, err)
	_, err = o.Wait(ctx, seq)
	require.NoError(t, err)

	dir := t.TempDir()
	written, err := o.ExportAll(dir)
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.True(t, strings.HasPrefix(filepath.Base(written[0]), "headings_"))
}
