package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bootman/internal/core/domain"
)

type progressLog struct {
	done  []int64
	total []int64
}

func (p *progressLog) record(done, total int64) {
	p.done = append(p.done, done)
	p.total = append(p.total, total)
}

func TestFetcher_Fetch(t *testing.T) {
	body := strings.Repeat("x", 3*ChunkSize+100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "BootManagerDPT_v1.1.0")
	progress := &progressLog{}

	err := New().Fetch(context.Background(), srv.URL, dest, progress.record)

	require.NoError(t, err)
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
	assert.NoFileExists(t, dest+PartSuffix)

	require.NotEmpty(t, progress.done)
	assert.Equal(t, int64(len(body)), progress.done[len(progress.done)-1])
	for i, total := range progress.total {
		assert.Equal(t, int64(len(body)), total)
		assert.LessOrEqual(t, progress.done[i], total)
		if i > 0 {
			assert.LessOrEqual(t, progress.done[i]-progress.done[i-1], int64(ChunkSize))
		}
	}
}

func TestFetcher_Fetch_UnknownLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		flusher := w.(http.Flusher)
		_, _ = w.Write([]byte("services:\n"))
		flusher.Flush()
		_, _ = w.Write([]byte("  web: {}\n"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "docker-compose-v1.1.0.yml")
	progress := &progressLog{}

	require.NoError(t, New().Fetch(context.Background(), srv.URL, dest, progress.record))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "services:\n  web: {}\n", string(got))
	for _, total := range progress.total {
		assert.Equal(t, int64(-1), total)
	}
}

func TestFetcher_Fetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "artifact")

	err := New().Fetch(context.Background(), srv.URL, dest, nil)

	var netErr *domain.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusGone, netErr.StatusCode)
	assert.NoFileExists(t, dest)
	assert.NoFileExists(t, dest+PartSuffix)
}

func TestFetcher_Fetch_ShortBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte("truncated"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "artifact")

	err := New().Fetch(context.Background(), srv.URL, dest, nil)

	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.NoFileExists(t, dest)
	assert.NoFileExists(t, dest+PartSuffix)
}

func TestFetcher_Fetch_Stalled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		_, _ = w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	dest := filepath.Join(t.TempDir(), "artifact")

	err := New(WithIdleTimeout(50*time.Millisecond)).Fetch(context.Background(), srv.URL, dest, nil)

	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.ErrorIs(t, err, errStalled)
	assert.NoFileExists(t, dest)
	assert.NoFileExists(t, dest+PartSuffix)
}

func TestFetcher_Fetch_OverallDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000000")
		for {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(5 * time.Millisecond):
				_, _ = w.Write([]byte("tick"))
				w.(http.Flusher).Flush()
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	dest := filepath.Join(t.TempDir(), "artifact")

	err := New().Fetch(ctx, srv.URL, dest, nil)

	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.NoFileExists(t, dest)
}

func TestFetcher_Fetch_KeepsExistingDestOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "docker-compose-v1.1.0.yml")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	err := New().Fetch(context.Background(), srv.URL, dest, nil)

	require.Error(t, err)
	got, readErr := os.ReadFile(dest)
	require.NoError(t, readErr)
	assert.Equal(t, "old", string(got))
}

func TestFetcher_Fetch_BadURL(t *testing.T) {
	err := New().Fetch(context.Background(), "://nope", filepath.Join(t.TempDir(), "x"), nil)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}
