// Package download streams release artifacts to disk.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/bootman/internal/core/domain"
	"github.com/custodia-labs/bootman/internal/core/ports/driven"
	"github.com/custodia-labs/bootman/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.ArtifactFetcher = (*Fetcher)(nil)

const (
	// ChunkSize is the read size; progress is reported once per chunk.
	ChunkSize = 8192

	// ConnectTimeout bounds dialing and the TLS handshake.
	ConnectTimeout = 10 * time.Second

	// HeaderTimeout bounds the wait for response headers.
	HeaderTimeout = 10 * time.Second

	// IdleTimeout aborts a download that receives no bytes for this long.
	IdleTimeout = 10 * time.Second

	// PartSuffix is appended to the destination while downloading.
	PartSuffix = ".part"
)

// errStalled reports an idle-timeout abort.
var errStalled = errors.New("download stalled")

// Fetcher downloads files over HTTP. The overall time limit comes from the
// caller's context.
type Fetcher struct {
	client      *http.Client
	idleTimeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithIdleTimeout replaces the idle timeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.idleTimeout = d }
}

// New creates a fetcher with connect, header and idle timeouts.
func New(opts ...Option) *Fetcher {
	dialer := &net.Dialer{Timeout: ConnectTimeout}
	f := &Fetcher{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				TLSHandshakeTimeout:   ConnectTimeout,
				ResponseHeaderTimeout: HeaderTimeout,
			},
		},
		idleTimeout: IdleTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch streams url into dest+".part" and renames it onto dest once the
// body is complete. On failure the part file is removed and dest is left
// as it was.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string, onProgress driven.ProgressFunc) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &domain.NetworkError{Op: "fetch", Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.NetworkError{Op: "fetch", StatusCode: resp.StatusCode}
	}

	part := dest + PartSuffix
	out, err := os.OpenFile(part, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return &domain.NetworkError{Op: "create " + part, Err: err}
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			if rmErr := os.Remove(part); rmErr != nil && !os.IsNotExist(rmErr) {
				logger.Warn("remove %s: %v", part, rmErr)
			}
		}
	}()

	var stalled atomic.Bool
	watchdog := time.AfterFunc(f.idleTimeout, func() {
		stalled.Store(true)
		cancel()
	})
	defer watchdog.Stop()

	total := resp.ContentLength
	if total < 0 {
		total = -1
	}

	done, err := copyChunks(out, resp.Body, func(n int64) {
		watchdog.Reset(f.idleTimeout)
		if onProgress != nil {
			onProgress(n, total)
		}
	})
	if err != nil {
		if stalled.Load() {
			err = fmt.Errorf("%w: no data for %s", errStalled, f.idleTimeout)
		}
		return &domain.NetworkError{Op: "fetch", Err: err}
	}
	if total >= 0 && done != total {
		return &domain.NetworkError{
			Op:  "fetch",
			Err: fmt.Errorf("short body: got %d of %d bytes: %w", done, total, io.ErrUnexpectedEOF),
		}
	}

	if err = out.Sync(); err != nil {
		return &domain.NetworkError{Op: "sync " + part, Err: err}
	}
	if err = out.Close(); err != nil {
		return &domain.NetworkError{Op: "close " + part, Err: err}
	}
	if err = os.Rename(part, dest); err != nil {
		return &domain.NetworkError{Op: "rename " + part, Err: err}
	}

	logger.Debug("downloaded %d bytes to %s", done, dest)
	return nil
}

// copyChunks copies src to dst in ChunkSize reads, calling tick with the
// running byte count after each write.
func copyChunks(dst io.Writer, src io.Reader, tick func(done int64)) (int64, error) {
	buf := make([]byte, ChunkSize)
	var done int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return done, werr
			}
			done += int64(n)
			tick(done)
		}
		if rerr == io.EOF {
			return done, nil
		}
		if rerr != nil {
			return done, rerr
		}
	}
}
