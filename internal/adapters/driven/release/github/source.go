package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/bootman/internal/core/domain"
	"github.com/custodia-labs/bootman/internal/core/ports/driven"
	"github.com/custodia-labs/bootman/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.ReleaseSource = (*Source)(nil)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Config selects the release repository.
type Config struct {
	Owner        string
	Repo         string
	RepositoryID int64

	// Token is optional. It is required for private repositories.
	Token string

	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise.
	BaseURL string

	// Timeout is the per-request timeout. Zero means DefaultTimeout.
	Timeout time.Duration
}

func (c Config) usesRepositoryID() bool {
	return c.Owner == "" || c.Repo == ""
}

// Source reads releases through the GitHub REST API.
type Source struct {
	gh          *gh.Client
	cfg         Config
	rateLimiter *RateLimiter

	mu        sync.Mutex
	owner     string
	repo      string
	assetURLs map[int64]string
}

// New creates a release source for cfg.
func New(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.usesRepositoryID() && cfg.RepositoryID <= 0 {
		return nil, ErrNoRepository
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := &http.Client{}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	httpClient.Timeout = cfg.Timeout

	client := gh.NewClient(httpClient)
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		client.BaseURL = u
	}

	s := &Source{
		gh:          client,
		cfg:         cfg,
		rateLimiter: NewRateLimiter(),
		assetURLs:   make(map[int64]string),
	}
	if !cfg.usesRepositoryID() {
		s.owner, s.repo = cfg.Owner, cfg.Repo
	}
	return s, nil
}

// LatestRelease returns the newest published release.
func (s *Source) LatestRelease(ctx context.Context) (*domain.Release, error) {
	const op = "latest release"

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, networkError(op, fmt.Errorf("rate limit wait: %w", err))
	}

	var (
		rel  *gh.RepositoryRelease
		resp *gh.Response
		err  error
	)
	if s.cfg.usesRepositoryID() {
		rel, resp, err = s.latestByID(ctx)
	} else {
		rel, resp, err = s.gh.Repositories.GetLatestRelease(ctx, s.cfg.Owner, s.cfg.Repo)
	}
	s.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, networkError(op, s.wrapError(err, op))
	}

	release := &domain.Release{
		Tag:    rel.GetTagName(),
		Name:   rel.GetName(),
		Assets: make([]domain.Asset, 0, len(rel.Assets)),
	}

	s.mu.Lock()
	for _, a := range rel.Assets {
		release.Assets = append(release.Assets, domain.Asset{
			ID:   a.GetID(),
			Name: a.GetName(),
			Size: int64(a.GetSize()),
		})
		if u := a.GetBrowserDownloadURL(); u != "" {
			s.assetURLs[a.GetID()] = u
		}
	}
	s.mu.Unlock()

	logger.Debug("latest release of %s: %s (%d assets)", s.source(), release.Tag, len(release.Assets))
	return release, nil
}

// ResolveDownloadURL returns the location the asset's content is served from.
func (s *Source) ResolveDownloadURL(ctx context.Context, assetID int64) (string, error) {
	const op = "resolve asset"

	owner, repo, err := s.repository(ctx)
	if err != nil {
		return "", networkError(op, err)
	}

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return "", networkError(op, fmt.Errorf("rate limit wait: %w", err))
	}

	rc, redirect, err := s.gh.Repositories.DownloadReleaseAsset(ctx, owner, repo, assetID, nil)
	if err != nil {
		return "", networkError(op, s.wrapError(err, op))
	}
	if rc != nil {
		_ = rc.Close()
		s.mu.Lock()
		fallback := s.assetURLs[assetID]
		s.mu.Unlock()
		if fallback == "" {
			return "", networkError(op, fmt.Errorf("asset %d: %w", assetID, ErrNoRedirect))
		}
		return fallback, nil
	}
	return redirect, nil
}

func (s *Source) latestByID(ctx context.Context) (*gh.RepositoryRelease, *gh.Response, error) {
	u := fmt.Sprintf("repositories/%d/releases/latest", s.cfg.RepositoryID)
	req, err := s.gh.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}
	rel := new(gh.RepositoryRelease)
	resp, err := s.gh.Do(ctx, req, rel)
	if err != nil {
		return nil, resp, err
	}
	return rel, resp, nil
}

// repository returns owner and name, looking them up by id on first use.
func (s *Source) repository(ctx context.Context) (string, string, error) {
	s.mu.Lock()
	owner, repo := s.owner, s.repo
	s.mu.Unlock()
	if owner != "" && repo != "" {
		return owner, repo, nil
	}

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return "", "", fmt.Errorf("rate limit wait: %w", err)
	}
	r, resp, err := s.gh.Repositories.GetByID(ctx, s.cfg.RepositoryID)
	s.updateRateLimitFromResponse(resp)
	if err != nil {
		return "", "", s.wrapError(err, "get repository")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner, s.repo = r.GetOwner().GetLogin(), r.GetName()
	return s.owner, s.repo, nil
}

func (s *Source) source() string {
	if s.cfg.usesRepositoryID() {
		return fmt.Sprintf("repository #%d", s.cfg.RepositoryID)
	}
	return s.cfg.Owner + "/" + s.cfg.Repo
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (s *Source) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	s.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (s *Source) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}
