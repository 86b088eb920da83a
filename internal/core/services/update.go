package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/bootman/internal/core/domain"
	"github.com/custodia-labs/bootman/internal/core/ports/driven"
	"github.com/custodia-labs/bootman/internal/core/ports/driving"
	"github.com/custodia-labs/bootman/internal/logger"
)

// Ensure UpdateOrchestrator implements the interface.
var _ driving.UpdateService = (*UpdateOrchestrator)(nil)

// DefaultDownloadTimeout caps a single artifact download when none is configured.
const DefaultDownloadTimeout = 10 * time.Minute

// UpdateOptions configures an UpdateOrchestrator.
type UpdateOptions struct {
	// CurrentVersion is the running helper's version tag.
	CurrentVersion string

	// ExecutablePath is the running binary. New binaries are saved beside it.
	ExecutablePath string

	// ExecutableName is the base name of saved binaries.
	ExecutableName string

	// DocumentPath is the deployment document. Templates are saved beside it.
	DocumentPath string

	// Matcher selects the update artifacts of a release.
	Matcher domain.AssetMatcher

	// DownloadTimeout caps each artifact download.
	DownloadTimeout time.Duration

	// LaunchArgs are passed to the new binary.
	LaunchArgs []string
}

// UpdateOrchestrator drives the self-update state machine.
// At most one session is active. Terminal states end the session.
type UpdateOrchestrator struct {
	source   driven.ReleaseSource
	fetcher  driven.ArtifactFetcher
	launcher driven.ProcessLauncher
	opts     UpdateOptions
	now      func() time.Time

	mu        sync.Mutex
	session   *domain.UpdateSession
	observers map[int]driving.UpdateObserver
	nextObs   int
}

// NewUpdateOrchestrator creates an update orchestrator.
func NewUpdateOrchestrator(
	source driven.ReleaseSource,
	fetcher driven.ArtifactFetcher,
	launcher driven.ProcessLauncher,
	opts UpdateOptions,
) *UpdateOrchestrator {
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = DefaultDownloadTimeout
	}
	if opts.ExecutableName == "" {
		opts.ExecutableName = domain.DefaultExecutableName
	}
	return &UpdateOrchestrator{
		source:    source,
		fetcher:   fetcher,
		launcher:  launcher,
		opts:      opts,
		now:       time.Now,
		observers: make(map[int]driving.UpdateObserver),
	}
}

// CurrentVersion returns the running helper's version tag.
func (o *UpdateOrchestrator) CurrentVersion() string {
	return o.opts.CurrentVersion
}

// Session returns a snapshot of the active session.
func (o *UpdateOrchestrator) Session() (domain.UpdateSession, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return domain.UpdateSession{}, false
	}
	return *o.session, true
}

// Subscribe registers an observer and returns a function removing it.
func (o *UpdateOrchestrator) Subscribe(observer driving.UpdateObserver) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextObs
	o.nextObs++
	o.observers[id] = observer
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.observers, id)
	}
}

// Check discovers the latest release and compares its tag with the running
// version. Any tag other than the running one counts as an update. A failed
// lookup ends the session in NoUpdate with the error recorded.
func (o *UpdateOrchestrator) Check(ctx context.Context) (domain.UpdateSession, error) {
	o.mu.Lock()
	if o.session != nil && o.session.State.Busy() {
		snap := *o.session
		o.mu.Unlock()
		return snap, domain.ErrUpdateInProgress
	}
	s := &domain.UpdateSession{
		ID:             uuid.NewString(),
		State:          domain.UpdateIdle,
		CurrentVersion: o.opts.CurrentVersion,
		StartedAt:      o.now(),
	}
	o.session = s
	o.mu.Unlock()

	logger.Debug("update %s: checking for a release newer than %s", s.ID, s.CurrentVersion)
	if _, err := o.transition(s, domain.UpdateChecking, nil); err != nil {
		return domain.UpdateSession{}, err
	}

	release, err := o.source.LatestRelease(ctx)
	if err != nil {
		logger.Warn("update check failed: %v", err)
		return o.transition(s, domain.UpdateNone, func(s *domain.UpdateSession) { s.Err = err })
	}

	setRelease := func(s *domain.UpdateSession) { s.Release = release }
	if release.Tag == s.CurrentVersion {
		logger.Info("helper is up to date (%s)", s.CurrentVersion)
		return o.transition(s, domain.UpdateNone, setRelease)
	}

	logger.Info("update available: %s (running %s)", release.Tag, s.CurrentVersion)
	return o.transition(s, domain.UpdateAvailable, setRelease)
}

// Offer marks an available update as shown to the user.
func (o *UpdateOrchestrator) Offer() (domain.UpdateSession, error) {
	s, err := o.active()
	if err != nil {
		return domain.UpdateSession{}, err
	}
	return o.transition(s, domain.UpdateAwaitingConfirmation, nil)
}

// Decline drops an available or offered update.
func (o *UpdateOrchestrator) Decline() error {
	s, err := o.active()
	if err != nil {
		return err
	}
	if _, err := o.transition(s, domain.UpdateIdle, nil); err != nil {
		return err
	}
	logger.Info("update %s declined", s.ID)
	return nil
}

// Install downloads the offered release's binary and document template,
// launches the new binary and exits. Any failure ends the session in Failed
// and leaves the running binary untouched.
func (o *UpdateOrchestrator) Install(ctx context.Context) (domain.UpdateSession, error) {
	s, err := o.active()
	if err != nil {
		return domain.UpdateSession{}, err
	}

	if snap, _ := o.Session(); snap.State.Busy() {
		return snap, domain.ErrUpdateInProgress
	}
	snap, err := o.transition(s, domain.UpdateDownloading, nil)
	if err != nil {
		return snap, err
	}
	release := *snap.Release

	assets, err := o.opts.Matcher.Select(release)
	if err != nil {
		return o.fail(s, err)
	}

	plan, err := o.plan(release.Tag, assets)
	if err != nil {
		return o.fail(s, err)
	}
	o.update(s, func(s *domain.UpdateSession) {
		s.Assets = assets
		s.Plan = plan
	})

	downloads := []struct {
		asset domain.Asset
		dest  string
	}{
		{assets.Executable, plan.ExecutablePath},
		{assets.ConfigTemplate, plan.ConfigTemplatePath},
	}
	for _, d := range downloads {
		if err := o.download(ctx, s, d.asset, d.dest); err != nil {
			return o.fail(s, err)
		}
	}

	if _, err := o.transition(s, domain.UpdateSwapping, nil); err != nil {
		return o.fail(s, err)
	}

	pid, err := o.launcher.Launch(plan.ExecutablePath, o.opts.LaunchArgs)
	if err != nil {
		return o.fail(s, fmt.Errorf("launch %s: %w", plan.ExecutablePath, err))
	}
	logger.Info("started %s (pid %d)", plan.ExecutablePath, pid)

	final, err := o.transition(s, domain.UpdateRestarted, nil)
	if err != nil {
		return final, err
	}
	o.launcher.Exit(0)
	return final, nil
}

func (o *UpdateOrchestrator) download(ctx context.Context, s *domain.UpdateSession, asset domain.Asset, dest string) error {
	ctx, cancel := context.WithTimeout(ctx, o.opts.DownloadTimeout)
	defer cancel()

	url, err := o.source.ResolveDownloadURL(ctx, asset.ID)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", asset.Name, err)
	}

	logger.Debug("downloading %s to %s", asset.Name, dest)
	o.setProgress(s, domain.UpdateProgress{Asset: asset.Name, Done: 0, Total: -1})
	err = o.fetcher.Fetch(ctx, url, dest, func(done, total int64) {
		o.setProgress(s, domain.UpdateProgress{Asset: asset.Name, Done: done, Total: total})
	})
	if err != nil {
		return fmt.Errorf("download %s: %w", asset.Name, err)
	}
	return nil
}

// plan computes the save paths for tag. The new binary never overwrites the
// running one.
func (o *UpdateOrchestrator) plan(tag string, assets domain.UpdateAssets) (domain.UpdatePlan, error) {
	safeTag := sanitizeTag(tag)
	if safeTag == "" {
		return domain.UpdatePlan{}, fmt.Errorf("%w: release tag %q", domain.ErrInvalidInput, tag)
	}

	exeDir := filepath.Dir(o.opts.ExecutablePath)
	exeName := fmt.Sprintf("%s_%s%s", o.opts.ExecutableName, safeTag, executableExt(assets.Executable.Name))
	plan := domain.UpdatePlan{
		ExecutablePath:     filepath.Join(exeDir, exeName),
		ConfigTemplatePath: filepath.Join(filepath.Dir(o.opts.DocumentPath), "docker-compose-"+safeTag+".yml"),
	}

	if o.opts.ExecutablePath != "" && filepath.Clean(plan.ExecutablePath) == filepath.Clean(o.opts.ExecutablePath) {
		return domain.UpdatePlan{}, fmt.Errorf("%w: update would overwrite the running executable", domain.ErrInvalidInput)
	}
	return plan, nil
}

func (o *UpdateOrchestrator) active() (*domain.UpdateSession, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil, domain.ErrNoUpdateSession
	}
	return o.session, nil
}

// transition moves s to next, applying mutate under the lock, and notifies
// observers. Reaching a terminal state ends the session.
func (o *UpdateOrchestrator) transition(
	s *domain.UpdateSession,
	next domain.UpdateState,
	mutate func(*domain.UpdateSession),
) (domain.UpdateSession, error) {
	o.mu.Lock()
	if o.session != s {
		o.mu.Unlock()
		return domain.UpdateSession{}, domain.ErrNoUpdateSession
	}
	if !s.State.CanTransition(next) {
		snap := *s
		o.mu.Unlock()
		return snap, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, snap.State, next)
	}
	s.State = next
	if mutate != nil {
		mutate(s)
	}
	if next.Terminal() {
		o.session = nil
	}
	snap := *s
	observers := o.snapshotObservers()
	o.mu.Unlock()

	for _, obs := range observers {
		obs(snap)
	}
	return snap, nil
}

func (o *UpdateOrchestrator) setProgress(s *domain.UpdateSession, p domain.UpdateProgress) {
	o.update(s, func(s *domain.UpdateSession) { s.Progress = p })
}

// update mutates s without a state change and notifies observers.
func (o *UpdateOrchestrator) update(s *domain.UpdateSession, mutate func(*domain.UpdateSession)) {
	o.mu.Lock()
	if o.session != s {
		o.mu.Unlock()
		return
	}
	mutate(s)
	snap := *s
	observers := o.snapshotObservers()
	o.mu.Unlock()

	for _, obs := range observers {
		obs(snap)
	}
}

func (o *UpdateOrchestrator) fail(s *domain.UpdateSession, err error) (domain.UpdateSession, error) {
	logger.Error("update %s failed: %v", s.ID, err)
	snap, _ := o.transition(s, domain.UpdateFailed, func(s *domain.UpdateSession) { s.Err = err })
	snap.State = domain.UpdateFailed
	snap.Err = err
	return snap, err
}

// snapshotObservers must be called with mu held.
func (o *UpdateOrchestrator) snapshotObservers() []driving.UpdateObserver {
	observers := make([]driving.UpdateObserver, 0, len(o.observers))
	for i := 0; i < o.nextObs; i++ {
		if obs, ok := o.observers[i]; ok {
			observers = append(observers, obs)
		}
	}
	return observers
}

func executableExt(assetName string) string {
	if strings.EqualFold(filepath.Ext(assetName), ".exe") {
		return ".exe"
	}
	return ""
}

// sanitizeTag keeps a release tag usable as a file name component.
func sanitizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.NewReplacer("/", "-", `\`, "-", ":", "-").Replace(tag)
	if tag == "." || tag == ".." {
		return ""
	}
	return tag
}
