package domain

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Default release source of the DPT boot manager.
const (
	DefaultReleaseOwner        = "custodia-labs"
	DefaultReleaseRepo         = "dpt"
	DefaultReleaseRepositoryID = int64(861008208)
)

// DefaultExecutableName is the base name of downloaded helper binaries.
const DefaultExecutableName = "BootManagerDPT"

// DocumentSettings locates the deployment document.
type DocumentSettings struct {
	// Path is the compose document path. Empty means the version-qualified
	// document next to the executable.
	Path string
}

// ReleaseSettings configures where updates come from.
type ReleaseSettings struct {
	// Owner and Repo name the GitHub repository publishing releases.
	Owner string
	Repo  string

	// RepositoryID is used when Owner or Repo is empty.
	RepositoryID int64

	// Token authenticates against private repositories. Optional.
	Token string

	// ExecutableName is the base name for downloaded binaries.
	ExecutableName string

	// ExecutableSuffix selects the binary asset of a release.
	ExecutableSuffix string
}

// UsesRepositoryID reports whether releases are looked up by numeric id.
func (r ReleaseSettings) UsesRepositoryID() bool {
	return r.Owner == "" || r.Repo == ""
}

// Source returns a printable name for the release repository.
func (r ReleaseSettings) Source() string {
	if r.UsesRepositoryID() {
		return fmt.Sprintf("repository #%d", r.RepositoryID)
	}
	return r.Owner + "/" + r.Repo
}

// UpdateSettings configures the self-update behaviour.
type UpdateSettings struct {
	// CheckOnStartup runs an update check when the dashboard opens.
	CheckOnStartup bool

	// DownloadTimeout caps each artifact download.
	DownloadTimeout time.Duration
}

// RuntimeSettings configures the container runtime and compose invocation.
type RuntimeSettings struct {
	// ComposeCommand is the orchestration command and its leading arguments.
	ComposeCommand []string

	// Project is the compose project name.
	Project string

	// StartCommand launches the container runtime when it is not reachable.
	StartCommand []string

	// RetryAttempts is the total number of reachability polls after
	// starting the runtime.
	RetryAttempts int

	// RetryInterval is the fixed wait between polls.
	RetryInterval time.Duration

	// StopOnExit stops the deployment when the dashboard closes.
	StopOnExit bool
}

// AppSettings holds all helper preferences.
type AppSettings struct {
	Document DocumentSettings
	Release  ReleaseSettings
	Update   UpdateSettings
	Runtime  RuntimeSettings
}

// DefaultAppSettings returns settings for the current platform.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Release: ReleaseSettings{
			Owner:            DefaultReleaseOwner,
			Repo:             DefaultReleaseRepo,
			RepositoryID:     DefaultReleaseRepositoryID,
			ExecutableName:   DefaultExecutableName,
			ExecutableSuffix: DefaultExecutableSuffix(runtime.GOOS, runtime.GOARCH),
		},
		Update: UpdateSettings{
			CheckOnStartup:  true,
			DownloadTimeout: 10 * time.Minute,
		},
		Runtime: RuntimeSettings{
			ComposeCommand: []string{"docker-compose"},
			Project:        "dpt",
			StartCommand:   DefaultRuntimeStartCommand(runtime.GOOS),
			RetryAttempts:  36,
			RetryInterval:  5 * time.Second,
			StopOnExit:     true,
		},
	}
}

// DefaultExecutableSuffix returns the asset suffix of the helper binary for a platform.
func DefaultExecutableSuffix(goos, goarch string) string {
	if goos == "windows" {
		return ".exe"
	}
	return "_" + goos + "_" + goarch
}

// DefaultRuntimeStartCommand returns the Docker Desktop launcher for a platform.
func DefaultRuntimeStartCommand(goos string) []string {
	switch goos {
	case "windows":
		return []string{`C:\Program Files\Docker\Docker\Docker Desktop.exe`}
	case "darwin":
		return []string{"open", "-a", "Docker"}
	default:
		return []string{"systemctl", "--user", "start", "docker-desktop"}
	}
}

// Validate checks that the settings can drive updates and deployments.
func (s AppSettings) Validate() error {
	if s.Release.UsesRepositoryID() && s.Release.RepositoryID <= 0 {
		return fmt.Errorf("%w: release source needs owner and repo or a repository id", ErrInvalidInput)
	}
	if strings.TrimSpace(s.Release.ExecutableSuffix) == "" {
		return fmt.Errorf("%w: executable suffix must not be empty", ErrInvalidInput)
	}
	if s.Update.DownloadTimeout <= 0 {
		return fmt.Errorf("%w: download timeout must be positive", ErrInvalidInput)
	}
	if len(s.Runtime.ComposeCommand) == 0 || s.Runtime.ComposeCommand[0] == "" {
		return fmt.Errorf("%w: compose command must not be empty", ErrInvalidInput)
	}
	if s.Runtime.Project == "" {
		return fmt.Errorf("%w: compose project must not be empty", ErrInvalidInput)
	}
	if s.Runtime.RetryAttempts < 1 {
		return fmt.Errorf("%w: retry attempts must be at least 1", ErrInvalidInput)
	}
	if s.Runtime.RetryInterval <= 0 {
		return fmt.Errorf("%w: retry interval must be positive", ErrInvalidInput)
	}
	return nil
}
