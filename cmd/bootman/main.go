// Command bootman configures, runs and updates a local DPT deployment.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/bootman/internal/adapters/driven/config/file"
	"github.com/custodia-labs/bootman/internal/adapters/driven/document/yamldoc"
	"github.com/custodia-labs/bootman/internal/adapters/driven/download"
	"github.com/custodia-labs/bootman/internal/adapters/driven/process"
	"github.com/custodia-labs/bootman/internal/adapters/driven/release/github"
	"github.com/custodia-labs/bootman/internal/adapters/driven/runtime/docker"
	"github.com/custodia-labs/bootman/internal/adapters/driving/cli"
	"github.com/custodia-labs/bootman/internal/core/domain"
	"github.com/custodia-labs/bootman/internal/core/services"
	"github.com/custodia-labs/bootman/internal/logger"
)

// version is set with -ldflags "-X main.version=v1.2.3".
var version = "dev"

// tokenEnv overrides release.token when set.
const tokenEnv = "BOOTMAN_GITHUB_TOKEN"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("locating home directory: %w", err)
		}
		configDir = filepath.Join(home, ".bootman")
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening preferences: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("reading preferences: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, nil, fmt.Errorf("preferences in %s: %w", configStore.Path(), err)
	}
	if token := os.Getenv(tokenEnv); token != "" {
		settings.Release.Token = token
	}

	exePath, err := executablePath()
	if err != nil {
		return nil, nil, err
	}

	documentPath := opts.DocumentPath
	if documentPath == "" {
		documentPath = settings.Document.Path
	}
	if documentPath == "" {
		documentPath = filepath.Join(filepath.Dir(exePath), "docker-compose-"+cli.Version()+".yml")
	}
	configService, err := services.NewConfigurationService(openDocument(documentPath), domain.DefaultSchema())
	if err != nil {
		return nil, nil, err
	}

	logger.Section("Release")
	source, err := github.New(ctx, github.Config{
		Owner:        settings.Release.Owner,
		Repo:         settings.Release.Repo,
		RepositoryID: settings.Release.RepositoryID,
		Token:        settings.Release.Token,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("release source: %w", err)
	}
	logger.Debug("releases: %s", settings.Release.Source())

	launcher := process.NewLauncher()
	updateService := services.NewUpdateOrchestrator(source, download.New(), launcher, services.UpdateOptions{
		CurrentVersion: cli.Version(),
		ExecutablePath: exePath,
		ExecutableName: settings.Release.ExecutableName,
		DocumentPath:   documentPath,
		Matcher: domain.AssetMatcher{
			ExecutableSuffix: settings.Release.ExecutableSuffix,
			ConfigSuffixes:   domain.DefaultConfigSuffixes,
		},
		DownloadTimeout: settings.Update.DownloadTimeout,
	})

	logger.Section("Runtime")
	probe, err := docker.NewProbe(settings.Runtime.StartCommand)
	if err != nil {
		return nil, nil, fmt.Errorf("container runtime: %w", err)
	}
	deploymentService := services.NewDeploymentSupervisor(probe, process.NewRunner(), services.DeploymentOptions{
		ComposeCommand: settings.Runtime.ComposeCommand,
		Project:        settings.Runtime.Project,
		DocumentPath:   documentPath,
		RetryAttempts:  settings.Runtime.RetryAttempts,
		RetryInterval:  settings.Runtime.RetryInterval,
	})

	svc := &cli.Services{
		Configuration: configService,
		Settings:      settingsService,
		Update:        updateService,
		Deployment:    deploymentService,
		Opener:        process.NewBrowserOpener(),
		TUI: &cli.TUIConfig{
			Watch:          watchDocument,
			Handoff:        launcher,
			CheckOnStartup: settings.Update.CheckOnStartup,
			StopOnExit:     settings.Runtime.StopOnExit,
		},
	}

	cleanup := func() {
		if err := probe.Close(); err != nil {
			logger.Debug("closing docker client: %v", err)
		}
	}
	return svc, cleanup, nil
}

// openDocument returns the store for path. A missing file is reported but
// not fatal: settings and updates still work without it.
func openDocument(path string) *yamldoc.Store {
	logger.Section("Document")
	logger.Debug("document: %s", path)
	store := yamldoc.NewStore(path)
	if !store.Exists() {
		logger.Warn("deployment document %s not found", path)
	}
	return store
}

func watchDocument(path string) (cli.DocumentWatcher, error) {
	w, err := yamldoc.NewWatcher(path, yamldoc.DefaultDebounce)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// executablePath returns the running binary with symlinks resolved, so
// updates land next to the real file.
func executablePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}
