// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: Deployment document persistence (YAML file)
//   - ConfigStore: Helper preferences (TOML file)
//   - ReleaseSource: Release discovery (GitHub)
//   - ArtifactFetcher: Streaming downloads
//   - RuntimeProbe: Container runtime reachability and project status
//   - CommandRunner: External command execution with streamed output
//   - ProcessLauncher: Hand-off to a newly downloaded executable
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DocumentWatcher: Reloads the dashboard form on external edits
//   - URLOpener: Opens the frontend in a browser
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
