// Package github discovers helper releases published on GitHub.
//
// # Architecture
//
// The package implements [driven.ReleaseSource]. It comprises:
//
//   - Source: looks up the latest release and resolves asset download URLs
//   - RateLimiter: throttles API calls and honours GitHub's rate limit headers
//
// # Repository selection
//
// Releases are read from an owner/repo pair. When either is empty the
// numeric repository id is used instead, which survives repository renames.
//
// # Authentication
//
// Public repositories need no token. Unauthenticated requests are limited to
// 60 per hour, which is ample for a check at startup. A token raises the
// limit and grants access to private repositories.
//
// # Downloads
//
// Asset downloads are not performed here. ResolveDownloadURL asks the API for
// the asset with Accept: application/octet-stream and returns the redirect
// location, which the artifact fetcher then streams without credentials.
package github
