package domain

import "strings"

// Release is a published version of the helper.
type Release struct {
	// Tag is the version tag, compared verbatim against the running version.
	Tag string

	// Name is the release title.
	Name string

	// Assets are the downloadable files attached to the release.
	Assets []Asset
}

// Asset is one downloadable file of a release.
type Asset struct {
	ID   int64
	Name string
	Size int64
}

// AssetNames lists the asset file names in release order.
func (r Release) AssetNames() []string {
	names := make([]string, len(r.Assets))
	for i, a := range r.Assets {
		names[i] = a.Name
	}
	return names
}

// AssetKind distinguishes the two artifacts an update needs.
type AssetKind string

const (
	// AssetExecutable is the replacement helper binary.
	AssetExecutable AssetKind = "executable"

	// AssetConfigTemplate is the deployment document template for the new version.
	AssetConfigTemplate AssetKind = "config template"
)

// DefaultConfigSuffixes identify the deployment document template of a release.
var DefaultConfigSuffixes = []string{".yml", ".yaml"}

// AssetMatcher selects update artifacts by file name suffix.
type AssetMatcher struct {
	ExecutableSuffix string
	ConfigSuffixes   []string
}

// UpdateAssets is the pair of artifacts selected from a release.
type UpdateAssets struct {
	Executable     Asset
	ConfigTemplate Asset
}

// Select picks the first executable and the first config template by suffix.
// Matching is case-insensitive. Both are required.
func (m AssetMatcher) Select(r Release) (UpdateAssets, error) {
	var out UpdateAssets
	var haveExe, haveConfig bool
	for _, a := range r.Assets {
		name := strings.ToLower(a.Name)
		switch {
		case !haveExe && m.ExecutableSuffix != "" && strings.HasSuffix(name, strings.ToLower(m.ExecutableSuffix)):
			out.Executable = a
			haveExe = true
		case !haveConfig && hasAnySuffix(name, m.ConfigSuffixes):
			out.ConfigTemplate = a
			haveConfig = true
		}
	}
	if !haveExe {
		return UpdateAssets{}, &AssetNotFoundError{Tag: r.Tag, Kind: AssetExecutable, Assets: r.AssetNames()}
	}
	if !haveConfig {
		return UpdateAssets{}, &AssetNotFoundError{Tag: r.Tag, Kind: AssetConfigTemplate, Assets: r.AssetNames()}
	}
	return out, nil
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(name, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
