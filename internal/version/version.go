// Copyright (c) 2015-2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version houses the version of tapctl and the taproot packages it
// is built from.
package version

import (
	"fmt"
	"strings"
)

// semanticAlphabet defines the allowed characters for the pre-release and
// build metadata portions of a semantic version string.
const semanticAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-."

// These constants define the application version and follow the semantic
// versioning 2.0.0 spec (http://semver.org/).
const (
	Major uint = 0
	Minor uint = 1
	Patch uint = 0
)

var (
	// PreRelease may be overridden at build time with:
	// '-ldflags "-X github.com/lwhile/mastering-taproot/internal/version.PreRelease=foo"'
	PreRelease = "beta"

	// BuildMetadata may be overridden at build time the same way as
	// PreRelease.
	BuildMetadata = ""
)

// String returns the application version as a properly formed string per the
// semantic versioning 2.0.0 spec (http://semver.org/).
func String() string {
	version := fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)

	// Invalid characters are stripped, so the separators are only added
	// for non-empty results.
	if preRelease := normalize(PreRelease); preRelease != "" {
		version = fmt.Sprintf("%s-%s", version, preRelease)
	}
	if build := normalize(BuildMetadata); build != "" {
		version = fmt.Sprintf("%s+%s", version, build)
	}

	return version
}

// normalize returns the passed string stripped of all characters which are
// not valid according to the semantic versioning alphabet.
func normalize(str string) string {
	var result strings.Builder
	for _, r := range str {
		if strings.ContainsRune(semanticAlphabet, r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
