// Package pathescape checks that a relative path never climbs above the
// root it is supposed to stay under. The same rule applies to a module's
// relTargetDir (spec §3's FileEntry), a package record's relativePath on
// extract (spec §4.7 step 5), and a composed module's destination (spec
// §4.6) — so it lives in one place and is shared by manifest, composer,
// and extractor, grounded on the original implementation's
// IsParentPath/RefersToRelativeParent checks.
package pathescape

import (
	"path/filepath"
	"strings"

	"github.com/holocm/sdv-packager/internal/pkgerr"
)

// Check returns nil iff rel is a relative path that, once cleaned, never
// starts with a ".." segment and never starts with a path separator.
func Check(rel string) error {
	if rel == "" {
		return nil
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, "\\") {
		return pkgerr.New(pkgerr.InvalidPath, "path %q must be relative", rel)
	}

	cleaned := filepath.ToSlash(filepath.Clean(rel))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return pkgerr.New(pkgerr.InvalidPath, "path %q escapes its root", rel)
	}
	return nil
}
