// Package composer orchestrates file collection (C1), attribute capture
// (C2), module introspection (C3) and manifest construction (C4) into a
// finished package: either serialized bytes, a streamed file, or a
// direct install tree (spec §4.6).
package composer

import (
	"path/filepath"
	"strings"

	"github.com/holocm/sdv-packager/internal/diag"
	"github.com/holocm/sdv-packager/internal/manifest"
	"github.com/holocm/sdv-packager/internal/pathescape"
	"github.com/holocm/sdv-packager/internal/pathresolve"
	"github.com/holocm/sdv-packager/internal/pkgerr"
)

const sdvExtension = ".sdv"

// AddModuleFlag mirrors spec §4.6's addModule flags bitset. The zero
// value is kWildcards with no structure preservation.
type AddModuleFlag int

const (
	// UseRegex interprets the pattern as a regular expression instead of
	// a wildcard expression.
	UseRegex AddModuleFlag = 1 << iota
	// KeepStructure preserves the discovered sub-directory structure
	// under relTargetDir. Requires a non-empty base.
	KeepStructure
)

// fileEntry is spec §3's FileEntry: an absolute source path paired with
// the relative target directory it lands under.
type fileEntry struct {
	absSourcePath string
	relTargetDir  string
}

// Composer accumulates a draft composition. It owns its own FileEntry
// list and property map directly (spec §3's ownership summary), not a
// draft Manifest — the real Manifest is only built, with its required
// install name, at Compose/ComposeDirect time.
type Composer struct {
	introspector manifest.Introspector
	entries      []fileEntry
	destinations map[string]bool
	properties   map[string]string
}

// New returns an empty Composer. introspector extracts the embedded
// component manifest of any *.sdv file later added via AddModule.
func New(introspector manifest.Introspector) *Composer {
	return &Composer{
		introspector: introspector,
		destinations: map[string]bool{},
		properties:   map[string]string{},
	}
}

// Clear discards every entry and property added so far, returning the
// Composer to its idle state.
func (c *Composer) Clear() {
	c.entries = nil
	c.destinations = map[string]bool{}
	c.properties = map[string]string{}
}

// AddProperty records a manifest property to be attached at compose
// time.
func (c *Composer) AddProperty(name, value string) error {
	if strings.ContainsAny(name, `'"`) {
		return pkgerr.New(pkgerr.InvalidManifest, "property name %q must not contain quotes", name)
	}
	c.properties[name] = value
	return nil
}

// AddModule resolves base+patternString into a list of absolute file
// paths (via wildcard or regex matching, per flags) and schedules each
// match for inclusion under relTargetDir. Two matches landing at the
// same destination (relTargetDir/filename), across any number of calls,
// raise DuplicateFile; the same source at two different destinations is
// fine.
func (c *Composer) AddModule(base, patternString, relTargetDir string, flags AddModuleFlag) error {
	if err := pathescape.Check(relTargetDir); err != nil {
		return err
	}

	keepStructure := flags&KeepStructure != 0
	if keepStructure && base == "" {
		return pkgerr.New(pkgerr.MissingBasePath, "keeping directory structure requires a non-empty base path")
	}

	var matches []string
	var err error
	if flags&UseRegex != 0 {
		matches, err = pathresolve.ResolveRegex(base, patternString)
	} else {
		matches, err = pathresolve.ResolveWildcards(base, patternString)
	}
	if err != nil {
		return err
	}

	for _, abs := range matches {
		targetDir := relTargetDir
		if keepStructure {
			rel, relErr := filepath.Rel(base, abs)
			if relErr != nil {
				return pkgerr.Wrap(pkgerr.InvalidPath, relErr, "cannot relativize %q against base %q", abs, base)
			}
			if sub := filepath.ToSlash(filepath.Dir(rel)); sub != "." {
				targetDir = filepath.ToSlash(filepath.Join(relTargetDir, sub))
			}
		}

		dest := filepath.ToSlash(filepath.Join(targetDir, filepath.Base(abs)))
		if c.destinations[dest] {
			return pkgerr.New(pkgerr.DuplicateFile, "destination %q is already occupied", dest)
		}
		c.destinations[dest] = true
		c.entries = append(c.entries, fileEntry{absSourcePath: abs, relTargetDir: targetDir})
	}
	return nil
}

// buildManifest assembles a valid Manifest from the entries and
// properties collected so far, installName finally in hand.
func (c *Composer) buildManifest(installName string) (*manifest.Manifest, error) {
	m := manifest.New()
	if err := m.Create(installName); err != nil {
		return nil, err
	}
	for name, value := range c.properties {
		if err := m.SetProperty(name, value); err != nil {
			return nil, err
		}
	}
	for _, e := range c.entries {
		before := len(m.ComponentList())
		if err := m.AddModule(c.introspector, e.absSourcePath, e.relTargetDir); err != nil {
			return nil, err
		}
		if filepath.Ext(e.absSourcePath) == sdvExtension && len(m.ComponentList()) == before {
			relModulePath := filepath.ToSlash(filepath.Join(e.relTargetDir, filepath.Base(e.absSourcePath)))
			diag.WarnNoComponents(relModulePath)
		}
	}
	return m, nil
}
