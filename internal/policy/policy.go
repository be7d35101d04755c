// Package policy decides whether an installation mutation may proceed,
// given an update rule and the old and new versions involved (spec
// §4.8).
package policy

import "github.com/holocm/sdv-packager/internal/manifest"

// UpdateRule selects how an existing installation may be replaced.
type UpdateRule int

const (
	// Overwrite always allows the mutation.
	Overwrite UpdateRule = iota
	// UpdateWhenNew allows the mutation only if the new version is
	// strictly greater than the old one.
	UpdateWhenNew
	// NotAllowed rejects any mutation over a pre-existing install.
	NotAllowed
)

// Allow reports whether a mutation from vOld to vNew is permitted under
// rule r.
func Allow(vOld, vNew manifest.PackageVersion, r UpdateRule) bool {
	switch r {
	case Overwrite:
		return true
	case UpdateWhenNew:
		return vNew.Compare(vOld) > 0
	case NotAllowed:
		// A prior install at the target is always rejected under
		// NotAllowed; there is no version under which it becomes
		// acceptable, since any existing install already means "a prior
		// install exists".
		return false
	default:
		return false
	}
}
