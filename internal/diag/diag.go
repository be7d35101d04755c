// Package diag holds the packager's plain-text diagnostics: warnings
// written straight to stderr, the same shape the teacher's util.go uses
// for ShowWarning/WarnDeprecatedKey. No structured logging library
// appears anywhere in the retrieved pack, so this stays stdlib-only; see
// DESIGN.md for the explicit justification.
package diag

import (
	"fmt"
	"os"
)

// Warn prints a colored warning line to stderr.
func Warn(msg string) {
	fmt.Fprintf(os.Stderr, "\x1b[33m\x1b[1m>>\x1b[0m %s\n", msg)
}

// Warnf is Warn with Printf-style formatting.
func Warnf(format string, args ...interface{}) {
	Warn(fmt.Sprintf(format, args...))
}

// WarnNoComponents tells the user a module was added but contributed no
// components, the way WarnDeprecatedKey tells them about a stale key.
func WarnNoComponents(relModulePath string) {
	Warnf("module %q exports no components", relModulePath)
}

// WarnDeprecatedKey tells the user a manifest key has been superseded.
func WarnDeprecatedKey(key string) {
	Warnf("the %q key is deprecated", key)
}
