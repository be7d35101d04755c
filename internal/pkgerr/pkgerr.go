// Package pkgerr defines the error taxonomy shared by every component of
// the installation packager core. Every failure raised by this module maps
// to exactly one Kind.
package pkgerr

import "fmt"

// Kind identifies one entry in the packager's error taxonomy.
type Kind int

const (
	_ Kind = iota
	// InvalidPath marks a path that is absolute where it must be relative,
	// escapes its root, does not exist, or mismatches an expected base.
	InvalidPath
	// MissingBasePath marks a base directory that is required but absent.
	MissingBasePath
	// DuplicateFile marks two additions landing at the same destination.
	DuplicateFile
	// DuplicateInstall marks a pre-existing installation that cannot be
	// replaced under the chosen update rule.
	DuplicateInstall
	// ModuleNotFound marks a file scheduled for inclusion that disappeared
	// between resolution and composition.
	ModuleNotFound
	// FailedManifestCreation marks a refused install name or broken
	// manifest invariant.
	FailedManifestCreation
	// FailedSaveManifest marks an I/O error writing install_manifest.toml.
	FailedSaveManifest
	// InvalidManifest marks manifest TOML that cannot be parsed, lacks
	// required fields, or carries the wrong schema version.
	InvalidManifest
	// IncompatiblePackage marks a missing signature, endian mismatch,
	// interface-version mismatch, or out-of-range record length.
	IncompatiblePackage
	// IncorrectCRC marks a chained or in-record checksum mismatch.
	IncorrectCRC
	// BufferTooSmall marks a data stream that ended before a required
	// record could be read.
	BufferTooSmall
	// CannotCreateDir marks a directory-creation I/O failure.
	CannotCreateDir
	// CannotRemoveDir marks a directory-removal I/O failure.
	CannotRemoveDir
	// CannotOpenFile marks a file-open I/O failure.
	CannotOpenFile
	// FileCorrupt marks a file whose on-disk content could not be read
	// back consistently.
	FileCorrupt
)

var names = map[Kind]string{
	InvalidPath:             "InvalidPath",
	MissingBasePath:         "MissingBasePath",
	DuplicateFile:           "DuplicateFile",
	DuplicateInstall:        "DuplicateInstall",
	ModuleNotFound:          "ModuleNotFound",
	FailedManifestCreation:  "FailedManifestCreation",
	FailedSaveManifest:      "FailedSaveManifest",
	InvalidManifest:         "InvalidManifest",
	IncompatiblePackage:     "IncompatiblePackage",
	IncorrectCRC:            "IncorrectCRC",
	BufferTooSmall:          "BufferTooSmall",
	CannotCreateDir:         "CannotCreateDir",
	CannotRemoveDir:         "CannotRemoveDir",
	CannotOpenFile:          "CannotOpenFile",
	FileCorrupt:             "FileCorrupt",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "UnknownError"
}

// Error is the concrete error type raised by every operation in this
// module. Context carries the offending path, field, or name so that
// callers get an actionable message without needing to format it
// themselves.
type Error struct {
	Kind    Kind
	Context string
	Err     error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Context == "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s", e.Kind, e.Err)
		}
		return e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Context, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Context)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, pkgerr.Sentinel(pkgerr.InvalidPath)) work by
// comparing only the Kind of the two *Error values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an *Error of the given Kind with a formatted context string.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Context: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error of the given Kind that wraps cause, with a
// formatted context string.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Context: fmt.Sprintf(format, args...), Err: cause}
}

// Sentinel returns a bare *Error carrying only a Kind, suitable as the
// target of errors.Is.
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}

// Is reports whether err's Kind (at any depth of wrapping) equals kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}

// Collector aggregates multiple errors raised while validating or parsing
// a multi-field structure (a manifest, a package definition), mirroring
// the teacher's ErrorCollector.
type Collector struct {
	Errors []error
}

// Add appends err to the collector if it is non-nil.
func (c *Collector) Add(err error) {
	if err != nil {
		c.Errors = append(c.Errors, err)
	}
}

// Addf appends a new error built from a Kind and formatted context.
func (c *Collector) Addf(kind Kind, format string, args ...interface{}) {
	c.Errors = append(c.Errors, New(kind, format, args...))
}

// HasErrors reports whether any error was collected.
func (c *Collector) HasErrors() bool {
	return len(c.Errors) > 0
}

// Err returns the first collected error, or nil if none were collected.
// The operations in this module fail fast on their first error and do
// not use Collector.
func (c *Collector) Err() error {
	if len(c.Errors) == 0 {
		return nil
	}
	return c.Errors[0]
}
