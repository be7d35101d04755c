//go:build !windows && !(linux && sdv_immutable)

package fsattr

// The generic POSIX API has no notion of a per-file "read-only" flag
// distinct from the owner-write permission bit (which we don't touch
// here, since unlike the executable bit it isn't part of this
// attribute's semantics on POSIX) — spec §4.2 calls for a no-op.
func platformReadReadOnly(path string) (bool, error) {
	return false, nil
}

func platformWriteReadOnly(path string, readOnly bool) error {
	return nil
}
