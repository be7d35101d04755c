// Package fsattr reads and writes the per-file attributes the packager
// round-trips: creation time, modification time, the read-only bit, and
// the executable bit. Support for each attribute differs per OS; missing
// capabilities are no-ops rather than errors (spec §4.2).
package fsattr

// maxSaneSeconds is the sanity clamp from spec §4.2: timestamps later
// than 1 Jan 2050 00:00:00 UTC are treated as unknown/corrupted.
const maxSaneSeconds = 2524608000

// maxSaneNanos bounds the nanosecond remainder of a clamped timestamp.
const maxSaneNanos = 999999999

// Attributes is the full set of per-file metadata the packager
// round-trips through a package record.
type Attributes struct {
	CreationMicros     uint64
	ModificationMicros uint64
	ReadOnly           bool
	Executable         bool
}

// clampMicros applies the sanity clamp: a timestamp whose seconds field
// exceeds maxSaneSeconds, or whose nanosecond remainder exceeds
// maxSaneNanos, is treated as unknown and reported as 0.
func clampMicros(micros uint64) uint64 {
	seconds := micros / 1_000_000
	nanosRemainder := (micros % 1_000_000) * 1000
	if seconds > maxSaneSeconds || nanosRemainder > maxSaneNanos {
		return 0
	}
	return micros
}

// Read reads all four attributes of path, applying the per-OS capability
// fallback and the timestamp sanity clamp.
func Read(path string) (Attributes, error) {
	creation, err := platformReadCreationMicros(path)
	if err != nil {
		return Attributes{}, err
	}
	mod, err := platformReadModMicros(path)
	if err != nil {
		return Attributes{}, err
	}
	readOnly, err := platformReadReadOnly(path)
	if err != nil {
		return Attributes{}, err
	}
	executable, err := platformReadExecutable(path)
	if err != nil {
		return Attributes{}, err
	}
	return Attributes{
		CreationMicros:     clampMicros(creation),
		ModificationMicros: clampMicros(mod),
		ReadOnly:           readOnly,
		Executable:         executable,
	}, nil
}

// Write applies all four attributes to path. A capability unsupported by
// the current OS/build is silently skipped, never an error.
func Write(path string, attrs Attributes) error {
	if c := clampMicros(attrs.CreationMicros); c != 0 {
		if err := platformWriteCreationMicros(path, c); err != nil {
			return err
		}
	}
	if m := clampMicros(attrs.ModificationMicros); m != 0 {
		if err := platformWriteModMicros(path, m); err != nil {
			return err
		}
	}
	if err := platformWriteExecutable(path, attrs.Executable); err != nil {
		return err
	}
	if err := platformWriteReadOnly(path, attrs.ReadOnly); err != nil {
		return err
	}
	return nil
}
