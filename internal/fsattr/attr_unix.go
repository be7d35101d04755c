//go:build !windows

package fsattr

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// platformReadCreationMicros: POSIX has no portable creation-time field
// (the generic st_ctime is the inode-change time, not creation time), so
// this is a no-op read returning 0 (spec §4.2's POSIX row).
func platformReadCreationMicros(path string) (uint64, error) {
	return 0, nil
}

// platformWriteCreationMicros: write no-op on generic POSIX.
func platformWriteCreationMicros(path string, micros uint64) error {
	return nil
}

func platformReadModMicros(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.ModTime().UnixMicro()), nil
}

func platformWriteModMicros(path string, micros uint64) error {
	t := time.UnixMicro(int64(micros))
	ts := unix.NsecToTimespec(t.UnixNano())
	// Leave access time untouched (UTIME_OMIT), set only modification time.
	times := [2]unix.Timespec{
		{Nsec: unix.UTIME_OMIT},
		ts,
	}
	return unix.UtimesNanoAt(unix.AT_FDCWD, path, times[:], 0)
}

func platformReadExecutable(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	mode := info.Mode().Perm()
	return mode&0o111 != 0, nil
}

func platformWriteExecutable(path string, executable bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if executable {
		mode |= 0o111
	} else {
		mode &^= 0o111
	}
	return os.Chmod(path, mode)
}
