//go:build linux && sdv_immutable

package fsattr

import (
	"os"

	"golang.org/x/sys/unix"
)

// Built only with -tags sdv_immutable: uses the ext2/ext4/btrfs/xfs
// FS_IOC_GETFLAGS/FS_IOC_SETFLAGS extended-attribute ioctls to represent
// the read-only flag as the filesystem's immutable bit. Not all Linux
// filesystems or kernel configurations support this, so failures here
// are treated as "unsupported" rather than fatal (spec §4.2's "optional
// via extended capabilities" row).

func platformReadReadOnly(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	flags, err := unix.IoctlGetInt(int(f.Fd()), unix.FS_IOC_GETFLAGS)
	if err != nil {
		// Filesystem doesn't support the ioctl; treat as unsupported, not fatal.
		return false, nil
	}
	return flags&unix.FS_IMMUTABLE_FL != 0, nil
}

func platformWriteReadOnly(path string, readOnly bool) error {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	flags, err := unix.IoctlGetInt(int(f.Fd()), unix.FS_IOC_GETFLAGS)
	if err != nil {
		return nil // unsupported filesystem, no-op
	}
	if readOnly {
		flags |= unix.FS_IMMUTABLE_FL
	} else {
		flags &^= unix.FS_IMMUTABLE_FL
	}
	if err := unix.IoctlSetInt(int(f.Fd()), unix.FS_IOC_SETFLAGS, flags); err != nil {
		return nil // unsupported filesystem, no-op
	}
	return nil
}
