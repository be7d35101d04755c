//go:build windows

package fsattr

import (
	"golang.org/x/sys/windows"
)

// windowsEpochOffsetMicros is the number of microseconds between the
// Windows FILETIME epoch (1 Jan 1601) and the Unix epoch (1 Jan 1970),
// lifted from the original implementation's WindowsTimeToPosixTime.
const windowsEpochOffsetMicros = 11644473600000000

func filetimeToMicros(ft windows.Filetime) uint64 {
	ticks := uint64(ft.HighDateTime)<<32 | uint64(ft.LowDateTime)
	return ticks/10 - windowsEpochOffsetMicros
}

func microsToFiletime(micros uint64) windows.Filetime {
	ticks := (micros + windowsEpochOffsetMicros) * 10
	return windows.Filetime{
		LowDateTime:  uint32(ticks & 0xffffffff),
		HighDateTime: uint32(ticks >> 32),
	}
}

func openForAttrs(path string, access uint32) (windows.Handle, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	return windows.CreateFile(p, access, windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil, windows.OPEN_EXISTING, windows.FILE_FLAG_BACKUP_SEMANTICS, 0)
}

func platformReadCreationMicros(path string) (uint64, error) {
	h, err := openForAttrs(path, windows.GENERIC_READ)
	if err != nil {
		return 0, err
	}
	defer windows.CloseHandle(h)

	var creation, access, write windows.Filetime
	if err := windows.GetFileTime(h, &creation, &access, &write); err != nil {
		return 0, err
	}
	return filetimeToMicros(creation), nil
}

func platformWriteCreationMicros(path string, micros uint64) error {
	h, err := openForAttrs(path, windows.GENERIC_WRITE)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)

	ft := microsToFiletime(micros)
	return windows.SetFileTime(h, &ft, nil, nil)
}

func platformReadModMicros(path string) (uint64, error) {
	h, err := openForAttrs(path, windows.GENERIC_READ)
	if err != nil {
		return 0, err
	}
	defer windows.CloseHandle(h)

	var creation, access, write windows.Filetime
	if err := windows.GetFileTime(h, &creation, &access, &write); err != nil {
		return 0, err
	}
	return filetimeToMicros(write), nil
}

func platformWriteModMicros(path string, micros uint64) error {
	h, err := openForAttrs(path, windows.GENERIC_WRITE)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)

	ft := microsToFiletime(micros)
	return windows.SetFileTime(h, nil, nil, &ft)
}

func platformReadExecutable(path string) (bool, error) {
	// Windows has no distinct executable bit on its native filesystems;
	// executability is determined by file extension, not metadata.
	_ = path
	return false, nil
}

func platformWriteExecutable(path string, executable bool) error {
	return nil
}

func platformReadReadOnly(path string) (bool, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false, err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return false, err
	}
	return attrs&windows.FILE_ATTRIBUTE_READONLY != 0, nil
}

func platformWriteReadOnly(path string, readOnly bool) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return err
	}
	if readOnly {
		attrs |= windows.FILE_ATTRIBUTE_READONLY
	} else {
		attrs &^= windows.FILE_ATTRIBUTE_READONLY
	}
	return windows.SetFileAttributes(p, attrs)
}
