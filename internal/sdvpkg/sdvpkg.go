// Package sdvpkg implements the package wire format (spec §3, §4.5,
// §6): a length-prefixed, zero-padded, chained-CRC-32C binary stream
// consisting of a header, a sequence of file records terminated by a
// final marker, and a closing footer checksum. It is a pure codec —
// callers supply the manifest text, file contents and attributes; this
// package only knows how to lay them out as bytes and verify them back.
package sdvpkg

import (
	"encoding/binary"
	"hash/crc32"
	"runtime"

	"github.com/holocm/sdv-packager/internal/pkgerr"
)

const (
	// signatureLiteral is the literal "S D V _ I P C K" from spec §3.
	signatureLiteral = "SDV_IPCK"

	// MaxHeaderLength is the hard cap on a package header's total length
	// (spec §4.5's size sanity rule).
	MaxHeaderLength = 32768

	// MaxRecordLength is the hard cap on any individual record's total
	// length (spec §4.5's size sanity rule, §9 Open Question #1: kept as
	// an explicit constant rather than a configurable option).
	MaxRecordLength = 24 * 1024 * 1024
)

// crcTable is the CRC-32C (Castagnoli) polynomial table used for every
// checksum in this format.
var crcTable = crc32.MakeTable(crc32.Castagnoli)

// Endianness is the one-byte tag at the start of a package header.
type Endianness byte

const (
	LittleEndian Endianness = 0
	BigEndian    Endianness = 1
)

func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// HostEndianness reports the byte order this process runs under. Go's
// standard library has no portable accessor for the host's native byte
// order, so this switches on the architectures that are big-endian by
// spec; every other supported GOARCH is little-endian.
func HostEndianness() Endianness {
	switch runtime.GOARCH {
	case "ppc64", "s390x", "mips", "mips64":
		return BigEndian
	default:
		return LittleEndian
	}
}

func roundUpTo8(n int) int {
	if rem := n % 8; rem != 0 {
		return n + (8 - rem)
	}
	return n
}

// writeLengthPrefixedBytes appends a uint32 length followed by data.
func writeLengthPrefixedBytes(order binary.ByteOrder, buf []byte, data []byte) []byte {
	lenField := make([]byte, 4)
	order.PutUint32(lenField, uint32(len(data)))
	buf = append(buf, lenField...)
	buf = append(buf, data...)
	return buf
}

// readLengthPrefixedBytes reads a uint32 length followed by that many
// bytes from the start of b, returning the slice and the remainder of b.
func readLengthPrefixedBytes(order binary.ByteOrder, b []byte) (data []byte, rest []byte, err error) {
	if len(b) < 4 {
		return nil, nil, pkgerr.New(pkgerr.IncompatiblePackage, "truncated length prefix")
	}
	n := order.Uint32(b[:4])
	b = b[4:]
	if uint64(n) > uint64(len(b)) {
		return nil, nil, pkgerr.New(pkgerr.IncompatiblePackage, "length-prefixed field overruns available data")
	}
	return b[:n], b[n:], nil
}
