package sdvpkg

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/holocm/sdv-packager/internal/pkgerr"
)

// headerFixedPrefixLength is endianness(1) + interfaceVersion(4) +
// signature(8) + creationTimestampMicros(8) + headerTotalLength(4).
const headerFixedPrefixLength = 1 + 4 + 8 + 8 + 4

// Header is the package's fixed-format preamble (spec §3's
// PackageHeader).
type Header struct {
	Endianness              Endianness
	InterfaceVersion        uint32
	CreationTimestampMicros uint64
	ManifestText            string
}

// WriteHeader serializes h to w and returns the header's trailing
// checksum, which seeds the running CRC for the first record.
func WriteHeader(w io.Writer, h Header) (uint32, error) {
	order := h.Endianness.ByteOrder()
	manifestBytes := []byte(h.ManifestText)

	body := make([]byte, 0, headerFixedPrefixLength+4+len(manifestBytes))
	body = append(body, byte(h.Endianness))
	body = appendUint32(order, body, h.InterfaceVersion)
	body = append(body, []byte(signatureLiteral)...)
	body = appendUint64(order, body, h.CreationTimestampMicros)

	headerTotalLength := roundUpTo8(len(body) + 4 /* headerTotalLength field */ + 4 + len(manifestBytes) + 4 /* checksum */)
	if headerTotalLength > MaxHeaderLength {
		return 0, pkgerr.New(pkgerr.IncompatiblePackage, "header length %d exceeds maximum %d", headerTotalLength, MaxHeaderLength)
	}
	body = appendUint32(order, body, uint32(headerTotalLength))
	body = writeLengthPrefixedBytes(order, body, manifestBytes)

	padding := headerTotalLength - len(body) - 4
	body = append(body, make([]byte, padding)...)

	checksum := crc32.Checksum(body, crcTable)
	body = appendUint32(order, body, checksum)

	if _, err := w.Write(body); err != nil {
		return 0, pkgerr.Wrap(pkgerr.CannotOpenFile, err, "cannot write package header")
	}
	return checksum, nil
}

// ReadHeader parses a package header from r, validates its endianness,
// signature and checksum, and returns the header along with its trailing
// checksum (the running CRC seed for the first record).
func ReadHeader(r io.Reader) (Header, uint32, error) {
	prefix := make([]byte, headerFixedPrefixLength)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return Header{}, 0, pkgerr.Wrap(pkgerr.IncompatiblePackage, err, "cannot read package header")
	}

	declared := Endianness(prefix[0])
	if declared != HostEndianness() {
		return Header{}, 0, pkgerr.New(pkgerr.IncompatiblePackage, "package endianness does not match this platform")
	}
	order := declared.ByteOrder()

	interfaceVersion := order.Uint32(prefix[1:5])
	signature := string(prefix[5:13])
	if signature != signatureLiteral {
		return Header{}, 0, pkgerr.New(pkgerr.IncompatiblePackage, "missing %q signature", signatureLiteral)
	}
	creationTimestampMicros := order.Uint64(prefix[13:21])
	headerTotalLength := order.Uint32(prefix[21:25])

	if headerTotalLength > MaxHeaderLength {
		return Header{}, 0, pkgerr.New(pkgerr.IncompatiblePackage, "header length %d exceeds maximum %d", headerTotalLength, MaxHeaderLength)
	}
	if int(headerTotalLength) < len(prefix)+4+4 {
		return Header{}, 0, pkgerr.New(pkgerr.IncompatiblePackage, "header length %d too small", headerTotalLength)
	}

	rest := make([]byte, int(headerTotalLength)-len(prefix))
	if _, err := io.ReadFull(r, rest); err != nil {
		return Header{}, 0, pkgerr.Wrap(pkgerr.IncompatiblePackage, err, "cannot read package header")
	}

	manifestBytes, afterManifest, err := readLengthPrefixedBytes(order, rest)
	if err != nil {
		return Header{}, 0, err
	}
	if len(afterManifest) < 4 {
		return Header{}, 0, pkgerr.New(pkgerr.IncompatiblePackage, "header has no room for its checksum")
	}
	storedChecksum := order.Uint32(afterManifest[len(afterManifest)-4:])

	full := append(append([]byte{}, prefix...), rest...)
	computed := crc32.Checksum(full[:len(full)-4], crcTable)
	if computed != storedChecksum {
		return Header{}, 0, pkgerr.New(pkgerr.IncorrectCRC, "package header checksum mismatch")
	}

	return Header{
		Endianness:              declared,
		InterfaceVersion:        interfaceVersion,
		CreationTimestampMicros: creationTimestampMicros,
		ManifestText:            string(manifestBytes),
	}, storedChecksum, nil
}

func appendUint32(order binary.ByteOrder, buf []byte, v uint32) []byte {
	field := make([]byte, 4)
	order.PutUint32(field, v)
	return append(buf, field...)
}

func appendUint64(order binary.ByteOrder, buf []byte, v uint64) []byte {
	field := make([]byte, 8)
	order.PutUint64(field, v)
	return append(buf, field...)
}
