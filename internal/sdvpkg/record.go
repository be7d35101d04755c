package sdvpkg

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/holocm/sdv-packager/internal/pkgerr"
)

// RecordType distinguishes a BinaryFile record from the FinalMarker that
// terminates a package's record stream (spec §3's PackageRecord).
type RecordType uint32

const (
	RecordBinaryFile  RecordType = 1
	RecordFinalMarker RecordType = 2
)

// recordCommonPrefixLength is recordType(4) + priorChainChecksum(4) +
// recordLength(4).
const recordCommonPrefixLength = 4 + 4 + 4

// BinaryFileRecord is one file's content and attributes, as carried by a
// PackageRecord of type BinaryFile.
type BinaryFileRecord struct {
	RelativePath       string
	ReadOnly           bool
	Executable         bool
	CreationMicros     uint64
	ModificationMicros uint64
	Content            []byte
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// WriteBinaryFileRecord writes rec, chained from runningChecksum, and
// returns the new running checksum.
func WriteBinaryFileRecord(w io.Writer, order binary.ByteOrder, runningChecksum uint32, rec BinaryFileRecord) (uint32, error) {
	payload := make([]byte, 0, len(rec.RelativePath)+len(rec.Content)+32)
	payload = writeLengthPrefixedBytes(order, payload, []byte(rec.RelativePath))
	payload = append(payload, boolByte(rec.ReadOnly), boolByte(rec.Executable))
	payload = appendUint64(order, payload, rec.CreationMicros)
	payload = appendUint64(order, payload, rec.ModificationMicros)
	payload = writeLengthPrefixedBytes(order, payload, rec.Content)

	return writeRecord(w, order, runningChecksum, RecordBinaryFile, payload)
}

// WriteFinalMarker writes the stream-terminating marker record, chained
// from runningChecksum, and returns the new running checksum.
func WriteFinalMarker(w io.Writer, order binary.ByteOrder, runningChecksum uint32) (uint32, error) {
	return writeRecord(w, order, runningChecksum, RecordFinalMarker, nil)
}

func writeRecord(w io.Writer, order binary.ByteOrder, runningChecksum uint32, recordType RecordType, payload []byte) (uint32, error) {
	recordLength := roundUpTo8(recordCommonPrefixLength + len(payload) + 4 /* checksum */)
	if recordLength > MaxRecordLength {
		return 0, pkgerr.New(pkgerr.IncompatiblePackage, "record length %d exceeds maximum %d", recordLength, MaxRecordLength)
	}

	body := make([]byte, 0, recordLength)
	body = appendUint32(order, body, uint32(recordType))
	body = appendUint32(order, body, runningChecksum)
	body = appendUint32(order, body, uint32(recordLength))
	body = append(body, payload...)
	padding := recordLength - len(body) - 4
	body = append(body, make([]byte, padding)...)

	checksum := crc32.Update(runningChecksum, crcTable, body)
	body = appendUint32(order, body, checksum)

	if _, err := w.Write(body); err != nil {
		return 0, pkgerr.Wrap(pkgerr.CannotOpenFile, err, "cannot write package record")
	}
	return checksum, nil
}

// ReadRecord reads one record, verifies its chained checksum against
// runningChecksum, and returns its type, its BinaryFile payload (zero
// value for a FinalMarker), and the new running checksum.
func ReadRecord(r io.Reader, order binary.ByteOrder, runningChecksum uint32) (RecordType, BinaryFileRecord, uint32, error) {
	prefix := make([]byte, recordCommonPrefixLength)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return 0, BinaryFileRecord{}, 0, pkgerr.Wrap(pkgerr.IncompatiblePackage, err, "cannot read package record")
	}

	recordType := RecordType(order.Uint32(prefix[0:4]))
	priorChainChecksum := order.Uint32(prefix[4:8])
	recordLength := order.Uint32(prefix[8:12])

	if priorChainChecksum != runningChecksum {
		return 0, BinaryFileRecord{}, 0, pkgerr.New(pkgerr.IncorrectCRC, "record's chained checksum seed does not match the running checksum")
	}
	if recordLength > MaxRecordLength {
		return 0, BinaryFileRecord{}, 0, pkgerr.New(pkgerr.IncompatiblePackage, "record length %d exceeds maximum %d", recordLength, MaxRecordLength)
	}
	if int(recordLength) < recordCommonPrefixLength+4 {
		return 0, BinaryFileRecord{}, 0, pkgerr.New(pkgerr.IncompatiblePackage, "record length %d too small", recordLength)
	}

	rest := make([]byte, int(recordLength)-recordCommonPrefixLength)
	if _, err := io.ReadFull(r, rest); err != nil {
		return 0, BinaryFileRecord{}, 0, pkgerr.Wrap(pkgerr.IncompatiblePackage, err, "cannot read package record")
	}

	full := append(append([]byte{}, prefix...), rest...)
	storedChecksum := order.Uint32(full[len(full)-4:])
	computed := crc32.Update(runningChecksum, crcTable, full[:len(full)-4])
	if computed != storedChecksum {
		return 0, BinaryFileRecord{}, 0, pkgerr.New(pkgerr.IncorrectCRC, "record checksum mismatch")
	}

	payload := rest[:len(rest)-4]

	var rec BinaryFileRecord
	if recordType == RecordBinaryFile {
		relativePath, after, err := readLengthPrefixedBytes(order, payload)
		if err != nil {
			return 0, BinaryFileRecord{}, 0, err
		}
		if len(after) < 2+8+8 {
			return 0, BinaryFileRecord{}, 0, pkgerr.New(pkgerr.IncompatiblePackage, "truncated binary file record")
		}
		readOnly := after[0] != 0
		executable := after[1] != 0
		creationMicros := order.Uint64(after[2:10])
		modificationMicros := order.Uint64(after[10:18])
		content, _, err := readLengthPrefixedBytes(order, after[18:])
		if err != nil {
			return 0, BinaryFileRecord{}, 0, err
		}
		rec = BinaryFileRecord{
			RelativePath:       string(relativePath),
			ReadOnly:           readOnly,
			Executable:         executable,
			CreationMicros:     creationMicros,
			ModificationMicros: modificationMicros,
			Content:            append([]byte(nil), content...),
		}
	}

	return recordType, rec, computed, nil
}
