package sdvpkg

import (
	"bytes"
	"testing"

	"github.com/holocm/sdv-packager/internal/pkgerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadBinaryFileRecord_RoundTrip(t *testing.T) {
	order := HostEndianness().ByteOrder()
	rec := BinaryFileRecord{
		RelativePath:       "bin/tool",
		ReadOnly:           true,
		Executable:         true,
		CreationMicros:     111,
		ModificationMicros: 222,
		Content:            []byte("hello world"),
	}

	var buf bytes.Buffer
	checksum, err := WriteBinaryFileRecord(&buf, order, 0, rec)
	require.NoError(t, err)
	assert.Equal(t, 0, buf.Len()%8)

	recordType, got, gotChecksum, err := ReadRecord(&buf, order, 0)
	require.NoError(t, err)
	assert.Equal(t, RecordBinaryFile, recordType)
	assert.Equal(t, rec, got)
	assert.Equal(t, checksum, gotChecksum)
}

func TestWriteReadFinalMarker_RoundTrip(t *testing.T) {
	order := HostEndianness().ByteOrder()

	var buf bytes.Buffer
	checksum, err := WriteFinalMarker(&buf, order, 42)
	require.NoError(t, err)

	recordType, _, gotChecksum, err := ReadRecord(&buf, order, 42)
	require.NoError(t, err)
	assert.Equal(t, RecordFinalMarker, recordType)
	assert.Equal(t, checksum, gotChecksum)
}

func TestReadRecord_RejectsWrongChainSeed(t *testing.T) {
	order := HostEndianness().ByteOrder()
	var buf bytes.Buffer
	_, err := WriteFinalMarker(&buf, order, 7)
	require.NoError(t, err)

	_, _, _, err = ReadRecord(&buf, order, 999)
	assert.True(t, pkgerr.Is(err, pkgerr.IncorrectCRC))
}

func TestReadRecord_DetectsContentCorruption(t *testing.T) {
	order := HostEndianness().ByteOrder()
	rec := BinaryFileRecord{RelativePath: "a", Content: []byte("payload")}

	var buf bytes.Buffer
	_, err := WriteBinaryFileRecord(&buf, order, 0, rec)
	require.NoError(t, err)

	raw := buf.Bytes()
	raw[recordCommonPrefixLength] ^= 0xff // flip a byte inside the payload

	_, _, _, err = ReadRecord(bytes.NewReader(raw), order, 0)
	assert.True(t, pkgerr.Is(err, pkgerr.IncorrectCRC))
}

func TestChainedRecords_SecondSeedIsFirstsChecksum(t *testing.T) {
	order := HostEndianness().ByteOrder()
	var buf bytes.Buffer

	c1, err := WriteBinaryFileRecord(&buf, order, 0, BinaryFileRecord{RelativePath: "a", Content: []byte("one")})
	require.NoError(t, err)
	c2, err := WriteBinaryFileRecord(&buf, order, c1, BinaryFileRecord{RelativePath: "b", Content: []byte("two")})
	require.NoError(t, err)
	_, err = WriteFinalMarker(&buf, order, c2)
	require.NoError(t, err)

	_, _, running, err := ReadRecord(&buf, order, 0)
	require.NoError(t, err)
	assert.Equal(t, c1, running)

	_, _, running, err = ReadRecord(&buf, order, running)
	require.NoError(t, err)
	assert.Equal(t, c2, running)

	recordType, _, running, err := ReadRecord(&buf, order, running)
	require.NoError(t, err)
	assert.Equal(t, RecordFinalMarker, recordType)

	require.NoError(t, WriteFooter(new(bytes.Buffer), order, running))
}
