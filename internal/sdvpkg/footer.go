package sdvpkg

import (
	"encoding/binary"
	"io"

	"github.com/holocm/sdv-packager/internal/pkgerr"
)

// WriteFooter writes the package's closing finalChecksum, which must
// equal the running checksum after the FinalMarker record.
func WriteFooter(w io.Writer, order binary.ByteOrder, finalChecksum uint32) error {
	buf := appendUint32(order, nil, finalChecksum)
	if _, err := w.Write(buf); err != nil {
		return pkgerr.Wrap(pkgerr.CannotOpenFile, err, "cannot write package footer")
	}
	return nil
}

// ReadFooter reads the package's finalChecksum and verifies it against
// the running checksum computed while walking the record stream.
func ReadFooter(r io.Reader, order binary.ByteOrder, runningChecksum uint32) error {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return pkgerr.Wrap(pkgerr.IncompatiblePackage, err, "cannot read package footer")
	}
	finalChecksum := order.Uint32(buf)
	if finalChecksum != runningChecksum {
		return pkgerr.New(pkgerr.IncorrectCRC, "package footer checksum mismatch")
	}
	return nil
}
