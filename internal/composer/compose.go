package composer

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/holocm/sdv-packager/internal/fsattr"
	"github.com/holocm/sdv-packager/internal/manifest"
	"github.com/holocm/sdv-packager/internal/pkgerr"
	"github.com/holocm/sdv-packager/internal/sdvpkg"
)

// Compose builds the draft manifest and serializes the full package
// in-memory: header, per-file records in addModule order, final marker,
// footer (spec §4.6).
func (c *Composer) Compose(installName string) ([]byte, error) {
	m, err := c.buildManifest(installName)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.writePackage(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ComposeToFile does the same as Compose but streams the package bytes
// straight to outputPath instead of buffering them in memory.
func (c *Composer) ComposeToFile(installName, outputPath string) error {
	m, err := c.buildManifest(installName)
	if err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return pkgerr.Wrap(pkgerr.CannotOpenFile, err, "cannot create %s", outputPath)
	}
	defer f.Close()
	return c.writePackage(f, m)
}

// writePackage drives C5 to emit m's text plus every entry's content and
// attributes as a chained-checksum package stream.
func (c *Composer) writePackage(w io.Writer, m *manifest.Manifest) error {
	manifestText, err := m.Write()
	if err != nil {
		return err
	}

	order := sdvpkg.HostEndianness().ByteOrder()
	header := sdvpkg.Header{
		Endianness:              sdvpkg.HostEndianness(),
		InterfaceVersion:        manifest.FrameworkInterfaceVersion,
		CreationTimestampMicros: uint64(time.Now().UnixMicro()),
		ManifestText:            manifestText,
	}
	checksum, err := sdvpkg.WriteHeader(w, header)
	if err != nil {
		return err
	}

	for _, e := range c.entries {
		content, err := os.ReadFile(e.absSourcePath)
		if err != nil {
			return pkgerr.Wrap(pkgerr.CannotOpenFile, err, "cannot read %s", e.absSourcePath)
		}
		attrs, err := fsattr.Read(e.absSourcePath)
		if err != nil {
			return err
		}
		relPath := filepath.ToSlash(filepath.Join(e.relTargetDir, filepath.Base(e.absSourcePath)))

		checksum, err = sdvpkg.WriteBinaryFileRecord(w, order, checksum, sdvpkg.BinaryFileRecord{
			RelativePath:       relPath,
			ReadOnly:           attrs.ReadOnly,
			Executable:         attrs.Executable,
			CreationMicros:     attrs.CreationMicros,
			ModificationMicros: attrs.ModificationMicros,
			Content:            content,
		})
		if err != nil {
			return err
		}
	}

	checksum, err = sdvpkg.WriteFinalMarker(w, order, checksum)
	if err != nil {
		return err
	}
	return sdvpkg.WriteFooter(w, order, checksum)
}
