// Package extractor reverses C6/C5's package stream back onto disk (or
// merely verifies it), enforcing the install policy (C8) against any
// pre-existing installation (spec §4.7).
package extractor

import (
	"io"
	"os"
	"path/filepath"

	"github.com/holocm/sdv-packager/internal/fsattr"
	"github.com/holocm/sdv-packager/internal/manifest"
	"github.com/holocm/sdv-packager/internal/pathescape"
	"github.com/holocm/sdv-packager/internal/pkgerr"
	"github.com/holocm/sdv-packager/internal/policy"
	"github.com/holocm/sdv-packager/internal/sdvpkg"
)

// Extractor reads and applies package streams produced by C6/C5.
// BlockSystemObjects mirrors manifest.Read's flag of the same purpose.
type Extractor struct {
	BlockSystemObjects bool
}

// New returns an Extractor with default settings.
func New() *Extractor {
	return &Extractor{}
}

// Extract reads a full package stream from r, enforces rule against any
// pre-existing installation at targetRoot/manifest.InstallName(), and
// writes out its files, attributes and manifest (spec §4.7).
func (e *Extractor) Extract(r io.Reader, targetRoot string, rule policy.UpdateRule) (*manifest.Manifest, error) {
	header, checksum, err := sdvpkg.ReadHeader(r)
	if err != nil {
		return nil, err
	}

	m := manifest.New()
	if err := m.Read(header.ManifestText, e.BlockSystemObjects); err != nil {
		return nil, err
	}

	targetDir := filepath.Join(targetRoot, m.InstallName())
	nonEmpty, err := dirIsNonEmpty(targetDir)
	if err != nil {
		return nil, err
	}
	if nonEmpty {
		vOld := manifest.PackageVersion{}
		existing := manifest.New()
		if loadErr := existing.Load(targetDir, false); loadErr == nil {
			vOld = existing.Version()
		}
		if !policy.Allow(vOld, m.Version(), rule) {
			return nil, pkgerr.New(pkgerr.DuplicateInstall, "an installation already exists at %s", targetDir)
		}
		if err := os.RemoveAll(targetDir); err != nil {
			return nil, pkgerr.Wrap(pkgerr.CannotRemoveDir, err, "cannot remove existing installation at %s", targetDir)
		}
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, pkgerr.Wrap(pkgerr.CannotCreateDir, err, "cannot create %s", targetDir)
	}
	if err := m.Save(targetDir); err != nil {
		return nil, err
	}
	manifestPath := filepath.Join(targetDir, manifest.ManifestFileName)
	if err := fsattr.Write(manifestPath, fsattr.Attributes{
		CreationMicros:     header.CreationTimestampMicros,
		ModificationMicros: header.CreationTimestampMicros,
	}); err != nil {
		return nil, err
	}

	order := header.Endianness.ByteOrder()
	for {
		recordType, rec, newChecksum, err := sdvpkg.ReadRecord(r, order, checksum)
		if err != nil {
			return nil, err
		}
		checksum = newChecksum
		if recordType == sdvpkg.RecordFinalMarker {
			break
		}

		if err := pathescape.Check(rec.RelativePath); err != nil {
			return nil, err
		}
		full := filepath.Join(targetDir, filepath.FromSlash(rec.RelativePath))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return nil, pkgerr.Wrap(pkgerr.CannotCreateDir, err, "cannot create directory for %s", full)
		}
		if err := os.WriteFile(full, rec.Content, 0o644); err != nil {
			return nil, pkgerr.Wrap(pkgerr.CannotOpenFile, err, "cannot write %s", full)
		}
		if err := fsattr.Write(full, fsattr.Attributes{
			ReadOnly:           rec.ReadOnly,
			Executable:         rec.Executable,
			CreationMicros:     rec.CreationMicros,
			ModificationMicros: rec.ModificationMicros,
		}); err != nil {
			return nil, err
		}
	}

	if err := sdvpkg.ReadFooter(r, order, checksum); err != nil {
		return nil, err
	}
	return m, nil
}

// ExtractFile opens path and extracts it, as Extract.
func (e *Extractor) ExtractFile(path, targetRoot string, rule policy.UpdateRule) (*manifest.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerr.Wrap(pkgerr.CannotOpenFile, err, "cannot open %s", path)
	}
	defer f.Close()
	return e.Extract(f, targetRoot, rule)
}

// Verify walks r exactly as Extract would, performing no writes. It
// returns true only if the header, every record's chained checksum, and
// the footer all check out.
func (e *Extractor) Verify(r io.Reader) (bool, error) {
	header, checksum, err := sdvpkg.ReadHeader(r)
	if err != nil {
		return false, err
	}

	m := manifest.New()
	if err := m.Read(header.ManifestText, e.BlockSystemObjects); err != nil {
		return false, err
	}

	order := header.Endianness.ByteOrder()
	for {
		recordType, rec, newChecksum, err := sdvpkg.ReadRecord(r, order, checksum)
		if err != nil {
			return false, err
		}
		checksum = newChecksum
		if recordType == sdvpkg.RecordFinalMarker {
			break
		}
		if err := pathescape.Check(rec.RelativePath); err != nil {
			return false, err
		}
	}

	if err := sdvpkg.ReadFooter(r, order, checksum); err != nil {
		return false, err
	}
	return true, nil
}

// VerifyFile opens path and verifies it, as Verify.
func (e *Extractor) VerifyFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, pkgerr.Wrap(pkgerr.CannotOpenFile, err, "cannot open %s", path)
	}
	defer f.Close()
	return e.Verify(f)
}

// ExtractInstallManifest reads only the header and returns the parsed
// manifest, without touching the record stream or the filesystem. Used
// by show-style operations.
func (e *Extractor) ExtractInstallManifest(r io.Reader) (*manifest.Manifest, error) {
	header, _, err := sdvpkg.ReadHeader(r)
	if err != nil {
		return nil, err
	}
	m := manifest.New()
	if err := m.Read(header.ManifestText, e.BlockSystemObjects); err != nil {
		return nil, err
	}
	return m, nil
}

// ExtractInstallManifestFile opens path and extracts its manifest, as
// ExtractInstallManifest.
func (e *Extractor) ExtractInstallManifestFile(path string) (*manifest.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerr.Wrap(pkgerr.CannotOpenFile, err, "cannot open %s", path)
	}
	defer f.Close()
	return e.ExtractInstallManifest(f)
}

// Remove loads the manifest at root/installName (an empty manifest if
// none is readable), verifies the directory is actually non-empty, then
// deletes it. The returned manifest is a removal record: it keeps
// reporting the paths that used to exist under the now-deleted root.
func (e *Extractor) Remove(installName, root string) (*manifest.Manifest, error) {
	dir := filepath.Join(root, installName)

	m := manifest.New()
	_ = m.Load(dir, e.BlockSystemObjects)

	nonEmpty, err := dirIsNonEmpty(dir)
	if err != nil {
		return nil, err
	}
	if !nonEmpty {
		return nil, pkgerr.New(pkgerr.InvalidPath, "no installation exists at %s", dir)
	}

	if err := os.RemoveAll(dir); err != nil {
		return nil, pkgerr.Wrap(pkgerr.CannotRemoveDir, err, "cannot remove %s", dir)
	}
	return m, nil
}

func dirIsNonEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, pkgerr.Wrap(pkgerr.InvalidPath, err, "cannot inspect %s", dir)
	}
	return len(entries) > 0, nil
}
