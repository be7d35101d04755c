package composer

import (
	"os"
	"path/filepath"
	"time"

	"github.com/holocm/sdv-packager/internal/fsattr"
	"github.com/holocm/sdv-packager/internal/manifest"
	"github.com/holocm/sdv-packager/internal/pkgerr"
	"github.com/holocm/sdv-packager/internal/policy"
)

// ComposeDirect behaves like an install without serializing: it walks
// the collected entries, enforces rule against any pre-existing
// installation at targetRoot/installName, deletes that directory if
// allowed, copies files preserving attributes, saves the manifest at the
// new directory's root, and stamps the manifest file's timestamps to
// "now" (spec §4.6).
func (c *Composer) ComposeDirect(installName, targetRoot string, rule policy.UpdateRule) error {
	m, err := c.buildManifest(installName)
	if err != nil {
		return err
	}

	targetDir := filepath.Join(targetRoot, installName)
	nonEmpty, err := dirIsNonEmpty(targetDir)
	if err != nil {
		return err
	}

	if nonEmpty {
		vOld := manifest.PackageVersion{}
		existing := manifest.New()
		if loadErr := existing.Load(targetDir, false); loadErr == nil {
			vOld = existing.Version()
		}
		if !policy.Allow(vOld, m.Version(), rule) {
			return pkgerr.New(pkgerr.DuplicateInstall, "an installation already exists at %s", targetDir)
		}
		if err := os.RemoveAll(targetDir); err != nil {
			return pkgerr.Wrap(pkgerr.CannotRemoveDir, err, "cannot remove existing installation at %s", targetDir)
		}
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return pkgerr.Wrap(pkgerr.CannotCreateDir, err, "cannot create %s", targetDir)
	}

	for _, e := range c.entries {
		dst := filepath.Join(targetDir, filepath.FromSlash(e.relTargetDir), filepath.Base(e.absSourcePath))
		if err := copyFileWithAttributes(e.absSourcePath, dst); err != nil {
			return err
		}
	}

	if err := m.Save(targetDir); err != nil {
		return err
	}

	now := uint64(time.Now().UnixMicro())
	manifestPath := filepath.Join(targetDir, manifest.ManifestFileName)
	return fsattr.Write(manifestPath, fsattr.Attributes{CreationMicros: now, ModificationMicros: now})
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

func copyFileWithAttributes(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return pkgerr.Wrap(pkgerr.CannotCreateDir, err, "cannot create directory for %s", dst)
	}
	content, err := os.ReadFile(src)
	if err != nil {
		return pkgerr.Wrap(pkgerr.CannotOpenFile, err, "cannot read %s", src)
	}
	if err := os.WriteFile(dst, content, 0o644); err != nil {
		return pkgerr.Wrap(pkgerr.CannotOpenFile, err, "cannot write %s", dst)
	}
	attrs, err := fsattr.Read(src)
	if err != nil {
		return err
	}
	return fsattr.Write(dst, attrs)
}
