package composer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocm/sdv-packager/internal/pkgerr"
	"github.com/holocm/sdv-packager/internal/policy"
	"github.com/holocm/sdv-packager/internal/sdvpkg"
)

type noManifestIntrospector struct{}

func (noManifestIntrospector) GetManifestText(string) string { return "" }

func writeFiles(t *testing.T, root string, files []string) {
	t.Helper()
	for _, f := range files {
		full := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(f), 0o644))
	}
}

// recordPaths decodes a composed package and returns every BinaryFile
// record's relative path, in stream order.
func recordPaths(t *testing.T, raw []byte) []string {
	t.Helper()
	order := sdvpkg.HostEndianness().ByteOrder()
	r := bytes.NewReader(raw)

	_, checksum, err := sdvpkg.ReadHeader(r)
	require.NoError(t, err)

	var paths []string
	for {
		recordType, rec, newChecksum, err := sdvpkg.ReadRecord(r, order, checksum)
		require.NoError(t, err)
		checksum = newChecksum
		if recordType == sdvpkg.RecordFinalMarker {
			break
		}
		paths = append(paths, rec.RelativePath)
	}
	require.NoError(t, sdvpkg.ReadFooter(r, order, checksum))
	return paths
}

func TestAddModule_S1_FlattensWithoutKeepStructure(t *testing.T) {
	base := t.TempDir()
	writeFiles(t, base, []string{"a.bin", "sub/b.bin", "sub/c.bin"})

	c := New(noManifestIntrospector{})
	require.NoError(t, c.AddModule(base, "sub/*", ".", 0))

	raw, err := c.Compose("demo")
	require.NoError(t, err)

	paths := recordPaths(t, raw)
	assert.ElementsMatch(t, []string{"b.bin", "c.bin"}, paths)
}

func TestAddModule_S2_KeepStructurePreservesSubdirectories(t *testing.T) {
	base := t.TempDir()
	writeFiles(t, base, []string{"a.bin", "sub/b.bin", "sub/c.bin"})

	c := New(noManifestIntrospector{})
	require.NoError(t, c.AddModule(base, "sub/*", ".", KeepStructure))

	raw, err := c.Compose("demo")
	require.NoError(t, err)

	paths := recordPaths(t, raw)
	assert.ElementsMatch(t, []string{"sub/b.bin", "sub/c.bin"}, paths)
}

func TestAddModule_S3_DuplicateDestinationRejected(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeFiles(t, dirA, []string{"f.bin"})
	writeFiles(t, dirB, []string{"f.bin"})

	c := New(noManifestIntrospector{})
	require.NoError(t, c.AddModule(dirA, "f.bin", ".", 0))

	err := c.AddModule(dirB, "f.bin", ".", 0)
	require.Error(t, err)
	assert.True(t, pkgerr.Is(err, pkgerr.DuplicateFile))
}

func TestAddModule_SameSourceDifferentDestinationsAllowed(t *testing.T) {
	base := t.TempDir()
	writeFiles(t, base, []string{"f.bin"})

	c := New(noManifestIntrospector{})
	require.NoError(t, c.AddModule(base, "f.bin", "one", 0))
	require.NoError(t, c.AddModule(base, "f.bin", "two", 0))
	assert.Len(t, c.entries, 2)
}

func TestAddModule_KeepStructureRequiresBase(t *testing.T) {
	c := New(noManifestIntrospector{})
	err := c.AddModule("", "*.bin", ".", KeepStructure)
	require.Error(t, err)
	assert.True(t, pkgerr.Is(err, pkgerr.MissingBasePath))
}

func TestComposeToFile_WritesReadableStream(t *testing.T) {
	base := t.TempDir()
	writeFiles(t, base, []string{"a.bin"})
	out := filepath.Join(t.TempDir(), "out.pkg")

	c := New(noManifestIntrospector{})
	require.NoError(t, c.AddModule(base, "a.bin", ".", 0))
	require.NoError(t, c.ComposeToFile("demo", out))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.bin"}, recordPaths(t, raw))
}

func TestClear_DiscardsEntriesAndProperties(t *testing.T) {
	base := t.TempDir()
	writeFiles(t, base, []string{"a.bin"})

	c := New(noManifestIntrospector{})
	require.NoError(t, c.AddModule(base, "a.bin", ".", 0))
	require.NoError(t, c.AddProperty("Version", "1.0.0"))
	c.Clear()

	assert.Empty(t, c.entries)
	assert.Empty(t, c.properties)
	assert.Empty(t, c.destinations)
}

func TestComposeDirect_S4_VersionPolicyInteractions(t *testing.T) {
	root := t.TempDir()
	base := t.TempDir()
	writeFiles(t, base, []string{"a.bin"})

	compose := func(version string) *Composer {
		c := New(noManifestIntrospector{})
		require.NoError(t, c.AddModule(base, "a.bin", ".", 0))
		require.NoError(t, c.AddProperty("Version", version))
		return c
	}

	require.NoError(t, compose("1.2.3").ComposeDirect("demo", root, policy.Overwrite))
	assert.FileExists(t, filepath.Join(root, "demo", "a.bin"))

	err := compose("1.2.3").ComposeDirect("demo", root, policy.NotAllowed)
	require.Error(t, err)
	assert.True(t, pkgerr.Is(err, pkgerr.DuplicateInstall))

	err = compose("1.2.2").ComposeDirect("demo", root, policy.UpdateWhenNew)
	require.Error(t, err)
	assert.True(t, pkgerr.Is(err, pkgerr.DuplicateInstall))

	require.NoError(t, compose("1.3.0").ComposeDirect("demo", root, policy.UpdateWhenNew))
}
