package manifest

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/holocm/sdv-packager/internal/pkgerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIntrospector struct {
	text string
}

func (f fakeIntrospector) GetManifestText(string) string {
	return f.text
}

func TestCreate_EmptyNameFails(t *testing.T) {
	m := New()
	err := m.Create("")
	assert.True(t, pkgerr.Is(err, pkgerr.FailedManifestCreation))
	assert.False(t, m.Valid())
}

func TestCreate_SetsValid(t *testing.T) {
	m := New()
	require.NoError(t, m.Create("my-install"))
	assert.True(t, m.Valid())
	assert.Equal(t, "my-install", m.InstallName())
}

func TestWriteRead_RoundTrip(t *testing.T) {
	m := New()
	require.NoError(t, m.Create("demo"))
	require.NoError(t, m.SetProperty("Version", "2.5.1"))
	require.NoError(t, m.SetProperty("weird key!", "value"))

	introspector := fakeIntrospector{text: `
[[Component]]
Class = "engine.Pump"
Aliases = [ "pump", "main-pump" ]
Type = "BasicService"
Singleton = true
Dependencies = [ "engine.Valve" ]
`}

	dir := t.TempDir()
	modPath := filepath.Join(dir, "pump.sdv")
	require.NoError(t, os.WriteFile(modPath, []byte("binary"), 0o644))
	require.NoError(t, m.AddModule(introspector, modPath, "bin"))

	text, err := m.Write()
	require.NoError(t, err)

	m2 := New()
	require.NoError(t, m2.Read(text, false))

	assert.Equal(t, m.InstallName(), m2.InstallName())
	assert.Equal(t, m.Version(), m2.Version())
	assert.Equal(t, m.PropertyList(), m2.PropertyList())
	assert.Equal(t, m.ModuleList(), m2.ModuleList())

	comps := m2.ComponentList()
	require.Len(t, comps, 1)
	assert.Equal(t, "engine.Pump", comps[0].ClassName)
	assert.ElementsMatch(t, []string{"pump", "main-pump"}, comps[0].Aliases)
	assert.Equal(t, BasicService, comps[0].Type)
	assert.True(t, comps[0].Singleton)
	assert.Equal(t, []string{"engine.Valve"}, comps[0].Dependencies)
	assert.Equal(t, "engine.Pump", comps[0].DefaultObjectName)
}

func TestRead_RejectsWrongSchemaVersion(t *testing.T) {
	m := New()
	err := m.Read("[Installation]\nVersion = 1\nName = \"x\"\n", false)
	assert.True(t, pkgerr.Is(err, pkgerr.InvalidManifest))
	assert.False(t, m.Valid())
}

func TestRead_RejectsEmptyName(t *testing.T) {
	m := New()
	text := "[Installation]\nVersion = 100\nName = \"\"\n"
	err := m.Read(text, false)
	assert.True(t, pkgerr.Is(err, pkgerr.InvalidManifest))
}

func TestRead_RejectsMalformedTOML(t *testing.T) {
	m := New()
	err := m.Read("this is not toml [[[", false)
	assert.True(t, pkgerr.Is(err, pkgerr.InvalidManifest))
}

func TestRead_BlockSystemObjectsDropsSystemComponents(t *testing.T) {
	text := `
[Installation]
Version = 100
Name = "demo"

[[Module]]
Path = "bin/a"
  [[Module.Component]]
  Class = "sys.Object"
  Type = "System"
  [[Module.Component]]
  Class = "app.Widget"
  Type = "App"
`
	m := New()
	require.NoError(t, m.Read(text, true))
	comps := m.ComponentList()
	require.Len(t, comps, 1)
	assert.Equal(t, "app.Widget", comps[0].ClassName)
}

func TestRead_UnknownTypeRejectsComponentNotModule(t *testing.T) {
	text := `
[Installation]
Version = 100
Name = "demo"

[[Module]]
Path = "bin/a"
  [[Module.Component]]
  Class = "weird.Thing"
  Type = "NoSuchType"
`
	m := New()
	require.NoError(t, m.Read(text, false))
	require.Len(t, m.ModuleList(), 1)
	assert.Empty(t, m.ComponentList())
}

func TestRead_LegacyInstallationPropertiesIsReadAndWarned(t *testing.T) {
	text := `
[Installation]
Version = 100
Name = "demo"
  [Installation.Properties]
  Version = "1.0.0"
`
	m := New()
	old := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w

	readErr := m.Read(text, false)

	require.NoError(t, w.Close())
	os.Stderr = old
	out, err := io.ReadAll(r)
	require.NoError(t, err)

	require.NoError(t, readErr)
	assert.Equal(t, PackageVersion{Major: 1, Minor: 0, Patch: 0}, m.Version())
	assert.Contains(t, string(out), "Installation.Properties")
	assert.Contains(t, string(out), "deprecated")
}

func TestRead_TopLevelPropertiesWinOverLegacyInstallationProperties(t *testing.T) {
	text := `
[Installation]
Version = 100
Name = "demo"
  [Installation.Properties]
  Version = "1.0.0"

[Properties]
Version = "2.0.0"
`
	m := New()
	require.NoError(t, m.Read(text, false))
	assert.Equal(t, PackageVersion{Major: 2, Minor: 0, Patch: 0}, m.Version())
}

func TestAddModule_RejectsEscapingRelTargetDir(t *testing.T) {
	m := New()
	require.NoError(t, m.Create("demo"))

	dir := t.TempDir()
	path := filepath.Join(dir, "f.sdv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	err := m.AddModule(fakeIntrospector{}, path, "../escape")
	assert.True(t, pkgerr.Is(err, pkgerr.InvalidPath))
}

func TestAddModule_RequiresValidManifest(t *testing.T) {
	m := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "f.sdv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	err := m.AddModule(fakeIntrospector{}, path, "")
	assert.True(t, pkgerr.Is(err, pkgerr.FailedManifestCreation))
}

func TestAddModule_EmptyManifestTextYieldsNoComponents(t *testing.T) {
	m := New()
	require.NoError(t, m.Create("demo"))

	dir := t.TempDir()
	path := filepath.Join(dir, "f.sdv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.NoError(t, m.AddModule(fakeIntrospector{text: ""}, path, ""))
	assert.Len(t, m.ModuleList(), 1)
	assert.Empty(t, m.ComponentList())
}

func TestFindModuleManifest_ReturnsRawTextForRegisteredModule(t *testing.T) {
	m := New()
	require.NoError(t, m.Create("demo"))

	dir := t.TempDir()
	path := filepath.Join(dir, "f.sdv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	snippet := "[[Component]]\nClass = \"engine.Pump\"\nType = \"BasicService\"\n"
	require.NoError(t, m.AddModule(fakeIntrospector{text: snippet}, path, "lib"))

	assert.Equal(t, snippet, m.FindModuleManifest("lib/f.sdv"))
	assert.Equal(t, "", m.FindModuleManifest("lib/other.sdv"))
}

func TestFindComponentByClass_MatchesAliasOrClass(t *testing.T) {
	text := `
[Installation]
Version = 100
Name = "demo"

[[Module]]
Path = "bin/a"
  [[Module.Component]]
  Class = "engine.Pump"
  Aliases = [ "pump" ]
  Type = "BasicService"
`
	m := New()
	require.NoError(t, m.Read(text, false))

	c, ok := m.FindComponentByClass("pump")
	require.True(t, ok)
	assert.Equal(t, "engine.Pump", c.ClassName)

	c, ok = m.FindComponentByClass("engine.Pump")
	require.True(t, ok)
	assert.Equal(t, "engine.Pump", c.ClassName)

	_, ok = m.FindComponentByClass("nope")
	assert.False(t, ok)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	m := New()
	require.NoError(t, m.Create("demo"))
	require.NoError(t, m.SetProperty("Version", "1.0.0"))

	dir := t.TempDir()
	require.NoError(t, m.Save(dir))
	assert.Equal(t, dir, m.InstallDirectory())
	assert.FileExists(t, filepath.Join(dir, ManifestFileName))

	loaded := New()
	require.NoError(t, loaded.Load(dir, false))
	assert.Equal(t, "demo", loaded.InstallName())
	assert.Equal(t, dir, loaded.InstallDirectory())
}

func TestLoad_RejectsNonExistentDirectory(t *testing.T) {
	m := New()
	err := m.Load(filepath.Join(t.TempDir(), "missing"), false)
	assert.True(t, pkgerr.Is(err, pkgerr.InvalidPath))
}

func TestSetProperty_RejectsQuotesInName(t *testing.T) {
	m := New()
	require.NoError(t, m.Create("demo"))
	err := m.SetProperty(`bad"name`, "v")
	assert.True(t, pkgerr.Is(err, pkgerr.InvalidManifest))
}

func TestVersion_AbsentPropertyDefaultsToZero(t *testing.T) {
	m := New()
	require.NoError(t, m.Create("demo"))
	assert.Equal(t, PackageVersion{}, m.Version())
}

func TestVersion_ParsesVersionProperty(t *testing.T) {
	m := New()
	require.NoError(t, m.Create("demo"))
	require.NoError(t, m.SetProperty("Version", "3.2.1"))
	assert.Equal(t, PackageVersion{Major: 3, Minor: 2, Patch: 1}, m.Version())
}

func TestWrite_OmitsEmptyModulesSection(t *testing.T) {
	m := New()
	require.NoError(t, m.Create("demo"))
	text, err := m.Write()
	require.NoError(t, err)
	assert.NotContains(t, text, "[[Module]]")
}

func TestWrite_KeyQuotingRule(t *testing.T) {
	m := New()
	require.NoError(t, m.Create("demo"))
	require.NoError(t, m.SetProperty("plain-key", "a"))
	require.NoError(t, m.SetProperty("has space", "b"))

	text, err := m.Write()
	require.NoError(t, err)
	assert.Contains(t, text, "plain-key = \"a\"")
	assert.Contains(t, text, "\"has space\" = \"b\"")
}
