package introspect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	symbols map[string]interface{}
}

func (h fakeHandle) Lookup(name string) (interface{}, error) {
	sym, ok := h.symbols[name]
	if !ok {
		return nil, errors.New("symbol not found: " + name)
	}
	return sym, nil
}

type fakeLoader struct {
	handle    Handle
	openErr   error
	released  int
	openPaths []string
}

func (l *fakeLoader) Open(path string) (Handle, error) {
	l.openPaths = append(l.openPaths, path)
	if l.openErr != nil {
		return nil, l.openErr
	}
	return l.handle, nil
}

func (l *fakeLoader) Release(Handle) {
	l.released++
}

func fullHandle(manifest string) fakeHandle {
	return fakeHandle{symbols: map[string]interface{}{
		symGetModuleFactory: moduleFactoryFunc(func(uint32) interface{} { return nil }),
		symHasActiveObjects: hasActiveObjectsFunc(func() bool { return false }),
		symGetManifest:      getManifestFunc(func() string { return manifest }),
	}}
}

func TestGetManifestText_HappyPath(t *testing.T) {
	loader := &fakeLoader{handle: fullHandle(`[[Module.Component]]`)}
	in := NewWithLoader(loader)

	got := in.GetManifestText("/lib/foo.sdv")
	require.Equal(t, `[[Module.Component]]`, got)
	assert.Equal(t, 1, loader.released)
}

func TestGetManifestText_WrongExtensionSkipsLoad(t *testing.T) {
	loader := &fakeLoader{handle: fullHandle("ignored")}
	in := NewWithLoader(loader)

	got := in.GetManifestText("/lib/foo.txt")
	assert.Equal(t, "", got)
	assert.Empty(t, loader.openPaths)
}

func TestGetManifestText_LoadFailureYieldsEmptyNotError(t *testing.T) {
	loader := &fakeLoader{openErr: errors.New("boom")}
	in := NewWithLoader(loader)

	got := in.GetManifestText("/lib/foo.sdv")
	assert.Equal(t, "", got)
}

func TestGetManifestText_MissingSymbolYieldsEmpty(t *testing.T) {
	loader := &fakeLoader{handle: fakeHandle{symbols: map[string]interface{}{
		symGetModuleFactory: moduleFactoryFunc(func(uint32) interface{} { return nil }),
		// HasActiveObjects and GetManifest deliberately missing.
	}}}
	in := NewWithLoader(loader)

	got := in.GetManifestText("/lib/foo.sdv")
	assert.Equal(t, "", got)
	assert.Equal(t, 1, loader.released)
}

func TestGetManifestText_WrongSignatureYieldsEmpty(t *testing.T) {
	loader := &fakeLoader{handle: fakeHandle{symbols: map[string]interface{}{
		symGetModuleFactory: moduleFactoryFunc(func(uint32) interface{} { return nil }),
		symHasActiveObjects: hasActiveObjectsFunc(func() bool { return false }),
		symGetManifest:      "not a function",
	}}}
	in := NewWithLoader(loader)

	got := in.GetManifestText("/lib/foo.sdv")
	assert.Equal(t, "", got)
}

func TestGetManifestText_EmptyManifestIsNotAnError(t *testing.T) {
	loader := &fakeLoader{handle: fullHandle("")}
	in := NewWithLoader(loader)

	got := in.GetManifestText("/lib/foo.sdv")
	assert.Equal(t, "", got)
}

func TestNew_ReturnsPluginBackedIntrospector(t *testing.T) {
	in := New()
	require.NotNil(t, in)
	_, ok := in.loader.(pluginLoader)
	assert.True(t, ok)
}
