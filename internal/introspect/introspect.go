// Package introspect loads an *.sdv module binary, resolves its three
// exported introspection symbols, and retrieves its embedded component
// manifest text (spec §4.3). The dynamic loader itself is treated as a
// black box per spec §2/§6 — this package only consumes the three named
// symbols.
package introspect

import (
	"path/filepath"
	"plugin"
)

const (
	symGetModuleFactory = "GetModuleFactory"
	symHasActiveObjects = "HasActiveObjects"
	symGetManifest      = "GetManifest"

	sdvExtension = ".sdv"
)

// Handle abstracts a loaded module so the loading mechanism can be
// swapped out in tests without building a real shared object.
type Handle interface {
	Lookup(symbolName string) (interface{}, error)
}

// Loader abstracts module loading/unloading. The production
// implementation wraps the standard library's plugin package.
type Loader interface {
	Open(path string) (Handle, error)
	// Release unloads the handle. Go's plugin package has no unload
	// primitive — once opened, a plugin stays mapped for the life of the
	// process — so the production Loader's Release is a no-op. It exists
	// so the interface mirrors the spec's "acquire/release" lifecycle and
	// so a future loader with true unload support (or a test double that
	// wants to assert release was called) can implement it meaningfully.
	Release(h Handle)
}

// pluginHandle adapts *plugin.Plugin to Handle.
type pluginHandle struct {
	p *plugin.Plugin
}

func (h pluginHandle) Lookup(symbolName string) (interface{}, error) {
	sym, err := h.p.Lookup(symbolName)
	if err != nil {
		return nil, err
	}
	return sym, nil
}

// pluginLoader is the production Loader backed by the standard library.
type pluginLoader struct{}

func (pluginLoader) Open(path string) (Handle, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	return pluginHandle{p: p}, nil
}

func (pluginLoader) Release(Handle) {
	// See Loader.Release's doc comment: no-op by construction.
}

// Introspector loads modules and extracts their embedded manifest text.
type Introspector struct {
	loader Loader
}

// New returns an Introspector backed by the real dynamic loader.
func New() *Introspector {
	return &Introspector{loader: pluginLoader{}}
}

// NewWithLoader returns an Introspector backed by a custom Loader, for
// tests that want to exercise the symbol-resolution and failure-handling
// logic without a real shared object on disk.
func NewWithLoader(loader Loader) *Introspector {
	return &Introspector{loader: loader}
}

// GetManifestText loads path (if it has the ".sdv" extension), resolves
// the three required symbols, and calls GetManifest(). Any failure along
// the way — wrong extension, load failure, a missing or mistyped symbol,
// an empty manifest — yields "": introspection failure is never fatal,
// it simply means the module has no components.
func (in *Introspector) GetManifestText(path string) string {
	if filepath.Ext(path) != sdvExtension {
		return ""
	}

	handle, err := in.loader.Open(path)
	if err != nil {
		return ""
	}
	defer in.loader.Release(handle)

	if _, err := lookupModuleFactory(handle); err != nil {
		return ""
	}
	if _, err := lookupHasActiveObjects(handle); err != nil {
		return ""
	}
	getManifest, err := lookupGetManifest(handle)
	if err != nil {
		return ""
	}

	return getManifest()
}

// moduleFactoryFunc mirrors the ABI's GetModuleFactory(uint32) -> opaque
// pointer. The opaque pointer is never dereferenced by this package —
// only its presence with the right signature is verified.
type moduleFactoryFunc = func(uint32) interface{}

// hasActiveObjectsFunc mirrors HasActiveObjects() -> bool.
type hasActiveObjectsFunc = func() bool

// getManifestFunc mirrors GetManifest() -> UTF-8 text (static storage,
// never freed by the caller in the original ABI; in Go this is just a
// string value, so ownership is moot).
type getManifestFunc = func() string

func lookupModuleFactory(h Handle) (moduleFactoryFunc, error) {
	sym, err := h.Lookup(symGetModuleFactory)
	if err != nil {
		return nil, err
	}
	fn, ok := sym.(moduleFactoryFunc)
	if !ok {
		return nil, errWrongSignature(symGetModuleFactory)
	}
	return fn, nil
}

func lookupHasActiveObjects(h Handle) (hasActiveObjectsFunc, error) {
	sym, err := h.Lookup(symHasActiveObjects)
	if err != nil {
		return nil, err
	}
	fn, ok := sym.(hasActiveObjectsFunc)
	if !ok {
		return nil, errWrongSignature(symHasActiveObjects)
	}
	return fn, nil
}

func lookupGetManifest(h Handle) (getManifestFunc, error) {
	sym, err := h.Lookup(symGetManifest)
	if err != nil {
		return nil, err
	}
	fn, ok := sym.(getManifestFunc)
	if !ok {
		return nil, errWrongSignature(symGetManifest)
	}
	return fn, nil
}

type signatureError struct{ symbol string }

func (e signatureError) Error() string {
	return "symbol " + e.symbol + " has an unexpected signature"
}

func errWrongSignature(symbol string) error {
	return signatureError{symbol: symbol}
}
