package manifest

import "regexp"

// ComponentType is the closed enum of component kinds (spec §3). Unknown
// values encountered while parsing silently reject the component, never
// the enclosing module.
type ComponentType int

const (
	// SystemObject marks a component that blockSystemObjects may drop.
	SystemObject ComponentType = iota
	Device
	BasicService
	ComplexService
	Application
	Proxy
	Stub
	Utility
)

// componentTypeNames maps the TOML "Type" string to its ComponentType.
// The TOML spelling intentionally diverges from the Go identifier for
// SystemObject ("System") and Application ("App").
var componentTypeNames = map[string]ComponentType{
	"System":         SystemObject,
	"Device":         Device,
	"BasicService":   BasicService,
	"ComplexService": ComplexService,
	"App":            Application,
	"Proxy":          Proxy,
	"Stub":           Stub,
	"Utility":        Utility,
}

var componentTypeStrings = map[ComponentType]string{
	SystemObject:   "System",
	Device:         "Device",
	BasicService:   "BasicService",
	ComplexService: "ComplexService",
	Application:    "App",
	Proxy:          "Proxy",
	Stub:           "Stub",
	Utility:        "Utility",
}

func parseComponentType(s string) (ComponentType, bool) {
	t, ok := componentTypeNames[s]
	return t, ok
}

// String renders t in the TOML spelling used by write().
func (t ComponentType) String() string {
	return componentTypeStrings[t]
}

// Component is a logical unit described within a module's embedded
// manifest (spec §3).
type Component struct {
	ClassName         string
	Aliases           []string
	DefaultObjectName string
	Type              ComponentType
	Singleton         bool
	Dependencies      []string

	// RelativeModulePath locates the owning module within the
	// installation; it is stamped in by the Manifest as components are
	// extracted, not carried in the per-component TOML snippet itself.
	RelativeModulePath string

	// RawManifest is the component's own TOML snippet, re-rendered from
	// its parsed fields by renderComponentSnippet. It is not a literal
	// copy of the module's manifest text: the original's formatting,
	// comments and unknown keys are not kept.
	RawManifest string
}

// MatchesName reports whether s equals the component's class name or any
// of its aliases, per findComponentByClass's lookup rule.
func (c Component) MatchesName(s string) bool {
	if c.ClassName == s {
		return true
	}
	for _, alias := range c.Aliases {
		if alias == s {
			return true
		}
	}
	return false
}

// ModuleRecord is one module's contribution to the manifest: its
// location, its raw embedded manifest text, and the components derived
// from parsing that text.
type ModuleRecord struct {
	RelativeModulePath     string
	ModuleManifestTOMLText string
	Components             []Component
}

// bareKeyPattern matches TOML bare keys that need no quoting on emission.
var bareKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// needsQuoting reports whether key must be quoted when emitted as a
// Properties table key (spec §3, §4.4's key-quoting rule).
func needsQuoting(key string) bool {
	return !bareKeyPattern.MatchString(key)
}
