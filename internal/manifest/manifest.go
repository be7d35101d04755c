// Package manifest is the in-memory model of an installation manifest:
// install name, properties, modules, and the components a module's
// binary exports (spec §4.4). It owns TOML parsing and emission; the
// wire-level package format (C5) embeds whatever text Write returns
// without interpreting it further.
package manifest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/holocm/sdv-packager/internal/diag"
	"github.com/holocm/sdv-packager/internal/pathescape"
	"github.com/holocm/sdv-packager/internal/pkgerr"
)

// FrameworkInterfaceVersion is the schema version stamped into every
// manifest's Installation.Version field. A manifest whose stored version
// does not match is rejected outright (spec §4.4, §3 Open Question #3).
const FrameworkInterfaceVersion uint32 = 100

// ManifestFileName is the fixed filename required by spec §6, under
// which every Save/Load and installed package root stores its manifest.
const ManifestFileName = "install_manifest.toml"

// versionPropertyName is the well-known property interpreted as a
// PackageVersion by Version().
const versionPropertyName = "Version"

// Introspector is the narrow interface AddModule needs from C3: given a
// module's absolute path, return its embedded component-manifest text
// (or "" if it has none). *introspect.Introspector satisfies this by
// having the matching method signature.
type Introspector interface {
	GetManifestText(path string) string
}

// Property is one entry of a Manifest's property table.
type Property struct {
	Name  string
	Value string
}

// Manifest is the in-memory representation of install_manifest.toml.
type Manifest struct {
	installName        string
	installDirectory   string
	blockSystemObjects bool
	modules            []ModuleRecord
	properties         map[string]string
}

// New returns an empty, invalid Manifest. Call Create, Read, or Load to
// make it valid.
func New() *Manifest {
	return &Manifest{properties: map[string]string{}}
}

// Valid reports whether the manifest has a non-empty install name (spec
// §3's validity invariant).
func (m *Manifest) Valid() bool {
	return m.installName != ""
}

// InstallName returns the manifest's install name, or "" if invalid.
func (m *Manifest) InstallName() string {
	return m.installName
}

// InstallDirectory returns the directory this manifest was loaded from
// or last saved to, or "" if neither has happened.
func (m *Manifest) InstallDirectory() string {
	return m.installDirectory
}

// BlockSystemObjects reports whether this manifest drops SystemObject
// components on Read/AddModule.
func (m *Manifest) BlockSystemObjects() bool {
	return m.blockSystemObjects
}

func (m *Manifest) clear() {
	m.installName = ""
	m.installDirectory = ""
	m.modules = nil
	m.properties = map[string]string{}
}

// Create makes the manifest valid with the given install name and clears
// any prior state. An empty name is refused.
func (m *Manifest) Create(installName string) error {
	if installName == "" {
		return pkgerr.New(pkgerr.FailedManifestCreation, "install name must not be empty")
	}
	m.clear()
	m.installName = installName
	return nil
}

// Read parses tomlText into the manifest's state. On any failure the
// manifest is left invalid and its state is cleared, matching spec
// §4.4's read() post-condition.
func (m *Manifest) Read(tomlText string, blockSystemObjects bool) error {
	doc, err := decodeTOML(tomlText)
	if err != nil {
		m.clear()
		return pkgerr.Wrap(pkgerr.InvalidManifest, err, "cannot parse manifest TOML")
	}
	if doc.Installation.Version != FrameworkInterfaceVersion {
		m.clear()
		return pkgerr.New(pkgerr.InvalidManifest, "manifest schema version %d does not match framework interface version %d", doc.Installation.Version, FrameworkInterfaceVersion)
	}
	if doc.Installation.Name == "" {
		m.clear()
		return pkgerr.New(pkgerr.InvalidManifest, "manifest is missing Installation.Name")
	}

	modules := make([]ModuleRecord, 0, len(doc.Module))
	for _, tm := range doc.Module {
		rec := ModuleRecord{RelativeModulePath: tm.Path}
		for _, tc := range tm.Component {
			comp, ok := buildComponent(tc, tm.Path)
			if !ok {
				continue
			}
			if blockSystemObjects && comp.Type == SystemObject {
				continue
			}
			rec.Components = append(rec.Components, comp)
		}
		rec.ModuleManifestTOMLText = renderModuleComponentSnippet(rec.Components)
		modules = append(modules, rec)
	}

	properties := doc.Properties
	if properties == nil {
		properties = map[string]string{}
	}
	if len(doc.Installation.Properties) > 0 {
		diag.WarnDeprecatedKey("Installation.Properties")
		for k, v := range doc.Installation.Properties {
			if _, exists := properties[k]; !exists {
				properties[k] = v
			}
		}
	}

	m.installName = doc.Installation.Name
	m.blockSystemObjects = blockSystemObjects
	m.modules = modules
	m.properties = properties
	return nil
}

// renderModuleComponentSnippet reconstructs the per-module component
// text for a manifest that was parsed from an already-composed
// install_manifest.toml, where the original per-module GetManifest()
// text is no longer available as a separate string (spec's
// "get-subtree-as-text" collaborator operation, applied after the fact).
func renderModuleComponentSnippet(components []Component) string {
	var b strings.Builder
	for _, c := range components {
		b.WriteString(c.RawManifest)
	}
	return b.String()
}

// Write returns the manifest's canonical TOML text. The manifest must be
// valid.
func (m *Manifest) Write() (string, error) {
	if !m.Valid() {
		return "", pkgerr.New(pkgerr.FailedSaveManifest, "manifest is not valid")
	}
	return encodeManifest(m), nil
}

// Save writes install_manifest.toml into dir and records dir as the
// manifest's install directory.
func (m *Manifest) Save(dir string) error {
	text, err := m.Write()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, ManifestFileName)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return pkgerr.Wrap(pkgerr.FailedSaveManifest, err, "cannot write %s", path)
	}
	m.installDirectory = dir
	return nil
}

// Load reads install_manifest.toml from dir. dir must already exist and
// be a directory; on parse failure the manifest is left invalid.
func (m *Manifest) Load(dir string, blockSystemObjects bool) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return pkgerr.New(pkgerr.InvalidPath, "%q is not a directory", dir)
	}

	path := filepath.Join(dir, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return pkgerr.Wrap(pkgerr.CannotOpenFile, err, "cannot read %s", path)
	}

	if err := m.Read(string(data), blockSystemObjects); err != nil {
		return err
	}
	m.installDirectory = dir
	return nil
}

// AddModule appends a module built from the regular file at absPath,
// using introspector to extract its component manifest (spec §4.3/§4.4).
// relTargetDir must be relative and must not escape its root.
func (m *Manifest) AddModule(introspector Introspector, absPath, relTargetDir string) error {
	if !m.Valid() {
		return pkgerr.New(pkgerr.FailedManifestCreation, "manifest is not valid")
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return pkgerr.Wrap(pkgerr.ModuleNotFound, err, "cannot stat %s", absPath)
	}
	if !info.Mode().IsRegular() {
		return pkgerr.New(pkgerr.InvalidPath, "%q is not a regular file", absPath)
	}
	if err := pathescape.Check(relTargetDir); err != nil {
		return err
	}

	relModulePath := filepath.ToSlash(filepath.Join(relTargetDir, filepath.Base(absPath)))

	rec := ModuleRecord{RelativeModulePath: relModulePath}
	snippet := introspector.GetManifestText(absPath)
	if snippet != "" {
		if doc, err := decodeModuleSnippet(snippet); err == nil {
			for _, tc := range doc.Component {
				comp, ok := buildComponent(tc, relModulePath)
				if !ok {
					continue
				}
				if m.blockSystemObjects && comp.Type == SystemObject {
					continue
				}
				rec.Components = append(rec.Components, comp)
			}
		}
	}
	rec.ModuleManifestTOMLText = snippet

	m.modules = append(m.modules, rec)
	return nil
}

// FindComponentByClass returns the first component across all modules,
// in module-then-component order, whose class name or any alias equals
// s.
func (m *Manifest) FindComponentByClass(s string) (*Component, bool) {
	for mi := range m.modules {
		for ci := range m.modules[mi].Components {
			if m.modules[mi].Components[ci].MatchesName(s) {
				return &m.modules[mi].Components[ci], true
			}
		}
	}
	return nil, false
}

// FindModuleManifest returns the raw manifest text of the module whose
// relative path equals relPath, or "" if no such module exists.
func (m *Manifest) FindModuleManifest(relPath string) string {
	for _, mod := range m.modules {
		if mod.RelativeModulePath == relPath {
			return mod.ModuleManifestTOMLText
		}
	}
	return ""
}

// ComponentList flattens every module's components into one ordered
// slice.
func (m *Manifest) ComponentList() []Component {
	var out []Component
	for _, mod := range m.modules {
		out = append(out, mod.Components...)
	}
	return out
}

// ModuleList returns every module's relative path, in addition order.
func (m *Manifest) ModuleList() []string {
	out := make([]string, len(m.modules))
	for i, mod := range m.modules {
		out[i] = mod.RelativeModulePath
	}
	return out
}

// PropertyList returns every property, sorted by name for determinism.
func (m *Manifest) PropertyList() []Property {
	out := make([]Property, 0, len(m.properties))
	for k, v := range m.properties {
		out = append(out, Property{Name: k, Value: v})
	}
	sortProperties(out)
	return out
}

// SetProperty inserts or replaces the property named name. name must not
// contain a single or double quote (spec §3's Property invariant).
func (m *Manifest) SetProperty(name, value string) error {
	if strings.ContainsAny(name, `'"`) {
		return pkgerr.New(pkgerr.InvalidManifest, "property name %q must not contain quotes", name)
	}
	m.properties[name] = value
	return nil
}

// Property looks up a property by exact name.
func (m *Manifest) Property(name string) (string, bool) {
	v, ok := m.properties[name]
	return v, ok
}

// Version reads the "Version" property through PackageVersion parsing.
// An absent property yields the zero version (0, 0, 0).
func (m *Manifest) Version() PackageVersion {
	v, ok := m.properties[versionPropertyName]
	if !ok {
		return PackageVersion{}
	}
	return ParsePackageVersion(v)
}

func sortProperties(props []Property) {
	sort.Slice(props, func(i, j int) bool { return props[i].Name < props[j].Name })
}
