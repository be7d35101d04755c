package manifest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// tomlDocument, tomlModule and tomlComponent only need nice exported names
// so that toml.Decode produces meaningful error messages on malformed
// manifest text.
type tomlDocument struct {
	Installation tomlInstallation
	Properties   map[string]string
	Module       []tomlModule
}

type tomlInstallation struct {
	Version uint32
	Name    string

	// Properties is the deprecated [Installation.Properties] location.
	// Early manifest producers nested properties under [Installation]
	// instead of the top-level [Properties] table; decodeTOML still
	// reads it for compatibility, but Manifest.Read warns when it's used.
	Properties map[string]string
}

type tomlModule struct {
	Path      string
	Component []tomlComponent
}

type tomlComponent struct {
	Class        string
	Aliases      []string
	DefaultName  string
	Type         string
	Singleton    bool
	Dependencies []string
}

// decodeTOML parses tomlText into the nice-named intermediate structs. The
// BurntSushi decoder ignores unknown keys by default, matching the "unknown
// keys are ignored" rule in spec §4.4.
func decodeTOML(tomlText string) (tomlDocument, error) {
	var doc tomlDocument
	_, err := toml.Decode(tomlText, &doc)
	return doc, err
}

// tomlModuleSnippet is the shape of the manifest text a module binary
// itself exports via GetManifest() (spec §4.3): a flat array of
// components, with no Installation or Path wrapper.
type tomlModuleSnippet struct {
	Component []tomlComponent
}

func decodeModuleSnippet(tomlText string) (tomlModuleSnippet, error) {
	var doc tomlModuleSnippet
	_, err := toml.Decode(tomlText, &doc)
	return doc, err
}

// buildComponent converts a decoded tomlComponent into a Component,
// rejecting it (ok == false) per spec §3/§4.4's silent-skip rules: an
// empty class name or an unrecognized Type reject the component, not the
// enclosing module.
func buildComponent(tc tomlComponent, relModulePath string) (Component, bool) {
	if tc.Class == "" {
		return Component{}, false
	}
	t, ok := parseComponentType(tc.Type)
	if !ok {
		return Component{}, false
	}

	defaultName := tc.DefaultName
	if defaultName == "" {
		defaultName = tc.Class
	}

	c := Component{
		ClassName:          tc.Class,
		Aliases:            append([]string(nil), tc.Aliases...),
		DefaultObjectName:  defaultName,
		Type:               t,
		Singleton:          tc.Singleton,
		Dependencies:       append([]string(nil), tc.Dependencies...),
		RelativeModulePath: relModulePath,
	}
	c.RawManifest = renderComponentSnippet(c)
	return c, true
}

// renderComponentSnippet re-renders c's own fields as a standalone TOML
// snippet, approximating the "component's own TOML snippet" the spec asks
// Component.RawManifest to preserve. A module's original GetManifest()
// text is not retained field-by-field once parsed, so this is a
// deterministic re-rendering rather than a literal substring of the
// module's original manifest text.
func renderComponentSnippet(c Component) string {
	var b strings.Builder
	b.WriteString("[[Component]]\n")
	fmt.Fprintf(&b, "Class = %s\n", quoteString(c.ClassName))
	if len(c.Aliases) > 0 {
		fmt.Fprintf(&b, "Aliases = %s\n", quoteStringArray(c.Aliases))
	}
	if c.DefaultObjectName != "" && c.DefaultObjectName != c.ClassName {
		fmt.Fprintf(&b, "DefaultName = %s\n", quoteString(c.DefaultObjectName))
	}
	fmt.Fprintf(&b, "Type = %s\n", quoteString(c.Type.String()))
	if c.Singleton {
		b.WriteString("Singleton = true\n")
	}
	if len(c.Dependencies) > 0 {
		fmt.Fprintf(&b, "Dependencies = %s\n", quoteStringArray(c.Dependencies))
	}
	return b.String()
}

// encodeManifest renders m in the canonical shape from spec §4.4. The
// BurntSushi encoder is not used here: the manifest's optional-field
// omission rules (DefaultName omitted iff it equals Class, Singleton
// omitted iff false, etc.) need finer control than a generic struct
// encoder's omitempty tag gives, so the text is built by hand the way a
// human author would lay it out.
func encodeManifest(m *Manifest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[Installation]\nVersion = %d\nName = %s\n", FrameworkInterfaceVersion, quoteString(m.installName))

	if len(m.properties) > 0 {
		b.WriteString("\n[Properties]\n")
		keys := make([]string, 0, len(m.properties))
		for k := range m.properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			key := k
			if needsQuoting(k) {
				key = quoteString(k)
			}
			fmt.Fprintf(&b, "%s = %s\n", key, quoteString(m.properties[k]))
		}
	}

	for _, mod := range m.modules {
		fmt.Fprintf(&b, "\n[[Module]]\nPath = %s\n", quoteString(mod.RelativeModulePath))
		for _, c := range mod.Components {
			b.WriteString("  [[Module.Component]]\n")
			fmt.Fprintf(&b, "  Class = %s\n", quoteString(c.ClassName))
			if len(c.Aliases) > 0 {
				fmt.Fprintf(&b, "  Aliases = %s\n", quoteStringArray(c.Aliases))
			}
			if c.DefaultObjectName != "" && c.DefaultObjectName != c.ClassName {
				fmt.Fprintf(&b, "  DefaultName = %s\n", quoteString(c.DefaultObjectName))
			}
			fmt.Fprintf(&b, "  Type = %s\n", quoteString(c.Type.String()))
			if c.Singleton {
				b.WriteString("  Singleton = true\n")
			}
			if len(c.Dependencies) > 0 {
				fmt.Fprintf(&b, "  Dependencies = %s\n", quoteStringArray(c.Dependencies))
			}
		}
	}

	return b.String()
}

func quoteString(s string) string {
	return strconv.Quote(s)
}

func quoteStringArray(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteString(v)
	}
	return "[ " + strings.Join(quoted, ", ") + " ]"
}
