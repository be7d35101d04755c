package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/holocm/sdv-packager/internal/composer"
	"github.com/holocm/sdv-packager/internal/introspect"
	"github.com/holocm/sdv-packager/internal/pkgerr"
)

func newPackCommand() *cobra.Command {
	var modules []string
	var properties []string
	var output string

	cmd := &cobra.Command{
		Use:   "pack <install-name>",
		Short: "Assemble a package from files on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			installName := args[0]
			c := composer.New(introspect.New())

			for _, spec := range modules {
				base, pattern, dest, flags, err := parseAddModuleSpec(spec)
				if err != nil {
					return err
				}
				if err := c.AddModule(base, pattern, dest, flags); err != nil {
					return err
				}
			}
			for _, prop := range properties {
				name, value, ok := strings.Cut(prop, "=")
				if !ok {
					return pkgerr.New(pkgerr.InvalidManifest, "--prop %q must be in name=value form", prop)
				}
				if err := c.AddProperty(name, value); err != nil {
					return err
				}
			}
			if output == "" {
				return pkgerr.New(pkgerr.InvalidPath, "--output is required")
			}
			return c.ComposeToFile(installName, output)
		},
	}

	cmd.Flags().StringArrayVar(&modules, "module", nil,
		"base=DIR,pattern=PATTERN,dest=DIR[,regex=true][,keep=true] (repeatable)")
	cmd.Flags().StringArrayVar(&properties, "prop", nil, "name=value manifest property (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "path to write the package to")
	return cmd
}

// parseAddModuleSpec parses one --module flag value into AddModule's
// arguments. Fields are split on every comma and each field on its first
// '=', so a value may contain ':' or '=' but not ','.
func parseAddModuleSpec(spec string) (base, pattern, dest string, flags composer.AddModuleFlag, err error) {
	fields := map[string]string{}
	for _, part := range strings.Split(spec, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return "", "", "", 0, pkgerr.New(pkgerr.InvalidPath, "malformed --module field %q", part)
		}
		fields[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	pattern, ok := fields["pattern"]
	if !ok {
		return "", "", "", 0, pkgerr.New(pkgerr.InvalidPath, "--module %q is missing a pattern field", spec)
	}
	base = fields["base"]
	dest = fields["dest"]
	if fields["regex"] == "true" {
		flags |= composer.UseRegex
	}
	if fields["keep"] == "true" {
		flags |= composer.KeepStructure
	}
	return base, pattern, dest, flags, nil
}
