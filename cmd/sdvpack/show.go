package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holocm/sdv-packager/internal/extractor"
	"github.com/holocm/sdv-packager/internal/pkgerr"
)

func newShowCommand() *cobra.Command {
	var modulePath string

	cmd := &cobra.Command{
		Use:   "show <package-file>",
		Short: "Print a package's manifest contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := extractor.New().ExtractInstallManifestFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if modulePath != "" {
				text := m.FindModuleManifest(modulePath)
				if text == "" {
					return pkgerr.New(pkgerr.InvalidPath, "no module registered at %q", modulePath)
				}
				fmt.Fprint(out, text)
				return nil
			}

			fmt.Fprintf(out, "Install name: %s\n", m.InstallName())
			fmt.Fprintf(out, "Version: %s\n", m.Version())

			fmt.Fprintln(out, "Properties:")
			for _, p := range m.PropertyList() {
				fmt.Fprintf(out, "  %s = %s\n", p.Name, p.Value)
			}

			fmt.Fprintln(out, "Modules:")
			for _, mod := range m.ModuleList() {
				fmt.Fprintf(out, "  %s\n", mod)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modulePath, "module", "", "print only the raw component TOML of the named module")
	return cmd
}
