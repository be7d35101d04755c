package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sdvpack",
		Short:         "Build, install, verify and inspect installation packages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newPackCommand())
	cmd.AddCommand(newExtractCommand())
	cmd.AddCommand(newVerifyCommand())
	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newInstallCommand())
	cmd.AddCommand(newUpdateCommand())
	cmd.AddCommand(newRemoveCommand())
	return cmd
}
