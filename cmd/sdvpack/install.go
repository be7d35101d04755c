package main

import (
	"github.com/spf13/cobra"

	"github.com/holocm/sdv-packager/internal/extractor"
	"github.com/holocm/sdv-packager/internal/policy"
)

// newInstallCommand and newUpdateCommand supplement the core's single
// extract(updateRule) operation with the two named verbs the original
// sdv_packager executable exposes: install only ever succeeds against
// an empty target, update allows replacing an older version. --force
// escapes both into an unconditional overwrite.

func newInstallCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "install <package-file> <target-root>",
		Short: "Install a package where no prior installation may exist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule := policy.NotAllowed
			if force {
				rule = policy.Overwrite
			}
			_, err := extractor.New().ExtractFile(args[0], args[1], rule)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite any pre-existing installation")
	return cmd
}

func newUpdateCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "update <package-file> <target-root>",
		Short: "Install a package, allowing replacement of an older version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule := policy.UpdateWhenNew
			if force {
				rule = policy.Overwrite
			}
			_, err := extractor.New().ExtractFile(args[0], args[1], rule)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite even if the installed version is not older")
	return cmd
}
