package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holocm/sdv-packager/internal/extractor"
	"github.com/holocm/sdv-packager/internal/pkgerr"
)

func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <package-file>",
		Short: "Verify a package's integrity without extracting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := extractor.New().VerifyFile(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return pkgerr.New(pkgerr.FileCorrupt, "%s failed verification", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}
