package main

import (
	"github.com/spf13/cobra"

	"github.com/holocm/sdv-packager/internal/extractor"
	"github.com/holocm/sdv-packager/internal/pkgerr"
	"github.com/holocm/sdv-packager/internal/policy"
)

func newExtractCommand() *cobra.Command {
	var rule string

	cmd := &cobra.Command{
		Use:   "extract <package-file> <target-root>",
		Short: "Extract a package onto a target root under an explicit update rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseUpdateRule(rule)
			if err != nil {
				return err
			}
			_, err = extractor.New().ExtractFile(args[0], args[1], r)
			return err
		},
	}
	cmd.Flags().StringVar(&rule, "rule", "not-allowed", "overwrite | update-when-new | not-allowed")
	return cmd
}

func parseUpdateRule(s string) (policy.UpdateRule, error) {
	switch s {
	case "overwrite":
		return policy.Overwrite, nil
	case "update-when-new":
		return policy.UpdateWhenNew, nil
	case "not-allowed":
		return policy.NotAllowed, nil
	default:
		return 0, pkgerr.New(pkgerr.InvalidManifest, "unknown update rule %q", s)
	}
}
