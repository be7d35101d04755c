package main

import (
	"github.com/spf13/cobra"

	"github.com/holocm/sdv-packager/internal/extractor"
)

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <install-name> <root>",
		Short: "Remove an installed tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := extractor.New().Remove(args[0], args[1])
			return err
		},
	}
}
