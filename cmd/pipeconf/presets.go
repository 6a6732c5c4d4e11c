package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pipeconf/registry"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in preset catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, h := range registry.Builtin().Names() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", h.Name, h.Origin)
		}
		return nil
	},
}
