package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pipeconf/loader"
	"pipeconf/registry"
	"pipeconf/resolve"
)

var validateCmd = &cobra.Command{
	Use:   "validate <name-or-path>",
	Short: "Resolve a configuration and report every schema violation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := resolve.New(resolve.Options{
			Loader: loader.New(registry.Builtin()),
		})
		if _, err := r.Resolve(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", args[0])
		return nil
	},
}
