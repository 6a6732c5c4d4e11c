package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pipeconf/loader"
	"pipeconf/merge"
	"pipeconf/registry"
	"pipeconf/resolve"
)

var (
	resolveProvenance bool
	resolveOutput     string
)

func init() {
	resolveCmd.Flags().BoolVar(&resolveProvenance, "provenance", false, "append per-path provenance chains")
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "", "write the resolved tree to a file instead of stdout")
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <name-or-path>",
	Short: "Resolve a configuration and print the final tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var tracker *merge.Tracker
		if resolveProvenance {
			tracker = merge.NewTracker()
		}
		r := resolve.New(resolve.Options{
			Loader:  loader.New(registry.Builtin()),
			Tracker: tracker,
		})

		resolved, err := r.Resolve(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		var file *os.File
		if resolveOutput != "" {
			f, err := os.Create(resolveOutput)
			if err != nil {
				return fmt.Errorf("create %s: %w", resolveOutput, err)
			}
			defer f.Close()
			file = f
			out = f
		}

		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(resolved.Tree); err != nil {
			return fmt.Errorf("encode resolved tree: %w", err)
		}

		if resolveProvenance {
			provenance := make(map[string][]string, len(resolved.ProvenancePaths()))
			for _, path := range resolved.ProvenancePaths() {
				provenance[path] = resolved.Provenance(path)
			}
			if err := enc.Encode(map[string]any{"provenance": provenance}); err != nil {
				return fmt.Errorf("encode provenance: %w", err)
			}
		}
		if err := enc.Close(); err != nil {
			return err
		}
		if file != nil {
			// Close errors surface buffered write failures; the deferred
			// Close above only cleans up on earlier error paths.
			if err := file.Close(); err != nil {
				return fmt.Errorf("write %s: %w", resolveOutput, err)
			}
		}
		return nil
	},
}
