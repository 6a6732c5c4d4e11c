package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pipeconf/loader"
	"pipeconf/migrate"
	"pipeconf/registry"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <name-or-path>",
	Short: "Print a document migrated to the current schema, without resolving its FROM chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loader.New(registry.Builtin()).Load(args[0])
		if err != nil {
			return err
		}
		migrated, err := migrate.Default().Migrate(doc.Name, doc.Tree, doc.SchemaVersion)
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(migrated); err != nil {
			return fmt.Errorf("encode migrated tree: %w", err)
		}
		return enc.Close()
	},
}
