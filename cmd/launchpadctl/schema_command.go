package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newSchemaCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "schema [programs|suggestions]",
		Short:     "Print a database's columns, types and options",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"programs", "suggestions"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tk, err := c.toolkit(ctx)
			if err != nil {
				return err
			}
			defer c.close()

			which := "programs"
			if len(args) == 1 {
				which = args[0]
			}
			id := tk.Config.NotionProgramsDB
			if which == "suggestions" {
				if err := tk.Config.RequireSuggestionsDB(); err != nil {
					return err
				}
				id = tk.Config.NotionSuggestionsDB
			}

			db, err := tk.Directory.Database(ctx, id)
			if err != nil {
				return fmt.Errorf("retrieve %s database: %w", which, err)
			}
			if c.json() {
				return writeJSON(cmd, db.Properties)
			}

			names := make([]string, 0, len(db.Properties))
			for name := range db.Properties {
				names = append(names, name)
			}
			sort.Strings(names)

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				prop := db.Properties[name]
				options := make([]string, 0, len(prop.Options()))
				for _, o := range prop.Options() {
					options = append(options, o.Name)
				}
				rows = append(rows, []string{name, prop.Type, strings.Join(options, ", ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Property", "Type", "Options"}, rows, nil))
			return nil
		},
	}
}
