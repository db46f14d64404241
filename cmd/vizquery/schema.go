package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var schemaImage bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the database schema as CREATE TABLE statements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		visualizer, cleanup, err := buildVisualizer(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if schemaImage {
			path, err := visualizer.SchemaImage(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Schema diagram written to %s\n", path)
			return nil
		}

		schema, err := visualizer.ExportSchema(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(schema)
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaImage, "image", false,
		"render the schema as a diagram HTML page instead of DDL text")
	rootCmd.AddCommand(schemaCmd)
}
