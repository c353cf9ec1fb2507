package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-order-options/schema/openapi"
)

func (a *app) schemaCommand() *cobra.Command {
	var standalone bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the OpenAPI document (or bare JSON Schema) for a catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := a.loadCatalog()
			if err != nil {
				return err
			}
			var document map[string]any
			if standalone {
				document = openapi.SelectionSchema(cat)
			} else {
				document, err = openapi.NewGenerator(cat).Generate()
				if err != nil {
					return err
				}
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(document)
		},
	}
	cmd.Flags().BoolVar(&standalone, "json-schema", false, "print only the selection JSON Schema")
	return cmd
}
