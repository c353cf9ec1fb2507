package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	orderopts "github.com/goliatone/go-order-options"
	"github.com/goliatone/go-order-options/pkg/catalog"
)

func (a *app) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a catalog file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := a.loadCatalog()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %d options\n", cat.Len())
			for _, def := range cat.Definitions() {
				line := fmt.Sprintf("  %-20s %s", def.ID, def.Kind)
				if def.Required {
					line += " (required)"
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func (a *app) loadCatalog() (*orderopts.Catalog, error) {
	path := a.config.GetString("catalog")
	if path == "" {
		return nil, fmt.Errorf("orderctl: --catalog is required")
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, err
	}
	a.log.WithField("catalog", path).WithField("options", cat.Len()).Debug("catalog loaded")
	return cat, nil
}
