package cmd

import (
	"github.com/spf13/cobra"

	"github.com/icepolcka/icecat/pkg/products"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the known data products",
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, name := range products.Names() {
			p, _ := products.Get(name)
			cmd.Printf("%s\n", name)
			for _, rule := range p.Kinds {
				cmd.Printf("  %-10s %s\n", rule.Kind, rule.Pattern)
			}
			if pc, ok := cfg.Products[name]; ok {
				cmd.Printf("  data:  %s\n  store: %s\n", pc.Data, pc.Store)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
}
