package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/county-imes/imes-migrate/internal/match"
)

var refsList bool

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Show the reference data the store answers with",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("refs"); err != nil {
			return err
		}
		refs := loadReferences(cmd.Context())
		out := cmd.OutOrStdout()

		source := refs.Source
		if source == "" {
			source = "none"
		}
		fmt.Fprintf(out, "source\t%s\n", source)

		sections := []struct {
			name string
			c    *match.Candidates
		}{
			{"departments", refs.Departments},
			{"subcounties", refs.Subcounties},
			{"wards", refs.Wards},
		}
		for _, s := range sections {
			fmt.Fprintf(out, "%s\t%d\n", s.name, s.c.Len())
			if !refsList {
				continue
			}
			for _, name := range s.c.Names() {
				if s.name == "wards" {
					sc, _ := refs.SubcountyOf(name)
					fmt.Fprintf(out, "  %s\t%s\n", name, sc)
					continue
				}
				fmt.Fprintf(out, "  %s\n", name)
			}
		}
		return nil
	},
}

func init() {
	refsCmd.Flags().BoolVar(&refsList, "list", false, "list every reference name")
	rootCmd.AddCommand(refsCmd)
}
