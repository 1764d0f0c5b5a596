package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/county-imes/imes-migrate/internal/mapping"
	"github.com/county-imes/imes-migrate/internal/match"
	"github.com/county-imes/imes-migrate/internal/refdata"
)

var matchKind string

var matchCmd = &cobra.Command{
	Use:   "match <label>",
	Short: "Resolve one label against the reference data",
	Long:  "Resolves a ward, subcounty, department or free-text location label the way the adp and budget runs do, printing the canonical name and the rule that fired.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("match"); err != nil {
			return err
		}
		label := strings.Join(args, " ")

		refs := loadReferences(cmd.Context())
		return printMatch(cmd, refs, matchKind, label)
	},
}

func printMatch(cmd *cobra.Command, refs *refdata.References, kind, label string) error {
	out := cmd.OutOrStdout()

	var c *match.Candidates
	switch kind {
	case "ward":
		c = refs.Wards
	case "subcounty":
		c = refs.Subcounties
	case "department":
		name, rule := departmentMatcher(refs).MatchRule(label)
		fmt.Fprintf(out, "%s\t%s\n", name, ruleName(rule))
		if name == match.Unknown {
			printSuggestion(cmd, label, refs.Departments)
		}
		return nil
	case "location":
		loc := refs.Locate(label)
		fmt.Fprintf(out, "subcounty\t%s\nward\t%s\n", loc.Subcounty, loc.Ward)
		return nil
	default:
		return eris.Errorf("match: unknown kind %q (ward, subcounty, department, location)", kind)
	}

	name, rule := match.MatchRule(label, c)
	fmt.Fprintf(out, "%s\t%s\n", name, ruleName(rule))
	if name == match.Unknown {
		printSuggestion(cmd, label, c)
	}
	return nil
}

func printSuggestion(cmd *cobra.Command, label string, c *match.Candidates) {
	threshold := cfg.Match.SuggestThreshold
	if threshold <= 0 {
		threshold = mapping.DefaultSuggestThreshold
	}
	if s, score := mapping.Suggest(label, c, threshold); s != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "did you mean %q (%.2f)?\n", s, score)
	}
}

func ruleName(rule string) string {
	if rule == "" {
		return "none"
	}
	return rule
}

func init() {
	matchCmd.Flags().StringVar(&matchKind, "kind", "ward", "label kind: ward, subcounty, department or location")
	rootCmd.AddCommand(matchCmd)
}
