package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/county-imes/imes-migrate/internal/export"
	"github.com/county-imes/imes-migrate/internal/mapping"
	"github.com/county-imes/imes-migrate/internal/sheet"
)

var budgetFlags struct {
	source     string
	template   string
	output     string
	format     string
	budgetName string
	finYear    string
}

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Map a budget workbook onto IMES budget lines",
	Long:  "Extracts budget lines from every department sheet of a budget workbook, resolves ward and subcounty against the IMES store, and writes the budget import (or review mapping) sheet.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		override(&cfg.Budget.Source, budgetFlags.source)
		override(&cfg.Budget.Template, budgetFlags.template)
		override(&cfg.Budget.Output, budgetFlags.output)
		override(&cfg.Budget.Format, budgetFlags.format)
		override(&cfg.Budget.BudgetName, budgetFlags.budgetName)
		override(&cfg.Budget.FinYear, budgetFlags.finYear)

		if err := cfg.Validate("budget"); err != nil {
			return err
		}
		if err := requireFile("budget source", cfg.Budget.Source); err != nil {
			return err
		}

		var template []string
		if cfg.Budget.Template != "" {
			if err := requireFile("budget template", cfg.Budget.Template); err != nil {
				return err
			}
			cols, err := sheet.TemplateColumns(cfg.Budget.Template)
			if err != nil {
				return eris.Wrap(err, "budget: read template")
			}
			template = cols
		}

		sheets, err := sheet.Open(cfg.Budget.Source)
		if err != nil {
			return eris.Wrap(err, "budget: read source")
		}

		refs := loadReferences(ctx)
		summary := mapping.NewSummary(cfg.Match.SuggestThreshold, summaryCandidates(refs))
		asm, err := mapping.NewBudget(refs, departmentMatcher(refs), cfg.Budget.Format,
			cfg.Budget.BudgetName, cfg.Budget.FinYear, template, summary)
		if err != nil {
			return err
		}

		var extractor sheet.BudgetExtractor
		for i := range sheets {
			extracted, ok := extractor.Extract(&sheets[i])
			if !ok {
				continue
			}
			asm.AddSheet(extracted)
		}

		out := asm.Table()
		if out.Len() == 0 {
			zap.L().Warn("budget: no budget lines extracted", zap.String("source", cfg.Budget.Source))
		}
		if err := export.Write(cfg.Budget.Output, out); err != nil {
			return eris.Wrap(err, "budget: write output")
		}
		summary.Log(out.Len())

		zap.L().Info("budget complete",
			zap.Int("rows", out.Len()),
			zap.String("format", cfg.Budget.Format),
			zap.String("output", cfg.Budget.Output),
			zap.String("reference_source", refs.Source),
		)
		return nil
	},
}

func init() {
	f := budgetCmd.Flags()
	f.StringVar(&budgetFlags.source, "source", "", "budget workbook (overrides budget.source)")
	f.StringVar(&budgetFlags.template, "template", "", "optional column template (overrides budget.template)")
	f.StringVar(&budgetFlags.output, "output", "", "output file, .xlsx or .csv (overrides budget.output)")
	f.StringVar(&budgetFlags.format, "format", "", "output layout: import or mapping (overrides budget.format)")
	f.StringVar(&budgetFlags.budgetName, "budget-name", "", "value of the Budget column")
	f.StringVar(&budgetFlags.finYear, "fin-year", "", "value of the fin_year column")
	rootCmd.AddCommand(budgetCmd)
}
