package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/county-imes/imes-migrate/internal/export"
	"github.com/county-imes/imes-migrate/internal/mapping"
	"github.com/county-imes/imes-migrate/internal/refcode"
	"github.com/county-imes/imes-migrate/internal/sheet"
)

var adpFlags struct {
	source    string
	template  string
	output    string
	timeframe string
}

var adpCmd = &cobra.Command{
	Use:   "adp",
	Short: "Map an ADP workbook onto IMES projects",
	Long:  "Extracts project rows from every sheet of an Annual Development Plan workbook, resolves department, subcounty and ward against the IMES store, and writes the project import sheet.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		override(&cfg.ADP.Source, adpFlags.source)
		override(&cfg.ADP.Template, adpFlags.template)
		override(&cfg.ADP.Output, adpFlags.output)
		override(&cfg.ADP.DefaultTimeframe, adpFlags.timeframe)

		if err := cfg.Validate("adp"); err != nil {
			return err
		}
		if err := requireFile("adp source", cfg.ADP.Source); err != nil {
			return err
		}
		if err := requireFile("adp template", cfg.ADP.Template); err != nil {
			return err
		}

		template, err := sheet.TemplateColumns(cfg.ADP.Template)
		if err != nil {
			return eris.Wrap(err, "adp: read template")
		}
		sheets, err := sheet.Open(cfg.ADP.Source)
		if err != nil {
			return eris.Wrap(err, "adp: read source")
		}

		refs := loadReferences(ctx)
		summary := mapping.NewSummary(cfg.Match.SuggestThreshold, summaryCandidates(refs))
		asm := mapping.NewADP(refs, departmentMatcher(refs), refcode.Generator{DefaultYear: cfg.ADP.DefaultTimeframe}, template, summary)

		for i := range sheets {
			extracted, ok := sheet.ExtractADP(&sheets[i])
			if !ok {
				continue
			}
			asm.AddSheet(extracted)
		}

		out := asm.Table()
		if out.Len() == 0 {
			zap.L().Warn("adp: no project rows extracted", zap.String("source", cfg.ADP.Source))
		}
		if err := export.Write(cfg.ADP.Output, out); err != nil {
			return eris.Wrap(err, "adp: write output")
		}
		summary.Log(out.Len())

		zap.L().Info("adp complete",
			zap.Int("rows", out.Len()),
			zap.String("output", cfg.ADP.Output),
			zap.String("reference_source", refs.Source),
		)
		return nil
	},
}

func init() {
	f := adpCmd.Flags()
	f.StringVar(&adpFlags.source, "source", "", "ADP workbook (overrides adp.source)")
	f.StringVar(&adpFlags.template, "template", "", "project import template (overrides adp.template)")
	f.StringVar(&adpFlags.output, "output", "", "output file, .xlsx or .csv (overrides adp.output)")
	f.StringVar(&adpFlags.timeframe, "default-timeframe", "", "year token used when a row has no time frame")
	rootCmd.AddCommand(adpCmd)
}
