// Package outwriter renders engine results as text tables, CSV or JSON.
package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/huangsam/rbicalc/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteCalcResult outputs a single calculation, dispatching based on the output format configured.
func WriteCalcResult(result schema.FormulaResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.EnrichResult(result))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, resultCSVHeader, func(cw *csv.Writer) error {
				return cw.Write(resultCSVRecord(result, fmtFloat))
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeResultText(w, result, cfg, fmtFloat, duration)
		}, "Wrote text")
	}
}

// resultCSVHeader lists the columns of a single result row.
var resultCSVHeader = []string{"key", "family", "value", "label", "unit", "formula", "factors"}

// resultCSVRecord flattens a result into one CSV row.
func resultCSVRecord(result schema.FormulaResult, fmtFloat func(float64) string) []string {
	return []string{
		string(result.Key),
		string(result.Family),
		fmtFloat(result.Value),
		schema.GetPlainLabel(result),
		result.Metadata.Unit,
		result.Formula,
		formatFactors(result.Factors, fmtFloat, "|"),
	}
}

// writeResultText prints the headline value followed by a table of resolved factors.
func writeResultText(w io.Writer, result schema.FormulaResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "🧮 %s (%s)\n", result.Key, result.Family); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Value: %s %s [%s]\n", fmtFloat(result.Value), result.Metadata.Unit, contract.GetColorLabel(result)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Range: %s\n", formatRange(result.Metadata.Range, fmtFloat)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Formula: %s\n", result.Formula); err != nil {
		return err
	}
	if result.Risk != nil {
		if err := writeRiskLines(w, *result.Risk); err != nil {
			return err
		}
	}

	if len(result.Factors) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Factor", "Value"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		var data [][]string
		for _, name := range sortedFactorNames(result.Factors) {
			data = append(data, []string{name, fmtFloat(result.Factors[name])})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	for _, note := range result.Metadata.Notes {
		if _, err := fmt.Fprintf(w, "Note: %s\n", note); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Calculated in %v. Ledger backend: %s\n", duration, cfg.LedgerBackend); err != nil {
		return err
	}
	return nil
}

// writeRiskLines prints the classification of a risk matrix result.
func writeRiskLines(w io.Writer, risk schema.RiskAssessment) error {
	lines := []string{
		fmt.Sprintf("Risk Level: %d (%s)", risk.Level, contract.GetColorLabel(schema.FormulaResult{Risk: &risk})),
		fmt.Sprintf("Category: %s", risk.Category),
		fmt.Sprintf("Priority: %s", risk.Priority),
		fmt.Sprintf("Inspection Interval: %d months", risk.InspectionIntervalMonths),
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
