package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/huangsam/rbicalc/schema"
)

// WriteRiskResult outputs a risk classification, dispatching based on the output format configured.
func WriteRiskResult(result schema.RiskMatrixResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRiskCSV(w, result, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeResultText(w, result.FormulaResult, cfg, fmtFloat, duration)
		}, "Wrote text")
	}
}

// writeRiskCSV writes the classification as a single CSV row.
func writeRiskCSV(w io.Writer, result schema.RiskMatrixResult, fmtFloat func(float64) string) error {
	header := []string{"pof", "cof", "score", "level", "level_name", "category", "priority", "inspection_interval_months"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		return cw.Write([]string{
			fmtFloat(result.Factors["pof"]),
			fmtFloat(result.Factors["cof"]),
			strconv.FormatFloat(result.Score, 'g', -1, 64),
			strconv.Itoa(result.Level),
			result.LevelName,
			result.Category,
			result.Priority,
			strconv.Itoa(result.InspectionIntervalMonths),
		})
	})
}
