package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/huangsam/rbicalc/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// createFormatter returns the float formatter shared by every output type.
func createFormatter(precision int) func(float64) string {
	return func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
}

// sortedFactorNames returns factor names in a stable order for display.
func sortedFactorNames(factors map[string]float64) []string {
	return slices.Sorted(maps.Keys(factors))
}

// formatFactors renders factors as name=value pairs joined by sep.
func formatFactors(factors map[string]float64, fmtFloat func(float64) string, sep string) string {
	parts := make([]string, 0, len(factors))
	for _, name := range sortedFactorNames(factors) {
		parts = append(parts, fmt.Sprintf("%s=%s", name, fmtFloat(factors[name])))
	}
	return strings.Join(parts, sep)
}

// formatRange renders a value range as an interval.
func formatRange(r schema.ValueRange, fmtFloat func(float64) string) string {
	if r.Max == nil {
		return fmt.Sprintf("[%s, ∞)", fmtFloat(r.Min))
	}
	return fmt.Sprintf("[%s, %s]", fmtFloat(r.Min), fmtFloat(*r.Max))
}

// formatDefault renders a default input value for display.
func formatDefault(v any) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		if val == "" {
			return `""`
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}

// errorKindAndMessage splits a formula error into display columns.
func errorKindAndMessage(err *schema.FormulaError) (string, string) {
	if err == nil {
		return "", ""
	}
	return string(err.Kind), err.Error()
}
