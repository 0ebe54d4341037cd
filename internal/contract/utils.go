package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/rbicalc/schema"
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // criticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // highColor represents strong, distinct warning.
	ModerateColor = color.New(color.FgYellow)              // moderateColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // lowColor represents informational / low-priority signal.
)

// Risk band names, mirrored here so labels can be colored without importing the calculators.
const (
	riskHigh       = "High"
	riskMediumHigh = "Medium-High"
	riskMedium     = "Medium"
	riskMediumLow  = "Medium-Low"
)

// GetColorLabel returns a colored text label for console output (table).
// It colors the plain label of the result, which is a severity grade for
// bounded damage factors and a band name for risk matrix results.
func GetColorLabel(r schema.FormulaResult) string {
	text := schema.GetPlainLabel(r)
	if r.Risk != nil {
		return colorRiskBand(text)
	}

	switch text {
	case schema.CriticalValue:
		return CriticalColor.Sprint(text)
	case schema.HighValue:
		return HighColor.Sprint(text)
	case schema.ModerateValue:
		return ModerateColor.Sprint(text)
	case schema.LowValue:
		return LowColor.Sprint(text)
	default:
		return text
	}
}

func colorRiskBand(name string) string {
	switch name {
	case riskHigh:
		return CriticalColor.Sprint(name)
	case riskMediumHigh:
		return HighColor.Sprint(name)
	case riskMedium:
		return ModerateColor.Sprint(name)
	case riskMediumLow:
		return LowColor.Sprint(name)
	default:
		return name
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path and format type. It falls back to os.Stdout on error.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetLedgerDBFilePath returns the path to the SQLite DB file for the calculation ledger.
func GetLedgerDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".rbicalc_ledger.db"
	}
	return filepath.Join(homeDir, ".rbicalc_ledger.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to ensure there's space for both the "..." suffix and at least one character of content.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
