package outwriter

import (
	"os"

	"github.com/huangsam/rbicalc/internal/contract"
	"golang.org/x/term"
)

// Bounds for the free-text column of a table.
const (
	minTextWidth = 15
	maxTextWidth = 70
)

// getTerminalWidth returns the configured width override or the detected terminal width.
func getTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Conservative default for narrow terminals and CI
		return 80
	}
	return detectedWidth
}

// getMaxTextWidth calculates the width left for the free-text column of a
// table once fixedWidth is reserved for the other columns.
func getMaxTextWidth(cfg *contract.Config, fixedWidth int) int {
	// Reserve space for table borders, separators, and padding
	available := getTerminalWidth(cfg) - fixedWidth - 20
	if available < minTextWidth {
		return minTextWidth
	}
	if available > maxTextWidth {
		return maxTextWidth
	}
	return available
}
