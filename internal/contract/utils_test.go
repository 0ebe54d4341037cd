package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/rbicalc/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetColorLabel(t *testing.T) {
	bounded := func(v float64) schema.FormulaResult {
		return schema.FormulaResult{Value: v, Metadata: schema.ResultMetadata{Range: schema.BoundedRange(0, 1)}}
	}
	tests := []struct {
		name   string
		result schema.FormulaResult
		label  string
	}{
		{"low", bounded(0.3), schema.LowValue},
		{"moderate", bounded(0.5), schema.ModerateValue},
		{"high", bounded(0.7), schema.HighValue},
		{"critical", bounded(0.9), schema.CriticalValue},
		{"unbounded", schema.FormulaResult{Value: 42, Metadata: schema.ResultMetadata{Range: schema.UnboundedRange(0)}}, schema.UnratedValue},
		{"risk band", schema.FormulaResult{Risk: &schema.RiskAssessment{LevelName: "Medium-High"}}, "Medium-High"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetColorLabel(tt.result)
			// Should contain the plain label
			assert.Contains(t, result, tt.label)
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		// Verify file was created
		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestGetLedgerDBFilePath(t *testing.T) {
	path := GetLedgerDBFilePath()

	assert.NotEmpty(t, path)
	assert.Contains(t, path, ".rbicalc_ledger.db")

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, homeDir), "path %s should start with home dir %s", path, homeDir)
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		width    int
		expected string
	}{
		{"fits", "DTHIN_1", 10, "DTHIN_1"},
		{"exact", "DTHIN_1", 7, "DTHIN_1"},
		{"truncated", "Corrosion under insulation", 10, "Corrosi..."},
		{"width too small", "Corrosion", 3, "Corrosion"},
		{"multibyte", "pof × cof → band", 8, "pof ×..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateText(tt.text, tt.width))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
		wantErr  bool
	}{
		{"yes", true, false},
		{"YES", true, false},
		{"true", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{"0", false, false},
		{"maybe", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
