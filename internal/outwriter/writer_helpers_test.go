package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/rbicalc/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatter(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{"precision 1", 1, 0.26, "0.3"},
		{"precision 2", 2, 0.3456, "0.35"},
		{"precision 4", 4, 0.123456, "0.1235"},
		{"negative value", 2, -42.567, "-42.57"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat := createFormatter(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, map[string]any{"key": "DTHIN_1", "value": 0.2})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"key\": \"DTHIN_1\",\n  \"value\": 0.2\n}\n", buf.String())
}

func TestWriteJSONError(t *testing.T) {
	// Channels cannot be marshaled to JSON
	var buf bytes.Buffer
	err := writeJSON(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		rows     [][]string
		expected string
	}{
		{
			name:     "rows",
			header:   []string{"key", "value"},
			rows:     [][]string{{"DTHIN_1", "0.20"}, {"COF_AREA", "30.00"}},
			expected: "key,value\nDTHIN_1,0.20\nCOF_AREA,30.00\n",
		},
		{
			name:     "empty rows",
			header:   []string{"key", "value"},
			rows:     [][]string{},
			expected: "key,value\n",
		},
		{
			name:     "values with commas",
			header:   []string{"key", "formula"},
			rows:     [][]string{{"RISK_MATRIX_BASIC", "risk = pof, cof"}},
			expected: "key,formula\nRISK_MATRIX_BASIC,\"risk = pof, cof\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeCSVWithHeader(&buf, tt.header, func(w *csv.Writer) error {
				for _, row := range tt.rows {
					if err := w.Write(row); err != nil {
						return err
					}
				}
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteCSVWithHeaderError(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"col"}, func(_ *csv.Writer) error {
		return assert.AnError
	})
	require.Error(t, err)
	assert.Equal(t, assert.AnError, err)
}

func TestWriteWithFile(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		called := false
		err := writeWithFile("", func(w io.Writer) error {
			called = true
			_, err := w.Write([]byte(""))
			return err
		}, "Test message")
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("file", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "result.txt")
		err := writeWithFile(tmpFile, func(w io.Writer) error {
			_, err := w.Write([]byte("DTHIN_1"))
			return err
		}, "Test message")
		require.NoError(t, err)

		content, err := os.ReadFile(tmpFile)
		require.NoError(t, err)
		assert.Equal(t, "DTHIN_1", string(content))
	})

	t.Run("writer error", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "result.txt")
		err := writeWithFile(tmpFile, func(_ io.Writer) error {
			return assert.AnError
		}, "Test message")
		assert.Equal(t, assert.AnError, err)
	})

	t.Run("invalid path", func(t *testing.T) {
		err := writeWithFile("/nonexistent/path/file.txt", func(_ io.Writer) error {
			return nil
		}, "Test message")
		require.Error(t, err)
	})
}

func TestWriteJSONIntegration(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "result.json")

	err := writeWithFile(tmpFile, func(w io.Writer) error {
		return writeJSON(w, map[string]any{"key": "COF_BASIC", "value": 5000})
	}, "Wrote JSON")
	require.NoError(t, err)

	content, err := os.ReadFile(tmpFile)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(content, &result))
	assert.Equal(t, "COF_BASIC", result["key"])
	assert.Equal(t, float64(5000), result["value"])
}

func TestFormatFactors(t *testing.T) {
	fmtFloat := createFormatter(2)
	factors := map[string]float64{"thinningLoss": 2, "damageFactor": 0.2, "baseRatio": 0.2}

	assert.Equal(t, "baseRatio=0.20|damageFactor=0.20|thinningLoss=2.00", formatFactors(factors, fmtFloat, "|"))
	assert.Empty(t, formatFactors(nil, fmtFloat, "|"))
}

func TestFormatRange(t *testing.T) {
	fmtFloat := createFormatter(1)

	assert.Equal(t, "[0.0, 1.0]", formatRange(schema.BoundedRange(0, 1), fmtFloat))
	assert.Equal(t, "[0.0, ∞)", formatRange(schema.UnboundedRange(0), fmtFloat))
}

func TestFormatDefault(t *testing.T) {
	tests := []struct {
		value    any
		expected string
	}{
		{2.0, "2"},
		{1_000_000.0, "1000000"},
		{0.5, "0.5"},
		{"Moderate", "Moderate"},
		{"", `""`},
		{false, "false"},
		{50, "50"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDefault(tt.value))
		})
	}
}

func TestErrorKindAndMessage(t *testing.T) {
	kind, msg := errorKindAndMessage(nil)
	assert.Empty(t, kind)
	assert.Empty(t, msg)

	kind, msg = errorKindAndMessage(schema.NewMissingInputError(schema.DthinLocalized, "currentThickness"))
	assert.Equal(t, string(schema.MissingRequiredInput), kind)
	assert.True(t, strings.Contains(msg, "currentThickness"))
}
