package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/huangsam/rbicalc/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteBatchResults outputs batch evaluation results, dispatching based on the output format configured.
func WriteBatchResults(items []schema.BatchItemResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	model := schema.NewBatchRenderModel(items)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchCSV(w, items, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchTable(w, model, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// batchCSVHeader lists the columns of a batch row.
var batchCSVHeader = []string{"index", "id", "family", "variant", "key", "value", "label", "unit", "error_kind", "error_message"}

// writeBatchCSV writes one row per request, successful or not.
func writeBatchCSV(w io.Writer, items []schema.BatchItemResult, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, batchCSVHeader, func(cw *csv.Writer) error {
		for _, item := range items {
			var key, value, label, unit string
			if item.Result != nil {
				key = string(item.Result.Key)
				value = fmtFloat(item.Result.Value)
				label = schema.GetPlainLabel(*item.Result)
				unit = item.Result.Metadata.Unit
			} else if item.Error != nil {
				key = string(item.Error.Key)
			}
			kind, msg := errorKindAndMessage(item.Error)
			rec := []string{
				strconv.Itoa(item.Index),
				item.Request.ID,
				item.Request.Family,
				item.Request.Variant,
				key,
				value,
				label,
				unit,
				kind,
				msg,
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeBatchTable generates and writes the human-readable batch table.
func writeBatchTable(w io.Writer, model schema.BatchRenderModel, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "ID", "Key", "Value", "Label", "Error"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// Index, key, value and label columns take roughly 45 characters
	idWidth := getMaxTextWidth(cfg, 45) / 2
	errWidth := getMaxTextWidth(cfg, 45) - idWidth

	var data [][]string
	for _, item := range model.Items {
		row := []string{
			strconv.Itoa(item.Index + 1),
			contract.TruncateText(item.Request.ID, idWidth),
		}
		if item.Result != nil {
			row = append(row,
				string(item.Result.Key),
				fmtFloat(item.Result.Value),
				contract.GetColorLabel(*item.Result),
				"",
			)
		} else {
			var key string
			if item.Error != nil {
				key = string(item.Error.Key)
			}
			kind, _ := errorKindAndMessage(item.Error)
			row = append(row, key, "", "", contract.CriticalColor.Sprint(contract.TruncateText(kind, errWidth)))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Evaluated %d requests (%d succeeded, %d failed)\n", model.Total, model.Succeeded, model.Failed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Batch completed in %v with %d workers. Ledger backend: %s\n", duration, cfg.Workers, cfg.LedgerBackend); err != nil {
		return err
	}
	return nil
}
