package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/huangsam/rbicalc/schema"
	"github.com/olekukonko/tablewriter"
)

// Input kinds shown in definition details.
const (
	requiredInput = "required"
	optionalInput = "optional"
)

// WriteCatalog prints registry definitions grouped by family.
// This is a static display that does not evaluate anything.
func WriteCatalog(defs []schema.FormulaDefinition, cfg *contract.Config) error {
	renderModel := buildCatalogRenderModel(defs)
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, renderModel)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCatalogCSV(w, renderModel, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCatalogText(w, renderModel, cfg, fmtFloat)
		}, "Wrote text")
	}
}

// buildCatalogRenderModel groups definitions by family in display order.
// Families without definitions are left out.
func buildCatalogRenderModel(defs []schema.FormulaDefinition) *schema.CatalogRenderModel {
	byFamily := map[schema.Family][]schema.FormulaDefinition{}
	for _, def := range defs {
		byFamily[def.Family] = append(byFamily[def.Family], def)
	}

	model := &schema.CatalogRenderModel{Title: "RBI Formula Catalog"}
	for _, family := range schema.AllFamilies {
		if len(byFamily[family]) == 0 {
			continue
		}
		model.Families = append(model.Families, schema.FamilyListing{
			Family:      family,
			Definitions: byFamily[family],
		})
	}
	return model
}

// writeCatalogText displays the catalog as one table per family.
func writeCatalogText(w io.Writer, model *schema.CatalogRenderModel, cfg *contract.Config, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "📚 %s\n", model.Title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n", strings.Repeat("=", len(model.Title)+3)); err != nil {
		return err
	}

	// Key, unit, range and input count columns take roughly 50 characters
	nameWidth := getMaxTextWidth(cfg, 50)
	total := 0
	for _, listing := range model.Families {
		if _, err := fmt.Fprintf(w, "\n%s (%d)\n", listing.Family, len(listing.Definitions)); err != nil {
			return err
		}
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Key", "Name", "Unit", "Range", "Inputs"})
		var data [][]string
		for _, def := range listing.Definitions {
			data = append(data, []string{
				string(def.Key),
				contract.TruncateText(def.Name, nameWidth),
				def.Unit,
				formatRange(def.Range, fmtFloat),
				fmt.Sprintf("%d required, %d optional", len(def.Required), len(def.Optional)),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		total += len(listing.Definitions)
	}

	if _, err := fmt.Fprintf(w, "\nShowing %d formulas across %d families\n", total, len(model.Families)); err != nil {
		return err
	}
	return nil
}

// writeCatalogCSV writes one row per definition.
func writeCatalogCSV(w io.Writer, model *schema.CatalogRenderModel, fmtFloat func(float64) string) error {
	header := []string{"family", "key", "name", "category", "unit", "range_min", "range_max", "required", "optional", "version"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, listing := range model.Families {
			for _, def := range listing.Definitions {
				rangeMax := ""
				if def.Range.Max != nil {
					rangeMax = fmtFloat(*def.Range.Max)
				}
				rec := []string{
					string(def.Family),
					string(def.Key),
					def.Name,
					def.Category,
					def.Unit,
					fmtFloat(def.Range.Min),
					rangeMax,
					strings.Join(def.Required, "|"),
					strings.Join(def.Optional, "|"),
					def.Version,
				}
				if err := cw.Write(rec); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
		return nil
	})
}

// WriteDefinition prints one definition with the defaults of its optional inputs.
func WriteDefinition(detail schema.DefinitionDetail, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, detail)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDefinitionCSV(w, detail)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDefinitionText(w, detail, fmtFloat)
		}, "Wrote text")
	}
}

// definitionInputRows lists required inputs first, then optional inputs with their defaults.
func definitionInputRows(detail schema.DefinitionDetail) [][]string {
	rows := make([][]string, 0, len(detail.Required)+len(detail.Optional))
	for _, name := range detail.Required {
		rows = append(rows, []string{name, requiredInput, ""})
	}
	for _, name := range detail.Optional {
		def := ""
		if v, ok := detail.Defaults[name]; ok {
			def = formatDefault(v)
		}
		rows = append(rows, []string{name, optionalInput, def})
	}
	return rows
}

// writeDefinitionText displays a definition in human-readable text format.
func writeDefinitionText(w io.Writer, detail schema.DefinitionDetail, fmtFloat func(float64) string) error {
	lines := []string{
		fmt.Sprintf("📐 %s: %s", detail.Key, detail.Name),
		detail.Description,
		"",
		fmt.Sprintf("Family: %s", detail.Family),
		fmt.Sprintf("Category: %s", detail.Category),
		fmt.Sprintf("Unit: %s", detail.Unit),
		fmt.Sprintf("Range: %s", formatRange(detail.Range, fmtFloat)),
		fmt.Sprintf("Version: %s", detail.Version),
	}
	if _, err := fmt.Fprintln(w, strings.Join(lines, "\n")); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Input", "Kind", "Default"})
	if err := table.Bulk(definitionInputRows(detail)); err != nil {
		return err
	}
	return table.Render()
}

// writeDefinitionCSV writes one row per input.
func writeDefinitionCSV(w io.Writer, detail schema.DefinitionDetail) error {
	return writeCSVWithHeader(w, []string{"key", "input", "kind", "default"}, func(cw *csv.Writer) error {
		for _, row := range definitionInputRows(detail) {
			if err := cw.Write(append([]string{string(detail.Key)}, row...)); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
