package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/rbicalc/core"
	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/huangsam/rbicalc/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) engine() *core.Engine {
	if h.baseCfg.LenientCategories {
		return core.NewEngine(core.WithLenientCategories())
	}
	return core.NewEngine()
}

func (h *toolHandler) handleCalculateFormula(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.Target = request.GetString("family", "")
	cfg.Variant = request.GetString("variant", "")
	cfg.LenientCategories = request.GetBool("lenient_categories", cfg.LenientCategories)
	if strings.TrimSpace(cfg.Target) == "" {
		return mcp.NewToolResultError("family is required"), nil
	}

	inputs := schema.FormulaInput{}
	if raw, ok := request.GetArguments()["inputs"]; ok && raw != nil {
		obj, ok := raw.(map[string]any)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("inputs must be an object, got %T", raw)), nil
		}
		inputs = obj
	}

	result, err := core.Calculate(cfg, h.mgr, "mcp", cfg.Target, cfg.Variant, inputs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("calculation failed: %v", err)), nil
	}
	return jsonResult(schema.EnrichResult(result))
}

func (h *toolHandler) handleListFormulas(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.engine().GetAvailableFormulas())
}

func (h *toolHandler) handleGetFormulaConfig(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := request.GetString("key", "")
	def, ok := h.engine().GetFormulaConfig(key)
	if !ok {
		return mcp.NewToolResultError(schema.NewNotFoundError(schema.NormalizeVariant(key)).Error()), nil
	}
	return jsonResult(schema.DefinitionDetail{
		FormulaDefinition: def,
		Defaults:          core.OptionalDefaults(def),
	})
}

func (h *toolHandler) handleGetFormulasByType(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	family := request.GetString("family", "")
	if _, ok := schema.ValidFamilies[schema.NormalizeFamily(family)]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown formula family %q", family)), nil
	}
	return jsonResult(h.engine().GetFormulasByType(family))
}

func (h *toolHandler) handleClassifyRisk(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	for _, name := range []string{"pof", "cof"} {
		if _, ok := args[name]; !ok {
			return mcp.NewToolResultError(name + " is required"), nil
		}
	}
	inputs := schema.FormulaInput{"pof": args["pof"], "cof": args["cof"]}

	result, err := core.Calculate(h.baseCfg, h.mgr, "mcp", string(schema.RiskMatrixFamily), "", inputs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("risk classification failed: %v", err)), nil
	}
	if result.Risk == nil {
		return mcp.NewToolResultError("risk matrix produced no classification"), nil
	}
	return jsonResult(schema.RiskMatrixResult{FormulaResult: result, RiskAssessment: *result.Risk})
}
