// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the rbicalc MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"RBI Formula Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: calculate_formula ---
	s.AddTool(mcp.NewTool("calculate_formula",
		mcp.WithDescription("Evaluate one RBI formula (damage factor, consequence or risk) for a set of named inputs."),
		mcp.WithString("family", mcp.Description("Formula family (DTHIN, DFEXT, DFSCC, DFMFAT, DFCUI, COF, RISK_MATRIX)."), mcp.Required()),
		mcp.WithString("variant", mcp.Description("Variant key such as DTHIN_1. Defaults to the family's basic variant.")),
		mcp.WithObject("inputs", mcp.Description("Named inputs, e.g. {\"nominalThickness\": 10, \"coatingCondition\": \"Poor\"}.")),
		mcp.WithBoolean("lenient_categories", mcp.Description("Resolve unknown categorical values to a neutral factor instead of failing.")),
	), h.handleCalculateFormula)

	// --- 2. Tool: list_formulas ---
	s.AddTool(mcp.NewTool("list_formulas",
		mcp.WithDescription("List every registered formula definition."),
	), h.handleListFormulas)

	// --- 3. Tool: get_formula_config ---
	s.AddTool(mcp.NewTool("get_formula_config",
		mcp.WithDescription("Show one formula definition with the defaults of its optional inputs."),
		mcp.WithString("key", mcp.Description("Variant key such as DFCUI_ADVANCED."), mcp.Required()),
	), h.handleGetFormulaConfig)

	// --- 4. Tool: get_formulas_by_type ---
	s.AddTool(mcp.NewTool("get_formulas_by_type",
		mcp.WithDescription("List the formula definitions of one family."),
		mcp.WithString("family", mcp.Description("Formula family such as DTHIN."), mcp.Required()),
	), h.handleGetFormulasByType)

	// --- 5. Tool: classify_risk ---
	s.AddTool(mcp.NewTool("classify_risk",
		mcp.WithDescription("Classify a probability and consequence of failure on the 5-band risk matrix."),
		mcp.WithNumber("pof", mcp.Description("Probability of failure."), mcp.Required()),
		mcp.WithNumber("cof", mcp.Description("Consequence of failure."), mcp.Required()),
	), h.handleClassifyRisk)

	return s
}

// StartMCPServer starts the rbicalc MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
