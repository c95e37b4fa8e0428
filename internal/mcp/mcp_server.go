// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/signalboard/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var windowEnum = mcp.Enum("24h", "7d", "30d")

// NewMCPServer initializes and configures the Signalboard MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Signalboard Reputation Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: compute_signal_score ---
	s.AddTool(mcp.NewTool("compute_signal_score",
		mcp.WithDescription("Score how much genuine signal an account produces about a project over a window (0-100 with trust band)."),
		mcp.WithString("account_id", mcp.Description("The account to score."), mcp.Required()),
		mcp.WithString("project_id", mcp.Description("Restrict scoring to one project. Defaults to every project the account posted about.")),
		mcp.WithString("window", mcp.Description("Scoring window. Defaults to '7d'."), windowEnum),
		mcp.WithString("date", mcp.Description("Snapshot date (YYYY-MM-DD, RFC3339 or '3 days ago'). Defaults to the server's date.")),
		mcp.WithString("data_path", mcp.Description("Path to the dataset file (JSON or YAML). Defaults to the server's --data.")),
	), h.handleComputeSignalScore)

	// --- 2. Tool: normalize_mindshare ---
	s.AddTool(mcp.NewTool("normalize_mindshare",
		mcp.WithDescription("Compute each project's share of attention in basis points. Shares in a window always sum to exactly 10000."),
		mcp.WithString("window", mcp.Description("Only this window. Defaults to every configured window."), windowEnum),
		mcp.WithString("project_id", mcp.Description("Return only this project's snapshot.")),
		mcp.WithString("date", mcp.Description("Snapshot date (YYYY-MM-DD, RFC3339 or '3 days ago').")),
		mcp.WithString("data_path", mcp.Description("Path to the dataset file.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of projects per window.")),
	), h.handleNormalizeMindshare)

	// --- 3. Tool: build_leaderboard ---
	s.AddTool(mcp.NewTool("build_leaderboard",
		mcp.WithDescription("Rank accounts in a campaign arena. Verified participants get a 1.5x multiplier on base points."),
		mcp.WithString("arena_id", mcp.Description("The arena to rank."), mcp.Required()),
		mcp.WithString("data_path", mcp.Description("Path to the dataset file.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of entries returned.")),
	), h.handleBuildLeaderboard)

	// --- 4. Tool: get_smart_followers ---
	s.AddTool(mcp.NewTool("get_smart_followers",
		mcp.WithDescription("Get how many of an account's followers are smart accounts, with 7d and 30d deltas when history exists."),
		mcp.WithString("account_id", mcp.Description("The account to look up."), mcp.Required()),
		mcp.WithString("date", mcp.Description("As-of date (YYYY-MM-DD, RFC3339 or '3 days ago').")),
		mcp.WithString("data_path", mcp.Description("Dataset used when the snapshot store has no value for the account.")),
	), h.handleGetSmartFollowers)

	return s
}

// StartMCPServer starts the Signalboard MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
