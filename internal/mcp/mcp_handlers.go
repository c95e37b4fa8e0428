package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/signalboard/core"
	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/internal/dataset"
	"github.com/huangsam/signalboard/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// configFor clones the base config and applies the date and data_path arguments.
// Tool calls never persist snapshots.
func (h *toolHandler) configFor(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	cfg.Persist = false
	if p := request.GetString("data_path", ""); p != "" {
		cfg.DataPath = p
	}
	if d := request.GetString("date", ""); d != "" {
		date, now, err := contract.ParseSnapshotDate(d, time.Now())
		if err != nil {
			return nil, err
		}
		cfg = cfg.CloneWithDate(date, now)
	}
	return cfg, nil
}

func (h *toolHandler) handleComputeSignalScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	cfg.AccountID = request.GetString("account_id", "")
	if cfg.AccountID == "" {
		return mcp.NewToolResultError("account_id is required"), nil
	}
	cfg.ProjectID = request.GetString("project_id", "")
	if w := request.GetString("window", ""); w != "" {
		if cfg.Window, err = contract.ParseWindow(w); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
	}

	ds, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading dataset failed: %v", err)), nil
	}
	env := core.NewEnv(cfg, core.StoreView(cfg, h.mgr))
	results, err := core.ComputeSignals(ctx, cfg, ds, core.AuthorityFor(ctx, cfg, ds, env))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("signal scoring failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(schema.EnrichSignals(results), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleNormalizeMindshare(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if w := request.GetString("window", ""); w != "" {
		win, err := contract.ParseWindow(w)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
		}
		cfg.Windows = []schema.Window{win}
	}
	projectID := request.GetString("project_id", "")
	limit := request.GetInt("limit", 0)

	ds, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading dataset failed: %v", err)), nil
	}
	out, err := core.RunMindshareBatch(ctx, cfg, ds, core.NewEnv(cfg, core.StoreView(cfg, h.mgr)), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("mindshare failed: %v", err)), nil
	}
	if !out.Report.OK() {
		return mcp.NewToolResultError(fmt.Sprintf("mindshare failed: %v", out.Report.Failed)), nil
	}

	result := make(map[schema.Window][]schema.EnrichedMindshare, len(out.Snapshots))
	for w, snaps := range out.Snapshots {
		enriched := schema.EnrichMindshare(snaps)
		if projectID != "" {
			filtered := enriched[:0]
			for _, e := range enriched {
				if e.ProjectID == projectID {
					filtered = append(filtered, e)
				}
			}
			enriched = filtered
		}
		if limit > 0 && limit < len(enriched) {
			enriched = enriched[:limit]
		}
		result[w] = enriched
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleBuildLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	arenaID := request.GetString("arena_id", "")
	if arenaID == "" {
		return mcp.NewToolResultError("arena_id is required"), nil
	}

	ds, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading dataset failed: %v", err)), nil
	}
	out, err := core.BuildLeaderboards(ctx, cfg, ds, core.NewEnv(cfg, nil), []string{arenaID})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("leaderboard failed: %v", err)), nil
	}
	if !out.Report.OK() {
		return mcp.NewToolResultError(fmt.Sprintf("leaderboard failed: %v", out.Report.Failed[0])), nil
	}

	entries := out.Entries[arenaID]
	if l := request.GetInt("limit", 0); l > 0 && l < len(entries) {
		entries = entries[:l]
	}
	jsonData, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetSmartFollowers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	accountID := request.GetString("account_id", "")
	if accountID == "" {
		return mcp.NewToolResultError("account_id is required"), nil
	}

	report, ok, err := core.LookupSmartFollowers(ctx, cfg, core.StoreView(cfg, h.mgr), accountID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	if !ok && cfg.DataPath != "" {
		ds, err := dataset.Load(cfg.DataPath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("loading dataset failed: %v", err)), nil
		}
		report, ok = core.CurrentSmartFollowers(cfg, ds, accountID)
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("account '%s' as of %s: %v", accountID, cfg.Date, core.ErrNoSmartFollowers)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
