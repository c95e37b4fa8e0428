package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/huangsam/signalboard/core"
	"github.com/huangsam/signalboard/internal/contract"
	"github.com/huangsam/signalboard/internal/dataset"
	"github.com/huangsam/signalboard/schema"
)

// maxBodyBytes bounds inline datasets.
const maxBodyBytes = 32 << 20

// computeRequest is the body shared by the POST endpoints. Dataset may be
// given inline; otherwise the server's --data file is read.
type computeRequest struct {
	Dataset   json.RawMessage `json:"dataset,omitempty"`
	Date      string          `json:"date,omitempty"`
	Window    string          `json:"window,omitempty"`
	Windows   []string        `json:"windows,omitempty"`
	AccountID string          `json:"account_id,omitempty"`
	ProjectID string          `json:"project_id,omitempty"`
	ArenaID   string          `json:"arena_id,omitempty"`
	Limit     int             `json:"limit,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// requestError marks failures caused by the caller's input.
type requestError struct{ err error }

func (e requestError) Error() string { return e.err.Error() }
func (e requestError) Unwrap() error { return e.err }

func badRequest(err error) error { return requestError{err} }

// mindshareResponse carries one window's normalized shares.
type mindshareResponse struct {
	Window    schema.Window              `json:"window"`
	Date      string                     `json:"date"`
	TotalBps  int                        `json:"total_bps"`
	Snapshots []schema.EnrichedMindshare `json:"snapshots"`
}

type leaderboardResponse struct {
	ArenaID string                    `json:"arena_id"`
	Entries []schema.LeaderboardEntry `json:"entries"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := map[string]any{"status": "healthy", "store": "none"}
	if s.mgr != nil {
		status["store"] = string(s.cfg.SnapshotBackend)
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	req, cfg, ds, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	cfg.AccountID, cfg.ProjectID = req.AccountID, req.ProjectID

	env := s.env(cfg)
	results, err := core.ComputeSignals(r.Context(), cfg, ds, core.AuthorityFor(r.Context(), cfg, ds, env))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schema.EnrichSignals(limit(results, req.Limit)))
}

func (s *Server) handleAuthority(w http.ResponseWriter, r *http.Request) {
	req, cfg, ds, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out, err := core.RunAuthorityBatch(r.Context(), cfg, ds, s.env(cfg))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !out.Report.OK() {
		s.writeError(w, out.Report.Failed[0])
		return
	}

	scores := core.SortedAuthority(out.Scores)
	if req.AccountID != "" {
		filtered := scores[:0]
		for _, sc := range scores {
			if sc.AccountID == req.AccountID {
				filtered = append(filtered, sc)
			}
		}
		scores = filtered
	}
	writeJSON(w, http.StatusOK, limit(scores, req.Limit))
}

func (s *Server) handleMindshare(w http.ResponseWriter, r *http.Request) {
	req, cfg, ds, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out, err := core.RunMindshareBatch(r.Context(), cfg, ds, s.env(cfg), nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !out.Report.OK() {
		s.writeError(w, out.Report.Failed[0])
		return
	}

	resp := make([]mindshareResponse, 0, len(cfg.Windows))
	for _, win := range cfg.Windows {
		snaps := out.Snapshots[win]
		total := 0
		for _, sn := range snaps {
			total += sn.Bps
		}
		enriched := schema.EnrichMindshare(snaps)
		if req.ProjectID != "" {
			filtered := enriched[:0]
			for _, e := range enriched {
				if e.ProjectID == req.ProjectID {
					filtered = append(filtered, e)
				}
			}
			enriched = filtered
		}
		resp = append(resp, mindshareResponse{Window: win, Date: cfg.Date, TotalBps: total, Snapshots: limit(enriched, req.Limit)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	req, cfg, ds, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.ArenaID == "" {
		s.writeError(w, badRequest(errors.New("arena_id is required")))
		return
	}

	out, err := core.BuildLeaderboards(r.Context(), cfg, ds, core.Env{Logger: s.logger, Metrics: s.metrics}, []string{req.ArenaID})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !out.Report.OK() {
		s.writeError(w, out.Report.Failed[0])
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{ArenaID: req.ArenaID, Entries: limit(out.Entries[req.ArenaID], req.Limit)})
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	cfg, err := s.configFor(r.URL.Query().Get("date"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	report, ok, err := core.LookupSmartFollowers(r.Context(), cfg, core.StoreView(cfg, s.mgr), accountID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok && cfg.DataPath != "" {
		ds, err := dataset.Load(cfg.DataPath)
		if err != nil {
			s.writeError(w, err)
			return
		}
		report, ok = core.CurrentSmartFollowers(cfg, ds, accountID)
	}
	if !ok {
		s.writeError(w, fmt.Errorf("account '%s' as of %s: %w", accountID, cfg.Date, core.ErrNoSmartFollowers))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// decode reads the request body and resolves the config and dataset for it.
// An empty body uses the base config and the server's dataset.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (computeRequest, *contract.Config, *schema.Dataset, error) {
	var req computeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, nil, nil, badRequest(fmt.Errorf("invalid request body: %w", err))
	}

	cfg, err := s.configFor(req.Date)
	if err != nil {
		return req, nil, nil, err
	}
	if req.Window != "" {
		if cfg.Window, err = contract.ParseWindow(req.Window); err != nil {
			return req, nil, nil, badRequest(err)
		}
	}
	if len(req.Windows) > 0 {
		cfg.Windows = cfg.Windows[:0]
		for _, raw := range req.Windows {
			win, err := contract.ParseWindow(raw)
			if err != nil {
				return req, nil, nil, badRequest(err)
			}
			cfg.Windows = append(cfg.Windows, win)
		}
	}

	var ds *schema.Dataset
	if len(req.Dataset) > 0 {
		ds, err = dataset.Parse(req.Dataset, "json")
		if err != nil {
			return req, nil, nil, badRequest(err)
		}
	} else {
		ds, err = dataset.Load(cfg.DataPath)
		if errors.Is(err, dataset.ErrNoDataPath) {
			return req, nil, nil, badRequest(errors.New("request has no dataset and the server has no --data"))
		}
		if err != nil {
			return req, nil, nil, err
		}
	}
	return req, cfg, ds, nil
}

// configFor clones the base config for one request, moved to date if given.
func (s *Server) configFor(date string) (*contract.Config, error) {
	cfg := s.cfg.Clone()
	if date == "" {
		return cfg, nil
	}
	d, now, err := contract.ParseSnapshotDate(date, time.Now())
	if err != nil {
		return nil, badRequest(err)
	}
	return cfg.CloneWithDate(d, now), nil
}

func (s *Server) env(cfg *contract.Config) core.Env {
	return core.Env{Store: core.StoreView(cfg, s.mgr), Logger: s.logger, Metrics: s.metrics}
}

// writeError maps domain errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		reqErr requestError
		cfgErr *schema.ConfigurationError
		status = http.StatusInternalServerError
	)
	switch {
	case errors.As(err, &reqErr), errors.As(err, &cfgErr):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrUnknownArena), errors.Is(err, core.ErrNoSmartFollowers):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func limit[T any](items []T, n int) []T {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}
