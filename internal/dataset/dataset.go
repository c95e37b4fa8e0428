// Package dataset loads the pre-exported input bundle a batch run scores.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/signalboard/schema"
	"gopkg.in/yaml.v3"
)

// ErrNoDataPath is returned when a command needs a dataset but none was given.
var ErrNoDataPath = errors.New("no dataset given; pass --data or set SIGNALBOARD_DATA")

// Load reads a dataset from a YAML or JSON file. The format follows the file
// extension; "-" reads YAML or JSON from stdin.
func Load(path string) (*schema.Dataset, error) {
	if path == "" {
		return nil, ErrNoDataPath
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	return Parse(data, formatOf(path, data))
}

// Parse decodes a dataset in the given format ("json" or "yaml") and validates it.
func Parse(data []byte, format string) (*schema.Dataset, error) {
	var ds schema.Dataset
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&ds); err != nil {
			return nil, fmt.Errorf("failed to parse dataset JSON: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse dataset YAML: %w", err)
		}
	}

	normalize(&ds)
	if err := Validate(&ds); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}
	return &ds, nil
}

// formatOf picks the decoder from the extension, sniffing stdin content.
func formatOf(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return "json"
	}
	return "yaml"
}

// normalize lower-cases enum-like fields so hand-written files are forgiving.
func normalize(ds *schema.Dataset) {
	for i := range ds.Posts {
		ds.Posts[i].ContentType = schema.ContentType(strings.ToLower(strings.TrimSpace(string(ds.Posts[i].ContentType))))
	}
	for i := range ds.Participants {
		ds.Participants[i].State = schema.ApprovalState(strings.ToLower(strings.TrimSpace(string(ds.Participants[i].State))))
	}
}

// Validate checks identifiers and value ranges. Unknown references in edges
// and posts are allowed; the engines skip them.
func Validate(ds *schema.Dataset) error {
	seen := make(map[string]struct{}, len(ds.Accounts))
	for i, a := range ds.Accounts {
		if a.ID == "" {
			return fmt.Errorf("accounts[%d]: id is required", i)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("accounts[%d]: duplicate id '%s'", i, a.ID)
		}
		seen[a.ID] = struct{}{}
	}

	postIDs := make(map[string]struct{}, len(ds.Posts))
	for i, p := range ds.Posts {
		if p.ID == "" || p.AuthorID == "" || p.ProjectID == "" {
			return fmt.Errorf("posts[%d]: id, author_id and project_id are required", i)
		}
		if _, dup := postIDs[p.ID]; dup {
			return fmt.Errorf("posts[%d]: duplicate id '%s'", i, p.ID)
		}
		postIDs[p.ID] = struct{}{}
		if p.Sentiment != nil && (*p.Sentiment < -1 || *p.Sentiment > 1) {
			return fmt.Errorf("posts[%d]: sentiment %.3f outside [-1, 1]", i, *p.Sentiment)
		}
		if p.CreatedAt.IsZero() {
			return fmt.Errorf("posts[%d]: created_at is required", i)
		}
	}

	for i, e := range ds.Edges {
		if e.Src == "" || e.Dst == "" {
			return fmt.Errorf("edges[%d]: src and dst are required", i)
		}
	}

	arenas := make(map[string]struct{}, len(ds.Arenas))
	for i, a := range ds.Arenas {
		if a.ID == "" || a.ProjectID == "" {
			return fmt.Errorf("arenas[%d]: id and project_id are required", i)
		}
		if _, dup := arenas[a.ID]; dup {
			return fmt.Errorf("arenas[%d]: duplicate id '%s'", i, a.ID)
		}
		arenas[a.ID] = struct{}{}
		if !a.StartsAt.IsZero() && !a.EndsAt.IsZero() && !a.EndsAt.After(a.StartsAt) {
			return fmt.Errorf("arenas[%d]: ends_at must be after starts_at", i)
		}
	}

	enrolled := make(map[string]int, len(ds.Participants))
	for i, p := range ds.Participants {
		if p.AccountID == "" {
			return fmt.Errorf("participants[%d]: account_id is required", i)
		}
		// An arena id wins over the project id, matching how leaderboards pick rows
		key := p.AccountID + "|arena:" + p.ArenaID
		if p.ArenaID == "" {
			key = p.AccountID + "|project:" + p.ProjectID
		}
		if first, dup := enrolled[key]; dup {
			return fmt.Errorf("participants[%d]: duplicate enrollment of '%s', first at participants[%d]", i, p.AccountID, first)
		}
		enrolled[key] = i
		switch p.State {
		case schema.InvitedState, schema.PendingState, schema.ApprovedState, schema.RejectedState:
		default:
			return fmt.Errorf("participants[%d]: invalid state '%s'. must be invited, pending, approved or rejected", i, p.State)
		}
	}

	for w, rows := range ds.Attention {
		if _, ok := schema.ValidWindows[w]; !ok {
			return fmt.Errorf("attention: invalid window '%s'", w)
		}
		projects := make(map[string]struct{}, len(rows))
		for i, r := range rows {
			if r.ProjectID == "" {
				return fmt.Errorf("attention.%s[%d]: project_id is required", w, i)
			}
			if _, dup := projects[r.ProjectID]; dup {
				return fmt.Errorf("attention.%s[%d]: duplicate project '%s'", w, i, r.ProjectID)
			}
			projects[r.ProjectID] = struct{}{}
			if r.PostCount < 0 || r.UniqueCreatorCount < 0 || !(r.TotalEngagement >= 0) || !(r.Heat >= 0) ||
				math.IsInf(r.TotalEngagement, 0) || math.IsInf(r.Heat, 0) {
				return fmt.Errorf("attention.%s[%d]: counts must be finite and not negative", w, i)
			}
		}
	}

	for w, heat := range ds.Heat {
		if _, ok := schema.ValidWindows[w]; !ok {
			return fmt.Errorf("heat: invalid window '%s'", w)
		}
		for project, v := range heat {
			if v < 0 {
				return fmt.Errorf("heat.%s.%s: must not be negative", w, project)
			}
		}
	}
	return nil
}
