// Package schema has configs, models and errors for all parts of signalboard.
package schema

import "time"

// Account is a social account observed by the ingestion layer.
// Accounts are never deleted, only deactivated.
type Account struct {
	ID             string `json:"id" yaml:"id"`
	Handle         string `json:"handle" yaml:"handle"`
	AccountAgeDays int    `json:"account_age_days" yaml:"account_age_days"`
	FollowerCount  int    `json:"follower_count" yaml:"follower_count"` // as reported by the platform
	IsTracked      bool   `json:"is_tracked" yaml:"is_tracked"`
	Deactivated    bool   `json:"deactivated" yaml:"deactivated"`
	GraphCovered   bool   `json:"graph_covered" yaml:"graph_covered"` // follow-graph crawl covers this account
}

// FollowEdge is a directed "Src follows Dst" relation.
type FollowEdge struct {
	Src        string    `json:"src" yaml:"src"`
	Dst        string    `json:"dst" yaml:"dst"`
	ObservedAt time.Time `json:"observed_at" yaml:"observed_at"`
}

// Post is an immutable piece of content attributed to an account and a project.
type Post struct {
	ID          string      `json:"id" yaml:"id"`
	AuthorID    string      `json:"author_id" yaml:"author_id"`
	ProjectID   string      `json:"project_id" yaml:"project_id"`
	CreatedAt   time.Time   `json:"created_at" yaml:"created_at"`
	Likes       int         `json:"likes" yaml:"likes"`
	Replies     int         `json:"replies" yaml:"replies"`
	Reposts     int         `json:"reposts" yaml:"reposts"`
	ContentType ContentType `json:"content_type" yaml:"content_type"`
	Sentiment   *float64    `json:"sentiment,omitempty" yaml:"sentiment,omitempty"` // [-1, 1], nil when unknown
	IsDuplicate bool        `json:"is_duplicate" yaml:"is_duplicate"`
}

// Engagement records that EngagerID replied to or reposted a post by TargetAccountID.
type Engagement struct {
	EngagerID       string    `json:"engager_id" yaml:"engager_id"`
	TargetAccountID string    `json:"target_account_id" yaml:"target_account_id"`
	PostID          string    `json:"post_id" yaml:"post_id"`
	Kind            string    `json:"kind" yaml:"kind"`
	At              time.Time `json:"at" yaml:"at"`
}

// ProjectAttention is the raw attention a project received in one window.
type ProjectAttention struct {
	ProjectID          string  `json:"project_id" yaml:"project_id"`
	PostCount          int     `json:"post_count" yaml:"post_count"`
	UniqueCreatorCount int     `json:"unique_creator_count" yaml:"unique_creator_count"`
	TotalEngagement    float64 `json:"total_engagement" yaml:"total_engagement"`
	Heat               float64 `json:"heat" yaml:"heat"`
}

// Participant is an account that explicitly joined an arena.
type Participant struct {
	AccountID             string        `json:"account_id" yaml:"account_id"`
	ProjectID             string        `json:"project_id" yaml:"project_id"`
	ArenaID               string        `json:"arena_id" yaml:"arena_id"`
	ManualPointAdjustment int           `json:"manual_point_adjustment" yaml:"manual_point_adjustment"`
	FollowVerified        bool          `json:"follow_verified" yaml:"follow_verified"`
	JoinedAt              time.Time     `json:"joined_at" yaml:"joined_at"`
	State                 ApprovalState `json:"state" yaml:"state"`
	Deactivated           bool          `json:"deactivated" yaml:"deactivated"`
}

// Arena is a time-boxed campaign run by a project. Zero bounds are open.
type Arena struct {
	ID        string    `json:"id" yaml:"id"`
	ProjectID string    `json:"project_id" yaml:"project_id"`
	StartsAt  time.Time `json:"starts_at" yaml:"starts_at"`
	EndsAt    time.Time `json:"ends_at" yaml:"ends_at"`
}

// Contains reports whether t falls inside the arena's time box.
func (a Arena) Contains(t time.Time) bool {
	if !a.StartsAt.IsZero() && t.Before(a.StartsAt) {
		return false
	}
	if !a.EndsAt.IsZero() && !t.Before(a.EndsAt) {
		return false
	}
	return true
}

// Dataset is the pre-loaded input bundle for one batch run.
type Dataset struct {
	Accounts     []Account                     `json:"accounts" yaml:"accounts"`
	Edges        []FollowEdge                  `json:"edges" yaml:"edges"`
	Posts        []Post                        `json:"posts" yaml:"posts"`
	Engagements  []Engagement                  `json:"engagements" yaml:"engagements"`
	Participants []Participant                 `json:"participants" yaml:"participants"`
	Arenas       []Arena                       `json:"arenas" yaml:"arenas"`
	Heat         map[Window]map[string]float64 `json:"heat,omitempty" yaml:"heat,omitempty"` // externally supplied heat per window and project
	// Attention rows from outside sources, per window. They add to what the
	// posts aggregate to, so a project may appear here without any posts.
	Attention map[Window][]ProjectAttention `json:"attention,omitempty" yaml:"attention,omitempty"`
}

// AccountByID indexes the dataset's accounts.
func (d *Dataset) AccountByID() map[string]Account {
	out := make(map[string]Account, len(d.Accounts))
	for _, a := range d.Accounts {
		out[a.ID] = a
	}
	return out
}

// ArenaByID looks up an arena.
func (d *Dataset) ArenaByID(id string) (Arena, bool) {
	for _, a := range d.Arenas {
		if a.ID == id {
			return a, true
		}
	}
	return Arena{}, false
}
