package workitem

import (
	"slices"
	"time"
)

// Time frames reported by the iteration API.
const (
	TimeFramePast    = "past"
	TimeFrameCurrent = "current"
	TimeFrameFuture  = "future"
)

// Sprint is a team iteration.
type Sprint struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Path       string           `json:"path"`
	Attributes SprintAttributes `json:"attributes"`
	URL        string           `json:"url,omitempty"`
}

// SprintAttributes holds the dates and time frame of a sprint.
type SprintAttributes struct {
	StartDate  *time.Time `json:"startDate,omitempty"`
	FinishDate *time.Time `json:"finishDate,omitempty"`
	TimeFrame  string     `json:"timeFrame,omitempty"`
}

// IsCurrent reports whether the backend marks the sprint as the current one.
func (s Sprint) IsCurrent() bool {
	return s.Attributes.TimeFrame == TimeFrameCurrent
}

// CardRef pairs a sprint with one work item scheduled in it.
// ParentID is the hierarchy source reported by the iteration API, 0 for
// top-level entries.
type CardRef struct {
	SprintID   string `json:"sprint_id"`
	WorkItemID int    `json:"work_item_id"`
	ParentID   int    `json:"parent_id,omitempty"`
}

// IDs extracts the work item ids from refs, keeping order and dropping
// duplicates.
func IDs(refs []CardRef) []int {
	seen := make(map[int]bool, len(refs))
	ids := make([]int, 0, len(refs))
	for _, r := range refs {
		if seen[r.WorkItemID] {
			continue
		}
		seen[r.WorkItemID] = true
		ids = append(ids, r.WorkItemID)
	}
	return ids
}

// Reversed returns a reverse-chronological copy of a backend iteration list
// (the backend returns oldest first).
func Reversed(sprints []Sprint) []Sprint {
	out := slices.Clone(sprints)
	slices.Reverse(out)
	return out
}
