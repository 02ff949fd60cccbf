package enrich

import (
	"slices"
	"sync"

	"github.com/raphi011/abt/internal/workitem"
)

// SprintHistory remembers, per card, the earliest sprint it was seen in.
// Sprints are ordered by their position in the team's iteration list;
// until that list is known they are ordered by observation.
type SprintHistory struct {
	mu     sync.Mutex
	rank   map[string]int    // sprint id -> position, oldest first
	names  map[string]string // sprint id -> name
	first  map[int]string    // card id -> sprint id
	seen   map[int][]string  // card id -> every sprint it was observed in
	unseen int               // next rank for sprints missing from the list
}

// NewSprintHistory returns an empty history.
func NewSprintHistory() *SprintHistory {
	return &SprintHistory{
		rank:  make(map[string]int),
		names: make(map[string]string),
		first: make(map[int]string),
		seen:  make(map[int][]string),
	}
}

// SetSprints records the team's sprints in backend order (oldest first).
// Sprints observed earlier but missing from the list rank after all listed
// ones, keeping their relative order.
func (h *SprintHistory) SetSprints(sprints []workitem.Sprint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	listed := make(map[string]bool, len(sprints))
	for _, s := range sprints {
		listed[s.ID] = true
	}
	var unlisted []string
	for id := range h.rank {
		if !listed[id] {
			unlisted = append(unlisted, id)
		}
	}
	slices.SortFunc(unlisted, func(a, b string) int { return h.rank[a] - h.rank[b] })

	for i, s := range sprints {
		h.rank[s.ID] = i
		h.names[s.ID] = s.Name
	}
	for k, id := range unlisted {
		h.rank[id] = len(sprints) + k
	}
	h.unseen = len(sprints) + len(unlisted)

	// A card's first sprint may have been decided under the old ranks.
	for card, sid := range h.first {
		for _, other := range h.seen[card] {
			if h.rank[other] < h.rank[sid] {
				sid = other
			}
		}
		h.first[card] = sid
	}
}

// Observe records that cardIDs were part of sprintID.
func (h *SprintHistory) Observe(sprintID string, cardIDs []int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rank[sprintID]
	if !ok {
		r = h.unseen
		h.rank[sprintID] = r
		h.unseen++
	}
	for _, id := range cardIDs {
		if !slices.Contains(h.seen[id], sprintID) {
			h.seen[id] = append(h.seen[id], sprintID)
		}
		prev, seen := h.first[id]
		if !seen || r < h.rank[prev] {
			h.first[id] = sprintID
		}
	}
}

// Initial returns the name of the earliest sprint cardID was observed in.
// Sprints whose name is unknown are reported by id.
func (h *SprintHistory) Initial(cardID int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sid, ok := h.first[cardID]
	if !ok {
		return "", false
	}
	if name := h.names[sid]; name != "" {
		return name, true
	}
	return sid, true
}
