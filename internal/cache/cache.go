package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/raphi011/abt/internal/boards"
	"github.com/raphi011/abt/internal/log"
	"github.com/raphi011/abt/internal/workitem"
)

// Remote is the subset of the boards client the cache reads through.
type Remote interface {
	GetWorkItem(ctx context.Context, id int, expand boards.Expand) (*workitem.WorkItem, error)
	GetWorkItemsBatch(ctx context.Context, ids []int, fields []string, expand boards.Expand) ([]*workitem.WorkItem, error)
	GetIterationWorkItems(ctx context.Context, sprintID string) ([]workitem.CardRef, error)
}

// ItemKey identifies one cached work item lookup.
type ItemKey struct {
	ID     int
	Fields string // canonical field list, see FieldsKey
	Expand boards.Expand
}

// SprintKey identifies one cached sprint-content lookup.
type SprintKey struct {
	Project  string
	Team     string
	SprintID string
}

// FieldsKey canonicalises a field list: sorted, de-duplicated, comma-joined.
// nil and empty both mean "all fields".
func FieldsKey(fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	f := slices.Clone(fields)
	slices.Sort(f)
	return strings.Join(slices.Compact(f), ",")
}

// MissingError reports ids a batch response did not contain.
type MissingError struct {
	IDs []int
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("work items not found: %v", e.IDs)
}

func (e *MissingError) Is(target error) bool { return target == boards.ErrNotFound }

// Stats counts cache activity since creation (not reset by Reset).
type Stats struct {
	Hits        int64
	Misses      int64
	RemoteCalls int64
	Resets      int64
}

// call tracks one in-flight item fetch.
type call struct {
	done chan struct{}
	err  error
}

// generation holds everything stored between two resets.
type generation struct {
	id       uint64
	items    map[ItemKey]*workitem.WorkItem
	inflight map[ItemKey]*call
	sprints  map[SprintKey][]workitem.CardRef
}

func newGeneration(id uint64) *generation {
	return &generation{
		id:       id,
		items:    make(map[ItemKey]*workitem.WorkItem),
		inflight: make(map[ItemKey]*call),
		sprints:  make(map[SprintKey][]workitem.CardRef),
	}
}

// Cache memoizes lookups against a Remote.
type Cache struct {
	remote  Remote
	project string
	team    string

	mu  sync.Mutex
	gen *generation

	sprintGroup singleflight.Group

	hits, misses, remoteCalls, resets atomic.Int64
}

// New creates an empty cache for one project/team.
func New(remote Remote, project, team string) *Cache {
	return &Cache{
		remote:  remote,
		project: project,
		team:    team,
		gen:     newGeneration(1),
	}
}

func (c *Cache) current() *generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Reset discards all entries. Fetches in flight complete against the old
// generation and are not visible afterwards.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.gen = newGeneration(c.gen.id + 1)
	c.mu.Unlock()
	c.resets.Add(1)
}

// Invalidate drops every cached variant of one work item.
func (c *Cache) Invalidate(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.gen.items {
		if k.ID == id {
			delete(c.gen.items, k)
		}
	}
}

// InvalidateSprints drops all cached sprint contents.
func (c *Cache) InvalidateSprints() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.gen.sprints)
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		RemoteCalls: c.remoteCalls.Load(),
		Resets:      c.resets.Load(),
	}
}

// FetchOne returns a single work item, fetching it on first use.
func (c *Cache) FetchOne(ctx context.Context, id int, expand boards.Expand) (*workitem.WorkItem, error) {
	key := ItemKey{ID: id, Expand: expand}

	for {
		gen := c.current()
		w, wait, own := c.claim(gen, key)
		if w != nil {
			c.hits.Add(1)
			return w, nil
		}
		if wait != nil {
			if err := waitFor(ctx, wait); err != nil {
				return nil, err
			}
			if abandoned(ctx, wait.err) {
				continue
			}
			if wait.err != nil {
				return nil, wait.err
			}
			// The owner stored the result; loop to read it. If a reset
			// happened meanwhile the next pass fetches afresh.
			continue
		}

		c.misses.Add(1)
		c.remoteCalls.Add(1)
		log.FromContext(ctx).Debug("cache miss", "id", id, "expand", expand)
		w, err := c.remote.GetWorkItem(ctx, id, expand)
		if err == nil && w.ID != id {
			err = fmt.Errorf("get work item %d: backend returned id %d", id, w.ID)
		}
		c.finish(gen, map[ItemKey]*call{key: own}, itemsByKey(key, w, err), err)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
}

// claim looks up key in gen. It returns the cached item, an in-flight call
// to wait for, or a new call owned by the caller.
func (c *Cache) claim(gen *generation, key ItemKey) (*workitem.WorkItem, *call, *call) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w, ok := gen.items[key]; ok {
		return w, nil, nil
	}
	if inflight, ok := gen.inflight[key]; ok {
		return nil, inflight, nil
	}
	own := &call{done: make(chan struct{})}
	gen.inflight[key] = own
	return nil, nil, own
}

// finish stores results (unless err is set) and releases owned calls.
func (c *Cache) finish(gen *generation, owned map[ItemKey]*call, results map[ItemKey]*workitem.WorkItem, err error) {
	c.mu.Lock()
	if err == nil {
		for k, w := range results {
			gen.items[k] = w
		}
	}
	for k, cl := range owned {
		if _, ok := results[k]; !ok && err == nil {
			cl.err = &MissingError{IDs: []int{k.ID}}
		} else {
			cl.err = err
		}
		delete(gen.inflight, k)
	}
	c.mu.Unlock()

	for _, cl := range owned {
		close(cl.done)
	}
}

// abandoned reports whether a call failed only because its owner's context
// ended while ctx is still live, in which case the caller claims the key again.
func abandoned(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func itemsByKey(key ItemKey, w *workitem.WorkItem, err error) map[ItemKey]*workitem.WorkItem {
	if err != nil || w == nil {
		return nil
	}
	return map[ItemKey]*workitem.WorkItem{key: w}
}

// FetchBatch returns the requested work items aligned to ids. Unknown ids
// are fetched in chunks of at most boards.MaxBatchSize. Ids the backend did
// not return leave a nil hole and are reported in a *MissingError (which
// matches boards.ErrNotFound); every other error aborts the whole call.
func (c *Cache) FetchBatch(ctx context.Context, ids []int, fields []string, expand boards.Expand) ([]*workitem.WorkItem, error) {
	fk := FieldsKey(fields)
	keyOf := func(id int) ItemKey { return ItemKey{ID: id, Fields: fk, Expand: expand} }

	for {
		out, retry, err := c.fetchBatch(ctx, ids, fields, expand, keyOf)
		if retry {
			continue
		}
		return out, err
	}
}

// fetchBatch is one pass of FetchBatch. retry is set when a concurrent
// owner gave up on a key this caller waited for.
func (c *Cache) fetchBatch(ctx context.Context, ids []int, fields []string, expand boards.Expand, keyOf func(int) ItemKey) ([]*workitem.WorkItem, bool, error) {
	gen := c.current()
	owned, waits, hits := c.partition(gen, ids, keyOf)
	c.hits.Add(int64(hits))

	if len(owned) > 0 {
		unknown := make([]int, 0, len(owned))
		for _, id := range ids {
			if cl, ok := owned[keyOf(id)]; ok && cl != nil && !slices.Contains(unknown, id) {
				unknown = append(unknown, id)
			}
		}

		log.FromContext(ctx).Debug("cache batch miss", "requested", len(ids), "unknown", len(unknown), "expand", expand)
		results, err := c.fetchChunks(ctx, unknown, fields, expand, keyOf)
		c.finish(gen, owned, results, err)
		if err != nil {
			return nil, false, err
		}
	}

	retry := false
	for _, cl := range waits {
		if err := waitFor(ctx, cl); err != nil {
			return nil, false, err
		}
		if abandoned(ctx, cl.err) {
			retry = true
			continue
		}
		if cl.err != nil && !errors.Is(cl.err, boards.ErrNotFound) {
			return nil, false, cl.err
		}
	}
	if retry {
		return nil, true, nil
	}

	out := make([]*workitem.WorkItem, len(ids))
	var missing []int
	c.mu.Lock()
	for i, id := range ids {
		w, ok := gen.items[keyOf(id)]
		if !ok {
			if !slices.Contains(missing, id) {
				missing = append(missing, id)
			}
			continue
		}
		out[i] = w
	}
	c.mu.Unlock()

	if len(missing) > 0 {
		return out, false, &MissingError{IDs: missing}
	}
	return out, false, nil
}

// partition claims every uncached key in ids. It returns the calls this
// caller owns, the ones owned by concurrent callers and the number of
// distinct ids already cached.
func (c *Cache) partition(gen *generation, ids []int, keyOf func(int) ItemKey) (map[ItemKey]*call, []*call, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	owned := make(map[ItemKey]*call)
	var waits []*call
	hits := 0
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		key := keyOf(id)
		if _, ok := gen.items[key]; ok {
			hits++
			continue
		}
		if inflight, ok := gen.inflight[key]; ok {
			waits = append(waits, inflight)
			continue
		}
		cl := &call{done: make(chan struct{})}
		gen.inflight[key] = cl
		owned[key] = cl
	}
	return owned, waits, hits
}

func waitFor(ctx context.Context, cl *call) error {
	select {
	case <-cl.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fetchChunks fetches ids in MaxBatchSize chunks. It returns nothing unless
// every chunk succeeds.
func (c *Cache) fetchChunks(ctx context.Context, ids []int, fields []string, expand boards.Expand, keyOf func(int) ItemKey) (map[ItemKey]*workitem.WorkItem, error) {
	results := make(map[ItemKey]*workitem.WorkItem, len(ids))
	for _, chunk := range boards.Chunk(ids, boards.MaxBatchSize) {
		c.misses.Add(int64(len(chunk)))
		c.remoteCalls.Add(1)
		items, err := c.remote.GetWorkItemsBatch(ctx, chunk, fields, expand)
		if err != nil {
			return nil, err
		}
		for _, w := range items {
			if w == nil {
				continue
			}
			results[keyOf(w.ID)] = w
		}
	}
	return results, nil
}

// FetchSprintItems returns the card references of a sprint, fetching them
// on first use.
func (c *Cache) FetchSprintItems(ctx context.Context, sprintID string) ([]workitem.CardRef, error) {
	key := SprintKey{Project: c.project, Team: c.team, SprintID: sprintID}

	gen := c.current()
	c.mu.Lock()
	refs, ok := gen.sprints[key]
	c.mu.Unlock()
	if ok {
		c.hits.Add(1)
		return slices.Clone(refs), nil
	}

	flightKey := fmt.Sprintf("%d/%s/%s/%s", gen.id, key.Project, key.Team, key.SprintID)
	v, err, _ := c.sprintGroup.Do(flightKey, func() (any, error) {
		c.mu.Lock()
		refs, ok := gen.sprints[key]
		c.mu.Unlock()
		if ok {
			return refs, nil
		}

		c.misses.Add(1)
		c.remoteCalls.Add(1)
		log.FromContext(ctx).Debug("cache miss", "sprint", sprintID)
		refs, err := c.remote.GetIterationWorkItems(ctx, sprintID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		gen.sprints[key] = refs
		c.mu.Unlock()
		return refs, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]workitem.CardRef)), nil
}
