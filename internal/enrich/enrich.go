package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/raphi011/abt/internal/boards"
	"github.com/raphi011/abt/internal/cache"
	"github.com/raphi011/abt/internal/log"
	"github.com/raphi011/abt/internal/workitem"
)

// Default engine limits.
const (
	DefaultConcurrency = 4
	DefaultMaxDepth    = 32
)

// Fetcher is the cache surface the engine reads through.
type Fetcher interface {
	FetchOne(ctx context.Context, id int, expand boards.Expand) (*workitem.WorkItem, error)
	FetchBatch(ctx context.Context, ids []int, fields []string, expand boards.Expand) ([]*workitem.WorkItem, error)
	FetchSprintItems(ctx context.Context, sprintID string) ([]workitem.CardRef, error)
}

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	// Concurrency bounds the number of parent chains walked in parallel.
	Concurrency int
	// MaxDepth bounds a single chain walk. A sprint resolution raises it to
	// the number of cards in the sprint when that is larger.
	MaxDepth int
	// History receives sprint observations. A fresh one is created when nil.
	History *SprintHistory
	// Progress, when set, is called after each card of a sprint resolution
	// finishes. Calls may come from several goroutines.
	Progress func(done, total int)
}

// Result is one resolved sprint.
type Result struct {
	SprintID string
	// Cards holds the enriched cards in sprint order.
	Cards []*workitem.WorkItem
	// Missing lists referenced ids the backend no longer knows.
	Missing []int
	// Cycles lists cards whose parent chain was truncated at a cycle.
	Cycles []CycleError
	// Broken lists cards whose parent chain stops at a missing ancestor.
	// The cards themselves are kept in Cards.
	Broken []BrokenChainError
}

// Engine resolves and enriches cards.
type Engine struct {
	fetch       Fetcher
	concurrency int
	maxDepth    int
	history     *SprintHistory
	progress    func(done, total int)
}

// New creates an engine reading through f.
func New(f Fetcher, opts Options) *Engine {
	e := &Engine{
		fetch:       f,
		concurrency: opts.Concurrency,
		maxDepth:    opts.MaxDepth,
		history:     opts.History,
		progress:    opts.Progress,
	}
	if e.concurrency <= 0 {
		e.concurrency = DefaultConcurrency
	}
	if e.maxDepth <= 0 {
		e.maxDepth = DefaultMaxDepth
	}
	if e.history == nil {
		e.history = NewSprintHistory()
	}
	return e
}

// History returns the engine's sprint history.
func (e *Engine) History() *SprintHistory { return e.history }

// ResolveSprintCards loads the cards of a sprint and enriches each with its
// ancestors. Cards the backend no longer knows are dropped and listed in
// Result.Missing; cards whose ancestors are gone are kept, partially
// enriched, and listed in Result.Broken. Any other lookup failure aborts
// the whole resolution.
func (e *Engine) ResolveSprintCards(ctx context.Context, sprintID string) (Result, error) {
	l := log.FromContext(ctx)
	res := Result{SprintID: sprintID}

	refs, err := e.fetch.FetchSprintItems(ctx, sprintID)
	if err != nil {
		return res, fmt.Errorf("sprint %s: %w", sprintID, err)
	}
	ids := workitem.IDs(refs)
	if len(ids) == 0 {
		return res, nil
	}
	e.history.Observe(sprintID, ids)

	items, err := e.fetch.FetchBatch(ctx, ids, nil, boards.ExpandRelations)
	var missing *cache.MissingError
	switch {
	case errors.As(err, &missing):
		res.Missing = missing.IDs
		l.Debug("dropping missing cards", "sprint", sprintID, "ids", missing.IDs)
	case err != nil:
		return res, fmt.Errorf("sprint %s: %w", sprintID, err)
	}

	depth := max(e.maxDepth, len(ids))
	cards := make([]*workitem.WorkItem, len(items))
	cycles := make([]*CycleError, len(items))
	broken := make([]*BrokenChainError, len(items))
	gone := make([]bool, len(items))
	total := 0
	for _, item := range items {
		if item != nil {
			total++
		}
	}
	var done atomic.Int64
	e.report(0, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, item := range items {
		if item == nil {
			continue
		}
		g.Go(func() error {
			card, err := e.resolveChain(gctx, item.ID, depth)
			e.report(int(done.Add(1)), total)
			var (
				cyc *CycleError
				brk *BrokenChainError
			)
			switch {
			case errors.As(err, &cyc):
				cycles[i] = cyc
			case errors.As(err, &brk):
				broken[i] = brk
			case errors.Is(err, boards.ErrNotFound):
				gone[i] = true
				return nil
			case err != nil:
				return err
			}
			cards[i] = card
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("sprint %s: %w", sprintID, err)
	}

	res.Cards = make([]*workitem.WorkItem, 0, len(cards))
	for i, c := range cards {
		if c != nil {
			res.Cards = append(res.Cards, c)
		}
		if cycles[i] != nil {
			res.Cycles = append(res.Cycles, *cycles[i])
		}
		if broken[i] != nil {
			res.Broken = append(res.Broken, *broken[i])
		}
		if gone[i] {
			res.Missing = append(res.Missing, items[i].ID)
		}
	}
	l.Debug("resolved sprint", "sprint", sprintID, "cards", len(res.Cards), "missing", len(res.Missing), "cycles", len(res.Cycles), "broken", len(res.Broken))
	return res, nil
}

func (e *Engine) report(done, total int) {
	if e.progress != nil {
		e.progress(done, total)
	}
}

// ResolveParentChain returns an enriched copy of card. On a cycle it returns
// the partially enriched card together with a *CycleError, and on a missing
// ancestor together with a *BrokenChainError.
func (e *Engine) ResolveParentChain(ctx context.Context, card *workitem.WorkItem) (*workitem.WorkItem, error) {
	if card == nil {
		return nil, fmt.Errorf("resolve parent chain: %w", workitem.ErrInvalid)
	}
	return e.resolveChain(ctx, card.ID, e.maxDepth)
}

func (e *Engine) resolveChain(ctx context.Context, id int, maxDepth int) (*workitem.WorkItem, error) {
	w, err := e.fetch.FetchOne(ctx, id, boards.ExpandRelations)
	if err != nil {
		return nil, fmt.Errorf("card %d: %w", id, err)
	}
	out := w.Clone()
	if name, ok := e.history.Initial(out.ID); ok {
		out.Fields[workitem.FieldInitialSprint] = name
	}

	chain := []int{out.ID}
	visited := map[int]bool{out.ID: true}
	parentID, ok := out.Fields.Parent()
	for ok {
		if visited[parentID] {
			cyc := &CycleError{CardID: out.ID, Chain: append(chain, parentID)}
			log.FromContext(ctx).Warn("parent chain truncated at cycle", "card", out.ID, "chain", cyc.Chain)
			return out, cyc
		}
		if len(chain) > maxDepth {
			log.FromContext(ctx).Warn("parent chain truncated at max depth", "card", out.ID, "max_depth", maxDepth)
			break
		}

		parent, err := e.fetch.FetchOne(ctx, parentID, boards.ExpandRelations)
		if errors.Is(err, boards.ErrNotFound) {
			brk := &BrokenChainError{CardID: out.ID, ParentID: parentID, Err: err}
			log.FromContext(ctx).Warn("parent chain broken at missing ancestor", "card", out.ID, "parent", parentID)
			return out, brk
		}
		if err != nil {
			return nil, fmt.Errorf("card %d: parent %d: %w", out.ID, parentID, err)
		}
		ref := workitem.Ref{ID: parent.ID, Title: parent.Fields.Title()}
		if len(chain) == 1 {
			out.Fields[workitem.FieldParentRef] = ref
		}
		// Every step overwrites, so the farthest ancestor of a type wins.
		out.Fields.SetParentRef(parent.Fields.Type(), ref)

		visited[parentID] = true
		chain = append(chain, parentID)
		parentID, ok = parent.Fields.Parent()
	}
	return out, nil
}

// ResolveAll enriches cards concurrently, keeping their order. It is used
// for card sets that do not come from a sprint, e.g. children and epics.
func (e *Engine) ResolveAll(ctx context.Context, cards []*workitem.WorkItem) ([]*workitem.WorkItem, error) {
	out := make([]*workitem.WorkItem, len(cards))
	var mu sync.Mutex
	var truncated []error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, c := range cards {
		if c == nil {
			continue
		}
		g.Go(func() error {
			card, err := e.ResolveParentChain(gctx, c)
			var brk *BrokenChainError
			if errors.Is(err, ErrCyclicParentChain) || errors.As(err, &brk) {
				mu.Lock()
				truncated = append(truncated, err)
				mu.Unlock()
				err = nil
			}
			if err != nil {
				return err
			}
			out[i] = card
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(truncated) > 0 {
		log.FromContext(ctx).Debug("truncated parent chains", "count", len(truncated))
	}
	return out, nil
}
