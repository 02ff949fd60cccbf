package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/raphi011/abt/internal/boards"
	"github.com/raphi011/abt/internal/cache"
	"github.com/raphi011/abt/internal/enrich"
	"github.com/raphi011/abt/internal/log"
	"github.com/raphi011/abt/internal/workitem"
)

// Backlog is the MoveCard target that takes a card out of every sprint.
const Backlog = "backlog"

// CurrentSprint selects the sprint the backend marks as current.
const CurrentSprint = "@current"

var (
	// ErrSprintNotFound is returned when a sprint argument matches nothing.
	ErrSprintNotFound = errors.New("sprint not found")
	// ErrAmbiguousSprint is returned when a sprint name matches several sprints.
	ErrAmbiguousSprint = errors.New("ambiguous sprint")
)

// epicsQuery lists the project's open epics.
const epicsQuery = `SELECT [System.Id] FROM WorkItems ` +
	`WHERE [System.TeamProject] = @project ` +
	`AND [System.WorkItemType] = 'Epic' ` +
	`AND [System.State] <> 'Removed' ` +
	`ORDER BY [System.Id]`

// listFields are requested for list-only views that skip enrichment.
var listFields = []string{
	workitem.FieldTitle,
	workitem.FieldType,
	workitem.FieldState,
	workitem.FieldAssignedTo,
	workitem.FieldIterationPath,
}

// Remote is everything the session needs from the boards client.
type Remote interface {
	cache.Remote
	GetTeamIterations(ctx context.Context) ([]workitem.Sprint, error)
	UpdateWorkItemField(ctx context.Context, id int, fieldPath string, value any) (*workitem.WorkItem, error)
	QueryByWIQL(ctx context.Context, query string) ([]int, error)
	Project() string
	Team() string
	WebURL(id int) string
}

// Listener receives the outcome of sprint loads.
type Listener interface {
	CardsReady(res enrich.Result)
	Failed(err error)
}

// Options configures a Session.
type Options struct {
	Concurrency int
	MaxDepth    int
	Listener    Listener
	// Progress reports cards resolved during a sprint load.
	Progress func(done, total int)
}

// Session is the per-process context shared by all commands.
type Session struct {
	remote   Remote
	cache    *cache.Cache
	engine   *enrich.Engine
	listener Listener

	mu       sync.Mutex
	sprints  []workitem.Sprint // backend order, oldest first
	selected string
}

// New creates a session over remote.
func New(remote Remote, opts Options) *Session {
	c := cache.New(remote, remote.Project(), remote.Team())
	eng := enrich.New(c, enrich.Options{
		Concurrency: opts.Concurrency,
		MaxDepth:    opts.MaxDepth,
		Progress:    opts.Progress,
	})
	return &Session{
		remote:   remote,
		cache:    c,
		engine:   eng,
		listener: opts.Listener,
	}
}

// SetListener replaces the listener. nil disables notifications.
func (s *Session) SetListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// Project returns the configured project.
func (s *Session) Project() string { return s.remote.Project() }

// Team returns the configured team.
func (s *Session) Team() string { return s.remote.Team() }

// WebURL returns the browser URL of a card.
func (s *Session) WebURL(id int) string { return s.remote.WebURL(id) }

// CacheStats returns the cache counters.
func (s *Session) CacheStats() cache.Stats { return s.cache.Stats() }

// Sprints lists the team's sprints, newest first. The list is always
// fetched from the backend.
func (s *Session) Sprints(ctx context.Context) ([]workitem.Sprint, error) {
	sprints, err := s.remote.GetTeamIterations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	s.engine.History().SetSprints(sprints)

	s.mu.Lock()
	s.sprints = sprints
	s.mu.Unlock()

	return workitem.Reversed(sprints), nil
}

func (s *Session) knownSprints(ctx context.Context) ([]workitem.Sprint, error) {
	s.mu.Lock()
	sprints := s.sprints
	s.mu.Unlock()
	if sprints != nil {
		return sprints, nil
	}
	if _, err := s.Sprints(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sprints, nil
}

// ResolveSprintArg finds a sprint by id, exact path, name or CurrentSprint.
// Names are matched case-insensitively when there is no exact match.
func (s *Session) ResolveSprintArg(ctx context.Context, arg string) (workitem.Sprint, error) {
	sprints, err := s.knownSprints(ctx)
	if err != nil {
		return workitem.Sprint{}, err
	}
	return findSprint(sprints, arg)
}

func findSprint(sprints []workitem.Sprint, arg string) (workitem.Sprint, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return workitem.Sprint{}, fmt.Errorf("%w: empty name", ErrSprintNotFound)
	}

	if arg == CurrentSprint {
		for _, sp := range sprints {
			if sp.IsCurrent() {
				return sp, nil
			}
		}
		return workitem.Sprint{}, fmt.Errorf("%w: no current sprint", ErrSprintNotFound)
	}

	for _, sp := range sprints {
		if sp.ID == arg || sp.Path == arg {
			return sp, nil
		}
	}

	for _, match := range []func(workitem.Sprint) bool{
		func(sp workitem.Sprint) bool { return sp.Name == arg },
		func(sp workitem.Sprint) bool { return strings.EqualFold(sp.Name, arg) },
	} {
		var found []workitem.Sprint
		for _, sp := range sprints {
			if match(sp) {
				found = append(found, sp)
			}
		}
		switch len(found) {
		case 0:
			continue
		case 1:
			return found[0], nil
		default:
			paths := make([]string, len(found))
			for i, sp := range found {
				paths[i] = sp.Path
			}
			return workitem.Sprint{}, fmt.Errorf("%w: %q matches %s", ErrAmbiguousSprint, arg, strings.Join(paths, ", "))
		}
	}
	return workitem.Sprint{}, fmt.Errorf("%w: %q", ErrSprintNotFound, arg)
}

// Selected returns the selected sprint id, or "" when none is selected.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SelectSprint makes sprintID the selected sprint and resolves its cards.
func (s *Session) SelectSprint(ctx context.Context, sprintID string) (enrich.Result, error) {
	s.mu.Lock()
	s.selected = sprintID
	s.mu.Unlock()
	return s.load(ctx, sprintID)
}

// Refresh drops every cached entry and re-resolves the selected sprint.
// Without a selection it only clears the cache.
func (s *Session) Refresh(ctx context.Context) (enrich.Result, error) {
	s.cache.Reset()
	log.FromContext(ctx).Debug("cache reset")

	sprintID := s.Selected()
	if sprintID == "" {
		return enrich.Result{}, nil
	}
	return s.load(ctx, sprintID)
}

func (s *Session) load(ctx context.Context, sprintID string) (enrich.Result, error) {
	res, err := s.engine.ResolveSprintCards(ctx, sprintID)

	s.mu.Lock()
	l := s.listener
	stale := s.selected != sprintID
	s.mu.Unlock()

	if err != nil {
		if l != nil && !stale {
			l.Failed(err)
		}
		return res, err
	}
	if l != nil && !stale {
		l.CardsReady(res)
	}
	st := s.cache.Stats()
	log.FromContext(ctx).Debug("cache stats", "hits", st.Hits, "misses", st.Misses, "remote_calls", st.RemoteCalls)
	return res, nil
}

// Card returns one enriched card.
func (s *Session) Card(ctx context.Context, id int) (*workitem.WorkItem, error) {
	w, err := s.cache.FetchOne(ctx, id, boards.ExpandRelations)
	if err != nil {
		return nil, fmt.Errorf("card %d: %w", id, err)
	}
	card, err := s.engine.ResolveParentChain(ctx, w)
	if err != nil && !errors.Is(err, enrich.ErrCyclicParentChain) {
		return nil, err
	}
	return card, nil
}

// SetCardState changes a card's System.State and reloads the selected
// sprint.
func (s *Session) SetCardState(ctx context.Context, cardID int, state string) (*workitem.WorkItem, error) {
	state = strings.TrimSpace(state)
	if state == "" {
		return nil, fmt.Errorf("set state of card %d: empty state", cardID)
	}

	w, err := s.remote.UpdateWorkItemField(ctx, cardID, workitem.FieldState, state)
	if err != nil {
		return nil, fmt.Errorf("set state of card %d: %w", cardID, err)
	}
	log.FromContext(ctx).Debug("card state changed", "card", cardID, "state", state)

	s.cache.Invalidate(cardID)
	if err := s.reload(ctx); err != nil {
		return w, err
	}
	return w, nil
}

// MoveCard moves a card to the sprint with id target, or out of all
// sprints when target is Backlog.
func (s *Session) MoveCard(ctx context.Context, cardID int, target string) (*workitem.WorkItem, error) {
	path, err := s.iterationPath(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("move card %d: %w", cardID, err)
	}

	w, err := s.remote.UpdateWorkItemField(ctx, cardID, workitem.FieldIterationPath, path)
	if err != nil {
		return nil, fmt.Errorf("move card %d: %w", cardID, err)
	}
	log.FromContext(ctx).Debug("card moved", "card", cardID, "iteration", path)

	s.cache.Invalidate(cardID)
	s.cache.InvalidateSprints()
	if err := s.reload(ctx); err != nil {
		return w, err
	}
	return w, nil
}

// iterationPath maps a move target to the iteration path to write. The
// backlog is the project's root iteration, whose path is the project name.
func (s *Session) iterationPath(ctx context.Context, target string) (string, error) {
	if strings.EqualFold(target, Backlog) {
		return s.remote.Project(), nil
	}
	sprints, err := s.knownSprints(ctx)
	if err != nil {
		return "", err
	}
	for _, sp := range sprints {
		if sp.ID == target {
			return sp.Path, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrSprintNotFound, target)
}

func (s *Session) reload(ctx context.Context) error {
	sprintID := s.Selected()
	if sprintID == "" {
		return nil
	}
	_, err := s.load(ctx, sprintID)
	return err
}

// Children returns the enriched child cards of id, in relation order.
// Children the backend no longer knows are skipped.
func (s *Session) Children(ctx context.Context, id int) ([]*workitem.WorkItem, error) {
	parent, err := s.cache.FetchOne(ctx, id, boards.ExpandRelations)
	if err != nil {
		return nil, fmt.Errorf("children of %d: %w", id, err)
	}
	ids := parent.ChildIDs()
	if len(ids) == 0 {
		return nil, nil
	}

	items, err := s.cache.FetchBatch(ctx, ids, nil, boards.ExpandRelations)
	var missing *cache.MissingError
	if err != nil && !errors.As(err, &missing) {
		return nil, fmt.Errorf("children of %d: %w", id, err)
	}

	cards, err := s.engine.ResolveAll(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("children of %d: %w", id, err)
	}
	return compact(cards), nil
}

// Epics lists the project's epics that are not removed. Only list fields
// are loaded.
func (s *Session) Epics(ctx context.Context) ([]*workitem.WorkItem, error) {
	ids, err := s.remote.QueryByWIQL(ctx, epicsQuery)
	if err != nil {
		return nil, fmt.Errorf("list epics: %w", err)
	}
	items, err := s.cache.FetchBatch(ctx, ids, listFields, boards.ExpandNone)
	var missing *cache.MissingError
	if err != nil && !errors.As(err, &missing) {
		return nil, fmt.Errorf("list epics: %w", err)
	}
	return compact(items), nil
}

func compact(items []*workitem.WorkItem) []*workitem.WorkItem {
	out := make([]*workitem.WorkItem, 0, len(items))
	for _, w := range items {
		if w != nil {
			out = append(out, w)
		}
	}
	return out
}

// ParseCardID parses a card argument such as "123" or "#123".
func ParseCardID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(arg), "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid card id %q", arg)
	}
	return id, nil
}
