package views

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rohits-web03/otadash/internal/apperr"
)

type ActionType string

const (
	ActionFilter  ActionType = "filter"
	ActionSort    ActionType = "sort"
	ActionNext    ActionType = "next"
	ActionPrev    ActionType = "prev"
	ActionRefresh ActionType = "refresh"

	// ActionCollection switches a multi-collection view to another collection.
	ActionCollection ActionType = "collection"
)

// Action is a user interaction with a table.
type Action struct {
	Type  ActionType `json:"type"`
	Value string     `json:"value,omitempty"`
}

// Fetcher loads the full collection behind a view.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Snapshot is the rendered state of a live view.
type Snapshot[T any] struct {
	Page[T]
	Loading    bool       `json:"loading"`
	Loaded     bool       `json:"loaded"`
	Generation uint64     `json:"generation"`
	FetchedAt  *time.Time `json:"fetchedAt,omitempty"`
}

// View is a type-erased live view, so boards can hold tables of different record types.
type View interface {
	Name() string
	Dispatch(ctx context.Context, a Action) (any, error)
	Render() (any, error)
}

// Live is a table whose collection is fetched on demand. Every refresh takes a
// new generation; only the result of the latest generation is applied, so a
// slow earlier fetch can never overwrite a newer one. The previous collection
// stays visible while a fetch is in flight.
type Live[T any] struct {
	spec  Spec[T]
	fetch Fetcher[T]
	now   func() time.Time

	mu        sync.Mutex
	state     State
	items     []T
	gen       uint64
	loading   bool
	loaded    bool
	fetchedAt time.Time
}

func NewLive[T any](spec Spec[T], fetch Fetcher[T]) *Live[T] {
	return &Live[T]{
		spec:  spec,
		fetch: fetch,
		now:   time.Now,
		state: NewState(spec.DefaultSort, spec.DefaultOrder),
	}
}

func (l *Live[T]) Name() string { return l.spec.Name }

// Begin starts a fetch and returns its generation.
func (l *Live[T]) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.loading = true
	return l.gen
}

// Commit installs items fetched under gen. It reports false and changes
// nothing when a newer fetch has started since.
func (l *Live[T]) Commit(gen uint64, items []T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	l.items = items
	l.loading = false
	l.loaded = true
	l.fetchedAt = l.now()
	l.state = l.state.Reset()
	return true
}

// Abort ends the fetch under gen without touching the collection.
func (l *Live[T]) Abort(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	l.loading = false
	return true
}

// Refresh fetches the collection and applies it if still current.
func (l *Live[T]) Refresh(ctx context.Context) error {
	if l.fetch == nil {
		return apperr.NewInternalError(fmt.Sprintf("View %s cannot be refreshed", l.spec.Name), nil)
	}
	gen := l.Begin()
	items, err := l.fetch(ctx)
	if err != nil {
		l.Abort(gen)
		return err
	}
	l.Commit(gen, items)
	return nil
}

// Dispatch applies a to the view state and returns the new snapshot.
func (l *Live[T]) Dispatch(ctx context.Context, a Action) (any, error) {
	if a.Type == ActionRefresh {
		if err := l.Refresh(ctx); err != nil {
			return nil, err
		}
		return l.Snapshot()
	}

	l.mu.Lock()
	switch a.Type {
	case ActionFilter:
		l.state = l.state.WithFilter(a.Value)
	case ActionSort:
		if _, ok := l.spec.column(a.Value); !ok {
			l.mu.Unlock()
			return nil, apperr.NewValidationError(fmt.Sprintf("Unknown sort column %q", a.Value), nil)
		}
		l.state = l.state.ToggleSort(a.Value)
	case ActionNext, ActionPrev:
		pages := TotalPages(len(Filter(l.spec, l.items, l.state.Filter)), l.spec.PageSize)
		if a.Type == ActionNext {
			l.state = l.state.Next(pages)
		} else {
			l.state = l.state.Prev(pages)
		}
	default:
		l.mu.Unlock()
		return nil, apperr.NewValidationError(fmt.Sprintf("Unknown action %q", a.Type), nil)
	}
	l.mu.Unlock()
	return l.Snapshot()
}

// Snapshot renders the current page.
func (l *Live[T]) Snapshot() (Snapshot[T], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	page, err := Apply(l.spec, l.items, l.state.Query())
	if err != nil {
		return Snapshot[T]{}, err
	}
	snap := Snapshot[T]{Page: page, Loading: l.loading, Loaded: l.loaded, Generation: l.gen}
	if l.loaded {
		t := l.fetchedAt
		snap.FetchedAt = &t
	}
	return snap, nil
}

// Render returns Snapshot as an untyped value.
func (l *Live[T]) Render() (any, error) {
	return l.Snapshot()
}

// State returns the current interactive state.
func (l *Live[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// IsLoaded reports whether a fetch has ever been committed.
func (l *Live[T]) IsLoaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}
