package views

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rohits-web03/otadash/internal/apperr"
)

// Board holds the live views of one signed-in session.
type Board struct {
	mu    sync.Mutex
	views map[string]View
}

func NewBoard(views ...View) *Board {
	b := &Board{views: make(map[string]View, len(views))}
	for _, v := range views {
		b.views[v.Name()] = v
	}
	return b
}

func (b *Board) View(name string) (View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.views[name]
	if !ok {
		return nil, apperr.NewNotFoundError(fmt.Sprintf("View %q not found", name), nil)
	}
	return v, nil
}

func (b *Board) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.views))
	for n := range b.views {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Render returns the named view, fetching it first if it has never loaded.
func (b *Board) Render(ctx context.Context, name string) (any, error) {
	v, err := b.View(name)
	if err != nil {
		return nil, err
	}
	if l, ok := v.(interface{ IsLoaded() bool }); ok && !l.IsLoaded() {
		return v.Dispatch(ctx, Action{Type: ActionRefresh})
	}
	return v.Render()
}

func (b *Board) Dispatch(ctx context.Context, name string, a Action) (any, error) {
	v, err := b.View(name)
	if err != nil {
		return nil, err
	}
	return v.Dispatch(ctx, a)
}

// Registry keeps one board per session id.
type Registry struct {
	mu      sync.Mutex
	boards  map[string]*Board
	factory func() *Board
}

func NewRegistry(factory func() *Board) *Registry {
	return &Registry{boards: map[string]*Board{}, factory: factory}
}

// Get returns the board for sid, creating it on first use.
func (r *Registry) Get(sid string) *Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boards[sid]
	if !ok {
		b = r.factory()
		r.boards[sid] = b
	}
	return b
}

// Drop discards the board of sid.
func (r *Registry) Drop(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.boards, sid)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}
