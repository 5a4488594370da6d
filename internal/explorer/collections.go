package explorer

import (
	"context"
	"sync"

	"github.com/rohits-web03/otadash/internal/views"
)

// ViewName is the board name of the explorer view.
const ViewName = "explorer"

// Collections is a board view that shows one explorer collection at a time.
// Each collection keeps its own filter and sort while another one is selected;
// selecting a collection refetches it and returns to the first page.
type Collections struct {
	mu     sync.Mutex
	active Kind
	tables map[Kind]views.View
}

// CollectionSnapshot is the rendered explorer view.
type CollectionSnapshot struct {
	Collection Kind   `json:"collection"`
	Kinds      []Kind `json:"kinds"`
	Table      any    `json:"table"`
}

func NewCollections(e *Explorer) *Collections {
	c := &Collections{active: KindUsers, tables: make(map[Kind]views.View, len(Kinds))}
	for _, k := range Kinds {
		c.tables[k] = e.View(k)
	}
	return c
}

func (c *Collections) Name() string { return ViewName }

func (c *Collections) current() (Kind, views.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.tables[c.active]
}

// Dispatch handles collection switches and forwards every other action to
// the selected table.
func (c *Collections) Dispatch(ctx context.Context, a views.Action) (any, error) {
	if a.Type == views.ActionCollection {
		kind, err := ParseKind(a.Value)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.active = kind
		c.mu.Unlock()
		a = views.Action{Type: views.ActionRefresh}
	}

	kind, table := c.current()
	out, err := table.Dispatch(ctx, a)
	if err != nil {
		return nil, err
	}
	return CollectionSnapshot{Collection: kind, Kinds: Kinds, Table: out}, nil
}

func (c *Collections) Render() (any, error) {
	kind, table := c.current()
	out, err := table.Render()
	if err != nil {
		return nil, err
	}
	return CollectionSnapshot{Collection: kind, Kinds: Kinds, Table: out}, nil
}

// IsLoaded reports whether the selected collection has been fetched.
func (c *Collections) IsLoaded() bool {
	_, table := c.current()
	if l, ok := table.(interface{ IsLoaded() bool }); ok {
		return l.IsLoaded()
	}
	return true
}
