package views

// State is the interactive state of one table: filter text, sort and page.
type State struct {
	Filter  string `json:"filter"`
	SortKey string `json:"sort"`
	Order   Order  `json:"order"`
	Page    int    `json:"page"`
}

func NewState(sortKey string, order Order) State {
	if order == "" {
		order = Asc
	}
	return State{SortKey: sortKey, Order: order, Page: 1}
}

// WithFilter replaces the filter text and returns to the first page.
func (s State) WithFilter(filter string) State {
	s.Filter = filter
	s.Page = 1
	return s
}

// ToggleSort flips the order when key is already active and otherwise
// switches to key in ascending order.
func (s State) ToggleSort(key string) State {
	if s.SortKey == key {
		if s.Order == Asc {
			s.Order = Desc
		} else {
			s.Order = Asc
		}
		return s
	}
	s.SortKey = key
	s.Order = Asc
	return s
}

func (s State) Next(totalPages int) State {
	s.Page = ClampPage(s.Page+1, totalPages)
	return s
}

func (s State) Prev(totalPages int) State {
	s.Page = ClampPage(s.Page-1, totalPages)
	return s
}

// Reset returns to the first page; used when the collection is replaced.
func (s State) Reset() State {
	s.Page = 1
	return s
}

func (s State) Query() Query {
	return Query{Filter: s.Filter, SortKey: s.SortKey, Order: s.Order, Page: s.Page}
}
