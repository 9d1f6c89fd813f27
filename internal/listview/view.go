// AngelaMos | 2026
// view.go

package listview

import (
	"slices"
	"strings"
	"sync"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Config describes how a list of T is searched and sorted. Compare
// functions return a negative number when a sorts before b.
type Config[T any] struct {
	SearchFields []func(T) string
	SortFields   map[string]func(a, b T) int
	DefaultSort  string
	TieBreak     func(a, b T) int
}

// View holds fetched items plus the search and sort inputs. Visible is
// recomputed from those four inputs on every call.
type View[T any] struct {
	cfg Config[T]

	mu        sync.RWMutex
	items     []T
	term      string
	sortField string
	dir       Direction
}

func NewView[T any](cfg Config[T]) *View[T] {
	return &View[T]{cfg: cfg, sortField: cfg.DefaultSort}
}

func (v *View[T]) SetItems(items []T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = slices.Clone(items)
}

func (v *View[T]) Items() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.items)
}

func (v *View[T]) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.term = term
}

// ToggleSort flips direction when field is already selected and starts a
// new field ascending.
func (v *View[T]) ToggleSort(field string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.cfg.SortFields[field]; !ok {
		return
	}
	if v.sortField == field {
		if v.dir == Asc {
			v.dir = Desc
		} else {
			v.dir = Asc
		}
		return
	}
	v.sortField = field
	v.dir = Asc
}

func (v *View[T]) Sort() (string, Direction) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.sortField, v.dir
}

func (v *View[T]) Visible() []T {
	v.mu.RLock()
	items, term, field, dir := v.items, v.term, v.sortField, v.dir
	v.mu.RUnlock()

	out := Filter(items, term, v.cfg.SearchFields)
	return Sort(out, v.comparator(field, dir))
}

func (v *View[T]) comparator(field string, dir Direction) func(a, b T) int {
	primary := v.cfg.SortFields[field]
	tie := v.cfg.TieBreak

	return func(a, b T) int {
		if primary != nil {
			c := primary(a, b)
			if dir == Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		if tie != nil {
			return tie(a, b)
		}
		return 0
	}
}

// Filter keeps items where any field contains term, ignoring case. An
// empty term keeps everything.
func Filter[T any](items []T, term string, fields []func(T) string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return slices.Clone(items)
	}

	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(it)), term) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// Sort returns a stably sorted copy of items.
func Sort[T any](items []T, cmp func(a, b T) int) []T {
	out := slices.Clone(items)
	if cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}
