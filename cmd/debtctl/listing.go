// AngelaMos | 2026
// listing.go

package main

import (
	"context"
	"flag"
	"io"

	"github.com/carterperez-dev/debt-manager/internal/dispatch"
	"github.com/carterperez-dev/debt-manager/internal/listview"
)

type listFlags struct {
	search string
	sort   string
	desc   bool
	width  int
}

func (l *listFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&l.search, "search", "", "case-insensitive filter")
	fs.StringVar(&l.sort, "sort", "", "sort field")
	fs.BoolVar(&l.desc, "desc", false, "sort descending")
	fs.IntVar(&l.width, "width", defaultWidth, "viewport width in pixels")
}

// printers renders one list as a table on desktop and as cards on mobile.
type printers[T any] struct {
	table func(io.Writer, []T)
	cards func(io.Writer, []T)
}

// listing is one fetched list plus its view state. Rendering reads the
// view only; a layout change never triggers a fetch.
type listing[T any] struct {
	view    *listview.View[T]
	loader  *listview.Loader[T]
	layouts printers[T]
}

func newListing[T any](
	cfg listview.Config[T],
	fetch func(context.Context) ([]T, error),
	layouts printers[T],
) *listing[T] {
	view := listview.NewView(cfg)
	return &listing[T]{
		view:    view,
		loader:  listview.Into(view, fetch),
		layouts: layouts,
	}
}

func (l *listing[T]) close() {
	l.loader.Close()
}

func (l *listing[T]) load(ctx context.Context) error {
	_, err := l.loader.Reload(ctx)
	return err
}

// mutate runs op and refetches the list whatever op returned.
func (l *listing[T]) mutate(ctx context.Context, op func(ctx context.Context) error) error {
	return l.loader.Mutate(ctx, op)
}

func (l *listing[T]) apply(lf listFlags) {
	l.view.SetSearch(lf.search)
	if field, _ := l.view.Sort(); lf.sort != "" && lf.sort != field {
		l.view.ToggleSort(lf.sort)
	}
	if lf.desc {
		field, _ := l.view.Sort()
		l.view.ToggleSort(field)
	}
}

func (l *listing[T]) render(out io.Writer, width int) {
	items := l.view.Visible()
	if dispatch.Classify(width) == dispatch.Mobile {
		l.layouts.cards(out, items)
		return
	}
	l.layouts.table(out, items)
}

// show loads the list, applies the flags and renders it.
func (l *listing[T]) show(ctx context.Context, out io.Writer, lf listFlags) error {
	if err := l.load(ctx); err != nil {
		return err
	}
	l.apply(lf)
	l.render(out, lf.width)
	return nil
}
