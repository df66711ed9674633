package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/HankLeo/21-points/internal/client"
	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/store"
	"github.com/HankLeo/21-points/internal/ui"
)

type listOptions struct {
	search string
	sorts  []string
	pages  int
}

// screen hides the entity type from the command tree.
type screen interface {
	list(ctx context.Context, w io.Writer, opts listOptions) error
	show(ctx context.Context, w io.Writer, id int64) error
	save(ctx context.Context, w io.Writer, id *int64, data string) error
	remove(ctx context.Context, w io.Writer, in io.Reader, id int64, yes bool) error
	schema(ctx context.Context, w io.Writer) error
}

type entityScreen[T any, P domain.EntityPtr[T]] struct {
	res      *client.Resource[T, P]
	slice    *store.Slice[T, P]
	defaults func() P
}

func newScreen[T any, P domain.EntityPtr[T]](c *client.Client, d domain.Descriptor, defaults func() P) *entityScreen[T, P] {
	res := client.NewResource[T, P](c, d)
	return &entityScreen[T, P]{res: res, slice: store.NewSlice[T, P](res), defaults: defaults}
}

// list mirrors the list page: each --sort is one click on a column header
// and every extra page is one scroll to the bottom.
func (s *entityScreen[T, P]) list(ctx context.Context, w io.Writer, opts listOptions) error {
	v := ui.NewListView(s.slice)
	var err error
	if opts.search != "" {
		err = v.Search(ctx, opts.search)
	} else {
		err = v.ResetAll(ctx)
	}
	if err != nil {
		return err
	}
	for _, field := range opts.sorts {
		if err := v.Sort(ctx, field); err != nil {
			return err
		}
	}
	for i := 1; i < opts.pages && v.HasMore(); i++ {
		if err := v.LoadMore(ctx); err != nil {
			return err
		}
	}

	items := v.Items()
	for _, e := range items {
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
	}
	name := s.res.Descriptor().Name
	if total := v.State().TotalItems; total > 0 {
		fmt.Fprintf(w, "%d of %d %s", len(items), total, name)
	} else {
		fmt.Fprintf(w, "%d %s", len(items), name)
	}
	if v.HasMore() {
		fmt.Fprint(w, ", more available")
	}
	fmt.Fprintln(w)
	return nil
}

func (s *entityScreen[T, P]) show(ctx context.Context, w io.Writer, id int64) error {
	if err := s.slice.GetEntity(ctx, id); err != nil {
		return err
	}
	return printJSON(w, s.slice.State().Entity)
}

// save fills the form from its initial values, overlays data and submits.
func (s *entityScreen[T, P]) save(ctx context.Context, w io.Writer, id *int64, data string) error {
	form := ui.NewUpdateForm(s.slice, s.defaults)
	if err := form.Open(ctx, id); err != nil {
		return err
	}
	values := form.Values()
	if data != "" {
		if err := json.Unmarshal([]byte(data), values); err != nil {
			return fmt.Errorf("failed to parse --data: %w", err)
		}
	}
	route, err := form.Submit(ctx, values)
	if err != nil {
		return err
	}
	if err := printJSON(w, s.slice.State().Entity); err != nil {
		return err
	}
	fmt.Fprintln(w, "saved, back to", route)
	return nil
}

func (s *entityScreen[T, P]) remove(ctx context.Context, w io.Writer, in io.Reader, id int64, yes bool) error {
	dialog := ui.NewDeleteDialog(s.slice)
	if err := dialog.Open(ctx, id); err != nil {
		return err
	}
	if err := printJSON(w, dialog.Entity()); err != nil {
		return err
	}
	if !yes {
		fmt.Fprintf(w, "Are you sure you want to delete %s %d? [y/N] ", s.res.Descriptor().Name, id)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(w, "cancelled")
			return nil
		}
	}
	route, err := dialog.Confirm(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "deleted, back to", route)
	return nil
}

func (s *entityScreen[T, P]) schema(ctx context.Context, w io.Writer) error {
	raw, err := s.res.Schema(ctx)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return printJSON(w, v)
}
