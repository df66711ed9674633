package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/ui"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// entityCommand is the command group of one entity page, named by its UI
// route: points, weight, blood-pressure, preferences.
func (a *app) entityCommand(d domain.Descriptor) *cobra.Command {
	cmd := &cobra.Command{
		Use:   d.Route,
		Short: "Manage " + d.Name,
	}
	current := func() screen { return a.screens[d.Name] }

	var opts listOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List " + d.Name + " in pages, or search with --search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return current().list(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	list.Flags().StringVarP(&opts.search, "search", "s", "", "search query")
	list.Flags().StringArrayVar(&opts.sorts, "sort", nil, "sort by field; repeat to flip the order")
	list.Flags().IntVar(&opts.pages, "pages", 1, fmt.Sprintf("number of pages of %d to load", ui.ItemsPerPage))

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one " + d.Name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return current().show(cmd.Context(), cmd.OutOrStdout(), id)
		},
	}

	var createData string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create " + d.Name + " from JSON field values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return current().save(cmd.Context(), cmd.OutOrStdout(), nil, createData)
		},
	}
	create.Flags().StringVarP(&createData, "data", "d", "", "JSON field values")

	var updateData string
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Edit " + d.Name + "; --data overrides the stored fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return current().save(cmd.Context(), cmd.OutOrStdout(), &id, updateData)
		},
	}
	update.Flags().StringVarP(&updateData, "data", "d", "", "JSON field values")

	var yes bool
	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one " + d.Name + " after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return current().remove(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), id, yes)
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")

	schema := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of " + d.Name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return current().schema(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(list, get, create, update, del, schema)
	return cmd
}

// openCommand drives the page behind a UI path such as /weight/3/edit.
func (a *app) openCommand() *cobra.Command {
	var data string
	var yes bool
	cmd := &cobra.Command{
		Use:   "open PATH",
		Short: "Open a page by its path, e.g. /points, /points/new, /weight/3/delete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := a.router.Resolve(args[0])
			if !ok {
				return fmt.Errorf("no page at %s", args[0])
			}
			s := a.screens[m.Entity.Name]
			ctx, w := cmd.Context(), cmd.OutOrStdout()
			switch m.Page {
			case ui.ListPage:
				return s.list(ctx, w, listOptions{pages: 1})
			case ui.NewPage:
				return s.save(ctx, w, nil, data)
			case ui.DetailPage:
				return s.show(ctx, w, m.ID)
			case ui.EditPage:
				return s.save(ctx, w, &m.ID, data)
			default:
				return s.remove(ctx, w, cmd.InOrStdin(), m.ID, yes)
			}
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON field values for new and edit pages")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm a delete page without asking")
	return cmd
}
