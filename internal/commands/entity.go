package commands

import (
	"context"
	"errors"
	"fmt"

	"notebook-console/internal/domain"
	"notebook-console/internal/resource"
	"notebook-console/internal/view"

	"github.com/spf13/cobra"
)

var ErrInvalidValues = errors.New("invalid values")

// entity is one resource's subcommand tree.
type entity[T domain.Entity] struct {
	key  string
	open Opener
	oo   *OutputOptions
	pick func(*resource.Workspace) *resource.Resource[T]
}

func addEntity[T domain.Entity](topLevel *cobra.Command, key string, open Opener, oo *OutputOptions, pick func(*resource.Workspace) *resource.Resource[T]) {
	e := &entity[T]{key: key, open: open, oo: oo, pick: pick}

	cmd := &cobra.Command{
		Use:   key,
		Short: fmt.Sprintf("List, show, create, update and delete %s records", key),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		e.listCommand(),
		e.getCommand(),
		e.createCommand(),
		e.updateCommand(),
		e.patchCommand(),
		e.deleteCommand(),
	)
	topLevel.AddCommand(cmd)
}

// run opens a workspace, hands the command its resource and closes the
// workspace again.
func (e *entity[T]) run(cmd *cobra.Command, fn func(ctx context.Context, res *resource.Resource[T], opts view.FormOptions) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	w, opts, err := e.open(ctx)
	if err != nil {
		return e.oo.HandleError(cmd.OutOrStdout(), err)
	}
	defer w.Close()

	return e.oo.HandleError(cmd.OutOrStdout(), fn(ctx, e.pick(w), opts))
}

func (e *entity[T]) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List every record",
		Example: "notebookctl " + e.key + " list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(ctx context.Context, res *resource.Resource[T], _ view.FormOptions) error {
				list := view.NewList(res)
				if err := list.Mount(ctx); err != nil {
					return err
				}
				if e.oo.JSON {
					return printJSON(cmd.OutOrStdout(), res.Store.State().Entities)
				}
				printList(cmd.OutOrStdout(), list.Model())
				return nil
			})
		},
	}
}

func (e *entity[T]) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "get ID",
		Short:   "Show one record",
		Example: "notebookctl " + e.key + " get 1001",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			return e.run(cmd, func(ctx context.Context, res *resource.Resource[T], _ view.FormOptions) error {
				detail := view.NewDetail(res, id)
				if err := detail.Mount(ctx); err != nil {
					return err
				}
				if e.oo.JSON {
					return printJSON(cmd.OutOrStdout(), res.Store.State().Entity)
				}
				printDetail(cmd.OutOrStdout(), detail.Model())
				return nil
			})
		},
	}
}

func (e *entity[T]) createCommand() *cobra.Command {
	so := &SetOptions{}
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a record",
		Example: "notebookctl note create --set title=Groceries --set content=eggs --set notebook=1001",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(ctx context.Context, res *resource.Resource[T], opts view.FormOptions) error {
				return e.submit(ctx, cmd, res, view.NewForm(res, "", opts), so)
			})
		},
	}
	AddSetArg(cmd, so)
	return cmd
}

func (e *entity[T]) updateCommand() *cobra.Command {
	so := &SetOptions{}
	cmd := &cobra.Command{
		Use:     "update ID",
		Short:   "Replace a record, keeping the values not given with --set",
		Example: "notebookctl share update 1001 --set invite=team",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			return e.run(cmd, func(ctx context.Context, res *resource.Resource[T], opts view.FormOptions) error {
				return e.submit(ctx, cmd, res, view.NewForm(res, id, opts), so)
			})
		},
	}
	AddSetArg(cmd, so)
	return cmd
}

// submit drives the same form the web console shows: mount, start from
// its defaults, overlay --set values and save.
func (e *entity[T]) submit(ctx context.Context, cmd *cobra.Command, res *resource.Resource[T], form *view.Form[T], so *SetOptions) error {
	sets, err := e.values(res, so)
	if err != nil {
		return err
	}
	if err := form.Mount(ctx); err != nil {
		return err
	}

	values := form.Defaults()
	for k, v := range sets {
		values[k] = v
	}

	errs, err := form.Submit(ctx, values)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		printFieldErrors(cmd.ErrOrStderr(), res, errs)
		return fmt.Errorf("%w for %s", ErrInvalidValues, res.Title)
	}
	return e.printSaved(cmd, res)
}

func (e *entity[T]) patchCommand() *cobra.Command {
	so := &SetOptions{}
	cmd := &cobra.Command{
		Use:     "patch ID",
		Short:   "Change only the fields given with --set",
		Example: "notebookctl note-book patch 1001 --set handle=work\nnotebookctl note patch 1001 --set notebook=",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			return e.run(cmd, func(ctx context.Context, res *resource.Resource[T], _ view.FormOptions) error {
				sets, err := e.values(res, so)
				if err != nil {
					return err
				}
				if len(sets) == 0 {
					return errors.New("nothing to patch, pass at least one --set")
				}

				// An empty relation value removes the reference.
				var clear []string
				for _, rel := range res.Relations {
					v, ok := sets[rel.Name()]
					if !ok {
						continue
					}
					if v == "" {
						clear = append(clear, rel.Name())
						continue
					}
					if err := rel.Fetch(ctx); err != nil {
						return fmt.Errorf("failed to fetch %s options: %w", rel.Name(), err)
					}
				}

				var patch T
				if err := res.Apply(&patch, sets); err != nil {
					return err
				}
				res.SetID(&patch, &id)
				if _, err := res.Store.PartialUpdate(ctx, patch, clear...); err != nil {
					return err
				}
				return e.printSaved(cmd, res)
			})
		},
	}
	AddSetArg(cmd, so)
	return cmd
}

func (e *entity[T]) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Short:   "Delete a record",
		Example: "notebookctl share delete 1001",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			return e.run(cmd, func(ctx context.Context, res *resource.Resource[T], _ view.FormOptions) error {
				dialog := view.NewDeleteDialog(res, id)
				if err := dialog.Confirm(ctx); err != nil {
					return err
				}
				if e.oo.JSON {
					return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": id.String()})
				}
				printAlert(cmd.OutOrStdout(), res.Store.TakeAlert(), res.Title, id.String())
				return nil
			})
		},
	}
}

func (e *entity[T]) printSaved(cmd *cobra.Command, res *resource.Resource[T]) error {
	st := res.Store.State()
	if e.oo.JSON {
		return printJSON(cmd.OutOrStdout(), st.Entity)
	}
	printAlert(cmd.OutOrStdout(), res.Store.TakeAlert(), res.Title, domain.IDString(st.Entity))
	return nil
}

// values parses --set and rejects names the resource does not have.
func (e *entity[T]) values(res *resource.Resource[T], so *SetOptions) (map[string]string, error) {
	values, err := so.Values()
	if err != nil {
		return nil, err
	}
	for k := range values {
		if _, ok := res.Field(k); ok {
			continue
		}
		if _, ok := res.Relation(k); ok {
			continue
		}
		return nil, fmt.Errorf("%s has no field %q", res.Title, k)
	}
	return values, nil
}
