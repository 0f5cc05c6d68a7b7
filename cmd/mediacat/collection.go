package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediacat/internal/library"
)

var collectionOrders = map[string]library.CollectionOrder{
	"":        library.CollectionOrderDefault,
	"name":    library.CollectionOrderName,
	"created": library.CollectionOrderCreatedDesc,
}

func (a *app) collectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collection",
		Aliases: []string{"col"},
		Short:   "Manage collections of movies and shows",
	}
	cmd.AddCommand(
		a.collectionNewCmd(),
		a.collectionListCmd(),
		a.collectionShowCmd(),
		a.collectionMemberCmd("add-movie", "Add a movie to a collection", (*library.Store).AddMovieToCollection),
		a.collectionMemberCmd("add-tv", "Add a show to a collection", (*library.Store).AddTvToCollection),
		a.collectionMemberCmd("rm-movie", "Remove a movie from a collection", (*library.Store).RemoveMovieFromCollection),
		a.collectionMemberCmd("rm-tv", "Remove a show from a collection", (*library.Store).RemoveTvFromCollection),
		a.collectionRemoveCmd(),
	)
	return cmd
}

func (a *app) collectionNewCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a collection owned by the current user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			c, err := store.CreateCollection(ctx, a.user, args[0])
			if err != nil {
				return err
			}
			if description != "" {
				if err := store.SetCollectionDescription(ctx, c.ID, description); err != nil {
					return err
				}
				c.Description = description
			}
			return a.output(cmd, c, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Created collection %d: %s\n", c.ID, c.Name)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	return cmd
}

func (a *app) collectionListCmd() *cobra.Command {
	var (
		cq    library.CollectionQuery
		order string
		mine  bool
	)
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if cq.Order, err = parseOrder(collectionOrders, order); err != nil {
				return err
			}
			if mine {
				cq.Filters = append(cq.Filters, library.CollectionCreator(a.user))
			}
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			list, err := store.SearchCollections(cmd.Context(), cq)
			if err != nil {
				return err
			}
			return a.output(cmd, list, func(w io.Writer) error {
				tw := table(w, "ID", "NAME", "CREATOR", "CREATED")
				for i := range list {
					c := &list[i]
					row(tw, c.ID, c.Name, c.Creator, formatTime(&c.Created))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&mine, "mine", false, "Only collections created by the current user")
	cmd.Flags().StringVarP(&order, "order", "o", "", "Sort by name or created")
	pageFlags(cmd, &cq.Page)
	return cmd
}

type collectionDetail struct {
	*library.Collection
	Movies []library.MovieResult `json:"movies"`
	Tvs    []library.TvResult    `json:"tvs"`
}

func (a *app) collectionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a collection and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			d := collectionDetail{}
			if d.Collection, err = store.GetCollection(ctx, id); err != nil {
				return err
			}
			if d.Movies, err = store.SearchMovies(ctx, a.user, library.MovieQuery{
				Filters: []library.MovieFilter{library.MovieCollection(id)},
				Order:   library.MovieOrderTitle,
			}); err != nil {
				return err
			}
			if d.Tvs, err = store.SearchTvs(ctx, a.user, library.TvQuery{
				Filters: []library.TvFilter{library.TvCollection(id)},
				Order:   library.TvOrderTitle,
			}); err != nil {
				return err
			}
			return a.output(cmd, d, func(w io.Writer) error {
				fmt.Fprintf(w, "%s (by %s)\n", d.Name, d.Creator)
				if d.Description != "" {
					fmt.Fprintf(w, "%s\n", d.Description)
				}
				fmt.Fprintln(w)
				for _, m := range d.Movies {
					fmt.Fprintf(w, "  movie %-8d %s\n", m.ID, m.Title)
				}
				for _, t := range d.Tvs {
					fmt.Fprintf(w, "  tv    %-8d %s\n", t.ID, t.Title)
				}
				return nil
			})
		},
	}
}

func (a *app) collectionMemberCmd(use, short string, op func(*library.Store, context.Context, int64, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <collection-id> <id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionID, err := parseID(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			return op(store, cmd.Context(), collectionID, id)
		},
	}
}

func (a *app) collectionRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a collection; its members are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			return store.DeleteCollection(cmd.Context(), id)
		},
	}
}
