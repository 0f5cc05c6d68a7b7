package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediacat/internal/library"
)

var personOrders = map[string]library.PersonOrder{
	"":           library.PersonOrderDefault,
	"name":       library.PersonOrderName,
	"popularity": library.PersonOrderPopularityDesc,
}

func (a *app) personCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "person",
		Short: "Browse cast and crew",
	}
	cmd.AddCommand(a.personListCmd(), a.personShowCmd())
	return cmd
}

func (a *app) personListCmd() *cobra.Command {
	var (
		pq    library.PersonQuery
		order string
		name  string
	)
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List people",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if pq.Order, err = parseOrder(personOrders, order); err != nil {
				return err
			}
			if name != "" {
				pq.Filters = append(pq.Filters, library.PersonName("%"+name+"%"))
			}
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			people, err := store.SearchPersons(cmd.Context(), pq)
			if err != nil {
				return err
			}
			return a.output(cmd, people, func(w io.Writer) error {
				tw := table(w, "ID", "NAME", "DEPARTMENT")
				for _, p := range people {
					row(tw, p.ID, p.Name, p.KnownForDepartment)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Only names containing this text")
	cmd.Flags().StringVarP(&order, "order", "o", "", "Sort by name or popularity")
	pageFlags(cmd, &pq.Page)
	return cmd
}

// personDetail is a person with what they are credited on.
type personDetail struct {
	*library.Person
	Movies []library.MovieResult `json:"movies"`
	Tvs    []library.TvResult    `json:"tvs"`
}

func (a *app) personShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a person and the movies and shows they appear in",
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
			d := personDetail{}
			if d.Person, err = store.GetPerson(ctx, id); err != nil {
				return err
			}
			if d.Movies, err = store.SearchMovies(ctx, a.user, library.MovieQuery{
				Filters: []library.MovieFilter{library.MovieCast(id)},
				Order:   library.MovieOrderReleaseDesc,
			}); err != nil {
				return err
			}
			if d.Tvs, err = store.SearchTvs(ctx, a.user, library.TvQuery{
				Filters: []library.TvFilter{library.TvCast(id)},
				Order:   library.TvOrderReleaseDesc,
			}); err != nil {
				return err
			}
			return a.output(cmd, d, func(w io.Writer) error {
				p := d.Person
				fmt.Fprintf(w, "%s\n", p.Name)
				fmt.Fprintf(w, "Known for: %s\n", p.KnownForDepartment)
				if p.Birthday != "" {
					fmt.Fprintf(w, "Born:      %s %s\n", p.Birthday, p.PlaceOfBirth)
				}
				if p.Deathday != "" {
					fmt.Fprintf(w, "Died:      %s\n", p.Deathday)
				}
				for _, m := range d.Movies {
					fmt.Fprintf(w, "  movie %-8d %s (%s)\n", m.ID, m.Title, m.ReleaseDate)
				}
				for _, t := range d.Tvs {
					fmt.Fprintf(w, "  tv    %-8d %s (%s)\n", t.ID, t.Title, t.ReleaseDate)
				}
				return nil
			})
		},
	}
}
