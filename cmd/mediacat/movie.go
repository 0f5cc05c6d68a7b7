package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediacat/internal/library"
)

var movieOrders = map[string]library.MovieOrder{
	"":        library.MovieOrderDefault,
	"title":   library.MovieOrderTitle,
	"added":   library.MovieOrderAddedDesc,
	"release": library.MovieOrderReleaseDesc,
	"rating":  library.MovieOrderRatingDesc,
	"id":      library.MovieOrderID,
}

func (a *app) movieCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movie",
		Short: "Browse movies",
	}
	cmd.AddCommand(a.movieListCmd(), a.movieShowCmd(), a.movieWatchedCmd(), a.movieRemoveCmd())
	return cmd
}

func (a *app) movieListCmd() *cobra.Command {
	var (
		mq                              library.MovieQuery
		order                           string
		genre, cast, crew, collectionID int64
	)
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List movies that have a video",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if mq.Order, err = parseOrder(movieOrders, order); err != nil {
				return err
			}
			if genre > 0 {
				mq.Filters = append(mq.Filters, library.MovieGenre(genre))
			}
			if cast > 0 {
				mq.Filters = append(mq.Filters, library.MovieCast(cast))
			}
			if crew > 0 {
				mq.Filters = append(mq.Filters, library.MovieCrew(crew))
			}
			if collectionID > 0 {
				mq.Filters = append(mq.Filters, library.MovieCollection(collectionID))
			}

			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			movies, err := store.SearchMovies(cmd.Context(), a.user, mq)
			if err != nil {
				return err
			}
			return a.output(cmd, movies, func(w io.Writer) error {
				if len(movies) == 0 {
					_, err := fmt.Fprintln(w, "No movies.")
					return err
				}
				tw := table(w, "ID", "TITLE", "RELEASE", "RATING", "GENRES", "WATCHED")
				for _, m := range movies {
					row(tw, m.ID, truncate(m.Title, 40), m.ReleaseDate, fmt.Sprintf("%.1f", m.VoteAverage), strings.Join(m.Genres, ", "), m.Watched)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&order, "order", "o", "", "Sort by title, added, release, rating or id")
	cmd.Flags().Int64Var(&genre, "genre", 0, "Only movies with this genre id")
	cmd.Flags().Int64Var(&cast, "cast", 0, "Only movies with this person in the cast")
	cmd.Flags().Int64Var(&crew, "crew", 0, "Only movies with this person in the crew")
	cmd.Flags().Int64Var(&collectionID, "collection", 0, "Only movies in this collection")
	pageFlags(cmd, &mq.Page)
	return cmd
}

// movieDetail is the JSON shape of movie show.
type movieDetail struct {
	*library.Movie
	Cast     []library.Cast    `json:"cast"`
	Crew     []library.Crew    `json:"crew"`
	Trailers []library.Trailer `json:"trailers"`
	Keywords []library.Keyword `json:"keywords"`
}

func (a *app) movieShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a movie with its credits",
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
			d := movieDetail{}
			if d.Movie, err = store.GetMovie(ctx, a.user, id); err != nil {
				return err
			}
			if d.Cast, err = store.MovieCast(ctx, id); err != nil {
				return err
			}
			if d.Crew, err = store.MovieCrew(ctx, id); err != nil {
				return err
			}
			if d.Trailers, err = store.MovieTrailers(ctx, id); err != nil {
				return err
			}
			if d.Keywords, err = store.MovieKeywords(ctx, id); err != nil {
				return err
			}
			return a.output(cmd, d, func(w io.Writer) error {
				m := d.Movie
				fmt.Fprintf(w, "%s (%s)\n", m.Title, m.ReleaseDate)
				if m.Tagline != "" {
					fmt.Fprintf(w, "%s\n", m.Tagline)
				}
				fmt.Fprintf(w, "\nGenres:   %s\n", strings.Join(m.Genres, ", "))
				fmt.Fprintf(w, "Rating:   %.1f (%d votes)\n", m.VoteAverage, m.VoteCount)
				fmt.Fprintf(w, "Watched:  %d\n", m.Watched)
				if m.Overview != "" {
					fmt.Fprintf(w, "\n%s\n", m.Overview)
				}
				printCredits(w, d.Cast, d.Crew)
				return nil
			})
		},
	}
}

func printCredits(w io.Writer, cast []library.Cast, crew []library.Crew) {
	if len(cast) > 0 {
		fmt.Fprintln(w, "\nCast:")
		for _, c := range cast {
			fmt.Fprintf(w, "  %-30s %s\n", c.Name, c.Character)
		}
	}
	if len(crew) > 0 {
		fmt.Fprintln(w, "\nCrew:")
		for _, c := range crew {
			fmt.Fprintf(w, "  %-30s %s\n", c.Name, c.Job)
		}
	}
}

func (a *app) movieWatchedCmd() *cobra.Command {
	var unset bool
	cmd := &cobra.Command{
		Use:   "watched <id>",
		Short: "Mark a movie watched, or unwatched with --unset",
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
			return store.SetMovieWatched(cmd.Context(), a.user, id, !unset)
		},
	}
	cmd.Flags().BoolVar(&unset, "unset", false, "Reset the watched count")
	return cmd
}

func (a *app) movieRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a movie, its videos and people left without credits",
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
			report, err := store.RemoveMovie(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.output(cmd, report, func(w io.Writer) error {
				printReport(w, report)
				return nil
			})
		},
	}
}
