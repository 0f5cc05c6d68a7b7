package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediacat/internal/library"
)

var tvOrders = map[string]library.TvOrder{
	"":        library.TvOrderDefault,
	"title":   library.TvOrderTitle,
	"added":   library.TvOrderAddedDesc,
	"release": library.TvOrderReleaseDesc,
	"rating":  library.TvOrderRatingDesc,
	"id":      library.TvOrderID,
}

var episodeOrders = map[string]library.EpisodeOrder{
	"":        library.EpisodeOrderDefault,
	"number":  library.EpisodeOrderNumber,
	"added":   library.EpisodeOrderAddedDesc,
	"release": library.EpisodeOrderReleaseDesc,
}

func (a *app) tvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tv",
		Short: "Browse shows, seasons and episodes",
	}
	cmd.AddCommand(
		a.tvListCmd(),
		a.tvShowCmd(),
		a.tvSeasonsCmd(),
		a.tvEpisodesCmd(),
		a.tvWatchedCmd(),
		a.tvRemoveCmd(),
	)
	return cmd
}

func (a *app) tvListCmd() *cobra.Command {
	var (
		tq                              library.TvQuery
		order                           string
		genre, cast, crew, collectionID int64
	)
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List shows that have an episode with a video",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if tq.Order, err = parseOrder(tvOrders, order); err != nil {
				return err
			}
			if genre > 0 {
				tq.Filters = append(tq.Filters, library.TvGenre(genre))
			}
			if cast > 0 {
				tq.Filters = append(tq.Filters, library.TvCast(cast))
			}
			if crew > 0 {
				tq.Filters = append(tq.Filters, library.TvCrew(crew))
			}
			if collectionID > 0 {
				tq.Filters = append(tq.Filters, library.TvCollection(collectionID))
			}

			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			shows, err := store.SearchTvs(cmd.Context(), a.user, tq)
			if err != nil {
				return err
			}
			return a.output(cmd, shows, func(w io.Writer) error {
				if len(shows) == 0 {
					_, err := fmt.Fprintln(w, "No shows.")
					return err
				}
				tw := table(w, "ID", "TITLE", "FIRST AIRED", "RATING", "GENRES", "WATCHED")
				for _, t := range shows {
					row(tw, t.ID, truncate(t.Title, 40), t.ReleaseDate, fmt.Sprintf("%.1f", t.VoteAverage), strings.Join(t.Genres, ", "), t.Watched)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&order, "order", "o", "", "Sort by title, added, release, rating or id")
	cmd.Flags().Int64Var(&genre, "genre", 0, "Only shows with this genre id")
	cmd.Flags().Int64Var(&cast, "cast", 0, "Only shows with this person in the cast")
	cmd.Flags().Int64Var(&crew, "crew", 0, "Only shows with this person in the crew")
	cmd.Flags().Int64Var(&collectionID, "collection", 0, "Only shows in this collection")
	pageFlags(cmd, &tq.Page)
	return cmd
}

type tvDetail struct {
	*library.Tv
	Seasons []library.Season `json:"seasons"`
	Cast    []library.Cast   `json:"cast"`
	Crew    []library.Crew   `json:"crew"`
}

func (a *app) tvShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a show with its seasons and credits",
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
			d := tvDetail{}
			if d.Tv, err = store.GetTv(ctx, a.user, id); err != nil {
				return err
			}
			if d.Seasons, err = store.Seasons(ctx, a.user, id); err != nil {
				return err
			}
			if d.Cast, err = store.TvCast(ctx, id); err != nil {
				return err
			}
			if d.Crew, err = store.TvCrew(ctx, id); err != nil {
				return err
			}
			return a.output(cmd, d, func(w io.Writer) error {
				t := d.Tv
				fmt.Fprintf(w, "%s (%s)\n", t.Title, t.ReleaseDate)
				fmt.Fprintf(w, "\nGenres:   %s\n", strings.Join(t.Genres, ", "))
				fmt.Fprintf(w, "Status:   %s, %d seasons, %d episodes\n", t.Status, t.NumberOfSeasons, t.NumberOfEpisodes)
				fmt.Fprintf(w, "Watched:  %d\n", t.Watched)
				if t.Overview != "" {
					fmt.Fprintf(w, "\n%s\n", t.Overview)
				}
				printCredits(w, d.Cast, d.Crew)
				return nil
			})
		},
	}
}

func (a *app) tvSeasonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seasons <tv-id>",
		Short: "List a show's seasons that have videos",
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
			seasons, err := store.Seasons(cmd.Context(), a.user, id)
			if err != nil {
				return err
			}
			return a.output(cmd, seasons, func(w io.Writer) error {
				tw := table(w, "SEASON", "TITLE", "EPISODES", "AIRED", "WATCHED")
				for _, s := range seasons {
					row(tw, s.SeasonNumber, s.Title, s.EpisodeCount, s.ReleaseDate, s.Watched)
				}
				return tw.Flush()
			})
		},
	}
}

func (a *app) tvEpisodesCmd() *cobra.Command {
	var (
		season int
		order  string
		page   library.Page
	)
	cmd := &cobra.Command{
		Use:   "episodes <tv-id>",
		Short: "List a show's episodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			eq := library.EpisodeQuery{Filters: []library.EpisodeFilter{library.EpisodeTv(id)}, Page: page}
			if cmd.Flags().Changed("season") {
				eq.Filters = append(eq.Filters, library.EpisodeSeason(season))
			}
			if order == "" {
				order = "number"
			}
			if eq.Order, err = parseOrder(episodeOrders, order); err != nil {
				return err
			}

			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			episodes, err := store.SearchEpisodes(cmd.Context(), a.user, eq)
			if err != nil {
				return err
			}
			return a.output(cmd, episodes, func(w io.Writer) error {
				tw := table(w, "ID", "EPISODE", "TITLE", "AIRED", "WATCHED")
				for _, e := range episodes {
					row(tw, e.ID, fmt.Sprintf("S%02dE%02d", e.SeasonNumber, e.EpisodeNumber), truncate(e.Title, 40), e.ReleaseDate, e.Watched)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&season, "season", "s", 0, "Only this season")
	cmd.Flags().StringVarP(&order, "order", "o", "", "Sort by number, added or release")
	pageFlags(cmd, &page)
	return cmd
}

func (a *app) tvWatchedCmd() *cobra.Command {
	var (
		season  int
		episode int
		unset   bool
	)
	cmd := &cobra.Command{
		Use:   "watched <tv-id>",
		Short: "Mark a show, season or episode watched, or unwatched with --unset",
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
			hasSeason := cmd.Flags().Changed("season")
			switch {
			case cmd.Flags().Changed("episode"):
				if !hasSeason {
					return fmt.Errorf("--episode requires --season")
				}
				epID, err := store.EpisodeID(ctx, id, season, episode)
				if err != nil {
					return err
				}
				return store.SetEpisodeWatched(ctx, a.user, epID, !unset)
			case hasSeason:
				return store.SetSeasonWatched(ctx, a.user, id, season, !unset)
			default:
				return store.SetTvWatched(ctx, a.user, id, !unset)
			}
		},
	}
	cmd.Flags().IntVarP(&season, "season", "s", 0, "Only this season")
	cmd.Flags().IntVarP(&episode, "episode", "e", 0, "Only this episode (with --season)")
	cmd.Flags().BoolVar(&unset, "unset", false, "Reset the watched count")
	return cmd
}

func (a *app) tvRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a show, its episodes, their videos and orphaned people",
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
			report, err := store.RemoveTv(cmd.Context(), id)
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
