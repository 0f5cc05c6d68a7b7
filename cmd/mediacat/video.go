package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediacat/internal/library"
)

var videoOrders = map[string]library.VideoOrder{
	"":      library.VideoOrderDefault,
	"path":  library.VideoOrderPath,
	"added": library.VideoOrderAddedDesc,
	"watch": library.VideoOrderLastWatchDesc,
	"id":    library.VideoOrderID,
}

func (a *app) videoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "video",
		Short: "Manage video files",
	}
	cmd.AddCommand(
		a.videoAddCmd(),
		a.videoListCmd(),
		a.videoShowCmd(),
		a.videoRemoveCmd(),
		a.videoMoveCmd(),
		a.videoWatchCmd(),
		a.videoAssignMovieCmd(),
		a.videoAssignEpisodeCmd(),
	)
	return cmd
}

func (a *app) videoAddCmd() *cobra.Command {
	var (
		v    library.Video
		kind string
	)
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Register a video file (unassigned)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mt, err := library.ParseMediaType(kind)
			if err != nil {
				return fmt.Errorf("invalid --type %q", kind)
			}
			v.Path = args[0]
			// The kind is a hint for later assignment; nothing is attached yet.
			v.MediaType = mt
			v.MediaID = nil

			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			id, err := store.AddVideo(cmd.Context(), &v)
			if err != nil {
				return err
			}
			return a.output(cmd, map[string]int64{"id": id}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Added video %d: %s\n", id, library.NormalizePath(v.Path))
				return err
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&kind, "type", "t", "", "Expected content: movie or episode")
	f.Int64Var(&v.Duration, "duration", 0, "Duration in seconds")
	f.Int64Var(&v.BitRate, "bit-rate", 0, "Bit rate in bits per second")
	f.StringVar(&v.Codec, "codec", "", "Video codec")
	f.IntVar(&v.Width, "width", 0, "Frame width")
	f.IntVar(&v.Height, "height", 0, "Frame height")
	f.Int64Var(&v.Size, "size", 0, "File size in bytes")
	f.StringSliceVar(&v.Subtitles, "subtitle", nil, "Subtitle language (repeatable)")
	f.StringSliceVar(&v.Audios, "audio", nil, "Audio language (repeatable)")
	return cmd
}

func (a *app) videoListCmd() *cobra.Command {
	var (
		vq         library.VideoQuery
		order      string
		unassigned bool
		movies     bool
		episodes   bool
	)
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if vq.Order, err = parseOrder(videoOrders, order); err != nil {
				return err
			}
			if unassigned {
				vq.Filters = append(vq.Filters, library.VideoUnassigned())
			}
			if movies {
				vq.Filters = append(vq.Filters, library.VideoMovies())
			}
			if episodes {
				vq.Filters = append(vq.Filters, library.VideoEpisodes())
			}

			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			videos, err := store.SearchVideos(cmd.Context(), a.user, vq)
			if err != nil {
				return err
			}
			return a.output(cmd, videos, func(w io.Writer) error {
				if len(videos) == 0 {
					_, err := fmt.Fprintln(w, "No videos.")
					return err
				}
				tw := table(w, "ID", "PATH", "MEDIA", "DURATION", "SIZE", "LAST WATCH")
				for _, v := range videos {
					row(tw, v.ID, truncate(v.Path, 60), describeMedia(v.Info), formatDuration(v.Duration), formatSize(v.Size), formatTime(v.LastWatch))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&order, "order", "o", "", "Sort by path, added, watch or id")
	cmd.Flags().BoolVar(&unassigned, "unassigned", false, "Only videos not attached to anything")
	cmd.Flags().BoolVar(&movies, "movies", false, "Only movie videos")
	cmd.Flags().BoolVar(&episodes, "episodes", false, "Only episode videos")
	cmd.MarkFlagsMutuallyExclusive("movies", "episodes")
	pageFlags(cmd, &vq.Page)
	return cmd
}

func (a *app) videoShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one video",
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
			v, err := store.GetVideo(cmd.Context(), a.user, id)
			if err != nil {
				return err
			}
			return a.output(cmd, v, func(w io.Writer) error {
				media := v.MediaType.String()
				if v.MediaID != nil {
					media = fmt.Sprintf("%s %d", v.MediaType, *v.MediaID)
				}
				fmt.Fprintf(w, "Path:       %s\n", v.Path)
				fmt.Fprintf(w, "Media:      %s\n", media)
				fmt.Fprintf(w, "Duration:   %s\n", formatDuration(v.Duration))
				fmt.Fprintf(w, "Video:      %s %dx%d, %d bps\n", v.Codec, v.Width, v.Height, v.BitRate)
				fmt.Fprintf(w, "Size:       %s\n", formatSize(v.Size))
				fmt.Fprintf(w, "Audio:      %s\n", strings.Join(v.Audios, ", "))
				fmt.Fprintf(w, "Subtitles:  %s\n", strings.Join(v.Subtitles, ", "))
				fmt.Fprintf(w, "Added:      %s\n", formatTime(&v.Added))
				_, err := fmt.Fprintf(w, "Watched:    %s of %s (last %s)\n",
					formatDuration(v.WatchTime), formatDuration(v.Duration), formatTime(v.LastWatch))
				return err
			})
		},
	}
}

func (a *app) videoRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a video and any metadata left without videos",
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
			report, err := store.RemoveVideo(cmd.Context(), id)
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

func (a *app) videoMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <id> <path>",
		Short: "Record a new path for a video",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.SetVideoPath(cmd.Context(), id, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Video %d moved to %s\n", id, library.NormalizePath(args[1]))
			return nil
		},
	}
}

func (a *app) videoWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <id> <seconds>",
		Short: "Record playback position; past 85% marks the media watched",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			seconds, err := parseID(args[1])
			if err != nil {
				return err
			}
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.SetWatchTime(cmd.Context(), a.user, id, seconds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Video %d at %s for %s\n", id, formatDuration(seconds), a.user)
			return nil
		},
	}
}

func (a *app) videoAssignMovieCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign-movie <video-id> <tmdb-movie-id>",
		Short: "Attach a video to a movie, fetching its metadata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoID, err := parseID(args[0])
			if err != nil {
				return err
			}
			movieID, err := parseID(args[1])
			if err != nil {
				return err
			}
			svc, err := a.scraper(cmd)
			if err != nil {
				return err
			}
			report, err := svc.AssignMovie(cmd.Context(), videoID, movieID)
			if err != nil {
				return err
			}
			return a.output(cmd, report, func(w io.Writer) error {
				fmt.Fprintf(w, "Video %d is movie %d\n", videoID, movieID)
				if !report.Empty() {
					printReport(w, report)
				}
				return nil
			})
		},
	}
}

func (a *app) videoAssignEpisodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign-episode <video-id> <tmdb-tv-id> <season> <episode>",
		Short: "Attach a video to an episode, fetching show and episode metadata",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoID, err := parseID(args[0])
			if err != nil {
				return err
			}
			tvID, err := parseID(args[1])
			if err != nil {
				return err
			}
			season, err := parseNumber(args[2])
			if err != nil {
				return err
			}
			episode, err := parseNumber(args[3])
			if err != nil {
				return err
			}
			svc, err := a.scraper(cmd)
			if err != nil {
				return err
			}
			report, err := svc.AssignEpisode(cmd.Context(), videoID, tvID, season, episode)
			if err != nil {
				return err
			}
			return a.output(cmd, report, func(w io.Writer) error {
				fmt.Fprintf(w, "Video %d is show %d S%02dE%02d\n", videoID, tvID, season, episode)
				if !report.Empty() {
					printReport(w, report)
				}
				return nil
			})
		},
	}
}
