package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediacat/internal/library"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table writes aligned columns to w; call Flush when done.
func table(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

// output prints v as JSON with --json, otherwise runs human.
func (a *app) output(cmd *cobra.Command, v any, human func(w io.Writer) error) error {
	if a.jsonOutput {
		return printJSON(cmd.OutOrStdout(), v)
	}
	return human(cmd.OutOrStdout())
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatDuration renders seconds as h:mm:ss, or m:ss under an hour.
func formatDuration(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	h := int64(d / time.Hour)
	m := int64(d/time.Minute) % 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// describeMedia names what a video is attached to.
func describeMedia(info library.MediaInfo) string {
	switch {
	case info.Movie != nil:
		if len(info.Movie.ReleaseDate) >= 4 {
			return fmt.Sprintf("%s (%s)", info.Movie.Title, info.Movie.ReleaseDate[:4])
		}
		return info.Movie.Title
	case info.Episode != nil:
		return fmt.Sprintf("%s S%02dE%02d", info.Episode.TvTitle, info.Episode.Season, info.Episode.Episode)
	default:
		return "-"
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}

// pageFlags adds --limit and --offset to a listing command.
func pageFlags(cmd *cobra.Command, p *library.Page) {
	cmd.Flags().IntVarP(&p.Limit, "limit", "l", 0, "Maximum number of rows (0 for all)")
	cmd.Flags().IntVar(&p.Offset, "offset", 0, "Rows to skip (requires --limit)")
}

// parseOrder maps an --order value to its enum, listing the choices on error.
func parseOrder[O any](orders map[string]O, s string) (O, error) {
	if o, ok := orders[s]; ok {
		return o, nil
	}
	var zero O
	choices := slices.DeleteFunc(slices.Sorted(maps.Keys(orders)), func(k string) bool { return k == "" })
	return zero, fmt.Errorf("unknown order %q (choices: %s)", s, strings.Join(choices, ", "))
}

func printReport(w io.Writer, r *library.CascadeReport) {
	if r == nil || r.Empty() {
		fmt.Fprintln(w, "Nothing removed.")
		return
	}
	for _, part := range []struct {
		name string
		ids  []int64
	}{
		{"videos", r.Videos},
		{"movies", r.Movies},
		{"episodes", r.Episodes},
		{"shows", r.Tvs},
		{"people", r.Persons},
	} {
		if len(part.ids) > 0 {
			fmt.Fprintf(w, "Removed %d %s: %v\n", len(part.ids), part.name, part.ids)
		}
	}
}
