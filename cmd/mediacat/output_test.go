package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vmunix/mediacat/internal/library"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 500, "500 B"},
		{"exactly 1KB", 1024, "1.0 KB"},
		{"1.5KB", 1536, "1.5 KB"},
		{"exactly 1MB", 1024 * 1024, "1.0 MB"},
		{"11.2GB", 12000000000, "11.2 GB"},
		{"exactly 1TB", 1024 * 1024 * 1024 * 1024, "1.0 TB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSize(tt.bytes); got != tt.want {
				t.Errorf("formatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", formatDuration(0))
	assert.Equal(t, "1:05", formatDuration(65))
	assert.Equal(t, "2:16:00", formatDuration(8160))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Amé...", truncate("Amélie Poulain", 6))
}

func TestDescribeMedia(t *testing.T) {
	assert.Equal(t, "-", describeMedia(library.MediaInfo{}))
	assert.Equal(t, "The Matrix (1999)", describeMedia(library.MediaInfo{
		Movie: &library.MovieSummary{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-31"},
	}))
	assert.Equal(t, "Breaking Bad S01E02", describeMedia(library.MediaInfo{
		Episode: &library.EpisodeSummary{TvID: 1396, TvTitle: "Breaking Bad", Season: 1, Episode: 2},
	}))
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &library.CascadeReport{})
	assert.Equal(t, "Nothing removed.\n", buf.String())

	buf.Reset()
	printReport(&buf, &library.CascadeReport{Videos: []int64{4}, Movies: []int64{603}})
	assert.Equal(t, "Removed 1 videos: [4]\nRemoved 1 movies: [603]\n", buf.String())
}
