package library

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediacat/internal/tmdb"
)

const testUser = "alice"

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) (*Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testEpoch)
	s, err := Open(context.Background(), ":memory:", WithClock(clock))
	require.NoError(t, err, "open store")
	t.Cleanup(func() { _ = s.Close() })
	return s, clock
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}

func testMovie(id int64, cast ...int64) *tmdb.Movie {
	m := &tmdb.Movie{
		ID:           id,
		Title:        "The Matrix",
		ReleaseDate:  "1999-03-31",
		PosterPath:   "/matrix-poster.jpg",
		BackdropPath: "/matrix-backdrop.jpg",
		VoteAverage:  8.2,
		Genres:       []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
		Videos: tmdb.VideoList{Results: []tmdb.Video{
			{Key: "vKQi3bBA1y8", Name: "Trailer", Site: "YouTube", Type: "Trailer"},
			{Key: "123456", Name: "Vimeo clip", Site: "Vimeo", Type: "Clip"},
		}},
		Keywords: tmdb.KeywordList{Keywords: []tmdb.Keyword{{ID: 310, Name: "artificial intelligence"}}},
	}
	for i, pid := range cast {
		m.Credits.Cast = append(m.Credits.Cast, tmdb.CastCredit{ID: pid, Character: "Role", Order: i})
	}
	return m
}

func testTv(id int64, cast ...int64) *tmdb.Tv {
	tv := &tmdb.Tv{
		ID:           id,
		Name:         "Breaking Bad",
		FirstAirDate: "2008-01-20",
		PosterPath:   "/bb-poster.jpg",
		BackdropPath: "/bb-backdrop.jpg",
		Genres:       []tmdb.Genre{{ID: 18, Name: "Drama"}},
		Seasons: []tmdb.SeasonSummary{
			{ID: id*10 + 1, SeasonNumber: 1, EpisodeCount: 2, Name: "Season 1", PosterPath: "/bb-s1.jpg"},
		},
	}
	for i, pid := range cast {
		tv.Credits.Cast = append(tv.Credits.Cast, tmdb.CastCredit{ID: pid, Character: "Role", Order: i})
	}
	return tv
}

func testEpisode(id int64, season, number int, cast ...int64) *tmdb.Episode {
	e := &tmdb.Episode{
		ID:            id,
		SeasonNumber:  season,
		EpisodeNumber: number,
		Name:          "Episode",
		StillPath:     "/still.jpg",
	}
	for i, pid := range cast {
		e.Credits.Cast = append(e.Credits.Cast, tmdb.CastCredit{ID: pid, Character: "Guest", Order: i})
	}
	return e
}

func addPerson(t *testing.T, s *Store, id int64, name string) {
	t.Helper()
	_, err := s.UpsertPerson(context.Background(), &tmdb.Person{ID: id, Name: name, ProfilePath: "/p.jpg"})
	require.NoError(t, err, "UpsertPerson %d", id)
}

// addAttached registers a video attached to a movie or episode.
func addAttached(t *testing.T, s *Store, path string, mt MediaType, mediaID int64) int64 {
	t.Helper()
	id, err := s.AddVideo(context.Background(), &Video{Path: path, MediaType: mt, MediaID: ptr(mediaID), Duration: 100})
	require.NoError(t, err, "AddVideo %s", path)
	return id
}
