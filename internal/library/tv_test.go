package library

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/mediacat/internal/tmdb"
)

// seedTv stores show 1396 with two season-one episodes, each with a video.
func seedTv(t *testing.T, s *Store) (episodes [2]int64) {
	t.Helper()
	ctx := context.Background()
	tv := testTv(1396, 17419)
	tv.CreatedBy = []tmdb.Creator{{ID: 66633, Name: "Vince Gilligan"}}
	_, err := s.UpsertTv(ctx, tv)
	require.NoError(t, err)

	for i, id := range []int64{62085, 62086} {
		_, err := s.UpsertEpisode(ctx, 1396, testEpisode(id, 1, i+1))
		require.NoError(t, err)
		addAttached(t, s, fmt.Sprintf("/media/bb/s01e%02d.mkv", i+1), MediaEpisode, id)
		episodes[i] = id
	}
	return episodes
}

func TestStore_UpsertTv(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	tv := testTv(1396, 17419)
	tv.CreatedBy = []tmdb.Creator{{ID: 66633, Name: "Vince Gilligan"}}
	r, err := s.UpsertTv(ctx, tv)
	require.NoError(t, err)
	assert.Equal(t, []int64{17419, 66633}, r.PersonIDs)
	assert.Equal(t, []string{"/bb-s1.jpg", "/bb-backdrop.jpg", "/bb-poster.jpg"}, r.Assets)

	crew, err := s.TvCrew(ctx, 1396)
	require.NoError(t, err)
	require.Len(t, crew, 1)
	assert.Equal(t, CreatorJob, crew[0].Job)

	// No episode videos yet.
	_, err = s.GetTv(ctx, testUser, 1396)
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := s.TvExists(ctx, 1396)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_UpsertEpisode_RequiresSeason(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertTv(ctx, testTv(1396))
	require.NoError(t, err)

	_, err = s.UpsertEpisode(ctx, 1396, testEpisode(99, 5, 1))
	assert.ErrorIs(t, err, ErrNotFound)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Location, "season")
}

func TestStore_Episodes(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	eps := seedTv(t, s)

	got, err := s.FindEpisode(ctx, testUser, 1396, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, eps[1], got.ID)
	assert.Equal(t, "Breaking Bad", got.TvTitle)
	assert.Equal(t, "/still.jpg", got.StillPath)

	id, err := s.EpisodeID(ctx, 1396, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, eps[0], id)

	_, err = s.EpisodeID(ctx, 1396, 1, 9)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.SearchEpisodes(ctx, testUser, EpisodeQuery{
		Filters: []EpisodeFilter{EpisodeTv(1396), EpisodeSeason(1)},
		Order:   EpisodeOrderNumber,
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].EpisodeNumber)
	assert.Equal(t, 2, list[1].EpisodeNumber)

	seasons, err := s.Seasons(ctx, testUser, 1396)
	require.NoError(t, err)
	require.Len(t, seasons, 1)
	assert.Equal(t, 2, seasons[0].EpisodeCount)

	_, err = s.GetSeason(ctx, testUser, 1396, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_TvWatchedIsMinimumOverEpisodes(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	eps := seedTv(t, s)

	require.NoError(t, s.SetEpisodeWatched(ctx, testUser, eps[0], true))

	tv, err := s.GetTv(ctx, testUser, 1396)
	require.NoError(t, err)
	assert.Zero(t, tv.Watched)
	season, err := s.GetSeason(ctx, testUser, 1396, 1)
	require.NoError(t, err)
	assert.Zero(t, season.Watched)

	require.NoError(t, s.SetEpisodeWatched(ctx, testUser, eps[1], true))

	tv, err = s.GetTv(ctx, testUser, 1396)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, tv.Watched, int64(1))
	season, err = s.GetSeason(ctx, testUser, 1396, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, season.Watched, int64(1))

	list, err := s.SearchTvs(ctx, testUser, TvQuery{Filters: []TvFilter{TvID(1396)}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].Watched)

	// Another user has watched nothing.
	tv, err = s.GetTv(ctx, "bob", 1396)
	require.NoError(t, err)
	assert.Zero(t, tv.Watched)
}

func TestStore_DeleteTv(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	seedTv(t, s)

	require.NoError(t, s.DeleteTv(ctx, 1396))
	for _, table := range []string{"Tvs", "Seasons", "Episodes", "TvCasts", "TvCrews", "TvGenreLinks"} {
		assert.Zero(t, countRows(t, s, table), table)
	}
	assert.Equal(t, 2, countRows(t, s, "Videos"), "videos are left alone")
}

func TestStore_UpsertTv_RenumberedSeasonKeepsEpisodes(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	eps := seedTv(t, s)

	refreshed := testTv(1396, 17419)
	refreshed.Seasons[0].ID = 99001
	refreshed.Seasons[0].Name = "Season One"
	_, err := s.UpsertTv(ctx, refreshed)
	require.NoError(t, err)

	seasons, err := s.Seasons(ctx, testUser, 1396)
	require.NoError(t, err)
	require.Len(t, seasons, 1)
	assert.Equal(t, int64(13961), seasons[0].ID, "stored season keeps its id")
	assert.Equal(t, "Season One", seasons[0].Title)
	assert.Equal(t, 1, countRows(t, s, "Seasons"))

	got, err := s.GetEpisode(ctx, testUser, eps[0])
	require.NoError(t, err)
	assert.Equal(t, 1, got.SeasonNumber)
}
