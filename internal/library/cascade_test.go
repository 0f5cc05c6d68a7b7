package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveVideo_OrphanRule(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertMovie(ctx, testMovie(603, 6384))
	require.NoError(t, err)
	addPerson(t, s, 6384, "Keanu Reeves")
	video := addAttached(t, s, "/media/matrix.mkv", MediaMovie, 603)

	report, err := s.RemoveVideo(ctx, video)
	require.NoError(t, err)
	assert.Equal(t, []int64{video}, report.Videos)
	assert.Equal(t, []int64{603}, report.Movies)
	assert.Equal(t, []int64{6384}, report.Persons)

	for _, table := range []string{
		"Videos", "Movies", "MovieGenreLinks", "MovieKeywordLinks", "MovieCasts", "MovieCrews", "MovieTrailers", "Persons",
	} {
		assert.Zero(t, countRows(t, s, table), table)
	}
}

func TestRemoveVideo_PersonWithOtherCreditSurvives(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertMovie(ctx, testMovie(603, 6384))
	require.NoError(t, err)
	// The second credit is on a show, which is checked after the movie tables.
	_, err = s.UpsertTv(ctx, testTv(1396, 6384))
	require.NoError(t, err)
	addPerson(t, s, 6384, "Keanu Reeves")
	video := addAttached(t, s, "/media/matrix.mkv", MediaMovie, 603)

	report, err := s.RemoveVideo(ctx, video)
	require.NoError(t, err)
	assert.Equal(t, []int64{603}, report.Movies)
	assert.Empty(t, report.Persons)

	ok, err := s.PersonExists(ctx, 6384)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemoveVideo_MovieWithOtherVideoSurvives(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertMovie(ctx, testMovie(603, 6384))
	require.NoError(t, err)
	first := addAttached(t, s, "/media/matrix-1080p.mkv", MediaMovie, 603)
	addAttached(t, s, "/media/matrix-2160p.mkv", MediaMovie, 603)

	report, err := s.RemoveVideo(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, []int64{first}, report.Videos)
	assert.Empty(t, report.Movies)

	_, err = s.GetMovie(ctx, testUser, 603)
	assert.NoError(t, err)
}

func TestRemoveVideo_LastEpisodeRemovesShow(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	eps := seedTv(t, s)
	addPerson(t, s, 17419, "Bryan Cranston")

	videos, err := s.SearchVideos(ctx, testUser, VideoQuery{Filters: []VideoFilter{VideoEpisodes()}, Order: VideoOrderPath})
	require.NoError(t, err)
	require.Len(t, videos, 2)

	report, err := s.RemoveVideo(ctx, videos[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{eps[0]}, report.Episodes)
	assert.Empty(t, report.Tvs, "show still has an episode with a video")

	report, err = s.RemoveVideo(ctx, videos[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{eps[1]}, report.Episodes)
	assert.Equal(t, []int64{1396}, report.Tvs)
	assert.Equal(t, []int64{17419}, report.Persons)

	for _, table := range []string{"Tvs", "Seasons", "Episodes", "TvCasts", "TvCrews", "Persons"} {
		assert.Zero(t, countRows(t, s, table), table)
	}
}

func TestRemoveMovie(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertMovie(ctx, testMovie(603))
	require.NoError(t, err)
	a := addAttached(t, s, "/media/a.mkv", MediaMovie, 603)
	b := addAttached(t, s, "/media/b.mkv", MediaMovie, 603)

	report, err := s.RemoveMovie(ctx, 603)
	require.NoError(t, err)
	assert.Equal(t, []int64{a, b}, report.Videos)
	assert.Equal(t, []int64{603}, report.Movies)

	_, err = s.RemoveMovie(ctx, 603)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveTv(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	eps := seedTv(t, s)

	report, err := s.RemoveTv(ctx, 1396)
	require.NoError(t, err)
	assert.Len(t, report.Videos, 2)
	assert.Equal(t, []int64{1396}, report.Tvs)
	assert.ElementsMatch(t, eps[:], report.Episodes)
	assert.Zero(t, countRows(t, s, "Videos"))
}

func TestReassignVideo(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertMovie(ctx, testMovie(603))
	require.NoError(t, err)
	_, err = s.UpsertMovie(ctx, testMovie(604))
	require.NoError(t, err)
	video := addAttached(t, s, "/media/matrix.mkv", MediaMovie, 603)

	report, err := s.ReassignVideo(ctx, video, MediaMovie, ptr(int64(604)))
	require.NoError(t, err)
	assert.Empty(t, report.Videos)
	assert.Equal(t, []int64{603}, report.Movies)

	_, err = s.GetMovie(ctx, testUser, 604)
	assert.NoError(t, err)

	// Reassigning to the same media deletes nothing.
	report, err = s.ReassignVideo(ctx, video, MediaMovie, ptr(int64(604)))
	require.NoError(t, err)
	assert.True(t, report.Empty())
}

func TestTx_RemoveVideoRollsBack(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertMovie(ctx, testMovie(603, 6384))
	require.NoError(t, err)
	video := addAttached(t, s, "/media/matrix.mkv", MediaMovie, 603)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	report, err := tx.RemoveVideo(ctx, video)
	require.NoError(t, err)
	assert.Equal(t, []int64{603}, report.Movies)
	require.NoError(t, tx.Rollback())

	ok, err := s.MovieExists(ctx, 603)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = s.GetVideo(ctx, testUser, video)
	assert.NoError(t, err)
}
