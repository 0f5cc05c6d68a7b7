package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ClosedIsNotConnected(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close is idempotent")

	_, err := s.GetVideo(ctx, testUser, 1)
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = s.AddVideo(ctx, &Video{Path: "/a.mkv"})
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = s.Begin(ctx)
	assert.ErrorIs(t, err, ErrNotConnected)

	assert.ErrorIs(t, s.Connect(ctx), ErrNotConnected)
}

func TestStore_NilHandleIsNotConnected(t *testing.T) {
	s := NewStore(nil)
	_, err := s.SearchPersons(context.Background(), PersonQuery{})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestStore_UseBeforeConnect(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	s := NewStore(db)
	_, err = s.SearchMovies(ctx, testUser, MovieQuery{})
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = s.AddVideo(ctx, &Video{Path: "/a.mkv"})
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = s.Begin(ctx)
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, s.Connect(ctx))
	got, err := s.SearchMovies(ctx, testUser, MovieQuery{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_ConnectIsIdempotent(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	id, err := s.AddVideo(ctx, &Video{Path: "/a.mkv", MediaType: MediaUnassigned})
	require.NoError(t, err)
	require.NoError(t, s.Connect(ctx))

	_, err = s.GetVideo(ctx, testUser, id)
	assert.NoError(t, err, "rows survive a second Connect")
}

func TestTx_Commit(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.UpsertTv(ctx, testTv(1396))
	require.NoError(t, err)
	_, err = tx.UpsertEpisode(ctx, 1396, testEpisode(62085, 1, 1))
	require.NoError(t, err)
	id, err := tx.AddVideo(ctx, &Video{Path: "/bb.mkv", MediaType: MediaEpisode, MediaID: ptr(int64(62085))})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Rollback(), "Rollback after Commit is a no-op")

	got, err := s.GetEpisode(ctx, testUser, 62085)
	require.NoError(t, err)
	assert.Equal(t, "Breaking Bad", got.TvTitle)

	v, err := s.GetVideo(ctx, testUser, id)
	require.NoError(t, err)
	assert.Equal(t, MediaEpisode, v.MediaType)

	assert.ErrorIs(t, tx.Commit(), ErrTxAborted)
}

func TestTx_Rollback(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.UpsertMovie(ctx, testMovie(603))
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	ok, err := s.MovieExists(ctx, 603)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_FailedWriteIsTxAborted(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := s.CreateCollection(ctx, testUser, "Dup")
	require.NoError(t, err)
	_, err = s.CreateCollection(ctx, testUser, "Dup")
	assert.ErrorIs(t, err, ErrTxAborted)
	assert.ErrorIs(t, err, ErrDuplicate)

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Contains(t, e.Location, "collection.create")
}

func TestStore_ConcurrentWrites(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if _, err := s.AddVideo(ctx, &Video{Path: fmt.Sprintf("/media/%02d.mkv", idx), MediaType: MediaUnassigned}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent write failed: %v", err)
	}

	got, err := s.SearchVideos(ctx, testUser, VideoQuery{})
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestStore_ViewCounts(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertMovie(ctx, testMovie(603, 6384))
	require.NoError(t, err)
	addAttached(t, s, "/media/matrix.mkv", MediaMovie, 603)

	counts, err := s.ViewCounts(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, counts)

	rows := make(map[string]int64, len(counts))
	for _, c := range counts {
		rows[c.View] = c.Rows
	}
	assert.Equal(t, int64(1), rows["VideosView"])
	assert.Equal(t, int64(1), rows["MoviesView"])
	assert.Equal(t, int64(0), rows["TvsView"])
}
