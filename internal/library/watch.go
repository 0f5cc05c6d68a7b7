package library

import (
	"context"
	"database/sql"
	"fmt"
)

// watchedPercent is how far into a video playback must get to count the media as watched.
const watchedPercent = 85

func setWatchTime(ctx context.Context, q querier, user string, videoID, seconds int64, now string) error {
	location := fmt.Sprintf("watch.time %d", videoID)
	var (
		duration int64
		mt       MediaType
		mediaID  sql.NullInt64
	)
	err := q.QueryRowContext(ctx, `SELECT duration, media_type, media_id FROM Videos WHERE id = ?`, videoID).Scan(&duration, &mt, &mediaID)
	if err != nil {
		return wrapErr(location, err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO WatchTimes (video_id, user_name, watch_time, last_watch) VALUES (?, ?, ?, ?)
		ON CONFLICT(video_id, user_name) DO UPDATE SET
			watch_time = excluded.watch_time,
			last_watch = excluded.last_watch`,
		videoID, user, seconds, now,
	)
	if err != nil {
		return wrapErr(location, err)
	}

	if !mediaID.Valid || seconds*100 <= duration*watchedPercent {
		return nil
	}
	switch mt {
	case MediaMovie:
		return setWatched(ctx, q, movieWatched, user, mediaID.Int64, true)
	case MediaEpisode:
		return setWatched(ctx, q, episodeWatched, user, mediaID.Int64, true)
	}
	return nil
}

// SetWatchTime records the user's playback position in seconds.
// Passing the watched threshold also marks the attached movie or episode watched.
func (s *Store) SetWatchTime(ctx context.Context, user string, videoID, seconds int64) error {
	return s.withTx(ctx, "watch.time", func(q querier) error {
		return setWatchTime(ctx, q, user, videoID, seconds, s.stamp())
	})
}

// SetWatchTime records a playback position within a transaction.
func (t *Tx) SetWatchTime(ctx context.Context, user string, videoID, seconds int64) error {
	return setWatchTime(ctx, t.q(), user, videoID, seconds, t.store.stamp())
}

// watchTable names a per-user watched counter table.
type watchTable struct {
	name   string
	table  string
	column string
	base   string
}

var (
	movieWatched   = watchTable{name: "movie", table: "MovieUserWatched", column: "movie_id", base: "Movies"}
	episodeWatched = watchTable{name: "episode", table: "EpisodesUserWatched", column: "episode_id", base: "Episodes"}
)

func (w watchTable) upsert(set string) string {
	return fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, user_name, watched) %%s
		ON CONFLICT(%[2]s, user_name) DO UPDATE SET watched = %[3]s`, w.table, w.column, set)
}

// setWatched increments the counter when watched is true and resets it otherwise.
func setWatched(ctx context.Context, q querier, w watchTable, user string, id int64, watched bool) error {
	location := fmt.Sprintf("watch.%s %d", w.name, id)
	if ok, err := rowExists(ctx, q, location, "SELECT 1 FROM "+w.base+" WHERE id = ?", id); err != nil {
		return err
	} else if !ok {
		return notFound(location)
	}
	stmt, value := w.upsert("0"), 0
	if watched {
		stmt, value = w.upsert(w.table+".watched + 1"), 1
	}
	_, err := q.ExecContext(ctx, fmt.Sprintf(stmt, "VALUES (?, ?, ?)"), id, user, value)
	return wrapErr(location, err)
}

// SetMovieWatched marks a movie watched for a user, or clears the mark. ErrNotFound for an unknown movie.
func (s *Store) SetMovieWatched(ctx context.Context, user string, id int64, watched bool) error {
	return s.withTx(ctx, "watch.movie", func(q querier) error {
		return setWatched(ctx, q, movieWatched, user, id, watched)
	})
}

// SetEpisodeWatched marks an episode watched for a user, or clears the mark.
func (s *Store) SetEpisodeWatched(ctx context.Context, user string, id int64, watched bool) error {
	return s.withTx(ctx, "watch.episode", func(q querier) error {
		return setWatched(ctx, q, episodeWatched, user, id, watched)
	})
}

// setEpisodesWatched applies setWatched to every stored episode matching the filters.
func setEpisodesWatched(ctx context.Context, q querier, location, user string, watched bool, filters ...filter) error {
	sq := selectQuery{head: "SELECT Episodes.id FROM Episodes", filters: filters, orderBy: "Episodes.id"}
	ids, err := query(ctx, q, sq, func(rows *sql.Rows) (int64, error) {
		var id int64
		return id, rows.Scan(&id)
	})
	if err != nil {
		return wrapErr(location, err)
	}
	if len(ids) == 0 {
		return notFound(location)
	}
	for _, id := range ids {
		if err := setWatched(ctx, q, episodeWatched, user, id, watched); err != nil {
			return err
		}
	}
	return nil
}

// SetSeasonWatched marks every episode of a season.
func (s *Store) SetSeasonWatched(ctx context.Context, user string, tvID int64, season int, watched bool) error {
	location := fmt.Sprintf("watch.season %d/%d", tvID, season)
	return s.withTx(ctx, "watch.season", func(q querier) error {
		return setEpisodesWatched(ctx, q, location, user, watched,
			eq("Episodes.tv_id", tvID), eq("Episodes.season_number", season))
	})
}

// SetTvWatched marks every episode of a show.
func (s *Store) SetTvWatched(ctx context.Context, user string, tvID int64, watched bool) error {
	location := fmt.Sprintf("watch.tv %d", tvID)
	return s.withTx(ctx, "watch.tv", func(q querier) error {
		return setEpisodesWatched(ctx, q, location, user, watched, eq("Episodes.tv_id", tvID))
	})
}
