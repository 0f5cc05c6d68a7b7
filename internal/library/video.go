package library

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// NormalizePath returns the NFC form of a file path, so the same file reached
// through differently composed names maps to one row.
func NormalizePath(p string) string {
	return norm.NFC.String(p)
}

// VideoFilter is an allow-listed predicate for video searches.
type VideoFilter struct{ f filter }

func (v VideoFilter) raw() filter { return v.f }

// VideoID matches a single video.
func VideoID(id int64) VideoFilter { return VideoFilter{eq("VideosView.id", id)} }

// VideoPath matches a file path.
func VideoPath(path string) VideoFilter { return VideoFilter{eq("path", NormalizePath(path))} }

// VideoMediaID matches videos attached to a movie or episode id. Combine with VideoMovies or VideoEpisodes.
func VideoMediaID(id int64) VideoFilter { return VideoFilter{eq("media_id", id)} }

// VideoMovies matches videos attached to a stored movie. A movie-typed video with no media id is unassigned.
func VideoMovies() VideoFilter { return VideoFilter{notNull("m_id")} }

// VideoEpisodes matches videos attached to a stored episode.
func VideoEpisodes() VideoFilter { return VideoFilter{notNull("e_id")} }

// VideoUnassigned matches videos with no media record.
func VideoUnassigned() VideoFilter { return VideoFilter{isNull("media_id")} }

// VideoOrder selects the ORDER BY of a video search.
type VideoOrder int

const (
	VideoOrderDefault VideoOrder = iota
	VideoOrderPath
	VideoOrderAddedDesc
	VideoOrderLastWatchDesc
	VideoOrderID
)

var videoOrders = map[VideoOrder]string{
	VideoOrderPath:          "path",
	VideoOrderAddedDesc:     "adding DESC",
	VideoOrderLastWatchDesc: "last_watch DESC",
	VideoOrderID:            "VideosView.id",
}

// VideoQuery is a video search.
type VideoQuery struct {
	Filters []VideoFilter
	Order   VideoOrder
	Page    Page
}

const videoSearchHead = `
SELECT
    VideosView.id, path, media_type, media_id, duration, codec, size, adding,
    subtitles, audios, m_id, m_title, release_date, t_id, t_title, season_number, episode_number,
    WatchTimes.last_watch AS last_watch
FROM VideosView
LEFT OUTER JOIN WatchTimes ON VideosView.id = WatchTimes.video_id AND WatchTimes.user_name = ?1`

func (vq VideoQuery) selectQuery(user string) (selectQuery, error) {
	order, err := orderExpr(videoOrders, vq.Order)
	if err != nil {
		return selectQuery{}, err
	}
	return selectQuery{
		head:    videoSearchHead,
		user:    &user,
		filters: rawFilters(vq.Filters),
		groupBy: "VideosView.id",
		orderBy: order,
		page:    vq.Page,
	}, nil
}

func scanVideoResult(rows *sql.Rows) (VideoResult, error) {
	var (
		v                   VideoResult
		mediaID             sql.NullInt64
		adding              string
		subtitles, audios   sql.NullString
		movieID, tvID       sql.NullInt64
		movieTitle, tvTitle sql.NullString
		releaseDate         sql.NullString
		season, episode     sql.NullInt64
		lastWatch           sql.NullString
	)
	err := rows.Scan(&v.ID, &v.Path, &v.MediaType, &mediaID, &v.Duration, &v.Codec, &v.Size, &adding,
		&subtitles, &audios, &movieID, &movieTitle, &releaseDate, &tvID, &tvTitle, &season, &episode, &lastWatch)
	if err != nil {
		return v, err
	}
	if mediaID.Valid {
		v.MediaID = &mediaID.Int64
	}
	v.Added = parseTime(adding)
	v.Subtitles = splitConcat(subtitles)
	v.Audios = splitConcat(audios)
	v.LastWatch = parseNullTime(lastWatch)
	switch {
	case movieID.Valid:
		v.Info.Movie = &MovieSummary{ID: movieID.Int64, Title: movieTitle.String, ReleaseDate: releaseDate.String}
	case tvID.Valid:
		v.Info.Episode = &EpisodeSummary{TvID: tvID.Int64, TvTitle: tvTitle.String, Season: int(season.Int64), Episode: int(episode.Int64)}
	}
	return v, nil
}

func searchVideos(ctx context.Context, q querier, user string, vq VideoQuery) ([]VideoResult, error) {
	sq, err := vq.selectQuery(user)
	if err != nil {
		return nil, err
	}
	return query(ctx, q, sq, scanVideoResult)
}

// SearchVideos lists videos matching every filter, in filter order.
func (s *Store) SearchVideos(ctx context.Context, user string, vq VideoQuery) ([]VideoResult, error) {
	var out []VideoResult
	err := s.read("video.search", func(q querier) error {
		var err error
		out, err = searchVideos(ctx, q, user, vq)
		return err
	})
	return out, err
}

// VideoExists reports whether any video matches the query.
func (s *Store) VideoExists(ctx context.Context, user string, vq VideoQuery) (bool, error) {
	var ok bool
	err := s.read("video.exists", func(q querier) error {
		sq, err := vq.selectQuery(user)
		if err != nil {
			return err
		}
		ok, err = exists(ctx, q, sq)
		return err
	})
	return ok, err
}

func addVideo(ctx context.Context, q querier, v *Video, now string) (int64, error) {
	path := NormalizePath(v.Path)
	var mediaID any
	if v.MediaID != nil {
		mediaID = *v.MediaID
	}
	// Re-adding a known path refreshes the probe data and keeps id, assignment and added time.
	_, err := q.ExecContext(ctx, `
		INSERT INTO Videos (path, media_type, media_id, duration, bit_rate, codec, width, height, size, adding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			duration = excluded.duration,
			bit_rate = excluded.bit_rate,
			codec = excluded.codec,
			width = excluded.width,
			height = excluded.height,
			size = excluded.size`,
		path, int(v.MediaType), mediaID, v.Duration, v.BitRate, v.Codec, v.Width, v.Height, v.Size, now,
	)
	if err != nil {
		return 0, wrapErr("video.add", err)
	}

	var id int64
	if err := q.QueryRowContext(ctx, `SELECT id FROM Videos WHERE path = ?`, path).Scan(&id); err != nil {
		return 0, wrapErr("video.add.id", err)
	}

	for _, lang := range v.Subtitles {
		if _, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO Subtitles (video_id, language) VALUES (?, ?)`, id, lang); err != nil {
			return 0, wrapErr("video.add.subtitles", err)
		}
	}
	for _, lang := range v.Audios {
		if _, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO Audios (video_id, language) VALUES (?, ?)`, id, lang); err != nil {
			return 0, wrapErr("video.add.audios", err)
		}
	}
	return id, nil
}

// AddVideo stores a probed video and returns its id. Adding an existing path updates it in place.
func (s *Store) AddVideo(ctx context.Context, v *Video) (int64, error) {
	var id int64
	err := s.withTx(ctx, "video.add", func(q querier) error {
		var err error
		id, err = addVideo(ctx, q, v, s.stamp())
		return err
	})
	return id, err
}

// AddVideo stores a probed video within a transaction.
func (t *Tx) AddVideo(ctx context.Context, v *Video) (int64, error) {
	return addVideo(ctx, t.q(), v, t.store.stamp())
}

func getVideo(ctx context.Context, q querier, user string, id int64) (*Video, error) {
	v := &Video{}
	var (
		mediaID           sql.NullInt64
		adding            string
		subtitles, audios sql.NullString
		watchTime         sql.NullInt64
		lastWatch         sql.NullString
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, path, media_type, media_id, duration, bit_rate, codec, width, height, size, adding,
			subtitles, audios, WatchTimes.watch_time, WatchTimes.last_watch
		FROM VideosView
		LEFT OUTER JOIN WatchTimes ON VideosView.id = WatchTimes.video_id AND WatchTimes.user_name = ?1
		WHERE id = ?2`, user, id,
	).Scan(&v.ID, &v.Path, &v.MediaType, &mediaID, &v.Duration, &v.BitRate, &v.Codec, &v.Width, &v.Height, &v.Size, &adding,
		&subtitles, &audios, &watchTime, &lastWatch)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("video.get %d", id), err)
	}
	if mediaID.Valid {
		v.MediaID = &mediaID.Int64
	}
	v.Added = parseTime(adding)
	v.Subtitles = splitConcat(subtitles)
	v.Audios = splitConcat(audios)
	v.WatchTime = watchTime.Int64
	v.LastWatch = parseNullTime(lastWatch)
	return v, nil
}

// GetVideo retrieves a video with the user's watch position.
// Returns ErrNotFound if the video does not exist.
func (s *Store) GetVideo(ctx context.Context, user string, id int64) (*Video, error) {
	var v *Video
	err := s.read("video.get", func(q querier) error {
		var err error
		v, err = getVideo(ctx, q, user, id)
		return err
	})
	return v, err
}

// GetVideo retrieves a video within a transaction.
func (t *Tx) GetVideo(ctx context.Context, user string, id int64) (*Video, error) {
	return getVideo(ctx, t.q(), user, id)
}

func execOne(ctx context.Context, q querier, location, stmt string, args ...any) error {
	res, err := q.ExecContext(ctx, stmt, args...)
	if err != nil {
		return wrapErr(location, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr(location, err)
	}
	if n == 0 {
		return notFound(location)
	}
	return nil
}

// SetVideoPath moves a video to a new path.
func (s *Store) SetVideoPath(ctx context.Context, id int64, path string) error {
	return s.withTx(ctx, "video.set_path", func(q querier) error {
		return execOne(ctx, q, "video.set_path", `UPDATE Videos SET path = ? WHERE id = ?`, NormalizePath(path), id)
	})
}

func assignVideo(ctx context.Context, q querier, id int64, mt MediaType, mediaID *int64) error {
	if mt < MediaMovie || mt > MediaUnassigned {
		return wrapErr("video.assign", ErrInvalidQuery)
	}
	var mid any
	if mediaID != nil {
		mid = *mediaID
	}
	return execOne(ctx, q, "video.assign", `UPDATE Videos SET media_type = ?, media_id = ? WHERE id = ?`, int(mt), mid, id)
}

// AssignVideo attaches a video to a movie or episode, or detaches it when mediaID is nil.
// It does not cascade; use ReassignVideo to clean up the previous record.
func (s *Store) AssignVideo(ctx context.Context, id int64, mt MediaType, mediaID *int64) error {
	return s.withTx(ctx, "video.assign", func(q querier) error {
		return assignVideo(ctx, q, id, mt, mediaID)
	})
}

// AssignVideo attaches a video within a transaction.
func (t *Tx) AssignVideo(ctx context.Context, id int64, mt MediaType, mediaID *int64) error {
	return assignVideo(ctx, t.q(), id, mt, mediaID)
}

func deleteVideo(ctx context.Context, q querier, id int64) (bool, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM Videos WHERE id = ?`, id)
	if err != nil {
		return false, wrapErr("video.delete", err)
	}
	for _, stmt := range []string{
		`DELETE FROM WatchTimes WHERE video_id = ?`,
		`DELETE FROM Audios WHERE video_id = ?`,
		`DELETE FROM Subtitles WHERE video_id = ?`,
	} {
		if _, err := q.ExecContext(ctx, stmt, id); err != nil {
			return false, wrapErr("video.delete.owned", err)
		}
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteVideo removes a video and its watch times and languages.
// The attached movie or episode is left alone; use RemoveVideo to cascade.
func (s *Store) DeleteVideo(ctx context.Context, id int64) error {
	return s.withTx(ctx, "video.delete", func(q querier) error {
		ok, err := deleteVideo(ctx, q, id)
		if err == nil && !ok {
			return notFound("video.delete")
		}
		return err
	})
}
