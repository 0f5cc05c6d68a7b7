package library

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vmunix/mediacat/internal/tmdb"
)

// TvFilter is an allow-listed predicate for show searches.
type TvFilter struct{ f filter }

func (t TvFilter) raw() filter { return t.f }

// TvID matches a single show.
func TvID(id int64) TvFilter { return TvFilter{eq("Tvs.id", id)} }

// TvCast matches shows a person acted in at show level.
func TvCast(personID int64) TvFilter { return TvFilter{eq("TvCasts.person_id", personID)} }

// TvCrew matches shows a person created or has a kept crew job on.
func TvCrew(personID int64) TvFilter { return TvFilter{eq("TvCrews.person_id", personID)} }

// TvCollection matches the shows of a collection.
func TvCollection(collectionID int64) TvFilter {
	return TvFilter{eq("TvCollectionLinks.collection_id", collectionID)}
}

// TvGenre matches shows with a genre.
func TvGenre(genreID int64) TvFilter { return TvFilter{eq("TvGenreLinks.genre_id", genreID)} }

// TvOrder selects the ORDER BY of a show search.
type TvOrder int

const (
	TvOrderDefault TvOrder = iota
	TvOrderTitle
	TvOrderAddedDesc
	TvOrderReleaseDesc
	TvOrderRatingDesc
	TvOrderID
)

var tvOrders = map[TvOrder]string{
	TvOrderTitle:       "Tvs.title",
	TvOrderAddedDesc:   "adding DESC",
	TvOrderReleaseDesc: "Tvs.release_date DESC",
	TvOrderRatingDesc:  "Tvs.vote_average DESC",
	TvOrderID:          "Tvs.id",
}

// TvQuery is a show search. Only shows with at least one episode video are listed.
type TvQuery struct {
	Filters []TvFilter
	Order   TvOrder
	Page    Page
}

// tvWatched is the user's minimum watched count across a show's episodes.
const tvWatched = `(SELECT MIN(COALESCE(w.watched, 0)) FROM Episodes e
        LEFT OUTER JOIN EpisodesUserWatched w ON w.episode_id = e.id AND w.user_name = ?1
        WHERE e.tv_id = %s)`

var tvSearchHead = fmt.Sprintf(`
SELECT
    Tvs.id, Tvs.title, Tvs.release_date, Tvs.poster_path, Tvs.backdrop_path, Tvs.vote_average,
    (SELECT GROUP_CONCAT(g.name) FROM TvGenreLinks l INNER JOIN TvGenres g ON g.id = l.genre_id WHERE l.tv_id = Tvs.id) AS genres,
    MAX(Videos.adding) AS adding,
    COALESCE(%s, 0) AS watched
FROM Tvs
INNER JOIN Episodes ON Tvs.id = Episodes.tv_id
INNER JOIN Videos ON Videos.media_id = Episodes.id AND Videos.media_type = 1
LEFT OUTER JOIN TvGenreLinks ON Tvs.id = TvGenreLinks.tv_id
LEFT OUTER JOIN TvCasts ON Tvs.id = TvCasts.tv_id
LEFT OUTER JOIN TvCrews ON Tvs.id = TvCrews.tv_id
LEFT OUTER JOIN TvCollectionLinks ON Tvs.id = TvCollectionLinks.tv_id`, fmt.Sprintf(tvWatched, "Tvs.id"))

func searchTvs(ctx context.Context, q querier, user string, tq TvQuery) ([]TvResult, error) {
	order, err := orderExpr(tvOrders, tq.Order)
	if err != nil {
		return nil, err
	}
	sq := selectQuery{
		head:    tvSearchHead,
		user:    &user,
		filters: rawFilters(tq.Filters),
		groupBy: "Tvs.id",
		orderBy: order,
		page:    tq.Page,
	}
	return query(ctx, q, sq, func(rows *sql.Rows) (TvResult, error) {
		var (
			t      TvResult
			genres sql.NullString
			adding string
		)
		err := rows.Scan(&t.ID, &t.Title, &t.ReleaseDate, &t.PosterPath, &t.BackdropPath, &t.VoteAverage, &genres, &adding, &t.Watched)
		t.Genres = splitConcat(genres)
		t.Added = parseTime(adding)
		return t, err
	})
}

// SearchTvs lists shows matching every filter.
func (s *Store) SearchTvs(ctx context.Context, user string, tq TvQuery) ([]TvResult, error) {
	var out []TvResult
	err := s.read("tv.search", func(q querier) error {
		var err error
		out, err = searchTvs(ctx, q, user, tq)
		return err
	})
	return out, err
}

var tvGetHead = fmt.Sprintf(`
SELECT
    id, original_title, original_language, title, release_date, overview, popularity, poster_path, backdrop_path,
    status, vote_average, vote_count, in_production, number_of_episodes, number_of_seasons, episode_run_time,
    genres, adding, updated, COALESCE(%s, 0)
FROM TvsView`, fmt.Sprintf(tvWatched, "TvsView.id"))

func getTv(ctx context.Context, q querier, user string, id int64) (*Tv, error) {
	sq := selectQuery{head: tvGetHead, user: &user, filters: []filter{eq("TvsView.id", id)}}
	stmt, args := sq.build()
	t := &Tv{}
	var (
		genres          sql.NullString
		adding, updated string
	)
	err := q.QueryRowContext(ctx, stmt, args...).Scan(&t.ID, &t.OriginalTitle, &t.OriginalLanguage, &t.Title, &t.ReleaseDate,
		&t.Overview, &t.Popularity, &t.PosterPath, &t.BackdropPath, &t.Status, &t.VoteAverage, &t.VoteCount, &t.InProduction,
		&t.NumberOfEpisodes, &t.NumberOfSeasons, &t.EpisodeRunTime, &genres, &adding, &updated, &t.Watched)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("tv.get %d", id), err)
	}
	t.Genres = splitConcat(genres)
	t.Added = parseTime(adding)
	t.Updated = parseTime(updated)
	return t, nil
}

// GetTv retrieves a show with the user's aggregate watched count.
// Returns ErrNotFound if the show does not exist or has no episode videos.
func (s *Store) GetTv(ctx context.Context, user string, id int64) (*Tv, error) {
	var t *Tv
	err := s.read("tv.get", func(q querier) error {
		var err error
		t, err = getTv(ctx, q, user, id)
		return err
	})
	return t, err
}

// upsertSeason writes a season keyed by show and season number.
// A stored season keeps its id so its episodes stay attached when the provider renumbers it.
func upsertSeason(ctx context.Context, q querier, tvID int64, season tmdb.SeasonSummary, now string) error {
	location := fmt.Sprintf("tv.upsert.season %d/%d", tvID, season.SeasonNumber)
	res, err := q.ExecContext(ctx, `
		UPDATE Seasons
		SET episode_count = ?, title = ?, overview = ?, poster_path = ?, release_date = ?, updated = ?
		WHERE tv_id = ? AND season_number = ?`,
		season.EpisodeCount, season.Name, season.Overview, season.PosterPath, season.AirDate, now,
		tvID, season.SeasonNumber,
	)
	if err != nil {
		return wrapErr(location, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return wrapErr(location, err)
	} else if n > 0 {
		return nil
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO Seasons (
			id, tv_id, season_number, episode_count, title, overview, poster_path, release_date, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		season.ID, tvID, season.SeasonNumber, season.EpisodeCount, season.Name, season.Overview,
		season.PosterPath, season.AirDate, now,
	)
	return wrapErr(location, err)
}

func upsertTv(ctx context.Context, q querier, t *tmdb.Tv, now string) (*UpsertResult, error) {
	_, err := q.ExecContext(ctx, `
		INSERT OR REPLACE INTO Tvs (
			id, original_title, original_language, title, release_date, overview, popularity, poster_path, backdrop_path,
			status, vote_average, vote_count, in_production, number_of_episodes, number_of_seasons, episode_run_time, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OriginalName, t.OriginalLanguage, t.Name, t.FirstAirDate, t.Overview, t.Popularity, t.PosterPath, t.BackdropPath,
		t.Status, t.VoteAverage, t.VoteCount, t.InProduction, t.NumberOfEpisodes, t.NumberOfSeasons, t.RunTime(), now,
	)
	if err != nil {
		return nil, wrapErr("tv.upsert", err)
	}

	r := &UpsertResult{}
	for _, season := range t.Seasons {
		if err := upsertSeason(ctx, q, t.ID, season, now); err != nil {
			return nil, err
		}
		r.addAsset(season.PosterPath)
	}
	r.addAsset(t.BackdropPath)
	r.addAsset(t.PosterPath)

	if err := tvOwner.insertGenres(ctx, q, t.ID, t.Genres); err != nil {
		return nil, err
	}
	if err := tvOwner.insertCasts(ctx, q, t.ID, t.Credits.Cast, r); err != nil {
		return nil, err
	}
	if err := tvOwner.insertCrews(ctx, q, t.ID, t.Credits.Crew, r); err != nil {
		return nil, err
	}
	for _, c := range t.CreatedBy {
		_, err := q.ExecContext(ctx, `INSERT OR REPLACE INTO TvCrews (tv_id, person_id, job) VALUES (?, ?, ?)`, t.ID, c.ID, CreatorJob)
		if err != nil {
			return nil, wrapErr("tv.upsert.creators", err)
		}
		r.addPerson(c.ID)
	}
	if err := tvOwner.insertTrailers(ctx, q, t.ID, t.Videos.Results); err != nil {
		return nil, err
	}
	if err := tvOwner.insertKeywords(ctx, q, t.ID, t.Keywords.All()); err != nil {
		return nil, err
	}
	return r, nil
}

// UpsertTv stores a provider show with its seasons, genres, credits, creators, trailers and keywords.
func (s *Store) UpsertTv(ctx context.Context, t *tmdb.Tv) (*UpsertResult, error) {
	var r *UpsertResult
	err := s.withTx(ctx, "tv.upsert", func(q querier) error {
		var err error
		r, err = upsertTv(ctx, q, t, s.stamp())
		return err
	})
	return r, err
}

// UpsertTv stores a provider show within a transaction.
func (t *Tx) UpsertTv(ctx context.Context, tv *tmdb.Tv) (*UpsertResult, error) {
	return upsertTv(ctx, t.q(), tv, t.store.stamp())
}

// TvExists reports whether the show row is stored, with or without videos.
func (s *Store) TvExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := s.read("tv.exists", func(q querier) error {
		var err error
		ok, err = rowExists(ctx, q, "tv.exists", `SELECT 1 FROM Tvs WHERE id = ?`, id)
		return err
	})
	return ok, err
}

// TvCast lists a show's regular cast in billing order.
func (s *Store) TvCast(ctx context.Context, id int64) ([]Cast, error) {
	return readChild(ctx, s, "tv.cast", tvOwner.cast, id)
}

// TvCrew lists a show's crew, creators included.
func (s *Store) TvCrew(ctx context.Context, id int64) ([]Crew, error) {
	return readChild(ctx, s, "tv.crew", tvOwner.crew, id)
}

// TvTrailers lists a show's trailers.
func (s *Store) TvTrailers(ctx context.Context, id int64) ([]Trailer, error) {
	return readChild(ctx, s, "tv.trailers", tvOwner.trailerList, id)
}

// TvKeywords lists a show's keywords.
func (s *Store) TvKeywords(ctx context.Context, id int64) ([]Keyword, error) {
	return readChild(ctx, s, "tv.keywords", tvOwner.keywordList, id)
}

// TvGenres lists every stored show genre.
func (s *Store) TvGenres(ctx context.Context) ([]Genre, error) {
	var out []Genre
	err := s.read("tv.genres", func(q querier) error {
		var err error
		out, err = tvOwner.genreList(ctx, q)
		return err
	})
	return out, err
}

var seasonHead = `
SELECT
    id, tv_id, season_number, episode_count, title, overview, poster_path, release_date, adding, updated,
    COALESCE((SELECT MIN(COALESCE(w.watched, 0)) FROM Episodes e
        LEFT OUTER JOIN EpisodesUserWatched w ON w.episode_id = e.id AND w.user_name = ?1
        WHERE e.season_id = SeasonsView.id), 0)
FROM SeasonsView`

func listSeasons(ctx context.Context, q querier, user string, filters []filter) ([]Season, error) {
	sq := selectQuery{head: seasonHead, user: &user, filters: filters, orderBy: "SeasonsView.season_number"}
	return query(ctx, q, sq, func(rows *sql.Rows) (Season, error) {
		var (
			s               Season
			adding, updated string
		)
		err := rows.Scan(&s.ID, &s.TvID, &s.SeasonNumber, &s.EpisodeCount, &s.Title, &s.Overview, &s.PosterPath,
			&s.ReleaseDate, &adding, &updated, &s.Watched)
		s.Added = parseTime(adding)
		s.Updated = parseTime(updated)
		return s, err
	})
}

// Seasons lists a show's seasons that have episode videos, by season number.
func (s *Store) Seasons(ctx context.Context, user string, tvID int64) ([]Season, error) {
	var out []Season
	err := s.read("season.list", func(q querier) error {
		var err error
		out, err = listSeasons(ctx, q, user, []filter{eq("SeasonsView.tv_id", tvID)})
		return err
	})
	return out, err
}

// GetSeason retrieves one season of a show.
func (s *Store) GetSeason(ctx context.Context, user string, tvID int64, number int) (*Season, error) {
	var out *Season
	err := s.read("season.get", func(q querier) error {
		list, err := listSeasons(ctx, q, user, []filter{eq("SeasonsView.tv_id", tvID), eq("SeasonsView.season_number", number)})
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return notFound(fmt.Sprintf("season.get %d/%d", tvID, number))
		}
		out = &list[0]
		return nil
	})
	return out, err
}

func deleteTv(ctx context.Context, q querier, id int64) (bool, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM Tvs WHERE id = ?`, id)
	if err != nil {
		return false, wrapErr("tv.delete", err)
	}
	for _, table := range []string{
		"TvGenreLinks", "TvCollectionLinks", "TvKeywordLinks", "TvTrailers", "TvCasts", "TvCrews", "Seasons",
	} {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE tv_id = ?", id); err != nil {
			return false, wrapErr("tv.delete."+table, err)
		}
	}

	// Episodes cannot outlive their show.
	episodes, err := collect(ctx, q, "tv.delete.episodes", `SELECT id FROM Episodes WHERE tv_id = ?`,
		func(rows *sql.Rows) (int64, error) {
			var eid int64
			return eid, rows.Scan(&eid)
		}, id)
	if err != nil {
		return false, err
	}
	for _, eid := range episodes {
		if _, err := deleteEpisode(ctx, q, eid); err != nil {
			return false, err
		}
	}

	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteTv removes a show with its seasons, episodes and the rows they own.
// Videos and people are left alone.
func (s *Store) DeleteTv(ctx context.Context, id int64) error {
	return s.withTx(ctx, "tv.delete", func(q querier) error {
		ok, err := deleteTv(ctx, q, id)
		if err == nil && !ok {
			return notFound("tv.delete")
		}
		return err
	})
}
