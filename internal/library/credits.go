package library

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vmunix/mediacat/internal/tmdb"
)

// owner names the per-entity tables that hold credits, trailers, keywords and genres.
// Table and column names here are fixed at compile time.
type owner struct {
	name         string // location prefix
	column       string // owner id column
	casts        string
	crews        string
	castsView    string
	crewsView    string
	trailers     string
	keywordLinks string
	genres       string
	genreLinks   string
}

var (
	movieOwner = owner{
		name: "movie", column: "movie_id",
		casts: "MovieCasts", crews: "MovieCrews", castsView: "MovieCastsView", crewsView: "MovieCrewsView",
		trailers: "MovieTrailers", keywordLinks: "MovieKeywordLinks", genres: "MovieGenres", genreLinks: "MovieGenreLinks",
	}
	tvOwner = owner{
		name: "tv", column: "tv_id",
		casts: "TvCasts", crews: "TvCrews", castsView: "TvCastsView", crewsView: "TvCrewsView",
		trailers: "TvTrailers", keywordLinks: "TvKeywordLinks", genres: "TvGenres", genreLinks: "TvGenreLinks",
	}
	episodeOwner = owner{
		name: "episode", column: "episode_id",
		casts: "EpisodeCasts", crews: "EpisodeCrews", castsView: "EpisodeCastsView", crewsView: "EpisodeCrewsView",
	}
)

func (o owner) insertGenres(ctx context.Context, q querier, id int64, genres []tmdb.Genre) error {
	for _, g := range genres {
		if _, err := q.ExecContext(ctx, fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, name) VALUES (?, ?)`, o.genres), g.ID, g.Name); err != nil {
			return wrapErr(o.name+".upsert.genres", err)
		}
		if _, err := q.ExecContext(ctx, fmt.Sprintf(`INSERT OR IGNORE INTO %s (%s, genre_id) VALUES (?, ?)`, o.genreLinks, o.column), id, g.ID); err != nil {
			return wrapErr(o.name+".upsert.genre_links", err)
		}
	}
	return nil
}

func (o owner) insertCasts(ctx context.Context, q querier, id int64, cast []tmdb.CastCredit, r *UpsertResult) error {
	stmt := fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s, person_id, character, ord) VALUES (?, ?, ?, ?)`, o.casts, o.column)
	for _, c := range cast {
		if _, err := q.ExecContext(ctx, stmt, id, c.ID, c.Character, c.Order); err != nil {
			return wrapErr(o.name+".upsert.casts", err)
		}
		r.addPerson(c.ID)
	}
	return nil
}

// insertCrews keeps only allow-listed jobs.
func (o owner) insertCrews(ctx context.Context, q querier, id int64, crew []tmdb.CrewCredit, r *UpsertResult) error {
	stmt := fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s, person_id, job) VALUES (?, ?, ?)`, o.crews, o.column)
	for _, c := range crew {
		if !crewJobs[c.Job] {
			continue
		}
		if _, err := q.ExecContext(ctx, stmt, id, c.ID, c.Job); err != nil {
			return wrapErr(o.name+".upsert.crews", err)
		}
		r.addPerson(c.ID)
	}
	return nil
}

// insertTrailers keeps only YouTube videos.
func (o owner) insertTrailers(ctx context.Context, q querier, id int64, videos []tmdb.Video) error {
	stmt := fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s, name, youtube_id) VALUES (?, ?, ?)`, o.trailers, o.column)
	for _, v := range videos {
		if v.Site != trailerSite {
			continue
		}
		if _, err := q.ExecContext(ctx, stmt, id, v.Name, v.Key); err != nil {
			return wrapErr(o.name+".upsert.trailers", err)
		}
	}
	return nil
}

func (o owner) insertKeywords(ctx context.Context, q querier, id int64, keywords []tmdb.Keyword) error {
	for _, k := range keywords {
		if _, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO Keywords (id, name) VALUES (?, ?)`, k.ID, k.Name); err != nil {
			return wrapErr(o.name+".upsert.keywords", err)
		}
		if _, err := q.ExecContext(ctx, fmt.Sprintf(`INSERT OR IGNORE INTO %s (%s, keyword_id) VALUES (?, ?)`, o.keywordLinks, o.column), id, k.ID); err != nil {
			return wrapErr(o.name+".upsert.keyword_links", err)
		}
	}
	return nil
}

// creditedPersons lists the distinct people credited on one owner row.
func (o owner) creditedPersons(ctx context.Context, q querier, id int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf(`
		SELECT person_id FROM %s WHERE %s = ?1
		UNION
		SELECT person_id FROM %s WHERE %s = ?1`, o.casts, o.column, o.crews, o.column), id)
	if err != nil {
		return nil, wrapErr(o.name+".credits", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var pid int64
		if err := rows.Scan(&pid); err != nil {
			return nil, wrapErr(o.name+".credits", err)
		}
		ids = append(ids, pid)
	}
	return ids, wrapErr(o.name+".credits", rows.Err())
}

func collect[T any](ctx context.Context, q querier, location, stmt string, scan func(*sql.Rows) (T, error), args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, wrapErr(location, err)
	}
	defer func() { _ = rows.Close() }()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, wrapErr(location, err)
		}
		out = append(out, v)
	}
	return out, wrapErr(location, rows.Err())
}

func (o owner) cast(ctx context.Context, q querier, id int64) ([]Cast, error) {
	return collect(ctx, q, o.name+".cast", fmt.Sprintf(`
		SELECT id, COALESCE(name, ''), character, ord, COALESCE(profile_path, '')
		FROM %s WHERE %s = ? ORDER BY ord, id`, o.castsView, o.column),
		func(rows *sql.Rows) (Cast, error) {
			var c Cast
			err := rows.Scan(&c.PersonID, &c.Name, &c.Character, &c.Order, &c.ProfilePath)
			return c, err
		}, id)
}

func (o owner) crew(ctx context.Context, q querier, id int64) ([]Crew, error) {
	return collect(ctx, q, o.name+".crew", fmt.Sprintf(`
		SELECT id, COALESCE(name, ''), job, COALESCE(profile_path, '')
		FROM %s WHERE %s = ? ORDER BY job, id`, o.crewsView, o.column),
		func(rows *sql.Rows) (Crew, error) {
			var c Crew
			err := rows.Scan(&c.PersonID, &c.Name, &c.Job, &c.ProfilePath)
			return c, err
		}, id)
}

func (o owner) trailerList(ctx context.Context, q querier, id int64) ([]Trailer, error) {
	return collect(ctx, q, o.name+".trailers", fmt.Sprintf(`
		SELECT name, youtube_id FROM %s WHERE %s = ? ORDER BY name, youtube_id`, o.trailers, o.column),
		func(rows *sql.Rows) (Trailer, error) {
			var t Trailer
			err := rows.Scan(&t.Name, &t.YouTubeID)
			return t, err
		}, id)
}

func (o owner) keywordList(ctx context.Context, q querier, id int64) ([]Keyword, error) {
	return collect(ctx, q, o.name+".keywords", fmt.Sprintf(`
		SELECT Keywords.id, Keywords.name FROM %s
		INNER JOIN Keywords ON %s.keyword_id = Keywords.id
		WHERE %s = ? ORDER BY Keywords.name`, o.keywordLinks, o.keywordLinks, o.column),
		func(rows *sql.Rows) (Keyword, error) {
			var k Keyword
			err := rows.Scan(&k.ID, &k.Name)
			return k, err
		}, id)
}

func (o owner) genreList(ctx context.Context, q querier) ([]Genre, error) {
	return collect(ctx, q, o.name+".genres", fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name`, o.genres),
		func(rows *sql.Rows) (Genre, error) {
			var g Genre
			err := rows.Scan(&g.ID, &g.Name)
			return g, err
		})
}

// readChild is the Store wrapper shared by the per-owner child listings.
func readChild[T any](ctx context.Context, s *Store, location string, fn func(context.Context, querier, int64) ([]T, error), id int64) ([]T, error) {
	var out []T
	err := s.read(location, func(q querier) error {
		var err error
		out, err = fn(ctx, q, id)
		return err
	})
	return out, err
}
