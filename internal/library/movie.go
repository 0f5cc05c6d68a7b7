package library

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vmunix/mediacat/internal/tmdb"
)

// MovieFilter is an allow-listed predicate for movie searches.
type MovieFilter struct{ f filter }

func (m MovieFilter) raw() filter { return m.f }

// MovieID matches a single movie.
func MovieID(id int64) MovieFilter { return MovieFilter{eq("Movies.id", id)} }

// MovieCast matches movies a person acted in.
func MovieCast(personID int64) MovieFilter { return MovieFilter{eq("MovieCasts.person_id", personID)} }

// MovieCrew matches movies a person has a kept crew job on.
func MovieCrew(personID int64) MovieFilter { return MovieFilter{eq("MovieCrews.person_id", personID)} }

// MovieCollection matches the movies of a collection.
func MovieCollection(collectionID int64) MovieFilter {
	return MovieFilter{eq("MovieCollectionLinks.collection_id", collectionID)}
}

// MovieGenre matches movies with a genre.
func MovieGenre(genreID int64) MovieFilter { return MovieFilter{eq("MovieGenreLinks.genre_id", genreID)} }

// MovieOrder selects the ORDER BY of a movie search.
type MovieOrder int

const (
	MovieOrderDefault MovieOrder = iota
	MovieOrderTitle
	MovieOrderAddedDesc
	MovieOrderReleaseDesc
	MovieOrderRatingDesc
	MovieOrderID
)

var movieOrders = map[MovieOrder]string{
	MovieOrderTitle:       "Movies.title",
	MovieOrderAddedDesc:   "adding DESC",
	MovieOrderReleaseDesc: "Movies.release_date DESC",
	MovieOrderRatingDesc:  "Movies.vote_average DESC",
	MovieOrderID:          "Movies.id",
}

// MovieQuery is a movie search. Only movies with at least one video are listed.
type MovieQuery struct {
	Filters []MovieFilter
	Order   MovieOrder
	Page    Page
}

// Genres are computed in a subquery so a genre filter does not narrow the listed genres.
const movieSearchHead = `
SELECT
    Movies.id, Movies.title, Movies.release_date, Movies.poster_path, Movies.backdrop_path, Movies.vote_average,
    (SELECT GROUP_CONCAT(g.name) FROM MovieGenreLinks l INNER JOIN MovieGenres g ON g.id = l.genre_id WHERE l.movie_id = Movies.id) AS genres,
    MAX(Videos.adding) AS adding,
    COALESCE(MovieUserWatched.watched, 0) AS watched
FROM Movies
INNER JOIN Videos ON Movies.id = Videos.media_id AND Videos.media_type = 0
LEFT OUTER JOIN MovieGenreLinks ON Movies.id = MovieGenreLinks.movie_id
LEFT OUTER JOIN MovieCasts ON Movies.id = MovieCasts.movie_id
LEFT OUTER JOIN MovieCrews ON Movies.id = MovieCrews.movie_id
LEFT OUTER JOIN MovieCollectionLinks ON Movies.id = MovieCollectionLinks.movie_id
LEFT OUTER JOIN MovieUserWatched ON Movies.id = MovieUserWatched.movie_id AND MovieUserWatched.user_name = ?1`

func searchMovies(ctx context.Context, q querier, user string, mq MovieQuery) ([]MovieResult, error) {
	order, err := orderExpr(movieOrders, mq.Order)
	if err != nil {
		return nil, err
	}
	sq := selectQuery{
		head:    movieSearchHead,
		user:    &user,
		filters: rawFilters(mq.Filters),
		groupBy: "Movies.id",
		orderBy: order,
		page:    mq.Page,
	}
	return query(ctx, q, sq, func(rows *sql.Rows) (MovieResult, error) {
		var (
			m      MovieResult
			genres sql.NullString
			adding string
		)
		err := rows.Scan(&m.ID, &m.Title, &m.ReleaseDate, &m.PosterPath, &m.BackdropPath, &m.VoteAverage, &genres, &adding, &m.Watched)
		m.Genres = splitConcat(genres)
		m.Added = parseTime(adding)
		return m, err
	})
}

// SearchMovies lists movies matching every filter.
func (s *Store) SearchMovies(ctx context.Context, user string, mq MovieQuery) ([]MovieResult, error) {
	var out []MovieResult
	err := s.read("movie.search", func(q querier) error {
		var err error
		out, err = searchMovies(ctx, q, user, mq)
		return err
	})
	return out, err
}

const movieGetHead = `
SELECT
    MoviesView.id, original_title, original_language, title, release_date, overview, popularity,
    poster_path, backdrop_path, vote_average, vote_count, tagline, status, adult, genres, adding, updated,
    COALESCE(MovieUserWatched.watched, 0)
FROM MoviesView
LEFT OUTER JOIN MovieUserWatched ON MoviesView.id = MovieUserWatched.movie_id AND MovieUserWatched.user_name = ?1`

func getMovie(ctx context.Context, q querier, user string, id int64) (*Movie, error) {
	sq := selectQuery{
		head:    movieGetHead,
		user:    &user,
		filters: []filter{eq("MoviesView.id", id)},
	}
	stmt, args := sq.build()
	m := &Movie{}
	var (
		genres          sql.NullString
		adding, updated string
	)
	err := q.QueryRowContext(ctx, stmt, args...).Scan(&m.ID, &m.OriginalTitle, &m.OriginalLanguage, &m.Title, &m.ReleaseDate,
		&m.Overview, &m.Popularity, &m.PosterPath, &m.BackdropPath, &m.VoteAverage, &m.VoteCount, &m.Tagline, &m.Status,
		&m.Adult, &genres, &adding, &updated, &m.Watched)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("movie.get %d", id), err)
	}
	m.Genres = splitConcat(genres)
	m.Added = parseTime(adding)
	m.Updated = parseTime(updated)
	return m, nil
}

// GetMovie retrieves a movie with the user's watched count.
// Returns ErrNotFound if the movie does not exist or has no videos.
func (s *Store) GetMovie(ctx context.Context, user string, id int64) (*Movie, error) {
	var m *Movie
	err := s.read("movie.get", func(q querier) error {
		var err error
		m, err = getMovie(ctx, q, user, id)
		return err
	})
	return m, err
}

func upsertMovie(ctx context.Context, q querier, m *tmdb.Movie, now string) (*UpsertResult, error) {
	_, err := q.ExecContext(ctx, `
		INSERT OR REPLACE INTO Movies (
			id, original_title, original_language, title, release_date, overview, popularity,
			poster_path, backdrop_path, vote_average, vote_count, tagline, status, adult, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.OriginalTitle, m.OriginalLanguage, m.Title, m.ReleaseDate, m.Overview, m.Popularity,
		m.PosterPath, m.BackdropPath, m.VoteAverage, m.VoteCount, m.Tagline, m.Status, m.Adult, now,
	)
	if err != nil {
		return nil, wrapErr("movie.upsert", err)
	}

	r := &UpsertResult{}
	r.addAsset(m.BackdropPath)
	r.addAsset(m.PosterPath)

	if err := movieOwner.insertGenres(ctx, q, m.ID, m.Genres); err != nil {
		return nil, err
	}
	if err := movieOwner.insertCasts(ctx, q, m.ID, m.Credits.Cast, r); err != nil {
		return nil, err
	}
	if err := movieOwner.insertCrews(ctx, q, m.ID, m.Credits.Crew, r); err != nil {
		return nil, err
	}
	if err := movieOwner.insertTrailers(ctx, q, m.ID, m.Videos.Results); err != nil {
		return nil, err
	}
	if err := movieOwner.insertKeywords(ctx, q, m.ID, m.Keywords.All()); err != nil {
		return nil, err
	}
	return r, nil
}

// UpsertMovie stores a provider movie with its genres, credits, trailers and keywords.
// It returns the credited people and the asset paths the caller should fetch.
func (s *Store) UpsertMovie(ctx context.Context, m *tmdb.Movie) (*UpsertResult, error) {
	var r *UpsertResult
	err := s.withTx(ctx, "movie.upsert", func(q querier) error {
		var err error
		r, err = upsertMovie(ctx, q, m, s.stamp())
		return err
	})
	return r, err
}

// UpsertMovie stores a provider movie within a transaction.
func (t *Tx) UpsertMovie(ctx context.Context, m *tmdb.Movie) (*UpsertResult, error) {
	return upsertMovie(ctx, t.q(), m, t.store.stamp())
}

func rowExists(ctx context.Context, q querier, location, stmt string, args ...any) (bool, error) {
	var ok bool
	if err := q.QueryRowContext(ctx, "SELECT EXISTS ("+stmt+")", args...).Scan(&ok); err != nil {
		return false, wrapErr(location, err)
	}
	return ok, nil
}

// MovieExists reports whether the movie row is stored, with or without videos.
func (s *Store) MovieExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := s.read("movie.exists", func(q querier) error {
		var err error
		ok, err = rowExists(ctx, q, "movie.exists", `SELECT 1 FROM Movies WHERE id = ?`, id)
		return err
	})
	return ok, err
}

// MovieCast lists a movie's cast in billing order.
func (s *Store) MovieCast(ctx context.Context, id int64) ([]Cast, error) {
	return readChild(ctx, s, "movie.cast", movieOwner.cast, id)
}

// MovieCrew lists a movie's crew.
func (s *Store) MovieCrew(ctx context.Context, id int64) ([]Crew, error) {
	return readChild(ctx, s, "movie.crew", movieOwner.crew, id)
}

// MovieTrailers lists a movie's trailers.
func (s *Store) MovieTrailers(ctx context.Context, id int64) ([]Trailer, error) {
	return readChild(ctx, s, "movie.trailers", movieOwner.trailerList, id)
}

// MovieKeywords lists a movie's keywords.
func (s *Store) MovieKeywords(ctx context.Context, id int64) ([]Keyword, error) {
	return readChild(ctx, s, "movie.keywords", movieOwner.keywordList, id)
}

// MovieGenres lists every stored movie genre.
func (s *Store) MovieGenres(ctx context.Context) ([]Genre, error) {
	var out []Genre
	err := s.read("movie.genres", func(q querier) error {
		var err error
		out, err = movieOwner.genreList(ctx, q)
		return err
	})
	return out, err
}

func deleteMovie(ctx context.Context, q querier, id int64) (bool, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM Movies WHERE id = ?`, id)
	if err != nil {
		return false, wrapErr("movie.delete", err)
	}
	for _, table := range []string{
		"MovieGenreLinks", "MovieCollectionLinks", "MovieKeywordLinks",
		"MovieTrailers", "MovieCasts", "MovieCrews", "MovieUserWatched",
	} {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE movie_id = ?", id); err != nil {
			return false, wrapErr("movie.delete."+table, err)
		}
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteMovie removes a movie and the rows it owns. Videos and people are left alone.
func (s *Store) DeleteMovie(ctx context.Context, id int64) error {
	return s.withTx(ctx, "movie.delete", func(q querier) error {
		ok, err := deleteMovie(ctx, q, id)
		if err == nil && !ok {
			return notFound("movie.delete")
		}
		return err
	})
}
