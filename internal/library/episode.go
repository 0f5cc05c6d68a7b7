package library

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vmunix/mediacat/internal/tmdb"
)

// EpisodeFilter is an allow-listed predicate for episode searches.
type EpisodeFilter struct{ f filter }

func (e EpisodeFilter) raw() filter { return e.f }

// EpisodeID matches a single episode.
func EpisodeID(id int64) EpisodeFilter { return EpisodeFilter{eq("Episodes.id", id)} }

// EpisodeTv matches the episodes of a show.
func EpisodeTv(tvID int64) EpisodeFilter { return EpisodeFilter{eq("Episodes.tv_id", tvID)} }

// EpisodeSeason matches episodes by season number. Combine with EpisodeTv.
func EpisodeSeason(number int) EpisodeFilter { return EpisodeFilter{eq("Episodes.season_number", number)} }

// EpisodeNumber matches episodes by number within their season.
func EpisodeNumber(number int) EpisodeFilter { return EpisodeFilter{eq("Episodes.episode_number", number)} }

// EpisodeCast matches episodes a person acted in.
func EpisodeCast(personID int64) EpisodeFilter {
	return EpisodeFilter{eq("EpisodeCasts.person_id", personID)}
}

// EpisodeCrew matches episodes a person has a kept crew job on.
func EpisodeCrew(personID int64) EpisodeFilter {
	return EpisodeFilter{eq("EpisodeCrews.person_id", personID)}
}

// EpisodeOrder selects the ORDER BY of an episode search.
type EpisodeOrder int

const (
	EpisodeOrderDefault EpisodeOrder = iota
	EpisodeOrderNumber
	EpisodeOrderAddedDesc
	EpisodeOrderReleaseDesc
)

var episodeOrders = map[EpisodeOrder]string{
	EpisodeOrderNumber:      "Episodes.tv_id, Episodes.season_number, Episodes.episode_number",
	EpisodeOrderAddedDesc:   "MAX(Videos.adding) DESC",
	EpisodeOrderReleaseDesc: "Episodes.release_date DESC",
}

// EpisodeQuery is an episode search. Only episodes with a video are listed.
type EpisodeQuery struct {
	Filters []EpisodeFilter
	Order   EpisodeOrder
	Page    Page
}

const episodeSearchHead = `
SELECT
    Episodes.id, Episodes.season_id, Episodes.tv_id, Episodes.season_number, Episodes.episode_number,
    Episodes.release_date, Episodes.title, Episodes.overview, Episodes.still_path, Episodes.vote_average,
    Episodes.vote_count, Episodes.updated, COALESCE(EpisodesUserWatched.watched, 0),
    COALESCE(Tvs.title, ''), COALESCE(Tvs.poster_path, '')
FROM Episodes
INNER JOIN Videos ON Videos.media_id = Episodes.id AND Videos.media_type = 1
LEFT OUTER JOIN Tvs ON Episodes.tv_id = Tvs.id
LEFT OUTER JOIN EpisodeCasts ON Episodes.id = EpisodeCasts.episode_id
LEFT OUTER JOIN EpisodeCrews ON Episodes.id = EpisodeCrews.episode_id
LEFT OUTER JOIN EpisodesUserWatched ON Episodes.id = EpisodesUserWatched.episode_id AND EpisodesUserWatched.user_name = ?1`

func searchEpisodes(ctx context.Context, q querier, user string, eq EpisodeQuery) ([]Episode, error) {
	order, err := orderExpr(episodeOrders, eq.Order)
	if err != nil {
		return nil, err
	}
	sq := selectQuery{
		head:    episodeSearchHead,
		user:    &user,
		filters: rawFilters(eq.Filters),
		groupBy: "Episodes.id",
		orderBy: order,
		page:    eq.Page,
	}
	return query(ctx, q, sq, func(rows *sql.Rows) (Episode, error) {
		var (
			e       Episode
			updated string
		)
		err := rows.Scan(&e.ID, &e.SeasonID, &e.TvID, &e.SeasonNumber, &e.EpisodeNumber, &e.ReleaseDate, &e.Title,
			&e.Overview, &e.StillPath, &e.VoteAverage, &e.VoteCount, &updated, &e.Watched, &e.TvTitle, &e.TvPosterPath)
		e.Updated = parseTime(updated)
		return e, err
	})
}

// SearchEpisodes lists episodes matching every filter.
func (s *Store) SearchEpisodes(ctx context.Context, user string, eq EpisodeQuery) ([]Episode, error) {
	var out []Episode
	err := s.read("episode.search", func(q querier) error {
		var err error
		out, err = searchEpisodes(ctx, q, user, eq)
		return err
	})
	return out, err
}

func firstEpisode(ctx context.Context, q querier, user, location string, filters ...EpisodeFilter) (*Episode, error) {
	list, err := searchEpisodes(ctx, q, user, EpisodeQuery{Filters: filters, Page: Page{Limit: 1}})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, notFound(location)
	}
	return &list[0], nil
}

// GetEpisode retrieves an episode with the user's watched count.
// Returns ErrNotFound if the episode does not exist or has no video.
func (s *Store) GetEpisode(ctx context.Context, user string, id int64) (*Episode, error) {
	var e *Episode
	err := s.read("episode.get", func(q querier) error {
		var err error
		e, err = firstEpisode(ctx, q, user, fmt.Sprintf("episode.get %d", id), EpisodeID(id))
		return err
	})
	return e, err
}

// FindEpisode retrieves an episode by show, season and episode number.
func (s *Store) FindEpisode(ctx context.Context, user string, tvID int64, season, episode int) (*Episode, error) {
	var e *Episode
	err := s.read("episode.find", func(q querier) error {
		var err error
		e, err = firstEpisode(ctx, q, user, fmt.Sprintf("episode.find %d s%02de%02d", tvID, season, episode),
			EpisodeTv(tvID), EpisodeSeason(season), EpisodeNumber(episode))
		return err
	})
	return e, err
}

func episodeID(ctx context.Context, q querier, tvID int64, season, episode int) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		SELECT id FROM Episodes WHERE tv_id = ? AND season_number = ? AND episode_number = ?`,
		tvID, season, episode,
	).Scan(&id)
	if err != nil {
		return 0, wrapErr(fmt.Sprintf("episode.id %d s%02de%02d", tvID, season, episode), err)
	}
	return id, nil
}

// EpisodeID looks up a stored episode id, with or without a video.
// Returns ErrNotFound if the episode is not stored.
func (s *Store) EpisodeID(ctx context.Context, tvID int64, season, episode int) (int64, error) {
	var id int64
	err := s.read("episode.id", func(q querier) error {
		var err error
		id, err = episodeID(ctx, q, tvID, season, episode)
		return err
	})
	return id, err
}

func upsertEpisode(ctx context.Context, q querier, tvID int64, e *tmdb.Episode, now string) (*UpsertResult, error) {
	var seasonID int64
	err := q.QueryRowContext(ctx, `SELECT id FROM Seasons WHERE tv_id = ? AND season_number = ?`, tvID, e.SeasonNumber).Scan(&seasonID)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("episode.upsert.season %d/%d", tvID, e.SeasonNumber), err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT OR REPLACE INTO Episodes (
			id, season_id, tv_id, season_number, episode_number, release_date, title, overview,
			still_path, vote_average, vote_count, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, seasonID, tvID, e.SeasonNumber, e.EpisodeNumber, e.AirDate, e.Name, e.Overview,
		e.StillPath, e.VoteAverage, e.VoteCount, now,
	)
	if err != nil {
		return nil, wrapErr("episode.upsert", err)
	}

	r := &UpsertResult{}
	r.addAsset(e.StillPath)
	if err := episodeOwner.insertCasts(ctx, q, e.ID, e.Credits.Cast, r); err != nil {
		return nil, err
	}
	if err := episodeOwner.insertCrews(ctx, q, e.ID, e.Credits.Crew, r); err != nil {
		return nil, err
	}
	return r, nil
}

// UpsertEpisode stores a provider episode under its show's season.
// The season must already be stored by UpsertTv; otherwise ErrNotFound.
func (s *Store) UpsertEpisode(ctx context.Context, tvID int64, e *tmdb.Episode) (*UpsertResult, error) {
	var r *UpsertResult
	err := s.withTx(ctx, "episode.upsert", func(q querier) error {
		var err error
		r, err = upsertEpisode(ctx, q, tvID, e, s.stamp())
		return err
	})
	return r, err
}

// UpsertEpisode stores a provider episode within a transaction.
func (t *Tx) UpsertEpisode(ctx context.Context, tvID int64, e *tmdb.Episode) (*UpsertResult, error) {
	return upsertEpisode(ctx, t.q(), tvID, e, t.store.stamp())
}

// EpisodeCast lists an episode's guest cast in billing order.
func (s *Store) EpisodeCast(ctx context.Context, id int64) ([]Cast, error) {
	return readChild(ctx, s, "episode.cast", episodeOwner.cast, id)
}

// EpisodeCrew lists an episode's crew.
func (s *Store) EpisodeCrew(ctx context.Context, id int64) ([]Crew, error) {
	return readChild(ctx, s, "episode.crew", episodeOwner.crew, id)
}

func deleteEpisode(ctx context.Context, q querier, id int64) (bool, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM Episodes WHERE id = ?`, id)
	if err != nil {
		return false, wrapErr("episode.delete", err)
	}
	for _, table := range []string{"EpisodeCasts", "EpisodeCrews", "EpisodesUserWatched"} {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE episode_id = ?", id); err != nil {
			return false, wrapErr("episode.delete."+table, err)
		}
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteEpisode removes an episode and the rows it owns. Its show and videos are left alone.
func (s *Store) DeleteEpisode(ctx context.Context, id int64) error {
	return s.withTx(ctx, "episode.delete", func(q querier) error {
		ok, err := deleteEpisode(ctx, q, id)
		if err == nil && !ok {
			return notFound("episode.delete")
		}
		return err
	})
}
