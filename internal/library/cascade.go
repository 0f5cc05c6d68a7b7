package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

type targetKind int

const (
	videoTarget targetKind = iota
	movieTarget
	episodeTarget
	tvTarget
	personTarget
)

func (k targetKind) String() string {
	return [...]string{"video", "movie", "episode", "tv", "person"}[k]
}

type target struct {
	kind targetKind
	id   int64
}

// CascadeReport lists the ids deleted by a cascade, by kind.
type CascadeReport struct {
	Videos   []int64
	Movies   []int64
	Episodes []int64
	Tvs      []int64
	Persons  []int64
}

// Empty reports whether nothing was deleted.
func (r *CascadeReport) Empty() bool {
	return len(r.Videos)+len(r.Movies)+len(r.Episodes)+len(r.Tvs)+len(r.Persons) == 0
}

func (r *CascadeReport) add(t target) {
	switch t.kind {
	case videoTarget:
		r.Videos = append(r.Videos, t.id)
	case movieTarget:
		r.Movies = append(r.Movies, t.id)
	case episodeTarget:
		r.Episodes = append(r.Episodes, t.id)
	case tvTarget:
		r.Tvs = append(r.Tvs, t.id)
	case personTarget:
		r.Persons = append(r.Persons, t.id)
	}
}

// cascader walks the dependency graph breadth-first from the start targets.
// A dependent is deleted only once nothing references it any more.
type cascader struct {
	q      querier
	log    *slog.Logger
	queue  []target
	seen   map[target]bool
	report *CascadeReport
}

func cascade(ctx context.Context, q querier, log *slog.Logger, start ...target) (*CascadeReport, error) {
	c := &cascader{q: q, log: log, seen: make(map[target]bool), report: &CascadeReport{}}
	for _, t := range start {
		c.push(t)
	}
	for len(c.queue) > 0 {
		t := c.queue[0]
		c.queue = c.queue[1:]
		if err := c.visit(ctx, t); err != nil {
			return nil, err
		}
	}
	return c.report, nil
}

func (c *cascader) push(t target) {
	if c.seen[t] {
		return
	}
	c.seen[t] = true
	c.queue = append(c.queue, t)
}

func (c *cascader) pushPersons(ids []int64) {
	for _, id := range ids {
		c.push(target{personTarget, id})
	}
}

func (c *cascader) deleted(ctx context.Context, t target) {
	c.report.add(t)
	c.log.InfoContext(ctx, "cascade delete", "kind", t.kind.String(), "id", t.id)
}

func (c *cascader) visit(ctx context.Context, t target) error {
	switch t.kind {
	case videoTarget:
		return c.video(ctx, t)
	case movieTarget:
		return c.movie(ctx, t)
	case episodeTarget:
		return c.episode(ctx, t)
	case tvTarget:
		return c.tv(ctx, t)
	case personTarget:
		return c.person(ctx, t)
	}
	return fmt.Errorf("cascade: unknown target %d: %w", t.kind, ErrInvalidQuery)
}

func (c *cascader) video(ctx context.Context, t target) error {
	var (
		mt      MediaType
		mediaID sql.NullInt64
	)
	err := c.q.QueryRowContext(ctx, `SELECT media_type, media_id FROM Videos WHERE id = ?`, t.id).Scan(&mt, &mediaID)
	if err != nil {
		return wrapErr(fmt.Sprintf("cascade.video %d", t.id), err)
	}
	if _, err := deleteVideo(ctx, c.q, t.id); err != nil {
		return err
	}
	c.deleted(ctx, t)

	if mediaID.Valid {
		for _, m := range mediaTarget(mt, mediaID.Int64) {
			c.push(m)
		}
	}
	return nil
}

func (c *cascader) referenced(ctx context.Context, mt MediaType, id int64) (bool, error) {
	return rowExists(ctx, c.q, fmt.Sprintf("cascade.referenced %s %d", mt, id),
		`SELECT 1 FROM Videos WHERE media_type = ? AND media_id = ?`, int(mt), id)
}

func (c *cascader) movie(ctx context.Context, t target) error {
	if ok, err := c.referenced(ctx, MediaMovie, t.id); err != nil || ok {
		return err
	}
	persons, err := movieOwner.creditedPersons(ctx, c.q, t.id)
	if err != nil {
		return err
	}
	ok, err := deleteMovie(ctx, c.q, t.id)
	if err != nil {
		return err
	}
	if ok {
		c.deleted(ctx, t)
	}
	c.pushPersons(persons)
	return nil
}

func (c *cascader) episode(ctx context.Context, t target) error {
	if ok, err := c.referenced(ctx, MediaEpisode, t.id); err != nil || ok {
		return err
	}
	var tvID int64
	err := c.q.QueryRowContext(ctx, `SELECT tv_id FROM Episodes WHERE id = ?`, t.id).Scan(&tvID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return wrapErr(fmt.Sprintf("cascade.episode %d", t.id), err)
	}
	persons, err := episodeOwner.creditedPersons(ctx, c.q, t.id)
	if err != nil {
		return err
	}
	if _, err := deleteEpisode(ctx, c.q, t.id); err != nil {
		return err
	}
	c.deleted(ctx, t)
	c.pushPersons(persons)
	c.push(target{tvTarget, tvID})
	return nil
}

func (c *cascader) tv(ctx context.Context, t target) error {
	watchable, err := rowExists(ctx, c.q, fmt.Sprintf("cascade.tv %d", t.id), `
		SELECT 1 FROM Episodes
		INNER JOIN Videos ON Videos.media_id = Episodes.id AND Videos.media_type = 1
		WHERE Episodes.tv_id = ?`, t.id)
	if err != nil || watchable {
		return err
	}

	persons, err := tvOwner.creditedPersons(ctx, c.q, t.id)
	if err != nil {
		return err
	}
	episodes, err := collect(ctx, c.q, fmt.Sprintf("cascade.tv.episodes %d", t.id), `SELECT id FROM Episodes WHERE tv_id = ?`,
		func(rows *sql.Rows) (int64, error) {
			var id int64
			return id, rows.Scan(&id)
		}, t.id)
	if err != nil {
		return err
	}
	for _, eid := range episodes {
		ep, err := episodeOwner.creditedPersons(ctx, c.q, eid)
		if err != nil {
			return err
		}
		persons = append(persons, ep...)
	}

	ok, err := deleteTv(ctx, c.q, t.id)
	if err != nil {
		return err
	}
	for _, eid := range episodes {
		c.report.add(target{episodeTarget, eid})
	}
	if ok {
		c.deleted(ctx, t)
	}
	c.pushPersons(persons)
	return nil
}

func (c *cascader) person(ctx context.Context, t target) error {
	if ok, err := personCredited(ctx, c.q, t.id); err != nil || ok {
		return err
	}
	ok, err := deletePerson(ctx, c.q, t.id)
	if err != nil {
		return err
	}
	if ok {
		c.deleted(ctx, t)
	}
	return nil
}

// runCascade runs a cascade in its own transaction.
func (s *Store) runCascade(ctx context.Context, location string, start func(q querier) ([]target, error)) (*CascadeReport, error) {
	var report *CascadeReport
	err := s.withTx(ctx, location, func(q querier) error {
		targets, err := start(q)
		if err != nil {
			return err
		}
		report, err = cascade(ctx, q, s.log, targets...)
		return err
	})
	return report, err
}

func videoStart(ctx context.Context, q querier, id int64) ([]target, error) {
	location := fmt.Sprintf("cascade.video %d", id)
	ok, err := rowExists(ctx, q, location, `SELECT 1 FROM Videos WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(location)
	}
	return []target{{videoTarget, id}}, nil
}

// mediaStart lists every video attached to a movie or episode, then the media itself.
func mediaStart(ctx context.Context, q querier, mt MediaType, kind targetKind, base string, id int64) ([]target, error) {
	location := fmt.Sprintf("cascade.%s %d", kind, id)
	ok, err := rowExists(ctx, q, location, "SELECT 1 FROM "+base+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(location)
	}
	videos, err := collect(ctx, q, location, `SELECT id FROM Videos WHERE media_type = ? AND media_id = ? ORDER BY id`,
		func(rows *sql.Rows) (int64, error) {
			var vid int64
			return vid, rows.Scan(&vid)
		}, int(mt), id)
	if err != nil {
		return nil, err
	}
	targets := make([]target, 0, len(videos)+1)
	for _, vid := range videos {
		targets = append(targets, target{videoTarget, vid})
	}
	return append(targets, target{kind, id}), nil
}

func tvStart(ctx context.Context, q querier, id int64) ([]target, error) {
	location := fmt.Sprintf("cascade.tv %d", id)
	ok, err := rowExists(ctx, q, location, `SELECT 1 FROM Tvs WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(location)
	}
	videos, err := collect(ctx, q, location, `
		SELECT Videos.id FROM Videos
		INNER JOIN Episodes ON Videos.media_id = Episodes.id AND Videos.media_type = 1
		WHERE Episodes.tv_id = ? ORDER BY Videos.id`,
		func(rows *sql.Rows) (int64, error) {
			var vid int64
			return vid, rows.Scan(&vid)
		}, id)
	if err != nil {
		return nil, err
	}
	targets := make([]target, 0, len(videos)+1)
	for _, vid := range videos {
		targets = append(targets, target{videoTarget, vid})
	}
	return append(targets, target{tvTarget, id}), nil
}

// RemoveVideo deletes a video, then its movie or episode if no other video
// references it, then any show and people left without references.
func (s *Store) RemoveVideo(ctx context.Context, id int64) (*CascadeReport, error) {
	return s.runCascade(ctx, "cascade.video", func(q querier) ([]target, error) {
		return videoStart(ctx, q, id)
	})
}

// RemoveVideo cascades within a transaction.
func (t *Tx) RemoveVideo(ctx context.Context, id int64) (*CascadeReport, error) {
	q := t.q()
	start, err := videoStart(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return cascade(ctx, q, t.store.log, start...)
}

// RemoveMovie deletes a movie with all its videos, then people left without credits.
func (s *Store) RemoveMovie(ctx context.Context, id int64) (*CascadeReport, error) {
	return s.runCascade(ctx, "cascade.movie", func(q querier) ([]target, error) {
		return mediaStart(ctx, q, MediaMovie, movieTarget, "Movies", id)
	})
}

// RemoveEpisode deletes an episode with all its videos, then its show if no
// episode with a video remains, then people left without credits.
func (s *Store) RemoveEpisode(ctx context.Context, id int64) (*CascadeReport, error) {
	return s.runCascade(ctx, "cascade.episode", func(q querier) ([]target, error) {
		return mediaStart(ctx, q, MediaEpisode, episodeTarget, "Episodes", id)
	})
}

// RemoveTv deletes a show with every episode video, then people left without credits.
func (s *Store) RemoveTv(ctx context.Context, id int64) (*CascadeReport, error) {
	return s.runCascade(ctx, "cascade.tv", func(q querier) ([]target, error) {
		return tvStart(ctx, q, id)
	})
}

// ReassignVideo attaches a video to other media, then cascades from the media it left.
func (s *Store) ReassignVideo(ctx context.Context, id int64, mt MediaType, mediaID *int64) (*CascadeReport, error) {
	return s.runCascade(ctx, "cascade.reassign", func(q querier) ([]target, error) {
		var (
			old   MediaType
			oldID sql.NullInt64
			start []target
		)
		err := q.QueryRowContext(ctx, `SELECT media_type, media_id FROM Videos WHERE id = ?`, id).Scan(&old, &oldID)
		if err != nil {
			return nil, wrapErr(fmt.Sprintf("cascade.reassign %d", id), err)
		}
		if err := assignVideo(ctx, q, id, mt, mediaID); err != nil {
			return nil, err
		}
		if oldID.Valid && (old != mt || mediaID == nil || *mediaID != oldID.Int64) {
			start = mediaTarget(old, oldID.Int64)
		}
		return start, nil
	})
}

func mediaTarget(mt MediaType, id int64) []target {
	switch mt {
	case MediaMovie:
		return []target{{movieTarget, id}}
	case MediaEpisode:
		return []target{{episodeTarget, id}}
	}
	return nil
}
