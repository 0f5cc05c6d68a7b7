// Package scrape fills the catalog from a metadata provider: it stores the
// records a video points at, the people they credit and their images.
package scrape

//go:generate mockgen -destination=mocks/mock_scrape.go -package=mocks github.com/vmunix/mediacat/internal/scrape Provider,AssetSink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmunix/mediacat/internal/library"
	"github.com/vmunix/mediacat/internal/tmdb"
)

// ErrMediaType is returned when a video is assigned to media of another kind.
var ErrMediaType = errors.New("video media type mismatch")

// Provider fetches metadata records by provider id.
type Provider interface {
	GetMovie(ctx context.Context, id int64) (*tmdb.Movie, error)
	GetTv(ctx context.Context, id int64) (*tmdb.Tv, error)
	GetEpisode(ctx context.Context, tvID int64, season, episode int) (*tmdb.Episode, error)
	GetPerson(ctx context.Context, id int64) (*tmdb.Person, error)
}

// AssetSink stores provider images by relative path.
type AssetSink interface {
	Sync(ctx context.Context, paths []string) (int, error)
}

// Service creates catalog records on demand.
type Service struct {
	store    *library.Store
	provider Provider
	assets   AssetSink
	log      *slog.Logger
}

// New creates a Service. assets may be nil to skip image downloads.
func New(store *library.Store, provider Provider, assets AssetSink, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:    store,
		provider: provider,
		assets:   assets,
		log:      log.With("component", "scrape"),
	}
}

// EnsureMovie stores movie id with its people and images unless it is already present.
func (s *Service) EnsureMovie(ctx context.Context, id int64) error {
	ok, err := s.store.MovieExists(ctx, id)
	if err != nil || ok {
		return err
	}
	m, err := s.provider.GetMovie(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch movie %d: %w", id, err)
	}
	r, err := s.store.UpsertMovie(ctx, m)
	if err != nil {
		return err
	}
	s.log.Info("movie added", "id", id, "title", m.Title)
	return s.finish(ctx, r)
}

// EnsureTv stores show id with its seasons, people and images unless it is already present.
func (s *Service) EnsureTv(ctx context.Context, id int64) error {
	ok, err := s.store.TvExists(ctx, id)
	if err != nil || ok {
		return err
	}
	return s.refreshTv(ctx, id)
}

func (s *Service) refreshTv(ctx context.Context, id int64) error {
	t, err := s.provider.GetTv(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch tv %d: %w", id, err)
	}
	r, err := s.store.UpsertTv(ctx, t)
	if err != nil {
		return err
	}
	s.log.Info("tv added", "id", id, "title", t.Name, "seasons", len(t.Seasons))
	return s.finish(ctx, r)
}

// EnsureEpisode stores an episode, and its show first, returning the episode id.
// A season missing from a stored show triggers one refresh of the show.
func (s *Service) EnsureEpisode(ctx context.Context, tvID int64, season, episode int) (int64, error) {
	if err := s.EnsureTv(ctx, tvID); err != nil {
		return 0, err
	}
	id, err := s.store.EpisodeID(ctx, tvID, season, episode)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, library.ErrNotFound) {
		return 0, err
	}

	e, err := s.provider.GetEpisode(ctx, tvID, season, episode)
	if err != nil {
		return 0, fmt.Errorf("fetch episode %d/%d/%d: %w", tvID, season, episode, err)
	}
	r, err := s.store.UpsertEpisode(ctx, tvID, e)
	if errors.Is(err, library.ErrNotFound) {
		s.log.Debug("season not stored, refreshing show", "tv", tvID, "season", season)
		if err := s.refreshTv(ctx, tvID); err != nil {
			return 0, err
		}
		r, err = s.store.UpsertEpisode(ctx, tvID, e)
	}
	if err != nil {
		return 0, err
	}
	s.log.Info("episode added", "tv", tvID, "season", season, "episode", episode, "id", e.ID)
	if err := s.finish(ctx, r); err != nil {
		return 0, err
	}
	return e.ID, nil
}

// EnsurePerson stores person id unless it is already present.
func (s *Service) EnsurePerson(ctx context.Context, id int64) error {
	ok, err := s.store.PersonExists(ctx, id)
	if err != nil || ok {
		return err
	}
	p, err := s.provider.GetPerson(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch person %d: %w", id, err)
	}
	r, err := s.store.UpsertPerson(ctx, p)
	if err != nil {
		return err
	}
	s.syncAssets(ctx, r.Assets)
	return nil
}

// finish stores the people an upsert credited and downloads its images.
// People the provider no longer knows are skipped.
func (s *Service) finish(ctx context.Context, r *library.UpsertResult) error {
	for _, id := range r.PersonIDs {
		err := s.EnsurePerson(ctx, id)
		if errors.Is(err, tmdb.ErrNotFound) {
			s.log.Warn("person not found", "id", id)
			continue
		}
		if err != nil {
			return err
		}
	}
	s.syncAssets(ctx, r.Assets)
	return nil
}

// syncAssets logs download failures; the catalog row stays valid without its image.
func (s *Service) syncAssets(ctx context.Context, paths []string) {
	if s.assets == nil || len(paths) == 0 {
		return
	}
	n, err := s.assets.Sync(ctx, paths)
	if err != nil {
		s.log.Warn("asset download failed", "paths", len(paths), "error", err)
		return
	}
	if n > 0 {
		s.log.Debug("assets downloaded", "count", n)
	}
}

func (s *Service) checkKind(ctx context.Context, videoID int64, want library.MediaType) error {
	v, err := s.store.GetVideo(ctx, "", videoID)
	if err != nil {
		return err
	}
	if v.MediaType != want && v.MediaType != library.MediaUnassigned {
		return fmt.Errorf("video %d is %s, not %s: %w", videoID, v.MediaType, want, ErrMediaType)
	}
	return nil
}

// AssignMovie attaches a video to movie id, creating the movie if needed, and
// removes whatever the video leaves orphaned.
func (s *Service) AssignMovie(ctx context.Context, videoID, movieID int64) (*library.CascadeReport, error) {
	if err := s.checkKind(ctx, videoID, library.MediaMovie); err != nil {
		return nil, err
	}
	if err := s.EnsureMovie(ctx, movieID); err != nil {
		return nil, err
	}
	return s.store.ReassignVideo(ctx, videoID, library.MediaMovie, &movieID)
}

// AssignEpisode attaches a video to an episode, creating the show and episode if needed.
func (s *Service) AssignEpisode(ctx context.Context, videoID, tvID int64, season, episode int) (*library.CascadeReport, error) {
	if err := s.checkKind(ctx, videoID, library.MediaEpisode); err != nil {
		return nil, err
	}
	id, err := s.EnsureEpisode(ctx, tvID, season, episode)
	if err != nil {
		return nil, err
	}
	return s.store.ReassignVideo(ctx, videoID, library.MediaEpisode, &id)
}
