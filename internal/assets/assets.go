// Package assets downloads provider images referenced by the catalog and
// stores them under a local root.
package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Fetcher retrieves one asset by its provider-relative path, e.g. "/abc.jpg".
type Fetcher interface {
	Fetch(ctx context.Context, relPath string) (io.ReadCloser, error)
}

// HTTPFetcher fetches assets from an image CDN base URL.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPFetcher creates a fetcher for baseURL with a bounded request timeout.
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, relPath string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/"+strings.TrimLeft(relPath, "/"), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", relPath, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", relPath, resp.Status)
	}
	return resp.Body, nil
}

// Store writes fetched assets to <root>/original/<path>.
type Store struct {
	fs          afero.Fs
	root        string
	fetcher     Fetcher
	concurrency int
	log         *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithConcurrency bounds the number of downloads in flight.
func WithConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// NewStore creates an asset store on fs rooted at root.
func NewStore(fs afero.Fs, root string, fetcher Fetcher, opts ...Option) *Store {
	s := &Store{
		fs:          fs,
		root:        root,
		fetcher:     fetcher,
		concurrency: defaultConcurrency,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns where relPath is stored. Traversal outside the root is cleaned away.
func (s *Store) Path(relPath string) string {
	return filepath.Join(s.root, "original", filepath.FromSlash(path.Clean("/"+relPath)))
}

// Has reports whether relPath is already stored.
func (s *Store) Has(relPath string) (bool, error) {
	return afero.Exists(s.fs, s.Path(relPath))
}

// Sync downloads every path not yet stored and returns how many were written.
// Empty and duplicate paths are skipped. The first failure cancels the rest.
func (s *Store) Sync(ctx context.Context, paths []string) (int, error) {
	var todo []string
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		ok, err := s.Has(p)
		if err != nil {
			return 0, fmt.Errorf("stat %s: %w", p, err)
		}
		if !ok {
			todo = append(todo, p)
		}
	}
	if len(todo) == 0 {
		return 0, nil
	}

	var written atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, p := range todo {
		g.Go(func() error {
			if err := s.fetch(ctx, p); err != nil {
				return err
			}
			written.Add(1)
			return nil
		})
	}
	err := g.Wait()
	s.log.Debug("assets synced", "requested", len(paths), "written", written.Load())
	return int(written.Load()), err
}

func (s *Store) fetch(ctx context.Context, relPath string) error {
	body, err := s.fetcher.Fetch(ctx, relPath)
	if err != nil {
		return err
	}
	defer body.Close()

	dst := s.Path(relPath)
	// Write beside the target and rename so a cancelled download never looks complete.
	tmp := dst + ".part"
	if err := afero.WriteReader(s.fs, tmp, body); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("write %s: %w", relPath, err)
	}
	if err := s.fs.Rename(tmp, dst); err != nil {
		return fmt.Errorf("rename %s: %w", relPath, err)
	}
	return nil
}
