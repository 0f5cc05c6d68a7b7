package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/vmunix/mediacat/internal/assets"
	"github.com/vmunix/mediacat/internal/config"
	"github.com/vmunix/mediacat/internal/library"
	"github.com/vmunix/mediacat/internal/scrape"
	"github.com/vmunix/mediacat/internal/tmdb"
)

// app holds what every command shares: flags, config and lazily opened services.
type app struct {
	configPath string
	user       string
	jsonOutput bool

	cfg     *config.Config
	log     *slog.Logger
	logFile io.Closer
	store   *library.Store
}

// skipSetup marks commands that run without loading config.
const skipSetup = "skip-setup"

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "mediacat",
		Short: "Catalog local videos with movie and show metadata",
		Long: `mediacat - a local media catalog

Tracks video files, the movies and episodes they contain, the people
credited on them and per-user watch state, in a single SQLite file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipSetup] == "true" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: discovered)")
	root.PersistentFlags().StringVar(&a.user, "user", "", "User whose watch state is shown (default: user.default)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output as JSON")

	root.Version = version
	root.SetVersionTemplate("mediacat {{.Version}}\n")

	root.AddCommand(
		a.initCmd(),
		a.configCmd(),
		a.doctorCmd(),
		a.videoCmd(),
		a.movieCmd(),
		a.tvCmd(),
		a.personCmd(),
		a.collectionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	path, err := a.configFile()
	if err != nil {
		return err
	}

	if path == "" {
		a.cfg = config.Default()
	} else {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.user == "" {
		a.user = a.cfg.User.Default
	}

	log, closer, err := newLogger(a.cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.log, a.logFile = log, closer
	a.log.Debug("config loaded", "path", path, "user", a.user)
	return nil
}

// configFile returns --config or the discovered config file.
// An empty path with a nil error means no file exists and defaults apply.
func (a *app) configFile() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	path, err := config.Discover()
	if errors.Is(err, config.ErrNoConfig) {
		return "", nil
	}
	return path, err
}

func (a *app) close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
		a.logFile = nil
	}
	return errors.Join(errs...)
}

// openStore opens the catalog database, creating its directory if needed.
func (a *app) openStore(cmd *cobra.Command) (*library.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if dir := filepath.Dir(a.cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	s, err := library.Open(cmd.Context(), a.cfg.Database.Path, library.WithLogger(a.log))
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	a.store = s
	return s, nil
}

// scraper builds the metadata service; it needs a provider API key.
func (a *app) scraper(cmd *cobra.Command) (*scrape.Service, error) {
	store, err := a.openStore(cmd)
	if err != nil {
		return nil, err
	}
	if a.cfg.TMDB.APIKey == "" {
		return nil, errors.New("tmdb.api_key is not set")
	}
	provider := tmdb.NewClient(a.cfg.TMDB.APIKey,
		tmdb.WithLanguage(a.cfg.TMDB.Language),
		tmdb.WithCacheTTL(a.cfg.TMDB.CacheTTL.Duration),
	)
	images := assets.NewStore(afero.NewOsFs(), a.cfg.Assets.Root,
		assets.NewHTTPFetcher(a.cfg.Assets.ImageBaseURL),
		assets.WithConcurrency(a.cfg.Assets.Concurrency),
		assets.WithLogger(a.log),
	)
	return scrape.New(store, provider, images, a.log), nil
}
