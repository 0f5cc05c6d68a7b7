package schema

import (
	"context"
	"database/sql"
	"fmt"
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// viewNames is the order views are rebuilt in.
var viewNames = []string{
	"VideosView",
	"MoviesView",
	"MovieCastsView",
	"MovieCrewsView",
	"TvsView",
	"SeasonsView",
	"EpisodesView",
	"TvCastsView",
	"TvCrewsView",
	"EpisodeCastsView",
	"EpisodeCrewsView",
}

// ViewNames returns the names of all catalog views in rebuild order.
func ViewNames() []string {
	out := make([]string, len(viewNames))
	copy(out, viewNames)
	return out
}

// ViewSQL returns the SELECT body of the named view.
func ViewSQL(name string) (string, error) {
	b, err := viewFS.ReadFile("sql/views/" + name + ".sql")
	if err != nil {
		return "", fmt.Errorf("view %s: %w", name, err)
	}
	return string(b), nil
}

// Apply creates missing tables and rebuilds every view.
// Tables are created only if absent, so existing rows survive.
// Views are dropped and recreated so definition changes take effect on the next connect.
func Apply(ctx context.Context, db Execer) error {
	if _, err := db.ExecContext(ctx, TablesSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	for _, name := range viewNames {
		body, err := ViewSQL(name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, "DROP VIEW IF EXISTS "+name); err != nil {
			return fmt.Errorf("drop view %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, "CREATE VIEW "+name+" AS\n"+body); err != nil {
			return fmt.Errorf("create view %s: %w", name, err)
		}
	}
	return nil
}
