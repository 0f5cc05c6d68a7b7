package library

import (
	"context"

	"github.com/vmunix/mediacat/internal/schema"
)

// ViewCount is the number of rows a catalog view currently yields.
type ViewCount struct {
	View string
	Rows int64
}

// ViewCounts counts the rows of every catalog view, in schema order.
func (s *Store) ViewCounts(ctx context.Context) ([]ViewCount, error) {
	names := schema.ViewNames()
	counts := make([]ViewCount, 0, len(names))
	err := s.read("stats.views", func(q querier) error {
		for _, name := range names {
			c := ViewCount{View: name}
			// View names come from the schema list, never from callers.
			if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+name).Scan(&c.Rows); err != nil {
				return wrapErr("stats.views "+name, err)
			}
			counts = append(counts, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
