package library

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// filter is one allow-listed predicate. Column and operator text only ever
// come from the per-entity constructors; values are always bound.
type filter struct {
	column string
	op     string
	value  any
	unary  bool
}

func eq(column string, v any) filter {
	return filter{column: column, op: "=", value: v}
}

func like(column string, v string) filter {
	return filter{column: column, op: "LIKE", value: v}
}

func isNull(column string) filter {
	return filter{column: column, op: "IS NULL", unary: true}
}

func notNull(column string) filter {
	return filter{column: column, op: "IS NOT NULL", unary: true}
}

// rawFilter is implemented by every entity filter type.
type rawFilter interface {
	raw() filter
}

func rawFilters[F rawFilter](in []F) []filter {
	out := make([]filter, 0, len(in))
	for _, f := range in {
		out = append(out, f.raw())
	}
	return out
}

// Page limits a search. Limit 0 means no limit; Offset applies only with a Limit.
type Page struct {
	Limit  int
	Offset int
}

// selectQuery is a search head plus ordered predicates and trailing clauses.
type selectQuery struct {
	head    string
	user    *string
	filters []filter
	groupBy string
	orderBy string
	page    Page
}

// build renders the statement and its positional arguments.
// The user, when present, is bound first as ?1; predicates follow in caller order.
func (sq selectQuery) build() (string, []any) {
	var b strings.Builder
	var args []any

	b.WriteString(strings.TrimSpace(sq.head))
	if sq.user != nil {
		args = append(args, *sq.user)
	}

	if len(sq.filters) > 0 {
		b.WriteString("\nWHERE ")
		for i, f := range sq.filters {
			if i > 0 {
				b.WriteString(" AND ")
			}
			if f.unary {
				fmt.Fprintf(&b, "%s %s", f.column, f.op)
				continue
			}
			args = append(args, f.value)
			fmt.Fprintf(&b, "%s %s ?%d", f.column, f.op, len(args))
		}
	}

	if sq.groupBy != "" {
		fmt.Fprintf(&b, "\nGROUP BY %s", sq.groupBy)
	}
	if sq.orderBy != "" {
		fmt.Fprintf(&b, "\nORDER BY %s", sq.orderBy)
	}
	if sq.page.Limit > 0 {
		fmt.Fprintf(&b, "\nLIMIT %d", sq.page.Limit)
		if sq.page.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", sq.page.Offset)
		}
	}
	return b.String(), args
}

// query runs the built statement and scans every row with scan.
func query[T any](ctx context.Context, q querier, sq selectQuery, scan func(*sql.Rows) (T, error)) ([]T, error) {
	stmt, args := sq.build()
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// exists reports whether the built statement yields at least one row.
func exists(ctx context.Context, q querier, sq selectQuery) (bool, error) {
	stmt, args := sq.build()
	var ok bool
	if err := q.QueryRowContext(ctx, "SELECT EXISTS (\n"+stmt+"\n)", args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// orderExpr resolves an allow-listed ordering. The zero value means unordered.
func orderExpr[O comparable](orders map[O]string, o O) (string, error) {
	var zero O
	if o == zero {
		return "", nil
	}
	expr, ok := orders[o]
	if !ok {
		return "", fmt.Errorf("order %v: %w", o, ErrInvalidQuery)
	}
	return expr, nil
}

func splitConcat(v sql.NullString) []string {
	if !v.Valid || v.String == "" {
		return []string{}
	}
	return strings.Split(v.String, ",")
}
