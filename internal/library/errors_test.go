package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func TestErrors_AreDistinct(t *testing.T) {
	kinds := []error{ErrNotFound, ErrDuplicate, ErrConstraint, ErrNotConnected, ErrTxAborted, ErrInvalidQuery}
	for i, a := range kinds {
		for j, b := range kinds {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}

func TestErrors_CanBeWrapped(t *testing.T) {
	wrapped := fmt.Errorf("movie 123: %w", ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound), "wrapped error should match ErrNotFound")
}

func TestWrapErr_Classifies(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"unique", errors.New("constraint failed: UNIQUE constraint failed: Videos.path (2067)"), ErrDuplicate},
		{"primary key", errors.New("PRIMARY KEY constraint failed"), ErrDuplicate},
		{"not null", errors.New("NOT NULL constraint failed: Collections.name"), ErrConstraint},
		{"closed", errors.New("sql: database is closed"), ErrNotConnected},
		{"sentinel", ErrInvalidQuery, ErrInvalidQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapErr("video.add", tt.err)
			assert.ErrorIs(t, err, tt.kind)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, "video.add", e.Location)
		})
	}
}

func TestWrapErr_ClassifiesDriverCodes(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	err := s.read("test.insert", func(q querier) error {
		if _, err := q.ExecContext(ctx, `INSERT INTO Videos (path, adding) VALUES ('/a.mkv', '')`); err != nil {
			return err
		}
		_, err := q.ExecContext(ctx, `INSERT INTO Videos (path, adding) VALUES ('/a.mkv', '')`)
		return err
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	var se *sqlite.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, sqlite3.SQLITE_CONSTRAINT_UNIQUE, se.Code())

	err = s.read("test.insert", func(q querier) error {
		_, err := q.ExecContext(ctx, `INSERT INTO Collections (name) VALUES (NULL)`)
		return err
	})
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestWrapErr_Unclassified(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := wrapErr("movie.get", cause)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Nil(t, e.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "movie.get: disk I/O error", err.Error())
}

func TestWrapErr_KeepsInnermostLocation(t *testing.T) {
	inner := wrapErr("movie.upsert.casts", errors.New("UNIQUE constraint failed"))
	outer := wrapErr("movie.upsert", inner)

	var e *Error
	require.ErrorAs(t, outer, &e)
	assert.Equal(t, "movie.upsert.casts", e.Location)
	assert.Nil(t, wrapErr("x", nil))
}

func TestError_Message(t *testing.T) {
	err := &Error{Location: "collection.create", Kind: ErrDuplicate, Err: errors.New("UNIQUE constraint failed")}
	assert.Equal(t, "collection.create: duplicate entry: UNIQUE constraint failed", err.Error())
	assert.Equal(t, "video.get: not found", notFound("video.get").Error())
}
