package library

import (
	"context"
	"database/sql"
	"fmt"
)

// CollectionFilter is an allow-listed predicate for collection searches.
type CollectionFilter struct{ f filter }

func (c CollectionFilter) raw() filter { return c.f }

// CollectionID matches a single collection.
func CollectionID(id int64) CollectionFilter { return CollectionFilter{eq("Collections.id", id)} }

// CollectionCreator matches collections created by a user.
func CollectionCreator(user string) CollectionFilter {
	return CollectionFilter{eq("Collections.creator", user)}
}

// CollectionMovie matches collections containing a movie.
func CollectionMovie(movieID int64) CollectionFilter {
	return CollectionFilter{eq("MovieCollectionLinks.movie_id", movieID)}
}

// CollectionTv matches collections containing a show.
func CollectionTv(tvID int64) CollectionFilter {
	return CollectionFilter{eq("TvCollectionLinks.tv_id", tvID)}
}

// CollectionOrder selects the ORDER BY of a collection search.
type CollectionOrder int

const (
	CollectionOrderDefault CollectionOrder = iota
	CollectionOrderName
	CollectionOrderCreatedDesc
)

var collectionOrders = map[CollectionOrder]string{
	CollectionOrderName:        "Collections.name",
	CollectionOrderCreatedDesc: "Collections.creation_date DESC",
}

// CollectionQuery is a collection search.
type CollectionQuery struct {
	Filters []CollectionFilter
	Order   CollectionOrder
	Page    Page
}

const collectionSearchHead = `
SELECT
    Collections.id, Collections.name, Collections.description, Collections.creator,
    Collections.creation_date, Collections.poster_path
FROM Collections
LEFT OUTER JOIN MovieCollectionLinks ON Collections.id = MovieCollectionLinks.collection_id
LEFT OUTER JOIN TvCollectionLinks ON Collections.id = TvCollectionLinks.collection_id`

func scanCollection(scan func(...any) error) (Collection, error) {
	var (
		c       Collection
		created string
	)
	err := scan(&c.ID, &c.Name, &c.Description, &c.Creator, &created, &c.PosterPath)
	c.Created = parseTime(created)
	return c, err
}

func searchCollections(ctx context.Context, q querier, cq CollectionQuery) ([]Collection, error) {
	order, err := orderExpr(collectionOrders, cq.Order)
	if err != nil {
		return nil, err
	}
	sq := selectQuery{
		head:    collectionSearchHead,
		filters: rawFilters(cq.Filters),
		groupBy: "Collections.id",
		orderBy: order,
		page:    cq.Page,
	}
	return query(ctx, q, sq, func(rows *sql.Rows) (Collection, error) {
		return scanCollection(rows.Scan)
	})
}

// SearchCollections lists collections matching every filter.
func (s *Store) SearchCollections(ctx context.Context, cq CollectionQuery) ([]Collection, error) {
	var out []Collection
	err := s.read("collection.search", func(q querier) error {
		var err error
		out, err = searchCollections(ctx, q, cq)
		return err
	})
	return out, err
}

func getCollection(ctx context.Context, q querier, id int64) (*Collection, error) {
	c, err := scanCollection(q.QueryRowContext(ctx, `
		SELECT id, name, description, creator, creation_date, poster_path
		FROM Collections WHERE id = ?`, id).Scan)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("collection.get %d", id), err)
	}
	return &c, nil
}

// GetCollection returns a collection by id, or ErrNotFound.
func (s *Store) GetCollection(ctx context.Context, id int64) (*Collection, error) {
	var c *Collection
	err := s.read("collection.get", func(q querier) error {
		var err error
		c, err = getCollection(ctx, q, id)
		return err
	})
	return c, err
}

// CreateCollection creates an empty collection owned by user.
// Returns ErrDuplicate if the user already has a collection with that name.
func (s *Store) CreateCollection(ctx context.Context, user, name string) (*Collection, error) {
	var c *Collection
	err := s.withTx(ctx, "collection.create", func(q querier) error {
		res, err := q.ExecContext(ctx, `
			INSERT INTO Collections (name, description, creator, creation_date, poster_path)
			VALUES (?, '', ?, ?, '')`, name, user, s.stamp())
		if err != nil {
			return wrapErr(fmt.Sprintf("collection.create %q", name), err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		c, err = getCollection(ctx, q, id)
		return err
	})
	return c, err
}

// member describes one kind of collection member.
type member struct {
	name  string
	links string
	owner string // link column
	table string // base table, for existence and the poster
}

var (
	movieMember = member{name: "movie", links: "MovieCollectionLinks", owner: "movie_id", table: "Movies"}
	tvMember    = member{name: "tv", links: "TvCollectionLinks", owner: "tv_id", table: "Tvs"}
)

// add links a member and, if the collection has no poster yet, copies the member's poster.
// Adding a member twice is a no-op.
func (m member) add(ctx context.Context, q querier, collectionID, id int64) error {
	location := fmt.Sprintf("collection.add_%s %d/%d", m.name, collectionID, id)
	if ok, err := rowExists(ctx, q, location, `SELECT 1 FROM Collections WHERE id = ?`, collectionID); err != nil {
		return err
	} else if !ok {
		return notFound(location)
	}
	if ok, err := rowExists(ctx, q, location, "SELECT 1 FROM "+m.table+" WHERE id = ?", id); err != nil {
		return err
	} else if !ok {
		return notFound(location)
	}

	if _, err := q.ExecContext(ctx, fmt.Sprintf(`INSERT OR IGNORE INTO %s (%s, collection_id) VALUES (?, ?)`, m.links, m.owner), id, collectionID); err != nil {
		return wrapErr(location, err)
	}
	_, err := q.ExecContext(ctx, fmt.Sprintf(`
		UPDATE Collections
		SET poster_path = COALESCE((SELECT poster_path FROM %s WHERE id = ?), '')
		WHERE id = ? AND poster_path = ''`, m.table), id, collectionID)
	return wrapErr(location, err)
}

func (m member) remove(ctx context.Context, q querier, collectionID, id int64) error {
	return execOne(ctx, q, fmt.Sprintf("collection.remove_%s %d/%d", m.name, collectionID, id),
		fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND collection_id = ?`, m.links, m.owner), id, collectionID)
}

// AddMovieToCollection links a movie into a collection.
func (s *Store) AddMovieToCollection(ctx context.Context, collectionID, movieID int64) error {
	return s.withTx(ctx, "collection.add_movie", func(q querier) error {
		return movieMember.add(ctx, q, collectionID, movieID)
	})
}

// AddTvToCollection links a show into a collection.
func (s *Store) AddTvToCollection(ctx context.Context, collectionID, tvID int64) error {
	return s.withTx(ctx, "collection.add_tv", func(q querier) error {
		return tvMember.add(ctx, q, collectionID, tvID)
	})
}

// RemoveMovieFromCollection unlinks a movie. ErrNotFound if it was not a member.
func (s *Store) RemoveMovieFromCollection(ctx context.Context, collectionID, movieID int64) error {
	return s.withTx(ctx, "collection.remove_movie", func(q querier) error {
		return movieMember.remove(ctx, q, collectionID, movieID)
	})
}

// RemoveTvFromCollection unlinks a show. ErrNotFound if it was not a member.
func (s *Store) RemoveTvFromCollection(ctx context.Context, collectionID, tvID int64) error {
	return s.withTx(ctx, "collection.remove_tv", func(q querier) error {
		return tvMember.remove(ctx, q, collectionID, tvID)
	})
}

// SetCollectionDescription replaces a collection's description.
func (s *Store) SetCollectionDescription(ctx context.Context, id int64, description string) error {
	return s.withTx(ctx, "collection.set_description", func(q querier) error {
		return execOne(ctx, q, "collection.set_description", `UPDATE Collections SET description = ? WHERE id = ?`, description, id)
	})
}

// SetCollectionPoster overrides the inherited poster. An empty path lets the next added member set it.
func (s *Store) SetCollectionPoster(ctx context.Context, id int64, posterPath string) error {
	return s.withTx(ctx, "collection.set_poster", func(q querier) error {
		return execOne(ctx, q, "collection.set_poster", `UPDATE Collections SET poster_path = ? WHERE id = ?`, posterPath, id)
	})
}

// RenameCollection returns ErrDuplicate if the creator already uses the new name.
func (s *Store) RenameCollection(ctx context.Context, id int64, name string) error {
	return s.withTx(ctx, "collection.rename", func(q querier) error {
		return execOne(ctx, q, "collection.rename", `UPDATE Collections SET name = ? WHERE id = ?`, name, id)
	})
}

// DeleteCollection removes a collection and its membership links. Members are left alone.
func (s *Store) DeleteCollection(ctx context.Context, id int64) error {
	return s.withTx(ctx, "collection.delete", func(q querier) error {
		if err := execOne(ctx, q, "collection.delete", `DELETE FROM Collections WHERE id = ?`, id); err != nil {
			return err
		}
		for _, m := range []member{movieMember, tvMember} {
			if _, err := q.ExecContext(ctx, "DELETE FROM "+m.links+" WHERE collection_id = ?", id); err != nil {
				return wrapErr("collection.delete."+m.links, err)
			}
		}
		return nil
	})
}
