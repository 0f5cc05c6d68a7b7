package library

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vmunix/mediacat/internal/tmdb"
)

// PersonFilter is an allow-listed predicate for person searches.
type PersonFilter struct{ f filter }

func (p PersonFilter) raw() filter { return p.f }

// PersonID matches a single person.
func PersonID(id int64) PersonFilter { return PersonFilter{eq("Persons.id", id)} }

// PersonName matches names with a LIKE pattern; the caller supplies any wildcards.
func PersonName(pattern string) PersonFilter { return PersonFilter{like("Persons.name", pattern)} }

// PersonOrder selects the ORDER BY of a person search.
type PersonOrder int

const (
	PersonOrderDefault PersonOrder = iota
	PersonOrderName
	PersonOrderPopularityDesc
)

var personOrders = map[PersonOrder]string{
	PersonOrderName:           "Persons.name",
	PersonOrderPopularityDesc: "Persons.popularity DESC",
}

// PersonQuery is a person search.
type PersonQuery struct {
	Filters []PersonFilter
	Order   PersonOrder
	Page    Page
}

const personSearchHead = `
SELECT Persons.id, Persons.name, Persons.known_for_department, Persons.profile_path
FROM Persons`

func searchPersons(ctx context.Context, q querier, pq PersonQuery) ([]PersonResult, error) {
	order, err := orderExpr(personOrders, pq.Order)
	if err != nil {
		return nil, err
	}
	sq := selectQuery{
		head:    personSearchHead,
		filters: rawFilters(pq.Filters),
		orderBy: order,
		page:    pq.Page,
	}
	return query(ctx, q, sq, func(rows *sql.Rows) (PersonResult, error) {
		var p PersonResult
		err := rows.Scan(&p.ID, &p.Name, &p.KnownForDepartment, &p.ProfilePath)
		return p, err
	})
}

// SearchPersons lists people matching every filter.
func (s *Store) SearchPersons(ctx context.Context, pq PersonQuery) ([]PersonResult, error) {
	var out []PersonResult
	err := s.read("person.search", func(q querier) error {
		var err error
		out, err = searchPersons(ctx, q, pq)
		return err
	})
	return out, err
}

func getPerson(ctx context.Context, q querier, id int64) (*Person, error) {
	p := &Person{}
	var updated string
	err := q.QueryRowContext(ctx, `
		SELECT id, name, birthday, deathday, known_for_department, gender, biography,
		       popularity, place_of_birth, profile_path, updated
		FROM Persons WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Birthday, &p.Deathday, &p.KnownForDepartment, &p.Gender, &p.Biography,
		&p.Popularity, &p.PlaceOfBirth, &p.ProfilePath, &updated)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("person.get %d", id), err)
	}
	p.Updated = parseTime(updated)
	return p, nil
}

// GetPerson retrieves a person by provider id.
func (s *Store) GetPerson(ctx context.Context, id int64) (*Person, error) {
	var p *Person
	err := s.read("person.get", func(q querier) error {
		var err error
		p, err = getPerson(ctx, q, id)
		return err
	})
	return p, err
}

func upsertPerson(ctx context.Context, q querier, p *tmdb.Person, now string) (*UpsertResult, error) {
	_, err := q.ExecContext(ctx, `
		INSERT OR REPLACE INTO Persons (
			id, birthday, known_for_department, deathday, name, gender, biography,
			popularity, place_of_birth, profile_path, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Birthday, p.KnownForDepartment, p.Deathday, p.Name, p.Gender, p.Biography,
		p.Popularity, p.PlaceOfBirth, p.ProfilePath, now,
	)
	if err != nil {
		return nil, wrapErr("person.upsert", err)
	}
	r := &UpsertResult{}
	r.addAsset(p.ProfilePath)
	return r, nil
}

// UpsertPerson stores a provider person and returns the profile asset to fetch.
func (s *Store) UpsertPerson(ctx context.Context, p *tmdb.Person) (*UpsertResult, error) {
	var r *UpsertResult
	err := s.withTx(ctx, "person.upsert", func(q querier) error {
		var err error
		r, err = upsertPerson(ctx, q, p, s.stamp())
		return err
	})
	return r, err
}

// UpsertPerson stores a provider person within a transaction.
func (t *Tx) UpsertPerson(ctx context.Context, p *tmdb.Person) (*UpsertResult, error) {
	return upsertPerson(ctx, t.q(), p, t.store.stamp())
}

// PersonExists reports whether a person row is stored.
func (s *Store) PersonExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := s.read("person.exists", func(q querier) error {
		var err error
		ok, err = rowExists(ctx, q, "person.exists", `SELECT 1 FROM Persons WHERE id = ?`, id)
		return err
	})
	return ok, err
}

// personCredited reports whether any cast or crew row still names the person.
const personCreditedStmt = `
	SELECT 1 FROM MovieCasts WHERE person_id = ?1
	UNION ALL SELECT 1 FROM MovieCrews WHERE person_id = ?1
	UNION ALL SELECT 1 FROM TvCasts WHERE person_id = ?1
	UNION ALL SELECT 1 FROM TvCrews WHERE person_id = ?1
	UNION ALL SELECT 1 FROM EpisodeCasts WHERE person_id = ?1
	UNION ALL SELECT 1 FROM EpisodeCrews WHERE person_id = ?1`

func personCredited(ctx context.Context, q querier, id int64) (bool, error) {
	return rowExists(ctx, q, fmt.Sprintf("person.credited %d", id), personCreditedStmt, id)
}

// PersonCredited reports whether the person has a credit on any movie, show or episode.
func (s *Store) PersonCredited(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := s.read("person.credited", func(q querier) error {
		var err error
		ok, err = personCredited(ctx, q, id)
		return err
	})
	return ok, err
}

func deletePerson(ctx context.Context, q querier, id int64) (bool, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM Persons WHERE id = ?`, id)
	if err != nil {
		return false, wrapErr("person.delete", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeletePerson removes a person row. Credits naming it are left alone.
func (s *Store) DeletePerson(ctx context.Context, id int64) error {
	return s.withTx(ctx, "person.delete", func(q querier) error {
		ok, err := deletePerson(ctx, q, id)
		if err == nil && !ok {
			return notFound("person.delete")
		}
		return err
	})
}
