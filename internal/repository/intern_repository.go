package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/repository/builder"
)

const uniqueViolation = "23505"

var internColumns = []string{
	"id", "emp_id", "display_name", "first_name", "last_name",
	"batch", "dob", "gender", "phone_number",
}

var linkTables = map[domain.Provider]string{
	domain.ProviderGithub:  "github_info",
	domain.ProviderSlack:   "slack_info",
	domain.ProviderDropbox: "dropbox_info",
}

type internRepository struct {
	db *sql.DB
}

// NewInternRepository creates a Postgres backed InternStore.
func NewInternRepository(db *sql.DB) domain.InternStore {
	return &internRepository{db: db}
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func storeError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == "interns_emp_id_key" {
		return &domain.StoreError{Op: op, Err: domain.ErrDuplicateEmpID}
	}
	return &domain.StoreError{Op: op, Err: err}
}

// withTx runs fn inside a transaction and commits when fn succeeds.
func (r *internRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// idSnapshot holds the ids of an aggregate so a rolled back write can put them back.
type idSnapshot struct {
	id     int64
	emails []domain.Email
	links  map[domain.Provider]domain.IdentityLink
}

func snapshotIDs(in *domain.Intern) idSnapshot {
	s := idSnapshot{
		id:     in.ID,
		emails: append([]domain.Email(nil), in.Emails...),
		links:  map[domain.Provider]domain.IdentityLink{},
	}
	for _, p := range domain.Providers {
		if l := in.Link(p); l != nil {
			s.links[p] = *l
		}
	}
	return s
}

func (s idSnapshot) restore(in *domain.Intern) {
	in.ID = s.id
	for i := range in.Emails {
		if i < len(s.emails) {
			in.Emails[i].ID = s.emails[i].ID
			in.Emails[i].InternID = s.emails[i].InternID
		}
	}
	for p, saved := range s.links {
		if l := in.Link(p); l != nil {
			l.ID = saved.ID
			l.InternID = saved.InternID
		}
	}
}

// Save inserts the intern with its emails and links in one transaction.
// On failure nothing is written and the ids of in are left as they were.
func (r *internRepository) Save(ctx context.Context, in *domain.Intern) error {
	before := snapshotIDs(in)
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query, args := builder.NewSQLBuilder().
			Insert("interns", internColumns[1:]...).
			Values(in.EmpID, in.DisplayName, in.FirstName, in.LastName, in.Batch, in.DOB, string(in.Gender), in.PhoneNumber).
			Returning("id").
			Build()
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&in.ID); err != nil {
			return err
		}
		return insertDependents(ctx, tx, in)
	})
	if err != nil {
		before.restore(in)
		return storeError("save intern", err)
	}
	return nil
}

func insertDependents(ctx context.Context, db execer, in *domain.Intern) error {
	for i := range in.Emails {
		e := &in.Emails[i]
		e.InternID = in.ID
		query, args := builder.NewSQLBuilder().
			Insert("emails", "intern_id", "category", "address").
			Values(e.InternID, e.Category, e.Address).
			Returning("id").
			Build()
		if err := db.QueryRowContext(ctx, query, args...).Scan(&e.ID); err != nil {
			return fmt.Errorf("insert email: %w", err)
		}
	}
	for _, p := range domain.Providers {
		l := in.Link(p)
		if l == nil {
			continue
		}
		l.InternID = in.ID
		query, args := builder.NewSQLBuilder().
			Insert(linkTables[p], "intern_id", "username").
			Values(l.InternID, l.Username).
			Returning("id").
			Build()
		if err := db.QueryRowContext(ctx, query, args...).Scan(&l.ID); err != nil {
			return fmt.Errorf("insert %s link: %w", p, err)
		}
	}
	return nil
}

func deleteDependents(ctx context.Context, db execer, internID int64) error {
	tables := []string{"emails"}
	for _, p := range domain.Providers {
		tables = append(tables, linkTables[p])
	}
	for _, table := range tables {
		query, args := builder.NewSQLBuilder().Delete(table).Where("intern_id = ?", internID).Build()
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}

// Update rewrites the intern row and replaces its dependents.
func (r *internRepository) Update(ctx context.Context, in *domain.Intern) error {
	before := snapshotIDs(in)
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		query, args := builder.NewSQLBuilder().Update("interns").
			Set("emp_id", in.EmpID).
			Set("display_name", in.DisplayName).
			Set("first_name", in.FirstName).
			Set("last_name", in.LastName).
			Set("batch", in.Batch).
			Set("dob", in.DOB).
			Set("gender", string(in.Gender)).
			Set("phone_number", in.PhoneNumber).
			Where("id = ?", in.ID).
			Build()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return domain.ErrNotFound
		}
		if err := deleteDependents(ctx, tx, in.ID); err != nil {
			return err
		}
		for i := range in.Emails {
			in.Emails[i].ID = 0
		}
		return insertDependents(ctx, tx, in)
	})
	if err != nil {
		before.restore(in)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil {
		return storeError("update intern", err)
	}
	return nil
}

// Delete removes the intern and everything it owns.
func (r *internRepository) Delete(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := deleteDependents(ctx, tx, id); err != nil {
			return err
		}
		query, args := builder.NewSQLBuilder().Delete("interns").Where("id = ?", id).Build()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *internRepository) FindByID(ctx context.Context, id int64) (*domain.Intern, error) {
	interns, err := r.load(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(interns) == 0 {
		return nil, domain.ErrNotFound
	}
	return &interns[0], nil
}

func (r *internRepository) FindAll(ctx context.Context) ([]domain.Intern, error) {
	return r.Find(ctx, domain.Query{})
}

// Find runs the compiled query for matching ids, then loads the aggregates.
func (r *internRepository) Find(ctx context.Context, q domain.Query) ([]domain.Intern, error) {
	query, args, err := compileQuery(q).BuildSafe()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find interns: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Intern{}, nil
	}
	return r.load(ctx, ids)
}

// load fetches interns by id, ordered by id, with emails and links attached.
func (r *internRepository) load(ctx context.Context, ids []int64) ([]domain.Intern, error) {
	query, args := builder.NewSQLBuilder().Select(internColumns...).
		From("interns").
		Where("id = ANY(?)", pq.Array(ids)).
		OrderBy("id ASC").
		Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load interns: %w", err)
	}
	defer rows.Close()

	interns := []domain.Intern{}
	index := map[int64]int{}
	for rows.Next() {
		var in domain.Intern
		var gender string
		if err := rows.Scan(&in.ID, &in.EmpID, &in.DisplayName, &in.FirstName, &in.LastName,
			&in.Batch, &in.DOB, &gender, &in.PhoneNumber); err != nil {
			return nil, err
		}
		in.Gender = domain.Gender(gender)
		index[in.ID] = len(interns)
		interns = append(interns, in)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(interns) == 0 {
		return interns, nil
	}

	if err := r.loadEmails(ctx, ids, interns, index); err != nil {
		return nil, err
	}
	for _, p := range domain.Providers {
		if err := r.loadLinks(ctx, p, ids, interns, index); err != nil {
			return nil, err
		}
	}
	return interns, nil
}

func (r *internRepository) loadEmails(ctx context.Context, ids []int64, interns []domain.Intern, index map[int64]int) error {
	query, args := builder.NewSQLBuilder().Select("id", "intern_id", "category", "address").
		From("emails").
		Where("intern_id = ANY(?)", pq.Array(ids)).
		OrderBy("id ASC").
		Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load emails: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.Email
		if err := rows.Scan(&e.ID, &e.InternID, &e.Category, &e.Address); err != nil {
			return err
		}
		if i, ok := index[e.InternID]; ok {
			interns[i].Emails = append(interns[i].Emails, e)
		}
	}
	return rows.Err()
}

func (r *internRepository) loadLinks(ctx context.Context, p domain.Provider, ids []int64, interns []domain.Intern, index map[int64]int) error {
	query, args := builder.NewSQLBuilder().Select("id", "intern_id", "username").
		From(linkTables[p]).
		Where("intern_id = ANY(?)", pq.Array(ids)).
		OrderBy("id ASC").
		Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load %s links: %w", p, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.IdentityLink
		if err := rows.Scan(&l.ID, &l.InternID, &l.Username); err != nil {
			return err
		}
		if i, ok := index[l.InternID]; ok && interns[i].Link(p) == nil {
			link := l
			interns[i].SetLink(p, &link)
		}
	}
	return rows.Err()
}

// Reset removes every intern and its dependents.
func (r *internRepository) Reset(ctx context.Context) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"emails", "github_info", "slack_info", "dropbox_info", "interns"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("reset %s: %w", table, err)
			}
		}
		return nil
	})
}
