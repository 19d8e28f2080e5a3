// Package memstore is an in-memory intern and batch store used for dry runs and tests.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/Sanjit42/naming-service/internal/domain"
)

// Store keeps interns and batches in memory. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	interns map[int64]domain.Intern
	batches map[int64]domain.Batch
	runs    []domain.ImportRun
	seq     int64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		interns: make(map[int64]domain.Intern),
		batches: make(map[int64]domain.Batch),
	}
}

var (
	_ domain.InternStore       = (*Store)(nil)
	_ domain.BatchStore        = (*Store)(nil)
	_ domain.ImportRunRecorder = (*Store)(nil)
)

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) empIDTaken(empID, exceptID int64) bool {
	for id, in := range s.interns {
		if id != exceptID && in.EmpID == empID {
			return true
		}
	}
	return false
}

// Save stores in with its dependents and assigns ids to all of them.
func (s *Store) Save(_ context.Context, in *domain.Intern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.empIDTaken(in.EmpID, 0) {
		return &domain.StoreError{Op: "save intern", Err: domain.ErrDuplicateEmpID}
	}
	in.ID = s.nextID()
	s.assignDependentIDs(in)
	s.interns[in.ID] = clone(in)
	return nil
}

// Update replaces the stored intern and its dependents.
func (s *Store) Update(_ context.Context, in *domain.Intern) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.interns[in.ID]; !ok {
		return domain.ErrNotFound
	}
	if s.empIDTaken(in.EmpID, in.ID) {
		return &domain.StoreError{Op: "update intern", Err: domain.ErrDuplicateEmpID}
	}
	s.assignDependentIDs(in)
	s.interns[in.ID] = clone(in)
	return nil
}

func (s *Store) assignDependentIDs(in *domain.Intern) {
	for i := range in.Emails {
		if in.Emails[i].ID == 0 {
			in.Emails[i].ID = s.nextID()
		}
		in.Emails[i].InternID = in.ID
	}
	for _, p := range domain.Providers {
		if l := in.Link(p); l != nil {
			if l.ID == 0 {
				l.ID = s.nextID()
			}
			l.InternID = in.ID
		}
	}
}

// Delete removes the intern together with its emails and links.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.interns[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.interns, id)
	return nil
}

// FindByID returns a copy of the intern with the given id.
func (s *Store) FindByID(_ context.Context, id int64) (*domain.Intern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	in, ok := s.interns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := clone(&in)
	return &c, nil
}

// FindAll returns every intern ordered by id.
func (s *Store) FindAll(ctx context.Context) ([]domain.Intern, error) {
	return s.Find(ctx, domain.Query{})
}

// Find returns the interns matching q ordered by id.
func (s *Store) Find(_ context.Context, q domain.Query) ([]domain.Intern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Intern{}
	for _, in := range s.interns {
		in := in
		if q.Matches(&in) {
			out = append(out, clone(&in))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Reset removes every intern.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interns = make(map[int64]domain.Intern)
	return nil
}

// ==================== BATCHES ====================

func (s *Store) CreateBatch(_ context.Context, b *domain.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextID()
	s.batches[b.ID] = *b
	return nil
}

func (s *Store) GetBatch(_ context.Context, id int64) (*domain.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (s *Store) ListBatches(_ context.Context) ([]domain.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Batch, 0, len(s.batches))
	for _, b := range s.batches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateBatch(_ context.Context, b *domain.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.batches[b.ID]; !ok {
		return domain.ErrNotFound
	}
	s.batches[b.ID] = *b
	return nil
}

func (s *Store) DeleteBatch(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.batches[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.batches, id)
	return nil
}

// ==================== IMPORT RUNS ====================

// RecordRun appends run to the history, replacing an entry with the same run id.
func (s *Store) RecordRun(_ context.Context, run *domain.ImportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].RunID == run.RunID {
			s.runs[i] = *run
			return nil
		}
	}
	s.runs = append(s.runs, *run)
	return nil
}

// ListRuns returns the latest runs, newest first. A non-positive limit returns all.
func (s *Store) ListRuns(_ context.Context, limit int) ([]domain.ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]domain.ImportRun(nil), s.runs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetRun returns the run recorded under runID.
func (s *Store) GetRun(_ context.Context, runID string) (*domain.ImportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.runs {
		if s.runs[i].RunID == runID {
			run := s.runs[i]
			return &run, nil
		}
	}
	return nil, domain.ErrNotFound
}

// clone copies in so that callers never share slices or links with the store.
func clone(in *domain.Intern) domain.Intern {
	c := *in
	c.Emails = append([]domain.Email(nil), in.Emails...)
	for _, p := range domain.Providers {
		if l := in.Link(p); l != nil {
			cp := *l
			c.SetLink(p, &cp)
		}
	}
	return c
}
