package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/importer"
	"github.com/Sanjit42/naming-service/internal/logger"
	"github.com/Sanjit42/naming-service/internal/metrics"
	"github.com/Sanjit42/naming-service/internal/search"
)

// Batch validation messages.
const (
	msgBatchNameBlank = "Batch name can't be blank"
	msgStartDateBlank = "Start date can't be blank"
	msgEndDateBlank   = "End date can't be blank"
	msgEndBeforeStart = "End date can't be before start date"
)

// RosterService handles interns and batches outside of bulk imports.
// Interns go through the same row rules as imported ones.
type RosterService struct {
	store     domain.InternStore
	batches   domain.BatchStore
	validator *importer.RowValidator
	engine    *search.Engine
	index     domain.InternIndexer
	metrics   *metrics.Metrics
}

// NewRosterService creates a RosterService. Searches run against finder,
// which is usually the store itself or a search index.
func NewRosterService(
	store domain.InternStore,
	batches domain.BatchStore,
	validator *importer.RowValidator,
	finder domain.Finder,
) *RosterService {
	return &RosterService{
		store:     store,
		batches:   batches,
		validator: validator,
		engine:    search.NewEngine(finder),
	}
}

// WithIndex keeps idx in sync with every intern write.
func (rs *RosterService) WithIndex(idx domain.InternIndexer) *RosterService {
	rs.index = idx
	return rs
}

// WithMetrics counts searches in m.
func (rs *RosterService) WithMetrics(m *metrics.Metrics) *RosterService {
	rs.metrics = m
	return rs
}

// ==================== Intern Operations ====================

// NewTemplate returns an unsaved intern with every dependent prebuilt.
func (rs *RosterService) NewTemplate() *domain.Intern {
	return domain.NewInternTemplate()
}

// validate runs the row rules on row and returns the normalised aggregate.
func (rs *RosterService) validate(row domain.Row) (*domain.Intern, []string) {
	c := rs.validator.Check(row)
	if !c.Valid() {
		return nil, c.Errors
	}
	return c.Intern, nil
}

// Create validates and saves in. Validation failures, including a taken
// emp id, come back as messages with a nil error.
func (rs *RosterService) Create(ctx context.Context, in *domain.Intern) (*domain.Intern, []string, error) {
	return rs.CreateRow(ctx, importer.RowFromIntern(in))
}

// CreateRow is Create for raw column values, as submitted by a form or a CSV line.
func (rs *RosterService) CreateRow(ctx context.Context, row domain.Row) (*domain.Intern, []string, error) {
	valid, msgs := rs.validate(row)
	if len(msgs) > 0 {
		return nil, msgs, nil
	}

	if err := rs.store.Save(ctx, valid); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmpID) {
			return nil, []string{domain.ErrDuplicateEmpID.Error()}, nil
		}
		return nil, nil, fmt.Errorf("failed to create intern: %w", err)
	}

	rs.syncIndex(ctx, valid)
	return valid, nil, nil
}

// Get retrieves an intern with its dependents.
func (rs *RosterService) Get(ctx context.Context, id int64) (*domain.Intern, error) {
	return rs.store.FindByID(ctx, id)
}

// List returns every intern ordered by id.
func (rs *RosterService) List(ctx context.Context) ([]domain.Intern, error) {
	return rs.store.FindAll(ctx)
}

// Update validates in and replaces intern id with it, dependents included.
func (rs *RosterService) Update(ctx context.Context, id int64, in *domain.Intern) (*domain.Intern, []string, error) {
	return rs.UpdateRow(ctx, id, importer.RowFromIntern(in))
}

// UpdateRow is Update for raw column values.
func (rs *RosterService) UpdateRow(ctx context.Context, id int64, row domain.Row) (*domain.Intern, []string, error) {
	if _, err := rs.store.FindByID(ctx, id); err != nil {
		return nil, nil, err
	}

	valid, msgs := rs.validate(row)
	if len(msgs) > 0 {
		return nil, msgs, nil
	}
	valid.ID = id

	if err := rs.store.Update(ctx, valid); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmpID) {
			return nil, []string{domain.ErrDuplicateEmpID.Error()}, nil
		}
		return nil, nil, fmt.Errorf("failed to update intern %d: %w", id, err)
	}

	rs.syncIndex(ctx, valid)
	return valid, nil, nil
}

// Delete removes an intern together with its emails and identity links.
func (rs *RosterService) Delete(ctx context.Context, id int64) error {
	if err := rs.store.Delete(ctx, id); err != nil {
		return err
	}
	if rs.index != nil {
		if err := rs.index.Remove(ctx, id); err != nil {
			logger.WarnLog(ctx, "failed to remove intern %d from index: %v", id, err)
		}
	}
	return nil
}

func (rs *RosterService) syncIndex(ctx context.Context, in *domain.Intern) {
	if rs.index == nil {
		return
	}
	if err := rs.index.Index(ctx, []domain.Intern{*in}); err != nil {
		logger.WarnLog(ctx, "failed to index intern %d: %v", in.ID, err)
	}
}

// ==================== Search ====================

// Search runs a free-text search combined with attribute filters.
func (rs *RosterService) Search(ctx context.Context, term string, filters search.Filters) ([]domain.Intern, error) {
	rs.metrics.ObserveSearch(searchKind(term, filters))
	return rs.engine.Query(ctx, term, filters)
}

func searchKind(term string, filters search.Filters) string {
	hasFilters := false
	for _, v := range filters {
		if v != "" {
			hasFilters = true
			break
		}
	}
	switch {
	case term != "" && hasFilters:
		return "combined"
	case hasFilters:
		return "filter"
	}
	return "search"
}

// ==================== Batch Operations ====================

func validateBatch(b *domain.Batch) []string {
	var msgs []string
	if b.BatchName == "" {
		msgs = append(msgs, msgBatchNameBlank)
	}
	if b.StartDate.IsZero() {
		msgs = append(msgs, msgStartDateBlank)
	}
	if b.EndDate.IsZero() {
		msgs = append(msgs, msgEndDateBlank)
	}
	if !b.StartDate.IsZero() && !b.EndDate.IsZero() && b.EndDate.Before(b.StartDate) {
		msgs = append(msgs, msgEndBeforeStart)
	}
	return msgs
}

// CreateBatch validates and saves b.
func (rs *RosterService) CreateBatch(ctx context.Context, b *domain.Batch) ([]string, error) {
	if msgs := validateBatch(b); len(msgs) > 0 {
		return msgs, nil
	}
	if err := rs.batches.CreateBatch(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}
	return nil, nil
}

// GetBatch retrieves a batch.
func (rs *RosterService) GetBatch(ctx context.Context, id int64) (*domain.Batch, error) {
	return rs.batches.GetBatch(ctx, id)
}

// ListBatches returns every batch ordered by id.
func (rs *RosterService) ListBatches(ctx context.Context) ([]domain.Batch, error) {
	return rs.batches.ListBatches(ctx)
}

// UpdateBatch validates and saves b.
func (rs *RosterService) UpdateBatch(ctx context.Context, b *domain.Batch) ([]string, error) {
	if msgs := validateBatch(b); len(msgs) > 0 {
		return msgs, nil
	}
	if err := rs.batches.UpdateBatch(ctx, b); err != nil {
		return nil, err
	}
	return nil, nil
}

// DeleteBatch removes a batch.
func (rs *RosterService) DeleteBatch(ctx context.Context, id int64) error {
	return rs.batches.DeleteBatch(ctx, id)
}
