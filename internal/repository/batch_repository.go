package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/repository/builder"
)

type batchRepository struct {
	db *sql.DB
}

// NewBatchRepository creates a Postgres backed BatchStore.
func NewBatchRepository(db *sql.DB) domain.BatchStore {
	return &batchRepository{db: db}
}

func (r *batchRepository) CreateBatch(ctx context.Context, b *domain.Batch) error {
	query, args := builder.NewSQLBuilder().
		Insert("batches", "batch_name", "start_date", "end_date").
		Values(b.BatchName, b.StartDate, b.EndDate).
		Returning("id").
		Build()
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&b.ID); err != nil {
		return &domain.StoreError{Op: "create batch", Err: err}
	}
	return nil
}

func (r *batchRepository) GetBatch(ctx context.Context, id int64) (*domain.Batch, error) {
	query, args := builder.NewSQLBuilder().Select("id", "batch_name", "start_date", "end_date").
		From("batches").
		Where("id = ?", id).
		Build()

	var b domain.Batch
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.BatchName, &b.StartDate, &b.EndDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *batchRepository) ListBatches(ctx context.Context) ([]domain.Batch, error) {
	query, args := builder.NewSQLBuilder().Select("id", "batch_name", "start_date", "end_date").
		From("batches").
		OrderBy("id ASC").
		Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	batches := []domain.Batch{}
	for rows.Next() {
		var b domain.Batch
		if err := rows.Scan(&b.ID, &b.BatchName, &b.StartDate, &b.EndDate); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (r *batchRepository) UpdateBatch(ctx context.Context, b *domain.Batch) error {
	query, args := builder.NewSQLBuilder().Update("batches").
		Set("batch_name", b.BatchName).
		Set("start_date", b.StartDate).
		Set("end_date", b.EndDate).
		Where("id = ?", b.ID).
		Build()
	return r.execOne(ctx, "update batch", query, args)
}

func (r *batchRepository) DeleteBatch(ctx context.Context, id int64) error {
	query, args := builder.NewSQLBuilder().Delete("batches").Where("id = ?", id).Build()
	return r.execOne(ctx, "delete batch", query, args)
}

func (r *batchRepository) execOne(ctx context.Context, op, query string, args []interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &domain.StoreError{Op: op, Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
