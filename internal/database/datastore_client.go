package database

import (
	"context"
	"fmt"

	"cloud.google.com/go/datastore"

	"github.com/Sanjit42/naming-service/internal/domain"
)

// importRunKind is the Datastore kind holding import history.
const importRunKind = "ImportRun"

// DatastoreClient wraps the cloud datastore client
type DatastoreClient struct {
	client *datastore.Client
}

// NewDatastoreClient creates a new wrapper
func NewDatastoreClient(client *datastore.Client) *DatastoreClient {
	return &DatastoreClient{client: client}
}

var _ domain.ImportRunRecorder = (*DatastoreClient)(nil)

// RecordRun saves a run keyed by its run id. Saving the same run twice overwrites it.
func (dc *DatastoreClient) RecordRun(ctx context.Context, run *domain.ImportRun) error {
	if dc == nil || dc.client == nil {
		return fmt.Errorf("datastore client is nil")
	}

	key := datastore.NameKey(importRunKind, run.RunID, nil)
	if _, err := dc.client.Put(ctx, key, run); err != nil {
		return fmt.Errorf("failed to save import run %s: %w", run.RunID, err)
	}
	return nil
}

// ListRuns returns the latest runs, newest first. A non-positive limit returns all.
func (dc *DatastoreClient) ListRuns(ctx context.Context, limit int) ([]domain.ImportRun, error) {
	if dc == nil || dc.client == nil {
		return nil, fmt.Errorf("datastore client is nil")
	}

	q := datastore.NewQuery(importRunKind).Order("-started_at")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var result []domain.ImportRun
	if _, err := dc.client.GetAll(ctx, q, &result); err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	return result, nil
}

// GetRun retrieves a single run by id.
func (dc *DatastoreClient) GetRun(ctx context.Context, runID string) (*domain.ImportRun, error) {
	if dc == nil || dc.client == nil {
		return nil, fmt.Errorf("datastore client is nil")
	}

	var run domain.ImportRun
	key := datastore.NameKey(importRunKind, runID, nil)
	if err := dc.client.Get(ctx, key, &run); err != nil {
		if err == datastore.ErrNoSuchEntity {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}
