package domain

import "context"

// Finder evaluates a search Query against a data source.
type Finder interface {
	Find(ctx context.Context, q Query) ([]Intern, error)
}

// InternStore defines the persistence contract for interns and their dependents.
// Save and Update write the whole aggregate atomically and fill in generated ids.
type InternStore interface {
	Finder
	Save(ctx context.Context, in *Intern) error
	Update(ctx context.Context, in *Intern) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Intern, error)
	FindAll(ctx context.Context) ([]Intern, error)
}

// BatchStore defines the persistence contract for batches.
type BatchStore interface {
	CreateBatch(ctx context.Context, b *Batch) error
	GetBatch(ctx context.Context, id int64) (*Batch, error)
	ListBatches(ctx context.Context) ([]Batch, error)
	UpdateBatch(ctx context.Context, b *Batch) error
	DeleteBatch(ctx context.Context, id int64) error
}

// ImportRunRecorder keeps the history of import runs.
type ImportRunRecorder interface {
	RecordRun(ctx context.Context, run *ImportRun) error
	ListRuns(ctx context.Context, limit int) ([]ImportRun, error)
	GetRun(ctx context.Context, runID string) (*ImportRun, error)
}

// EventPublisher announces finished import runs.
type EventPublisher interface {
	PublishImportCompleted(ctx context.Context, run *ImportRun) error
}

// InternIndexer mirrors interns into a search index.
type InternIndexer interface {
	Finder
	Index(ctx context.Context, interns []Intern) error
	Remove(ctx context.Context, id int64) error
}

// Resetter is implemented by stores that can drop every intern at once.
type Resetter interface {
	Reset(ctx context.Context) error
}
