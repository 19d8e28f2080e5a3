package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/importer"
	"github.com/Sanjit42/naming-service/internal/logger"
	"github.com/Sanjit42/naming-service/internal/metrics"
)

// Import sources recorded on a run.
const (
	SourceText = "text"
)

// ImportOutcome is the result of one import run together with its history entry.
type ImportOutcome struct {
	Run    *domain.ImportRun
	Result *domain.ImportResult
	Saved  []domain.Intern
}

// ImportOption configures an ImportService.
type ImportOption func(*ImportService)

// WithRecorder records every run in r.
func WithRecorder(r domain.ImportRunRecorder) ImportOption {
	return func(s *ImportService) { s.recorder = r }
}

// WithPublisher announces every finished run through p.
func WithPublisher(p domain.EventPublisher) ImportOption {
	return func(s *ImportService) { s.publisher = p }
}

// WithIndexer indexes the interns saved by a run.
func WithIndexer(idx domain.InternIndexer) ImportOption {
	return func(s *ImportService) { s.indexer = idx }
}

// WithImportMetrics observes every run in m.
func WithImportMetrics(m *metrics.Metrics) ImportOption {
	return func(s *ImportService) { s.metrics = m }
}

// ImportService runs bulk imports and takes care of what happens around them:
// run ids, timing, metrics, history, events and indexing.
type ImportService struct {
	validator *importer.RowValidator
	store     importer.Saver
	recorder  domain.ImportRunRecorder
	publisher domain.EventPublisher
	indexer   domain.InternIndexer
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string
}

// NewImportService imports into store using v.
func NewImportService(v *importer.RowValidator, store importer.Saver, opts ...ImportOption) *ImportService {
	s := &ImportService{
		validator: v,
		store:     store,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// recordingSaver remembers what the store accepted during one run.
type recordingSaver struct {
	store importer.Saver
	mu    sync.Mutex
	saved []domain.Intern
}

func (r *recordingSaver) Save(ctx context.Context, in *domain.Intern) error {
	if err := r.store.Save(ctx, in); err != nil {
		return err
	}
	r.mu.Lock()
	r.saved = append(r.saved, *in)
	r.mu.Unlock()
	return nil
}

// ImportFile imports a CSV file. name identifies the source in the run history.
func (s *ImportService) ImportFile(ctx context.Context, name string, r io.Reader) (*ImportOutcome, error) {
	return s.run(ctx, name, func(ctx context.Context, g *importer.Ingestor) (*domain.ImportResult, error) {
		return g.ImportFile(ctx, r)
	})
}

// ImportText imports pasted CSV text.
func (s *ImportService) ImportText(ctx context.Context, text string) (*ImportOutcome, error) {
	return s.run(ctx, SourceText, func(ctx context.Context, g *importer.Ingestor) (*domain.ImportResult, error) {
		return g.ImportText(ctx, text)
	})
}

type importFunc func(ctx context.Context, g *importer.Ingestor) (*domain.ImportResult, error)

func (s *ImportService) run(ctx context.Context, source string, fn importFunc) (*ImportOutcome, error) {
	runID := s.newID()
	ctx = logger.WithLogger(ctx, map[string]interface{}{
		"run_id": runID,
		"source": source,
	})

	saver := &recordingSaver{store: s.store}
	started := s.now()
	res, err := fn(ctx, importer.NewIngestor(s.validator, saver))
	took := s.now().Sub(started)

	s.metrics.ObserveImport(res, err, took)
	if res == nil {
		logger.ErrorLog(ctx, "import failed: %v", err)
		return nil, err
	}

	outcome := &ImportOutcome{
		Run:    domain.NewImportRun(runID, source, res, started, took),
		Result: res,
		Saved:  saver.saved,
	}
	s.afterRun(context.WithoutCancel(ctx), outcome)

	if err != nil {
		logger.WarnLog(ctx, "import interrupted after %d rows: %v", res.TotalRows, err)
		return outcome, err
	}
	logger.InfoLog(ctx, "import run completed in %s", took)
	return outcome, nil
}

// afterRun indexes, records and announces a run. Failures are only logged
// since the rows are already committed.
func (s *ImportService) afterRun(ctx context.Context, o *ImportOutcome) {
	if s.indexer != nil && len(o.Saved) > 0 {
		if err := s.indexer.Index(ctx, o.Saved); err != nil {
			logger.WarnLog(ctx, "failed to index %d imported interns: %v", len(o.Saved), err)
		}
	}
	if s.recorder != nil {
		if err := s.recorder.RecordRun(ctx, o.Run); err != nil {
			logger.WarnLog(ctx, "failed to record import run: %v", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishImportCompleted(ctx, o.Run); err != nil {
			logger.WarnLog(ctx, "failed to publish import event: %v", err)
		}
	}
}

// ListRuns returns the most recent import runs, newest first.
func (s *ImportService) ListRuns(ctx context.Context, limit int) ([]domain.ImportRun, error) {
	if s.recorder == nil {
		return []domain.ImportRun{}, nil
	}
	runs, err := s.recorder.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a single recorded run.
func (s *ImportService) GetRun(ctx context.Context, runID string) (*domain.ImportRun, error) {
	if s.recorder == nil {
		return nil, domain.ErrNotFound
	}
	return s.recorder.GetRun(ctx, runID)
}
