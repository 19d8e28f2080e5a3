package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Row is one raw data line keyed by column name.
type Row map[string]string

// Get returns the trimmed value of column, or "" when the column is absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// FailedRow records why a data row was not imported.
type FailedRow struct {
	RowNumber int      `json:"row_number"`
	Row       Row      `json:"intern_details"`
	Errors    []string `json:"errors"`
}

// ImportResult summarises one bulk import run.
//
// When the header is rejected only InvalidHeader is populated and HeaderAccepted is false;
// the counters are then omitted from the JSON form.
type ImportResult struct {
	InvalidHeader     []string
	HeaderAccepted    bool
	TotalRows         int
	FailedRowsNumber  int
	SuccessRowsNumber int
	FailedRows        []FailedRow
}

// NewRejectedResult returns the result of a submission whose header was rejected.
func NewRejectedResult(invalid []string) *ImportResult {
	return &ImportResult{InvalidHeader: invalid}
}

// NewAcceptedResult returns an empty result for a submission whose header was accepted.
func NewAcceptedResult() *ImportResult {
	return &ImportResult{
		InvalidHeader:  []string{},
		HeaderAccepted: true,
		FailedRows:     []FailedRow{},
	}
}

// AddSuccess counts a persisted row.
func (r *ImportResult) AddSuccess() {
	r.TotalRows++
	r.SuccessRowsNumber = r.TotalRows - r.FailedRowsNumber
}

// AddFailure counts a rejected row and keeps its details.
func (r *ImportResult) AddFailure(f FailedRow) {
	r.TotalRows++
	r.FailedRowsNumber++
	r.FailedRows = append(r.FailedRows, f)
	r.SuccessRowsNumber = r.TotalRows - r.FailedRowsNumber
}

type acceptedResultJSON struct {
	InvalidHeader     []string    `json:"invalid_header"`
	TotalRows         int         `json:"total_rows"`
	FailedRowsNumber  int         `json:"failed_rows_number"`
	SuccessRowsNumber int         `json:"success_rows_number"`
	InternsRecords    []FailedRow `json:"interns_records"`
}

type rejectedResultJSON struct {
	InvalidHeader []string `json:"invalid_header"`
}

// MarshalJSON keeps the field names consumers already depend on.
// interns_records carries the failed rows only.
func (r ImportResult) MarshalJSON() ([]byte, error) {
	invalid := r.InvalidHeader
	if invalid == nil {
		invalid = []string{}
	}
	if !r.HeaderAccepted {
		return json.Marshal(rejectedResultJSON{InvalidHeader: invalid})
	}
	failed := r.FailedRows
	if failed == nil {
		failed = []FailedRow{}
	}
	return json.Marshal(acceptedResultJSON{
		InvalidHeader:     invalid,
		TotalRows:         r.TotalRows,
		FailedRowsNumber:  r.FailedRowsNumber,
		SuccessRowsNumber: r.SuccessRowsNumber,
		InternsRecords:    failed,
	})
}

// ImportRun is the recorded history entry of one import.
type ImportRun struct {
	RunID             string    `json:"run_id" datastore:"run_id"`
	Source            string    `json:"source" datastore:"source"`
	HeaderAccepted    bool      `json:"header_accepted" datastore:"header_accepted"`
	InvalidHeader     []string  `json:"invalid_header" datastore:"invalid_header,noindex"`
	TotalRows         int       `json:"total_rows" datastore:"total_rows"`
	FailedRowsNumber  int       `json:"failed_rows_number" datastore:"failed_rows_number"`
	SuccessRowsNumber int       `json:"success_rows_number" datastore:"success_rows_number"`
	StartedAt         time.Time `json:"started_at" datastore:"started_at"`
	Duration          float64   `json:"duration_seconds" datastore:"duration_seconds,noindex"`
}

// NewImportRun summarises res as a history entry.
func NewImportRun(runID, source string, res *ImportResult, startedAt time.Time, took time.Duration) *ImportRun {
	return &ImportRun{
		RunID:             runID,
		Source:            source,
		HeaderAccepted:    res.HeaderAccepted,
		InvalidHeader:     res.InvalidHeader,
		TotalRows:         res.TotalRows,
		FailedRowsNumber:  res.FailedRowsNumber,
		SuccessRowsNumber: res.SuccessRowsNumber,
		StartedAt:         startedAt,
		Duration:          took.Seconds(),
	}
}
