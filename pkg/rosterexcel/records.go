package rosterexcel

import (
	"io"
	"strconv"
	"strings"

	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/importer"
)

// InternRecords flattens interns into records keyed by import column name.
func InternRecords(interns []domain.Intern) []Record {
	records := make([]Record, 0, len(interns))
	for i := range interns {
		in := &interns[i]
		rec := Record{
			"emp_id":       in.EmpID,
			"display_name": in.DisplayName,
			"first_name":   in.FirstName,
			"last_name":    in.LastName,
			"batch":        in.Batch,
			"dob":          domain.FormatDate(in.DOB),
			"gender":       string(in.Gender),
			"phone_number": in.PhoneNumber,
		}
		for _, e := range in.Emails {
			rec[importer.EmailColumn(e.Category)] = e.Address
		}
		for _, p := range domain.Providers {
			if l := in.Link(p); l != nil {
				rec[importer.UsernameColumn(p)] = l.Username
			}
		}
		records = append(records, rec)
	}
	return records
}

// FailedRowRecords flattens the failed rows of an import. Raw values are
// kept as submitted and the messages are joined into one cell.
func FailedRowRecords(rows []domain.FailedRow) []Record {
	records := make([]Record, 0, len(rows))
	for _, f := range rows {
		rec := Record{
			"row_number": f.RowNumber,
			"errors":     strings.Join(f.Errors, "; "),
		}
		for col, v := range f.Row {
			rec[col] = v
		}
		records = append(records, rec)
	}
	return records
}

// SummaryRecords returns the counters of res as a single record.
func SummaryRecords(res *domain.ImportResult) []Record {
	return []Record{{
		"total_rows":          strconv.Itoa(res.TotalRows),
		"success_rows_number": strconv.Itoa(res.SuccessRowsNumber),
		"failed_rows_number":  strconv.Itoa(res.FailedRowsNumber),
	}}
}

// WriteInterns writes the roster sheet of layout to w.
func WriteInterns(w io.Writer, layout *Layout, interns []domain.Intern) error {
	return NewExporter(layout).
		Bind(SectionInterns, InternRecords(interns)).
		StreamTo(w)
}

// WriteFailedRows writes the import report sheet of layout to w.
func WriteFailedRows(w io.Writer, layout *Layout, res *domain.ImportResult) error {
	return NewExporter(layout).
		Bind(SectionImportSummary, SummaryRecords(res)).
		Bind(SectionFailedRows, FailedRowRecords(res.FailedRows)).
		StreamTo(w)
}
