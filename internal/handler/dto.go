package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/search"
)

// searchTermParam is the query parameter holding the free-text term.
// Every other query parameter is a filter.
const searchTermParam = "q"

// InternPayload is an intern as submitted by a client, keyed by import column
// name. Values are kept raw so they go through the import rules unchanged.
type InternPayload map[string]interface{}

// Row converts the payload into an import row.
func (p InternPayload) Row() domain.Row {
	row := make(domain.Row, len(p))
	for k, v := range p {
		row[k] = cellValue(v)
	}
	return row
}

func cellValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// BatchRequest is the body of batch create and update calls.
type BatchRequest struct {
	BatchName string `json:"batch_name" form:"batch_name"`
	StartDate string `json:"start_date" form:"start_date"`
	EndDate   string `json:"end_date" form:"end_date"`
}

// Batch converts the request into a batch. Dates that do not parse are left
// zero and reported as blank by validation.
func (r BatchRequest) Batch() *domain.Batch {
	b := &domain.Batch{BatchName: strings.TrimSpace(r.BatchName)}
	b.StartDate = parseDate(r.StartDate)
	b.EndDate = parseDate(r.EndDate)
	return b
}

func parseDate(s string) time.Time {
	d, _ := domain.ParseDate(strings.TrimSpace(s))
	return d
}

// ImportTextRequest carries pasted CSV text.
type ImportTextRequest struct {
	CSVData string `json:"csv_data" form:"csv_data"`
}

// SearchResponse lists the interns matching a search.
type SearchResponse struct {
	Term    string          `json:"term,omitempty"`
	Filters search.Filters  `json:"filters,omitempty"`
	Count   int             `json:"count"`
	Interns []domain.Intern `json:"interns"`
}

// splitSearchParams separates the free-text term from the filters.
func splitSearchParams(params map[string][]string) (string, search.Filters) {
	var term string
	filters := search.Filters{}
	for name, values := range params {
		if len(values) == 0 {
			continue
		}
		if name == searchTermParam {
			term = strings.TrimSpace(values[0])
			continue
		}
		filters[name] = values[0]
	}
	return term, filters
}
