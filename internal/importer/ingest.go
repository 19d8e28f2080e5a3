package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/logger"
)

const (
	recordSeparator = "\r\n"
	fieldSeparator  = ","
)

// Saver persists a validated intern aggregate.
type Saver interface {
	Save(ctx context.Context, in *domain.Intern) error
}

// Ingestor runs bulk imports: header gate, per row validation, persistence and aggregation.
type Ingestor struct {
	validator *RowValidator
	store     Saver
}

// NewIngestor creates an ingestor that validates with v and persists valid rows to store.
func NewIngestor(v *RowValidator, store Saver) *Ingestor {
	return &Ingestor{validator: v, store: store}
}

// ImportFile imports a CSV file whose first record is the header.
func (g *Ingestor) ImportFile(ctx context.Context, r io.Reader) (*domain.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	records, err := parseCSV(sanitizeUTF8(data))
	if err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.ErrEmptyInput
	}
	return g.process(ctx, records[0], records[1:])
}

// ImportText imports pasted CSV text. Records are separated by CRLF and fields by
// commas; quoting is not supported. The first line is the header.
func (g *Ingestor) ImportText(ctx context.Context, text string) (*domain.ImportResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyInput
	}
	lines := strings.Split(text, recordSeparator)
	records := make([][]string, len(lines))
	for i, line := range lines {
		records[i] = strings.Split(line, fieldSeparator)
	}
	return g.process(ctx, records[0], records[1:])
}

func (g *Ingestor) process(ctx context.Context, rawHeader []string, records [][]string) (*domain.ImportResult, error) {
	header := CleanHeader(rawHeader)
	if invalid := ValidateHeader(g.validator.Registry(), header); len(invalid) > 0 {
		logger.WarnLog(ctx, "import rejected: %v", &HeaderError{Invalid: invalid})
		return domain.NewRejectedResult(invalid), nil
	}

	result := domain.NewAcceptedResult()
	rowNumber := 0
	for _, record := range records {
		if isBlankRecord(record) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rowNumber++

		row := toRow(header, record)
		c := g.validator.Check(row)
		if c.Valid() {
			if err := g.store.Save(ctx, c.Intern); err != nil {
				c.Errors = append(c.Errors, err.Error())
			}
		}
		if !c.Valid() {
			logger.DebugLog(ctx, "row %d rejected: %v", rowNumber, &RowValidationError{RowNumber: rowNumber, Messages: c.Errors})
			result.AddFailure(domain.FailedRow{RowNumber: rowNumber, Row: row, Errors: c.Errors})
			continue
		}
		result.AddSuccess()
	}

	logger.InfoLog(ctx, "import finished: total=%d failed=%d success=%d",
		result.TotalRows, result.FailedRowsNumber, result.SuccessRowsNumber)
	return result, nil
}

// toRow maps a record onto header names. Missing trailing fields are absent,
// extra fields are dropped and the first occurrence of a repeated column wins.
func toRow(header, record []string) domain.Row {
	row := make(domain.Row, len(header))
	for i, name := range header {
		if _, seen := row[name]; seen {
			continue
		}
		if i < len(record) {
			row[name] = record[i]
		}
	}
	return row
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
