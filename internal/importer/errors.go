package importer

import (
	"fmt"
	"strings"
)

// HeaderError rejects a whole submission because of unknown column names.
type HeaderError struct {
	Invalid []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("invalid header: %s", strings.Join(e.Invalid, ", "))
}

// RowValidationError lists the rule violations of a single row.
type RowValidationError struct {
	RowNumber int
	Messages  []string
}

func (e *RowValidationError) Error() string {
	if e.RowNumber > 0 {
		return fmt.Sprintf("row %d: %s", e.RowNumber, strings.Join(e.Messages, "; "))
	}
	return strings.Join(e.Messages, "; ")
}
