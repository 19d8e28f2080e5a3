package importer

import (
	"strings"

	"github.com/Sanjit42/naming-service/internal/schema"
)

const utf8BOM = "\ufeff"

// ValidateHeader returns the header names that are not importable columns,
// in input order and with duplicates kept. An empty result accepts the header.
// Recognised columns may be missing.
func ValidateHeader(reg schema.Registry, header []string) []string {
	invalid := []string{}
	for _, name := range header {
		if !reg.Has(name) {
			invalid = append(invalid, name)
		}
	}
	return invalid
}

// CleanHeader trims header cells and strips a leading byte order mark.
func CleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		out[i] = strings.TrimSpace(name)
	}
	return out
}
