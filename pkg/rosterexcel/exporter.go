// Package rosterexcel renders interns and import reports as xlsx workbooks
// laid out by a YAML template.
package rosterexcel

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Section ids understood by the default layout.
const (
	SectionInterns       = "interns"
	SectionImportSummary = "import_summary"
	SectionFailedRows    = "failed_rows"
)

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrNothingToExport is returned when no bound section appears in the layout.
var ErrNothingToExport = errors.New("rosterexcel: no data bound to any section of the layout")

//go:embed layout.yaml
var defaultLayout []byte

// =============================================================================
// Layout
// =============================================================================

// Layout represents the YAML structure.
type Layout struct {
	Sheets []SheetTemplate `yaml:"sheets"`
}

// SheetTemplate represents a sheet in the YAML.
type SheetTemplate struct {
	Name     string          `yaml:"name"`
	Sections []SectionConfig `yaml:"sections"`
}

// SectionConfig is a block of rows in a sheet. Sections stack vertically
// with one blank row between them.
type SectionConfig struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	ShowHeader  bool           `yaml:"show_header"`
	TitleStyle  *StyleTemplate `yaml:"title_style"`
	HeaderStyle *StyleTemplate `yaml:"header_style"`
	Columns     []ColumnConfig `yaml:"columns"`
}

// ColumnConfig maps a record field to a column.
type ColumnConfig struct {
	Field  string  `yaml:"field"`
	Header string  `yaml:"header"`
	Width  float64 `yaml:"width"`
}

// StyleTemplate defines basic styling.
type StyleTemplate struct {
	Font *FontTemplate `yaml:"font"`
	Fill *FillTemplate `yaml:"fill"`
}

type FontTemplate struct {
	Bold  bool   `yaml:"bold"`
	Color string `yaml:"color"` // Hex color
}

type FillTemplate struct {
	Color string `yaml:"color"` // Hex color
}

// DefaultLayout returns the built-in layout.
func DefaultLayout() (*Layout, error) {
	return ParseLayout(bytes.NewReader(defaultLayout))
}

// LoadLayout reads a layout file, or the built-in layout when path is empty.
func LoadLayout(path string) (*Layout, error) {
	if path == "" {
		return DefaultLayout()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout file: %w", err)
	}
	defer f.Close()
	return ParseLayout(f)
}

// ParseLayout decodes a YAML layout.
func ParseLayout(r io.Reader) (*Layout, error) {
	var l Layout
	if err := yaml.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(l.Sheets) == 0 {
		return nil, fmt.Errorf("layout has no sheets")
	}
	return &l, nil
}

// =============================================================================
// Exporter
// =============================================================================

// Record is one data row keyed by field name.
type Record map[string]interface{}

// Exporter binds records to layout sections and writes the workbook.
type Exporter struct {
	layout *Layout
	data   map[string][]Record
}

func NewExporter(layout *Layout) *Exporter {
	return &Exporter{layout: layout, data: make(map[string][]Record)}
}

// Bind attaches records to the section with the given id.
func (e *Exporter) Bind(id string, records []Record) *Exporter {
	e.data[id] = records
	return e
}

func (e *Exporter) sheetBound(sheet SheetTemplate) bool {
	for _, sec := range sheet.Sections {
		if _, ok := e.data[sec.ID]; ok {
			return true
		}
	}
	return false
}

// StreamTo writes the workbook to w. Only sheets with at least one bound
// section are rendered; unbound sections of such sheets are skipped.
func (e *Exporter) StreamTo(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	rendered := 0
	for _, sheet := range e.layout.Sheets {
		if !e.sheetBound(sheet) {
			continue
		}
		if rendered == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return err
		}
		rendered++

		sw, err := f.NewStreamWriter(sheet.Name)
		if err != nil {
			return fmt.Errorf("failed to create stream writer: %w", err)
		}
		if err := e.streamSections(f, sw, sheet.Sections); err != nil {
			return err
		}
		if err := sw.Flush(); err != nil {
			return fmt.Errorf("failed to flush stream: %w", err)
		}
	}
	if rendered == 0 {
		return ErrNothingToExport
	}

	_, err := f.WriteTo(w)
	return err
}

// ToBytes renders the workbook in memory.
func (e *Exporter) ToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := e.StreamTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StreamToResponse writes the workbook as an attachment named filename.
func (e *Exporter) StreamToResponse(w http.ResponseWriter, filename string) error {
	data, err := e.ToBytes()
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	_, err = w.Write(data)
	return err
}

func (e *Exporter) streamSections(f *excelize.File, sw *excelize.StreamWriter, sections []SectionConfig) error {
	// Column widths must be set before the first row is written.
	widths := map[int]float64{}
	for _, sec := range sections {
		for i, col := range sec.Columns {
			if col.Width > widths[i+1] {
				widths[i+1] = col.Width
			}
		}
	}
	for col, width := range widths {
		if width > 0 {
			if err := sw.SetColWidth(col, col, width); err != nil {
				return err
			}
		}
	}

	rowNum := 1
	for _, sec := range sections {
		records, ok := e.data[sec.ID]
		if !ok {
			continue
		}

		if sec.Title != "" {
			opts, err := rowOpts(f, sec.TitleStyle)
			if err != nil {
				return err
			}
			if err := setRow(sw, rowNum, []interface{}{sec.Title}, opts...); err != nil {
				return err
			}
			rowNum++
		}

		if sec.ShowHeader && len(sec.Columns) > 0 {
			headers := make([]interface{}, len(sec.Columns))
			for i, col := range sec.Columns {
				headers[i] = col.Header
			}
			opts, err := rowOpts(f, sec.HeaderStyle)
			if err != nil {
				return err
			}
			if err := setRow(sw, rowNum, headers, opts...); err != nil {
				return err
			}
			rowNum++
		}

		for i, rec := range records {
			row := make([]interface{}, len(sec.Columns))
			for j, col := range sec.Columns {
				if v, ok := rec[col.Field]; ok {
					row[j] = v
				}
			}
			if err := setRow(sw, rowNum, row); err != nil {
				return fmt.Errorf("error writing row %d: %w", i+1, err)
			}
			rowNum++
		}

		// Add spacing between sections
		rowNum++
	}
	return nil
}

func setRow(sw *excelize.StreamWriter, rowNum int, values []interface{}, opts ...excelize.RowOpts) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return sw.SetRow(cell, values, opts...)
}

func rowOpts(f *excelize.File, tmpl *StyleTemplate) ([]excelize.RowOpts, error) {
	if tmpl == nil {
		return nil, nil
	}
	id, err := createStyle(f, tmpl)
	if err != nil {
		return nil, err
	}
	return []excelize.RowOpts{{StyleID: id}}, nil
}

func createStyle(f *excelize.File, tmpl *StyleTemplate) (int, error) {
	style := &excelize.Style{}
	if tmpl.Font != nil {
		style.Font = &excelize.Font{
			Bold:  tmpl.Font.Bold,
			Color: strings.TrimPrefix(tmpl.Font.Color, "#"),
		}
	}
	if tmpl.Fill != nil {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(tmpl.Fill.Color, "#")},
			Pattern: 1,
		}
	}
	return f.NewStyle(style)
}
