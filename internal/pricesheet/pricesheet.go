// Package pricesheet reads supplier price sheets into ingredient catalog rows
// and upserts them by name.
package pricesheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// MaxUploadSize caps the size of an uploaded price sheet.
const MaxUploadSize = 5 << 20 // 5 MiB

// ErrEmptySheet is returned when a sheet contains no usable rows.
var ErrEmptySheet = errors.New("pricesheet: no ingredient rows found")

// Row is one priced catalog entry.
type Row struct {
	Name        string
	UnitSymbol  string
	CostPerUnit decimal.Decimal
}

// Parse reads rows from a CSV, YAML or PDF sheet. The format is picked from
// the file extension, falling back to the declared content type. Rows that
// cannot be read are returned in skipped, quoted as they appeared.
func Parse(fileName, contentType string, data []byte) (rows []Row, skipped []string, err error) {
	switch {
	case isPDF(fileName, contentType):
		text, err := ExtractPDFText(data)
		if err != nil {
			return nil, nil, fmt.Errorf("read pdf: %w", err)
		}
		rows, skipped = ParseText(text)
	case isYAML(fileName, contentType):
		rows, skipped, err = ParseYAML(data)
		if err != nil {
			return nil, nil, err
		}
	default:
		rows, skipped, err = ParseCSV(bytes.NewReader(data))
		if err != nil {
			return nil, nil, err
		}
	}
	if len(rows) == 0 {
		return nil, skipped, ErrEmptySheet
	}
	return rows, skipped, nil
}

func isPDF(fileName, contentType string) bool {
	if strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		return true
	}
	return strings.Contains(strings.ToLower(contentType), "pdf")
}

func isYAML(fileName, contentType string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".yaml", ".yml":
		return true
	}
	return strings.Contains(strings.ToLower(contentType), "yaml")
}

// ParseCSV reads name, unit and cost columns. A header row is optional; when
// present it may list the columns in any order.
func ParseCSV(r io.Reader) ([]Row, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}

	columns := columnIndex{name: 0, unit: 1, cost: 2}
	if len(records) > 0 {
		if header, ok := headerColumns(records[0]); ok {
			columns = header
			records = records[1:]
		}
	}

	var rows []Row
	var skipped []string
	for _, record := range records {
		if blank(record) {
			continue
		}
		row, ok := columns.row(record)
		if !ok {
			skipped = append(skipped, strings.Join(record, ","))
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

type columnIndex struct {
	name, unit, cost int
}

func (c columnIndex) row(record []string) (Row, bool) {
	if c.name >= len(record) || c.cost >= len(record) {
		return Row{}, false
	}
	unit := ""
	if c.unit >= 0 && c.unit < len(record) {
		unit = record[c.unit]
	}
	return newRow(record[c.name], unit, record[c.cost])
}

func headerColumns(record []string) (columnIndex, bool) {
	columns := columnIndex{name: -1, unit: -1, cost: -1}
	for i, field := range record {
		switch strings.ToLower(strings.TrimSpace(field)) {
		case "name", "ingredient", "ingredient_name", "item":
			columns.name = i
		case "unit", "unit_symbol", "uom":
			columns.unit = i
		case "cost", "cost_per_unit", "price", "unit_cost":
			columns.cost = i
		}
	}
	if columns.name < 0 || columns.cost < 0 {
		return columnIndex{}, false
	}
	return columns, true
}

// ParseText reads whitespace separated lines of the form
// "<name...> <unit> <cost>", as produced by a PDF text dump. Lines without a
// trailing cost are skipped.
func ParseText(text string) ([]Row, []string) {
	var rows []Row
	var skipped []string
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			skipped = append(skipped, strings.TrimSpace(line))
			continue
		}
		last := len(fields) - 1
		row, ok := newRow(strings.Join(fields[:last-1], " "), fields[last-1], fields[last])
		if !ok {
			skipped = append(skipped, strings.TrimSpace(line))
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped
}

type yamlRow struct {
	Name string `yaml:"name"`
	Unit string `yaml:"unit"`
	Cost string `yaml:"cost"`
}

// ParseYAML reads either a top-level list of {name, unit, cost} entries or a
// mapping with those entries under "ingredients".
func ParseYAML(data []byte) ([]Row, []string, error) {
	var document yaml.Node
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, nil, fmt.Errorf("read yaml: %w", err)
	}
	if len(document.Content) == 0 {
		return nil, nil, nil
	}

	var entries []yamlRow
	root := document.Content[0]
	if root.Kind == yaml.SequenceNode {
		if err := root.Decode(&entries); err != nil {
			return nil, nil, fmt.Errorf("read yaml: %w", err)
		}
	} else {
		var sheet struct {
			Ingredients []yamlRow `yaml:"ingredients"`
		}
		if err := root.Decode(&sheet); err != nil {
			return nil, nil, fmt.Errorf("read yaml: %w", err)
		}
		entries = sheet.Ingredients
	}

	var rows []Row
	var skipped []string
	for _, entry := range entries {
		row, ok := newRow(entry.Name, entry.Unit, entry.Cost)
		if !ok {
			skipped = append(skipped, strings.Join([]string{entry.Name, entry.Unit, entry.Cost}, ","))
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

// ExtractPDFText concatenates the plain text of every page.
func ExtractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

func newRow(name, unit, cost string) (Row, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Row{}, false
	}
	value, err := ParseCost(cost)
	if err != nil {
		return Row{}, false
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = "unit"
	}
	return Row{Name: name, UnitSymbol: unit, CostPerUnit: value}, true
}

// ParseCost reads a non-negative amount, tolerating a leading currency sign
// and thousands separators.
func ParseCost(value string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimLeft(cleaned, "$€£")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid cost %q: %w", value, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid cost %q: must not be negative", value)
	}
	return amount, nil
}

func blank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
