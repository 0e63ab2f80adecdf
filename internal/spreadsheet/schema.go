package spreadsheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"linentrack/internal/domain"
	apperrors "linentrack/internal/errors"
)

type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDate
)

// Column binds a spreadsheet header to an order field. Default is used when
// the column is absent or the cell is blank and must itself parse.
type Column struct {
	Header  string
	Field   string
	Default string
}

type fieldDef struct {
	kind Kind
	set  func(f *domain.OrderFields, v value)
}

type value struct {
	text   string
	number float64
}

var fields = map[string]fieldDef{
	"client_name":     {KindText, func(f *domain.OrderFields, v value) { f.ClientName = v.text }},
	"product_name":    {KindText, func(f *domain.OrderFields, v value) { f.ProductName = v.text }},
	"quantity":        {KindNumber, func(f *domain.OrderFields, v value) { f.Quantity = v.number }},
	"unit":            {KindText, func(f *domain.OrderFields, v value) { f.Unit = v.text }},
	"color":           {KindText, func(f *domain.OrderFields, v value) { f.Color = v.text }},
	"yarn_type":       {KindText, func(f *domain.OrderFields, v value) { f.YarnType = v.text }},
	"weight":          {KindText, func(f *domain.OrderFields, v value) { f.Weight = v.text }},
	"work_site":       {KindText, func(f *domain.OrderFields, v value) { f.WorkSite = v.text }},
	"manager":         {KindText, func(f *domain.OrderFields, v value) { f.Manager = v.text }},
	"contact":         {KindText, func(f *domain.OrderFields, v value) { f.Contact = v.text }},
	"order_type":      {KindText, func(f *domain.OrderFields, v value) { f.OrderType = v.text }},
	"order_date":      {KindDate, func(f *domain.OrderFields, v value) { f.OrderDate = v.text }},
	"delivery_date":   {KindDate, func(f *domain.OrderFields, v value) { f.DeliveryDate = v.text }},
	"delivery_to":     {KindText, func(f *domain.OrderFields, v value) { f.DeliveryTo = v.text }},
	"email_sent_date": {KindDate, func(f *domain.OrderFields, v value) { f.EmailSentDate = v.text }},
	"note":            {KindText, func(f *domain.OrderFields, v value) { f.Note = v.text }},
}

// DefaultColumns is the order sheet vocabulary used by the office.
var DefaultColumns = []Column{
	{Header: "업체명", Field: "client_name"},
	{Header: "품명", Field: "product_name"},
	{Header: "수량", Field: "quantity"},
	{Header: "단위", Field: "unit"},
	{Header: "색상", Field: "color"},
	{Header: "원사종류", Field: "yarn_type"},
	{Header: "중량", Field: "weight"},
	{Header: "작업처", Field: "work_site"},
	{Header: "담당자", Field: "manager"},
	{Header: "연락처", Field: "contact"},
	{Header: "발주구분", Field: "order_type"},
	{Header: "발주일자", Field: "order_date"},
	{Header: "납기일자", Field: "delivery_date"},
	{Header: "납품처", Field: "delivery_to"},
	{Header: "메일발송일", Field: "email_sent_date"},
	{Header: "비고", Field: "note"},
}

// Schema maps rows onto order fields. A column is matched by its header or
// its field key, both exact.
type Schema struct {
	columns  []Column
	byName   map[string]int
	defaults []value
}

// NewSchema validates the mapping table: headers and field keys must be
// unique across the table, every field must exist and defaults must parse.
func NewSchema(columns []Column) (*Schema, error) {
	s := &Schema{
		columns:  make([]Column, len(columns)),
		byName:   make(map[string]int, 2*len(columns)),
		defaults: make([]value, len(columns)),
	}
	copy(s.columns, columns)

	bound := make(map[string]string, len(columns))
	for i, col := range s.columns {
		if strings.TrimSpace(col.Header) == "" {
			return nil, fmt.Errorf("column %d: empty header", i)
		}
		fd, ok := fields[col.Field]
		if !ok {
			return nil, fmt.Errorf("column %q: unknown field %q", col.Header, col.Field)
		}
		if prev, dup := bound[col.Field]; dup {
			return nil, fmt.Errorf("field %q bound to both %q and %q", col.Field, prev, col.Header)
		}
		bound[col.Field] = col.Header

		for _, name := range []string{col.Header, col.Field} {
			if j, dup := s.byName[name]; dup && j != i {
				return nil, fmt.Errorf("column name %q used twice", name)
			}
			s.byName[name] = i
		}

		def, err := parseValue(fd.kind, col.Field, col.Default, false)
		if err != nil {
			return nil, fmt.Errorf("column %q: invalid default: %w", col.Header, err)
		}
		s.defaults[i] = def
	}

	return s, nil
}

// MustSchema is NewSchema for package-level tables.
func MustSchema(columns []Column) *Schema {
	s, err := NewSchema(columns)
	if err != nil {
		panic(err)
	}
	return s
}

var defaultSchema = MustSchema(DefaultColumns)

func DefaultSchema() *Schema {
	return defaultSchema
}

func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Unknown lists the headers that no column matches, in input order.
func (s *Schema) Unknown(headers []string) []string {
	var out []string
	for _, h := range headers {
		if h == "" {
			continue
		}
		if _, ok := s.byName[h]; !ok {
			out = append(out, h)
		}
	}
	return out
}

// MapRow builds order fields from one row. numeric names the cells the
// workbook stores as numbers; only those are read as Excel date serials.
// Values that fail to parse are replaced by the column default (numbers) or
// kept as raw text (dates) and reported as ParseErrors; they never fail the
// row.
func (s *Schema) MapRow(row Row, numeric map[string]bool) (domain.OrderFields, []*apperrors.ParseError) {
	var out domain.OrderFields
	var problems []*apperrors.ParseError

	for i, col := range s.columns {
		fd := fields[col.Field]

		key := col.Header
		raw := strings.TrimSpace(row[key])
		if raw == "" {
			key = col.Field
			raw = strings.TrimSpace(row[key])
		}
		if raw == "" {
			fd.set(&out, s.defaults[i])
			continue
		}

		v, perr := parseValue(fd.kind, col.Field, raw, numeric[key])
		if perr != nil {
			problems = append(problems, perr)
			if fd.kind == KindNumber {
				v = s.defaults[i]
			} else {
				v = value{text: raw}
			}
		}
		fd.set(&out, v)
	}

	return out, problems
}

// Excel stores dates in numeric cells as day serials. Larger numbers are
// read as digits such as 20240301.
const maxDateSerial = 100000

func parseValue(kind Kind, field, raw string, numeric bool) (value, *apperrors.ParseError) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case KindNumber:
		if raw == "" {
			return value{}, nil
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return value{}, apperrors.NewParseError(field, raw, err)
		}
		return value{number: n, text: raw}, nil
	case KindDate:
		if raw == "" {
			return value{}, nil
		}
		if numeric {
			if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 && serial < maxDateSerial {
				t, err := excelize.ExcelDateToTime(serial, false)
				if err != nil {
					return value{}, apperrors.NewParseError(field, raw, err)
				}
				return value{text: domain.FormatDate(t)}, nil
			}
		}
		t, err := domain.ParseDate(raw)
		if err != nil {
			return value{}, apperrors.NewParseError(field, raw, err)
		}
		return value{text: domain.FormatDate(t)}, nil
	}
	return value{text: raw}, nil
}
