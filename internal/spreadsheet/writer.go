package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"linentrack/internal/domain"
)

const (
	ordersSheet   = "발주내역"
	templateSheet = "발주등록"
)

type exportColumn struct {
	header string
	width  float64
	value  func(o domain.Order) any
}

var exportColumns = []exportColumn{
	{"주문ID", 38, func(o domain.Order) any { return o.ID }},
	{"업체명", 16, func(o domain.Order) any { return o.ClientName }},
	{"품명", 20, func(o domain.Order) any { return o.ProductName }},
	{"수량", 8, func(o domain.Order) any { return o.Quantity }},
	{"단위", 6, func(o domain.Order) any { return o.Unit }},
	{"색상", 10, func(o domain.Order) any { return o.Color }},
	{"원사종류", 12, func(o domain.Order) any { return o.YarnType }},
	{"중량", 8, func(o domain.Order) any { return o.Weight }},
	{"작업처", 12, func(o domain.Order) any { return o.WorkSite }},
	{"담당자", 10, func(o domain.Order) any { return o.Manager }},
	{"연락처", 14, func(o domain.Order) any { return o.Contact }},
	{"발주구분", 10, func(o domain.Order) any { return o.OrderType }},
	{"발주일자", 12, func(o domain.Order) any { return o.OrderDate }},
	{"납기일자", 12, func(o domain.Order) any { return o.DeliveryDate }},
	{"납품처", 16, func(o domain.Order) any { return o.DeliveryTo }},
	{"메일발송일", 12, func(o domain.Order) any { return o.EmailSentDate }},
	{"진행상태", 10, func(o domain.Order) any { return o.Status.Label() }},
	{"제직일자", 12, func(o domain.Order) any { return o.WeavingDate }},
	{"염색일자", 12, func(o domain.Order) any { return o.DyeingDate }},
	{"봉제일자", 12, func(o domain.Order) any { return o.SewingDate }},
	{"출고일자", 12, func(o domain.Order) any { return o.ShippingDate }},
	{"출고방법", 10, func(o domain.Order) any { return o.ShippingMethod }},
	{"출고처", 16, func(o domain.Order) any { return o.ShippingDestName }},
	{"비고", 24, func(o domain.Order) any { return o.Note }},
	{"최종업데이트", 20, func(o domain.Order) any { return o.LastUpdated }},
}

// ExportHeaders returns the header row written by WriteOrders.
func ExportHeaders() []string {
	out := make([]string, len(exportColumns))
	for i, c := range exportColumns {
		out[i] = c.header
	}
	return out
}

// WriteOrders writes orders as an xlsx workbook, one row per order in the
// given order.
func WriteOrders(w io.Writer, orders []domain.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	headers := make([]string, len(exportColumns))
	widths := make([]float64, len(exportColumns))
	for i, c := range exportColumns {
		headers[i] = c.header
		widths[i] = c.width
	}
	if err := writeHeader(f, ordersSheet, headers, widths); err != nil {
		return err
	}

	for r, o := range orders {
		for c, col := range exportColumns {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(ordersSheet, cell, col.value(o)); err != nil {
				return fmt.Errorf("writing cell %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// WriteTemplate writes an empty import sheet carrying the headers of the
// schema.
func WriteTemplate(w io.Writer, schema *Schema) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	cols := schema.Columns()
	headers := make([]string, len(cols))
	widths := make([]float64, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
		widths[i] = 14
	}
	if err := writeHeader(f, templateSheet, headers, widths); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, widths []float64) error {
	boldStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		cell := col + "1"
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("writing header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, boldStyle); err != nil {
			return fmt.Errorf("styling header %s: %w", cell, err)
		}
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}

	return nil
}
