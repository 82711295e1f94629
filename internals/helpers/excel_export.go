// file: internals/helpers/excel_export.go
package helper

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

const MIMEXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExcelColumn: satu kolom export (header + getter per baris).
type ExcelColumn[T any] struct {
	Header string
	Value  func(T) any
}

// BuildExcel: satu sheet, baris 1 = header (bold), data mulai baris 2.
func BuildExcel[T any](sheet string, cols []ExcelColumn[T], rows []T) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for i, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
			return nil, err
		}
	}
	if len(cols) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(cols), 1)
		_ = f.SetCellStyle(sheet, "A1", last, bold)
	}

	for r, row := range rows {
		for i, col := range cols {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellValue(sheet, cell, excelValue(col.Value(row))); err != nil {
				return nil, fmt.Errorf("row %d col %q: %w", r+1, col.Header, err)
			}
		}
	}
	return f.WriteToBuffer()
}

// tipe yang tidak dikenal excelize (decimal, pointer) -> string / angka
func excelValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("02.01.2006")
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format("02.01.2006")
	case interface{ InexactFloat64() float64 }:
		return t.InexactFloat64()
	case fmt.Stringer:
		return t.String()
	}
	return v
}

// SendExcel: tulis buffer xlsx sebagai attachment.
func SendExcel(c *fiber.Ctx, filename string, buf *bytes.Buffer) error {
	if !strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		filename += ".xlsx"
	}
	c.Set(fiber.HeaderContentType, MIMEXlsx)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}

// ExportFilename: "students_acme_20250601.xlsx"
func ExportFilename(kind, tenant string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.xlsx", kind, tenant, now.Format("20060102"))
}
