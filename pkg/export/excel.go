// Package export writes report downloads as Excel workbooks.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// SalesRow is one order in the sales export.
type SalesRow struct {
	Date       time.Time
	OrderNo    string
	ItemCount  int
	Subtotal   int64 // cents
	Discount   int64
	Total      int64
	GrossProfit int64
}

// SalesReport renders rows into an xlsx workbook with a totals line.
// Money columns are converted from cents to major units.
func SalesReport(title string, rows []SalesRow) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Sales"

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}

	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return nil, err
	}

	headers := []string{"Date", "Order No", "Items", "Subtotal", "Discount", "Total", "Gross Profit"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheet, "A3", "G3", headerStyle); err != nil {
		return nil, err
	}

	var sumSubtotal, sumDiscount, sumTotal, sumProfit int64
	for i, r := range rows {
		row := i + 4
		values := []interface{}{
			r.Date.Format("2006-01-02 15:04"),
			r.OrderNo,
			r.ItemCount,
			major(r.Subtotal),
			major(r.Discount),
			major(r.Total),
			major(r.GrossProfit),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
		sumSubtotal += r.Subtotal
		sumDiscount += r.Discount
		sumTotal += r.Total
		sumProfit += r.GrossProfit
	}

	totalRow := len(rows) + 5
	totals := []interface{}{
		"TOTAL", "", len(rows),
		major(sumSubtotal), major(sumDiscount), major(sumTotal), major(sumProfit),
	}
	for j, v := range totals {
		cell, _ := excelize.CoordinatesToCellName(j+1, totalRow)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return nil, err
		}
	}
	start, _ := excelize.CoordinatesToCellName(1, totalRow)
	end, _ := excelize.CoordinatesToCellName(len(totals), totalRow)
	if err := f.SetCellStyle(sheet, start, end, headerStyle); err != nil {
		return nil, err
	}

	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, 16); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Filename builds a timestamped download name like sales-20260828.xlsx.
func Filename(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", prefix, at.Format("20060102"))
}

func major(cents int64) float64 {
	return float64(cents) / 100
}
