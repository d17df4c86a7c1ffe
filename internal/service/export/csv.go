// Package export renders shrink record sets as CSV for download.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mamadbah2/shrinktrack/internal/domain/models"
)

// Entry pairs a record with the list it belongs to, so multi-list exports
// can carry a leading list column.
type Entry struct {
	List   string
	Record models.ShrinkRecord
}

// Single wraps one list's records as export entries without a list name.
func Single(records []models.ShrinkRecord) []Entry {
	out := make([]Entry, 0, len(records))
	for _, rec := range records {
		out = append(out, Entry{Record: rec})
	}
	return out
}

// Render produces the CSV text for a record set. Each row's total is
// quantity times price with missing values treated as zero for the
// computation only; a trailing TOTAL row sums them to two decimals. Every
// field is wrapped in double quotes with embedded quotes doubled.
func Render(entries []Entry, includeListColumn bool) string {
	var b strings.Builder

	header := []string{"id", "timestamp", "itemCode", "brand", "description", "quantity", "price", "total"}
	if includeListColumn {
		header = append([]string{"list"}, header...)
	}
	writeRow(&b, header)

	var grand float64
	for _, e := range entries {
		rec := e.Record
		total := rec.Quantity * priceOrZero(rec.Price)
		grand += total

		row := []string{
			rec.ID,
			rec.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			rec.ItemCode,
			rec.Brand,
			rec.Description,
			formatNumber(rec.Quantity),
			formatPrice(rec.Price),
			fmt.Sprintf("%.2f", total),
		}
		if includeListColumn {
			row = append([]string{e.List}, row...)
		}
		writeRow(&b, row)
	}

	totalRow := make([]string, len(header))
	totalRow[0] = "TOTAL"
	totalRow[len(totalRow)-1] = fmt.Sprintf("%.2f", grand)
	writeRow(&b, totalRow)

	return b.String()
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

func priceOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return formatNumber(*p)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
