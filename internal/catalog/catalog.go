// Package catalog builds the in-memory master item index used to
// auto-populate shrink entries from a scanned code.
package catalog

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/shrinktrack/internal/barcode"
	"github.com/mamadbah2/shrinktrack/internal/domain/models"
)

// Ordered header aliases per logical field. Matching is case-insensitive
// and whitespace-tolerant; the first alias present in the header row wins.
var (
	codeAliases    = []string{"upc", "upc code", "barcode", "item code", "itemcode", "code", "gtin", "scan code"}
	brandAliases   = []string{"brand", "brand name", "vendor", "manufacturer"}
	descAliases    = []string{"description", "item description", "desc", "item name", "name"}
	priceAliases   = []string{"price", "retail", "retail price", "unit price"}
	subDeptAliases = []string{"sub department", "subdepartment", "sub dept", "subdept", "sub-department", "dept"}

	routeIDAliases   = []string{"sub department", "subdepartment", "subdept", "sub dept", "id", "code"}
	routeListAliases = []string{"list", "department", "shrink list", "list name"}
)

// Index is the read-only lookup table from normalized item code to catalog
// item. A nil or empty index is valid and always misses.
type Index struct {
	items map[string]models.CatalogItem
}

// Empty returns an index with no entries, used when the master table is
// unavailable so lookups degrade to always-miss instead of failing startup.
func Empty() *Index {
	return &Index{items: map[string]models.CatalogItem{}}
}

// New builds the index from the master item table and the sub-department
// routing table, both given as raw rows with the header row first. Rows
// lacking a resolvable code are skipped; an unparsable price leaves the
// item priceless rather than dropping the row.
func New(master, routing [][]string, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}

	routes := buildRouting(routing)
	idx := &Index{items: make(map[string]models.CatalogItem)}

	if len(master) == 0 {
		logger.Warn("master item table empty, catalog lookups will always miss")
		return idx
	}

	cols := resolveColumns(master[0])
	if cols.code < 0 {
		logger.Warn("master item table has no recognizable code column, catalog lookups will always miss")
		return idx
	}

	var skipped int
	for _, row := range master[1:] {
		key := barcode.Normalize(cell(row, cols.code))
		if key == barcode.EmptyKey {
			skipped++
			continue
		}

		item := models.CatalogItem{
			Code:          key,
			Brand:         cell(row, cols.brand),
			Description:   cell(row, cols.desc),
			SubDepartment: cell(row, cols.subDept),
		}
		if raw := cell(row, cols.price); raw != "" {
			if p, err := parsePrice(raw); err == nil {
				item.Price = &p
			}
		}
		if item.SubDepartment != "" {
			item.RoutedList = routes[canonical(item.SubDepartment)]
		}

		idx.items[key] = item
	}

	logger.Info("catalog index built",
		zap.Int("items", len(idx.items)),
		zap.Int("skipped_rows", skipped),
		zap.Int("routes", len(routes)))

	return idx
}

// Lookup resolves a raw or normalized code against the index. A miss is a
// normal outcome, never an error.
func (i *Index) Lookup(code string) (models.CatalogItem, bool) {
	if i == nil || len(i.items) == 0 {
		return models.CatalogItem{}, false
	}
	item, ok := i.items[barcode.Normalize(code)]
	return item, ok
}

// Len reports the number of indexed items.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.items)
}

type columnSet struct {
	code, brand, desc, price, subDept int
}

func resolveColumns(header []string) columnSet {
	return columnSet{
		code:    findColumn(header, codeAliases),
		brand:   findColumn(header, brandAliases),
		desc:    findColumn(header, descAliases),
		price:   findColumn(header, priceAliases),
		subDept: findColumn(header, subDeptAliases),
	}
}

func findColumn(header []string, aliases []string) int {
	for _, alias := range aliases {
		for i, h := range header {
			if canonical(h) == alias {
				return i
			}
		}
	}
	return -1
}

func buildRouting(rows [][]string) map[string]string {
	routes := make(map[string]string)
	if len(rows) < 2 {
		return routes
	}

	idCol := findColumn(rows[0], routeIDAliases)
	listCol := findColumn(rows[0], routeListAliases)
	if idCol < 0 || listCol < 0 {
		return routes
	}

	for _, row := range rows[1:] {
		id := canonical(cell(row, idCol))
		list := strings.TrimSpace(cell(row, listCol))
		if id == "" || list == "" {
			continue
		}
		routes[id] = list
	}
	return routes
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func parsePrice(raw string) (float64, error) {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return strconv.ParseFloat(cleaned, 64)
}

func canonical(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
