package models

// CatalogItem is one row of the master product reference table, keyed by
// the normalized 13-digit item code. Built once at startup, read-only after.
type CatalogItem struct {
	Code          string   `json:"code"`
	Brand         string   `json:"brand,omitempty"`
	Description   string   `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	SubDepartment string   `json:"subDepartment,omitempty"`
	RoutedList    string   `json:"routedList,omitempty"`
}
