package models

// ListSummary aggregates one department list for a reporting day.
type ListSummary struct {
	List     string  `json:"list"`
	Records  int     `json:"records"`
	Quantity float64 `json:"quantity"`
	Value    float64 `json:"value"`
}

// DailySummary is the per-day shrink digest produced by the scheduler and
// posted to the operator webhook.
type DailySummary struct {
	Date         string        `json:"date"`
	Lists        []ListSummary `json:"lists"`
	TotalRecords int           `json:"totalRecords"`
	TotalValue   float64       `json:"totalValue"`
}
