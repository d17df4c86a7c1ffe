package models

import "time"

// ShrinkRecord is a single inventory loss event recorded against a
// department list. Immutable once stored, except by deletion.
type ShrinkRecord struct {
	ID          string    `bson:"id" json:"id"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
	ItemCode    string    `bson:"item_code" json:"itemCode"`
	Brand       string    `bson:"brand,omitempty" json:"brand,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Quantity    float64   `bson:"quantity" json:"quantity"`
	Price       *float64  `bson:"price,omitempty" json:"price"`
}

// AppendInput carries the caller-supplied fields of a shrink event before
// the store assigns id and timestamp. Quantity is a pointer so that a
// missing field can be told apart from an explicit zero.
type AppendInput struct {
	ItemCode    string   `json:"itemCode"`
	Brand       string   `json:"brand"`
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	Price       *float64 `json:"price"`
}

// DateRange is an inclusive day-granular timestamp filter. A nil side is
// unbounded. From is anchored at 00:00:00 and To at the last nanosecond of
// its day, both in the timezone the service was configured with.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether ts falls inside the range.
func (r DateRange) Contains(ts time.Time) bool {
	if r.From != nil && ts.Before(*r.From) {
		return false
	}
	if r.To != nil && ts.After(*r.To) {
		return false
	}
	return true
}

// IsZero reports whether both bounds are absent.
func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}
