// Package shrink implements the per-list shrink record log: registry of
// department lists, validated appends, date-range queries and deletes.
package shrink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/shrinktrack/internal/domain/models"
)

// ErrValidation indicates a required field was missing from an append.
var ErrValidation = errors.New("validation failed")

// ErrInvalidList indicates the list name matched nothing in the registry.
var ErrInvalidList = errors.New("invalid-list")

// ErrListNotFound indicates a single-record delete targeted a list with no
// backing partition in storage.
var ErrListNotFound = errors.New("list-not-found")

// ErrRecordNotFound indicates a single-record delete targeted an id absent
// from its partition.
var ErrRecordNotFound = errors.New("record-not-found")

const dateLayout = "2006-01-02"

// Store is the durable, partition-keyed record collection behind the
// service. Every mutation persists the whole partition before returning,
// so a nil error implies the change survived the request.
type Store interface {
	// Partitions lists the keys present in durable storage.
	Partitions(ctx context.Context) ([]string, error)
	// Records loads a partition in append order. The boolean reports
	// whether the partition exists at all.
	Records(ctx context.Context, listKey string) ([]models.ShrinkRecord, bool, error)
	// Append persists one record at the end of a partition, creating the
	// partition when absent.
	Append(ctx context.Context, listKey string, rec models.ShrinkRecord) error
	// Replace overwrites a partition's full record sequence.
	Replace(ctx context.Context, listKey string, records []models.ShrinkRecord) error
	// EnsurePartition creates an empty partition when none exists.
	EnsurePartition(ctx context.Context, listKey string) error
}

// ListRecords pairs a department list name with its records, used by
// multi-list export and summaries.
type ListRecords struct {
	List    string
	Records []models.ShrinkRecord
}

// Service coordinates the department registry and the record store.
type Service struct {
	store  Store
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	names []string
	keys  map[string]struct{}
}

// NewService builds the service and bootstraps the registry: the union of
// the configured department names and any partition keys already present
// in storage, each backed by a partition before the first request.
func NewService(ctx context.Context, store Store, departments []string, loc *time.Location, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	s := &Service{
		store:  store,
		loc:    loc,
		logger: logger,
		now:    time.Now,
		keys:   make(map[string]struct{}),
	}

	for _, name := range departments {
		s.register(name)
	}

	existing, err := store.Partitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load existing partitions: %w", err)
	}
	for _, key := range existing {
		s.register(key)
	}

	for _, name := range s.names {
		if err := store.EnsurePartition(ctx, CanonicalKey(name)); err != nil {
			return nil, fmt.Errorf("bootstrap partition %s: %w", name, err)
		}
	}

	logger.Info("department registry ready", zap.Strings("departments", s.names))
	return s, nil
}

// CanonicalKey produces the partition/registry key for a list name:
// trimmed and uppercased, so "Produce" and "PRODUCE " collide.
func CanonicalKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// register adds a name to the registry unless its canonical key is taken.
func (s *Service) register(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	key := CanonicalKey(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return
	}
	s.keys[key] = struct{}{}
	s.names = append(s.names, name)
}

// Departments returns the registry names in registration order.
func (s *Service) Departments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Resolve maps a caller-supplied list name to its partition key, matching
// case/whitespace-insensitively against the registry.
func (s *Service) Resolve(name string) (string, error) {
	key := CanonicalKey(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; !ok {
		return "", ErrInvalidList
	}
	return key, nil
}

// Append validates and durably records one shrink event, assigning id and
// UTC timestamp. The partition is created on the fly when missing.
func (s *Service) Append(ctx context.Context, list string, in models.AppendInput) (models.ShrinkRecord, error) {
	key, err := s.Resolve(list)
	if err != nil {
		return models.ShrinkRecord{}, err
	}

	code := strings.TrimSpace(in.ItemCode)
	if code == "" {
		return models.ShrinkRecord{}, fmt.Errorf("%w: itemCode is required", ErrValidation)
	}
	if in.Quantity == nil {
		return models.ShrinkRecord{}, fmt.Errorf("%w: quantity is required", ErrValidation)
	}

	rec := models.ShrinkRecord{
		ID:          uuid.NewString(),
		Timestamp:   s.now().UTC(),
		ItemCode:    code,
		Brand:       strings.TrimSpace(in.Brand),
		Description: strings.TrimSpace(in.Description),
		Quantity:    *in.Quantity,
		Price:       in.Price,
	}

	if err := s.store.Append(ctx, key, rec); err != nil {
		return models.ShrinkRecord{}, fmt.Errorf("append record to %s: %w", key, err)
	}

	s.logger.Info("shrink recorded",
		zap.String("list", key),
		zap.String("item_code", rec.ItemCode),
		zap.Float64("quantity", rec.Quantity))

	return rec, nil
}

// Query returns a list's records in insertion order, optionally filtered
// to an inclusive date range. A list with no partition yields an empty
// sequence, not an error.
func (s *Service) Query(ctx context.Context, list string, rng models.DateRange) ([]models.ShrinkRecord, error) {
	key, err := s.Resolve(list)
	if err != nil {
		return nil, err
	}

	records, _, err := s.store.Records(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load partition %s: %w", key, err)
	}
	return filterRange(records, rng), nil
}

// QueryAll returns every registry list with its (optionally filtered)
// records, in registry order.
func (s *Service) QueryAll(ctx context.Context, rng models.DateRange) ([]ListRecords, error) {
	out := make([]ListRecords, 0, len(s.Departments()))
	for _, name := range s.Departments() {
		records, _, err := s.store.Records(ctx, CanonicalKey(name))
		if err != nil {
			return nil, fmt.Errorf("load partition %s: %w", name, err)
		}
		out = append(out, ListRecords{List: CanonicalKey(name), Records: filterRange(records, rng)})
	}
	return out, nil
}

// DeleteRange removes the records whose timestamp falls inside the range,
// preserving the order of the rest. An empty range clears the partition.
func (s *Service) DeleteRange(ctx context.Context, list string, rng models.DateRange) error {
	key, err := s.Resolve(list)
	if err != nil {
		return err
	}

	if rng.IsZero() {
		if err := s.store.Replace(ctx, key, []models.ShrinkRecord{}); err != nil {
			return fmt.Errorf("clear partition %s: %w", key, err)
		}
		s.logger.Info("partition cleared", zap.String("list", key))
		return nil
	}

	records, _, err := s.store.Records(ctx, key)
	if err != nil {
		return fmt.Errorf("load partition %s: %w", key, err)
	}

	kept := make([]models.ShrinkRecord, 0, len(records))
	for _, rec := range records {
		if !rng.Contains(rec.Timestamp) {
			kept = append(kept, rec)
		}
	}

	if err := s.store.Replace(ctx, key, kept); err != nil {
		return fmt.Errorf("replace partition %s: %w", key, err)
	}

	s.logger.Info("range deleted",
		zap.String("list", key),
		zap.Int("removed", len(records)-len(kept)))
	return nil
}

// DeleteOne removes a single record by id. The returned error tells a list
// with no backing partition apart from a missing record for diagnostics;
// callers surface both the same way.
func (s *Service) DeleteOne(ctx context.Context, list, id string) error {
	key, err := s.Resolve(list)
	if err != nil {
		return err
	}

	records, found, err := s.store.Records(ctx, key)
	if err != nil {
		return fmt.Errorf("load partition %s: %w", key, err)
	}
	if !found {
		return ErrListNotFound
	}

	idx := -1
	for i, rec := range records {
		if rec.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrRecordNotFound
	}

	kept := append(records[:idx:idx], records[idx+1:]...)
	if err := s.store.Replace(ctx, key, kept); err != nil {
		return fmt.Errorf("replace partition %s: %w", key, err)
	}

	s.logger.Info("record deleted", zap.String("list", key), zap.String("id", id))
	return nil
}

// ParseRange builds an inclusive day-granular range from optional
// "2006-01-02" bounds, anchored in the service's configured timezone.
func (s *Service) ParseRange(from, to string) (models.DateRange, error) {
	var rng models.DateRange

	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, s.loc)
		if err != nil {
			return rng, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrValidation)
		}
		rng.From = &t
	}
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, s.loc)
		if err != nil {
			return rng, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrValidation)
		}
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		rng.To = &end
	}
	return rng, nil
}

// Location reports the timezone date-range boundaries are anchored in.
func (s *Service) Location() *time.Location {
	return s.loc
}

func filterRange(records []models.ShrinkRecord, rng models.DateRange) []models.ShrinkRecord {
	if rng.IsZero() {
		if records == nil {
			return []models.ShrinkRecord{}
		}
		return records
	}
	out := make([]models.ShrinkRecord, 0, len(records))
	for _, rec := range records {
		if rng.Contains(rec.Timestamp) {
			out = append(out, rec)
		}
	}
	return out
}
