package shrink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shrinktrack/internal/domain/models"
	"github.com/mamadbah2/shrinktrack/internal/repository/jsonfile"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	store, err := jsonfile.NewStore(t.TempDir())
	require.NoError(t, err)

	svc, err := NewService(context.Background(), store, []string{"PRODUCE", "DAIRY", "HEALTH & BEAUTY"}, time.UTC, nil)
	require.NoError(t, err)
	return svc
}

func qty(v float64) *float64 { return &v }

func TestAppend_ThenQueryRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	in := models.AppendInput{ItemCode: "0003600029145", Brand: "Kleenex", Quantity: qty(2), Price: qty(3.49)}
	rec, err := svc.Append(ctx, "PRODUCE", in)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Timestamp.IsZero())

	records, err := svc.Query(ctx, "PRODUCE", models.DateRange{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.Equal(t, "0003600029145", records[0].ItemCode)
	assert.Equal(t, 2.0, records[0].Quantity)
	require.NotNil(t, records[0].Price)
	assert.InDelta(t, 3.49, *records[0].Price, 1e-9)
}

func TestAppend_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Append(ctx, "PRODUCE", models.AppendInput{Quantity: qty(1)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Append(ctx, "PRODUCE", models.AppendInput{ItemCode: "123"})
	assert.ErrorIs(t, err, ErrValidation)

	// An explicit zero quantity is present, not missing.
	_, err = svc.Append(ctx, "PRODUCE", models.AppendInput{ItemCode: "123", Quantity: qty(0)})
	assert.NoError(t, err)
}

func TestAppend_UnknownList(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Append(context.Background(), "FLORAL", models.AppendInput{ItemCode: "123", Quantity: qty(1)})
	assert.ErrorIs(t, err, ErrInvalidList)
}

func TestResolve_CaseAndWhitespaceInsensitive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Append(ctx, "PRODUCE", models.AppendInput{ItemCode: "123", Quantity: qty(2), Price: qty(1.5)})
	require.NoError(t, err)
	assert.Equal(t, 2.0, rec.Quantity)

	records, err := svc.Query(ctx, "  produce ", models.DateRange{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
}

func TestDeleteRange_DayBoundaries(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	appendAt := func(ts time.Time, code string) models.ShrinkRecord {
		svc.now = func() time.Time { return ts }
		rec, err := svc.Append(ctx, "DAIRY", models.AppendInput{ItemCode: code, Quantity: qty(1)})
		require.NoError(t, err)
		return rec
	}

	kept := appendAt(time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), "keep-before")
	appendAt(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), "remove-inside")
	keptAfter := appendAt(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "keep-after")

	rng, err := svc.ParseRange("2024-01-01", "2024-01-01")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteRange(ctx, "DAIRY", rng))

	records, err := svc.Query(ctx, "DAIRY", models.DateRange{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, kept.ID, records[0].ID)
	assert.Equal(t, keptAfter.ID, records[1].ID)
}

func TestDeleteRange_NoRangeClearsPartition(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Append(ctx, "PRODUCE", models.AppendInput{ItemCode: "1", Quantity: qty(1)})
	require.NoError(t, err)
	_, err = svc.Append(ctx, "PRODUCE", models.AppendInput{ItemCode: "2", Quantity: qty(1)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRange(ctx, "PRODUCE", models.DateRange{}))

	records, err := svc.Query(ctx, "PRODUCE", models.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDeleteOne_Twice(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Append(ctx, "PRODUCE", models.AppendInput{ItemCode: "1", Quantity: qty(1)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOne(ctx, "PRODUCE", rec.ID))
	assert.ErrorIs(t, svc.DeleteOne(ctx, "PRODUCE", rec.ID), ErrRecordNotFound)
}

func TestDeleteOne_PreservesOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var ids []string
	for _, code := range []string{"a", "b", "c"} {
		rec, err := svc.Append(ctx, "PRODUCE", models.AppendInput{ItemCode: code, Quantity: qty(1)})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	require.NoError(t, svc.DeleteOne(ctx, "PRODUCE", ids[1]))

	records, err := svc.Query(ctx, "PRODUCE", models.DateRange{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ids[0], records[0].ID)
	assert.Equal(t, ids[2], records[1].ID)
}

func TestDeleteOne_MissingPartition(t *testing.T) {
	store := &stubStore{}
	svc, err := NewService(context.Background(), store, []string{"PRODUCE"}, time.UTC, nil)
	require.NoError(t, err)

	err = svc.DeleteOne(context.Background(), "PRODUCE", "whatever")
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestQuery_RangeFilter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.now = func() time.Time { return time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC) }
	_, err := svc.Append(ctx, "PRODUCE", models.AppendInput{ItemCode: "in", Quantity: qty(1)})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2024, 5, 12, 8, 0, 0, 0, time.UTC) }
	_, err = svc.Append(ctx, "PRODUCE", models.AppendInput{ItemCode: "out", Quantity: qty(1)})
	require.NoError(t, err)

	rng, err := svc.ParseRange("2024-05-10", "2024-05-11")
	require.NoError(t, err)

	records, err := svc.Query(ctx, "PRODUCE", rng)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "in", records[0].ItemCode)

	// Open-ended lower bound.
	rng, err = svc.ParseRange("", "2024-05-11")
	require.NoError(t, err)
	records, err = svc.Query(ctx, "PRODUCE", rng)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestParseRange_BadFormat(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ParseRange("01/05/2024", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.ParseRange("", "yesterday")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewService_UnionsExistingPartitions(t *testing.T) {
	dir := t.TempDir()
	store, err := jsonfile.NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Append(context.Background(), "BAKERY", models.ShrinkRecord{ID: "x", ItemCode: "1", Quantity: 1}))

	svc, err := NewService(context.Background(), store, []string{"PRODUCE"}, time.UTC, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"PRODUCE", "BAKERY"}, svc.Departments())

	records, err := svc.Query(context.Background(), "bakery", models.DateRange{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestQueryAll_RegistryOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Append(ctx, "DAIRY", models.AppendInput{ItemCode: "1", Quantity: qty(1)})
	require.NoError(t, err)

	lists, err := svc.QueryAll(ctx, models.DateRange{})
	require.NoError(t, err)
	require.Len(t, lists, 3)
	assert.Equal(t, "PRODUCE", lists[0].List)
	assert.Equal(t, "DAIRY", lists[1].List)
	assert.Empty(t, lists[0].Records)
	assert.Len(t, lists[1].Records, 1)
}

// stubStore reports every partition as absent, for exercising the
// list-not-found path that a bootstrapped real store never hits.
type stubStore struct{}

func (s *stubStore) Partitions(ctx context.Context) ([]string, error) { return nil, nil }
func (s *stubStore) Records(ctx context.Context, listKey string) ([]models.ShrinkRecord, bool, error) {
	return nil, false, nil
}
func (s *stubStore) Append(ctx context.Context, listKey string, rec models.ShrinkRecord) error {
	return nil
}
func (s *stubStore) Replace(ctx context.Context, listKey string, records []models.ShrinkRecord) error {
	return nil
}
func (s *stubStore) EnsurePartition(ctx context.Context, listKey string) error { return nil }
