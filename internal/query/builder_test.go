package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type vehicleRow struct {
	ID          uint
	PlateNumber string
	Status      string
}

func (vehicleRow) TableName() string { return "vehicles" }

func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func buildSQL(t *testing.T, b *Builder) (string, []interface{}) {
	t.Helper()
	db := newDryRunDB(t)
	var rows []vehicleRow
	stmt := b.Apply(db.Model(&vehicleRow{})).Find(&rows).Statement
	return stmt.SQL.String(), stmt.Vars
}

func TestBuilderStructuredFiltersAreConjoined(t *testing.T) {
	minRate := 50.0
	b := New().
		Equal("status", "available").
		In("branch_id", []uint{1, 2}).
		Min("daily_rate", &minRate)

	sql, vars := buildSQL(t, b)
	assert.Contains(t, sql, "status = ")
	assert.Contains(t, sql, "branch_id IN ")
	assert.Contains(t, sql, "daily_rate >= ")
	assert.NotContains(t, sql, " OR ")
	assert.Len(t, vars, 3)
}

func TestBuilderSkipsAbsentFilters(t *testing.T) {
	b := New().
		In("branch_id", nil).
		Min("daily_rate", nil).
		Max("daily_rate", nil).
		Flag("is_active", nil).
		From("created_at", nil).
		To("created_at", nil)

	assert.False(t, b.HasStructured())
}

func TestBuilderBroadSearchWithoutStructuredFilters(t *testing.T) {
	b := New().Search("Toyota", "plate_number", "plate_number", "make", "model", "color")
	require.True(t, b.BroadSearch())

	sql, vars := buildSQL(t, b)
	assert.Contains(t, sql, "LOWER(plate_number) LIKE ")
	assert.Contains(t, sql, "LOWER(make) LIKE ")
	assert.Contains(t, sql, "LOWER(model) LIKE ")
	assert.Contains(t, sql, "LOWER(color) LIKE ")
	assert.Contains(t, sql, " OR ")
	for _, v := range vars {
		assert.Equal(t, "%toyota%", v)
	}
}

func TestBuilderSearchNarrowsUnderStructuredFilters(t *testing.T) {
	// Structured filters win: search must not widen them with an OR clause.
	b := New().
		Equal("status", "available").
		Search("ABC", "plate_number", "plate_number", "make", "model", "color")
	require.False(t, b.BroadSearch())

	sql, vars := buildSQL(t, b)
	assert.Contains(t, sql, "LOWER(plate_number) LIKE ")
	assert.NotContains(t, sql, "LOWER(make)")
	assert.NotContains(t, sql, " OR ")
	assert.Equal(t, []interface{}{"available", "%abc%"}, vars)
}

func TestBuilderSearchIsCaseInsensitive(t *testing.T) {
	b := New().Search("AbC-123", "plate_number")
	_, vars := buildSQL(t, b)
	require.Len(t, vars, 1)
	assert.Equal(t, "%abc-123%", vars[0])
}

func TestBuilderDateBounds(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	b := New().From("start_date", &from).To("end_date", &to)

	sql, vars := buildSQL(t, b)
	assert.Contains(t, sql, "start_date >= ")
	assert.Contains(t, sql, "end_date <= ")
	assert.Equal(t, []interface{}{from, to}, vars)
}

func TestOrderAllowList(t *testing.T) {
	allowed := map[string]string{
		"createdAt": "created_at",
		"dailyRate": "daily_rate",
	}

	assert.Equal(t, "daily_rate asc", Order("dailyRate", "asc", allowed, "created_at"))
	assert.Equal(t, "created_at desc", Order("createdAt", "desc", allowed, "created_at"))
	// Unknown column falls back, unknown order falls back to desc.
	assert.Equal(t, "created_at desc", Order("plate_number; DROP TABLE", "asc; --", allowed, "created_at"))
}

func TestResolveIDsMergesAndDeduplicates(t *testing.T) {
	ids, err := ResolveIDs(context.Background(),
		func(ctx context.Context) ([]uint, error) { return []uint{1, 2, 3}, nil },
		func(ctx context.Context) ([]uint, error) { return []uint{3, 4}, nil },
		func(ctx context.Context) ([]uint, error) { return nil, nil },
	)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{1, 2, 3, 4}, ids)
}

func TestResolveIDsPropagatesError(t *testing.T) {
	boom := errors.New("lookup failed")
	_, err := ResolveIDs(context.Background(),
		func(ctx context.Context) ([]uint, error) { return []uint{1}, nil },
		func(ctx context.Context) ([]uint, error) { return nil, boom },
	)
	assert.ErrorIs(t, err, boom)
}

func TestParamHelpers(t *testing.T) {
	assert.Equal(t, uint(7), UintParam("7"))
	assert.Zero(t, UintParam("x"))
	assert.Equal(t, []uint{1, 2, 9}, UintListParam("1, 2,bad,9"))
	assert.Nil(t, UintListParam(""))

	require.NotNil(t, FloatParam("12.5"))
	assert.Equal(t, 12.5, *FloatParam("12.5"))
	assert.Nil(t, FloatParam("abc"))

	require.NotNil(t, BoolParam("true"))
	assert.True(t, *BoolParam("true"))
	assert.Nil(t, BoolParam("maybe"))

	d := DateParam("2024-01-15")
	require.NotNil(t, d)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *d)
	assert.Nil(t, DateParam("15/01/2024"))
}
