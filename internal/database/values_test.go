package database

import (
	"testing"
	"time"

	"github.com/matthieukhl/shopstats/internal/analytics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsInt64(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int64
		wantErr bool
	}{
		{"int64", int64(42), 42, false},
		{"int", 7, 7, false},
		{"whole float", float64(3), 3, false},
		{"fractional float", 3.5, 0, true},
		{"bytes", []byte(" 10248 "), 10248, false},
		{"string", "-1", -1, false},
		{"garbage", "abc", 0, true},
		{"null", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := asInt64("OrderID", tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, analytics.ErrSchemaMismatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"postgres numeric", []byte("42.40"), "42.4"},
		{"sqlite real", 13.99, "13.99"},
		{"sqlite integer", int64(14), "14"},
		{"string", "0.10", "0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := asDecimal("UnitPrice", tt.in)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}

	_, err := asDecimal("UnitPrice", "ten")
	assert.ErrorIs(t, err, analytics.ErrSchemaMismatch)
}

func TestAsString(t *testing.T) {
	s, err := asString("CustomerID", []byte("ALFKI"))
	require.NoError(t, err)
	assert.Equal(t, "ALFKI", s)

	s, err = asString("CustomerID", int64(7))
	require.NoError(t, err)
	assert.Equal(t, "7", s)

	_, err = asString("CustomerID", 1.5)
	assert.ErrorIs(t, err, analytics.ErrSchemaMismatch)
}

func TestAsTime_Layouts(t *testing.T) {
	want := time.Date(1996, 7, 4, 0, 0, 0, 0, time.UTC)
	inputs := []any{
		want,
		"1996-07-04",
		"1996-07-04 00:00:00",
		"1996-07-04T00:00:00",
		"1996-07-04T00:00:00Z",
		[]byte("1996-07-04 00:00:00.000"),
		"1996-07-04 00:00:00 +0000 UTC",
	}

	for _, in := range inputs {
		got, err := asTime("OrderDate", in)
		require.NoError(t, err, "input %v", in)
		assert.True(t, want.Equal(got), "input %v parsed as %s", in, got)
	}

	_, err := asTime("OrderDate", "July 4th")
	assert.ErrorIs(t, err, analytics.ErrSchemaMismatch)
}

func TestAsNullTime(t *testing.T) {
	for _, in := range []any{nil, "", []byte("  ")} {
		got, err := asNullTime("ShippedDate", in)
		require.NoError(t, err)
		assert.Nil(t, got)
	}

	got, err := asNullTime("ShippedDate", "1996-07-16")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1996-07-16", got.Format(time.DateOnly))
}
