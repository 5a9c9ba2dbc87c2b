package chart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prices(values ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		out = append(out, decimal.NewFromInt(v))
	}
	return out
}

func assertPoints(t *testing.T, series *Series, expected ...int64) {
	t.Helper()
	points := series.Points()
	require.Len(t, points, len(expected))
	for i, v := range expected {
		assert.True(t, points[i].Equal(decimal.NewFromInt(v)), "point %d: got %s want %d", i, points[i], v)
	}
}

func TestSeries_AppendGrowsUntilFull(t *testing.T) {
	series := NewSeries(3, nil)

	series.Append(decimal.NewFromInt(1))
	series.Append(decimal.NewFromInt(2))
	assertPoints(t, series, 1, 2)
}

func TestSeries_AppendEvictsOldest(t *testing.T) {
	series := NewSeries(3, prices(1, 2, 3))

	series.Append(decimal.NewFromInt(4))
	assertPoints(t, series, 2, 3, 4)

	series.Append(decimal.NewFromInt(5))
	assertPoints(t, series, 3, 4, 5)
}

func TestSeries_SeedTrimmedToWindow(t *testing.T) {
	series := NewSeries(2, prices(1, 2, 3, 4))
	assertPoints(t, series, 3, 4)
}

func TestSeries_DefaultWindow(t *testing.T) {
	series := NewDefaultSeries()
	assertPoints(t, series, 40000, 41000, 42000, 41500, 42500, 43000)

	series.Append(decimal.NewFromInt(43500))
	assertPoints(t, series, 41000, 42000, 41500, 42500, 43000, 43500)
}

func TestSeries_PointsReturnsCopy(t *testing.T) {
	series := NewSeries(3, prices(1, 2, 3))

	points := series.Points()
	points[0] = decimal.NewFromInt(99)

	assertPoints(t, series, 1, 2, 3)
}
