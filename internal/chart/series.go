package chart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Series is a fixed-length rolling window of price points. Appending
// to a full window drops the oldest point, so the chart always shows
// the most recent prices.
type Series struct {
	mu     sync.RWMutex
	points []decimal.Decimal
	size   int
}

// NewSeries creates a window of the given size, pre-filled with seed
// points. Excess seed points are trimmed from the front.
func NewSeries(size int, seed []decimal.Decimal) *Series {
	if size < 1 {
		size = 1
	}
	points := make([]decimal.Decimal, 0, size)
	if len(seed) > size {
		seed = seed[len(seed)-size:]
	}
	points = append(points, seed...)
	return &Series{points: points, size: size}
}

// NewDefaultSeries creates the stock six-point chart window.
func NewDefaultSeries() *Series {
	seed := make([]decimal.Decimal, 0, 6)
	for _, price := range []int64{40000, 41000, 42000, 41500, 42500, 43000} {
		seed = append(seed, decimal.NewFromInt(price))
	}
	return NewSeries(6, seed)
}

// Append pushes a new price point, evicting the oldest when full.
func (s *Series) Append(price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.points) == s.size {
		copy(s.points, s.points[1:])
		s.points[len(s.points)-1] = price
		return
	}
	s.points = append(s.points, price)
}

// Points returns a copy of the current window, oldest first.
func (s *Series) Points() []decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]decimal.Decimal, len(s.points))
	copy(out, s.points)
	return out
}
