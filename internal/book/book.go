package book

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tradedesk/tradedesk/internal/models"
)

// Registry serves static bid/ask snapshots per trading pair. The data
// is fixed at construction and never mutated at runtime.
type Registry struct {
	books map[string]models.BookSnapshot
}

// NewRegistry creates a registry from the given snapshots, normalizing
// each book to price-priority order: highest bid first, lowest ask
// first.
func NewRegistry(snapshots []models.BookSnapshot) *Registry {
	books := make(map[string]models.BookSnapshot, len(snapshots))
	for _, snapshot := range snapshots {
		sort.Slice(snapshot.Bids, func(i, j int) bool {
			return snapshot.Bids[i].Price.GreaterThan(snapshot.Bids[j].Price)
		})
		sort.Slice(snapshot.Asks, func(i, j int) bool {
			return snapshot.Asks[i].Price.LessThan(snapshot.Asks[j].Price)
		})
		books[snapshot.Pair] = snapshot
	}
	return &Registry{books: books}
}

// NewDefaultRegistry creates a registry with the stock demo books.
func NewDefaultRegistry() *Registry {
	return NewRegistry([]models.BookSnapshot{
		{
			Pair: "BTC/USDT",
			Bids: []models.Level{{Price: decimal.NewFromInt(40000), Quantity: decimal.NewFromFloat(1.5)}},
			Asks: []models.Level{{Price: decimal.NewFromInt(41000), Quantity: decimal.NewFromFloat(2.0)}},
		},
		{
			Pair: "ETH/USDT",
			Bids: []models.Level{{Price: decimal.NewFromInt(2800), Quantity: decimal.NewFromInt(10)}},
			Asks: []models.Level{{Price: decimal.NewFromInt(2850), Quantity: decimal.NewFromInt(15)}},
		},
		{
			Pair: "ETH/BTC",
			Bids: []models.Level{{Price: decimal.NewFromFloat(0.07), Quantity: decimal.NewFromInt(5)}},
			Asks: []models.Level{{Price: decimal.NewFromFloat(0.071), Quantity: decimal.NewFromInt(8)}},
		},
	})
}

// Get returns the snapshot for pair, or an empty snapshot for an
// unconfigured pair.
func (r *Registry) Get(pair string) models.BookSnapshot {
	if snapshot, ok := r.books[pair]; ok {
		return snapshot
	}
	return models.BookSnapshot{Pair: pair, Bids: []models.Level{}, Asks: []models.Level{}}
}

// Pairs returns the configured trading pairs in lexical order.
func (r *Registry) Pairs() []string {
	pairs := make([]string, 0, len(r.books))
	for pair := range r.books {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)
	return pairs
}
