package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"github.com/tradedesk/tradedesk/internal/account"
	"github.com/tradedesk/tradedesk/internal/config"
	"github.com/tradedesk/tradedesk/internal/models"
	"github.com/tradedesk/tradedesk/internal/storage"
	"github.com/tradedesk/tradedesk/internal/trading"
)

// Seed the local store with a demo identity and a few orders
func main() {
	ctx := context.Background()
	cfg := config.Load()

	store, err := storage.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open storage", "path", cfg.DBPath, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	accounts := account.NewStore(store)
	orders := trading.NewStore(store, accounts)

	// Skip if the store already holds orders
	existing, err := orders.List(ctx, "")
	if err != nil {
		slog.Error("failed to check orders", "err", err)
		os.Exit(1)
	}
	if len(existing) > 0 {
		fmt.Printf("Store already has %d orders. No need to seed.\n", len(existing))
		return
	}

	identity, err := accounts.Login(ctx, "0x123...789")
	if err != nil {
		slog.Error("failed to create demo identity", "err", err)
		os.Exit(1)
	}

	limitPrice := func(v float64) *decimal.Decimal {
		d := decimal.NewFromFloat(v)
		return &d
	}

	specs := []models.OrderSpec{
		{Pair: "BTC/USDT", Kind: models.OrderKindLimit, Side: models.SideBuy, Price: limitPrice(40000), Amount: decimal.NewFromFloat(0.1)},
		{Pair: "ETH/USDT", Kind: models.OrderKindLimit, Side: models.SideSell, Price: limitPrice(2850), Amount: decimal.NewFromInt(2)},
		{Pair: "ETH/BTC", Kind: models.OrderKindMarket, Side: models.SideBuy, Amount: decimal.NewFromInt(1)},
	}

	for _, spec := range specs {
		order, err := orders.Place(ctx, spec)
		if err != nil {
			slog.Error("failed to place seed order", "pair", spec.Pair, "err", err)
			os.Exit(1)
		}
		fmt.Printf("Seeded %s %s %s order %s\n", order.Pair, order.Kind, order.Side, order.ID)
	}

	fmt.Printf("Seeded identity %s (%s) with %d orders\n", identity.ID, identity.Address, len(specs))
}
