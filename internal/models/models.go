package models

import "github.com/shopspring/decimal"

// Asset is a token symbol the client tracks balances for.
type Asset string

const (
	AssetBTC  Asset = "BTC"
	AssetETH  Asset = "ETH"
	AssetUSDT Asset = "USDT"
)

// Identity represents the authenticated wallet session
type Identity struct {
	ID       string                    `json:"id"`
	Address  string                    `json:"address"`
	Balances map[Asset]decimal.Decimal `json:"balances"`
}

// OrderKind distinguishes market orders from limit orders.
type OrderKind string

const (
	OrderKindMarket OrderKind = "market"
	OrderKindLimit  OrderKind = "limit"
)

// OrderSide is the direction of an order.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// OrderStatus is the lifecycle state of an order. Filled is declared
// for completeness; no matching occurs in this client, so orders only
// ever move from open to cancelled.
type OrderStatus string

const (
	StatusOpen      OrderStatus = "open"
	StatusFilled    OrderStatus = "filled"
	StatusCancelled OrderStatus = "cancelled"
)

// Order represents a buy or sell intent owned by an identity
type Order struct {
	ID         string           `json:"id"`
	IdentityID string           `json:"identity_id"`
	Pair       string           `json:"pair"` // e.g. "BTC/USDT"
	Kind       OrderKind        `json:"kind"`
	Side       OrderSide        `json:"side"`
	Price      *decimal.Decimal `json:"price,omitempty"` // set iff kind == limit
	Amount     decimal.Decimal  `json:"amount"`
	Filled     decimal.Decimal  `json:"filled"`
	Status     OrderStatus      `json:"status"`
	CreatedAt  int64            `json:"timestamp"` // epoch milliseconds
}

// OrderSpec carries the caller-supplied fields of a new order.
type OrderSpec struct {
	Pair   string           `json:"pair"`
	Kind   OrderKind        `json:"kind"`
	Side   OrderSide        `json:"side"`
	Price  *decimal.Decimal `json:"price,omitempty"`
	Amount decimal.Decimal  `json:"amount"`
}

// Level is one price level of a book snapshot.
type Level struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// BookSnapshot is a static set of bid/ask levels for a pair.
type BookSnapshot struct {
	Pair string  `json:"pair"`
	Bids []Level `json:"bids"`
	Asks []Level `json:"asks"`
}

// PriceTick is one inbound price update for a pair. Ticks are
// transient and never persisted.
type PriceTick struct {
	Pair  string          `json:"pair"`
	Price decimal.Decimal `json:"price"`
}
