package trading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradedesk/tradedesk/internal/account"
	"github.com/tradedesk/tradedesk/internal/models"
	"github.com/tradedesk/tradedesk/internal/storage"
)

// ordersKey is the storage key holding the serialized order sequence.
const ordersKey = "orders"

var (
	// ErrNotAuthenticated is returned when an operation requires a
	// current identity and none is logged in.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrOrderNotFound is returned when no order has the given id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrNotOrderOwner is returned when the order exists but belongs
	// to a different identity.
	ErrNotOrderOwner = errors.New("order not owned by caller")

	// ErrOrderNotOpen is returned when cancelling an order that is
	// already filled or cancelled.
	ErrOrderNotOpen = errors.New("order not open")
)

// Store manages the order sequence for the current session. Orders are
// only ever appended or cancelled, never deleted.
//
// Every mutation runs as an atomic read-modify-write against the
// backing store, so two overlapping placements cannot lose each
// other's write.
type Store struct {
	storage  *storage.Store
	accounts *account.Store
}

// NewStore creates a new order store.
func NewStore(st *storage.Store, accounts *account.Store) *Store {
	return &Store{storage: st, accounts: accounts}
}

func validateSpec(spec models.OrderSpec) error {
	if spec.Pair == "" {
		return fmt.Errorf("pair cannot be empty")
	}
	if spec.Side != models.SideBuy && spec.Side != models.SideSell {
		return fmt.Errorf("side must be %q or %q", models.SideBuy, models.SideSell)
	}
	if !spec.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	switch spec.Kind {
	case models.OrderKindLimit:
		if spec.Price == nil {
			return fmt.Errorf("limit order requires a price")
		}
		if !spec.Price.IsPositive() {
			return fmt.Errorf("price must be positive")
		}
	case models.OrderKindMarket:
		if spec.Price != nil {
			return fmt.Errorf("market order cannot carry a price")
		}
	default:
		return fmt.Errorf("kind must be %q or %q", models.OrderKindMarket, models.OrderKindLimit)
	}
	return nil
}

func decodeOrders(value string, ok bool) ([]models.Order, error) {
	if !ok || value == "" {
		return nil, nil
	}
	var orders []models.Order
	if err := json.Unmarshal([]byte(value), &orders); err != nil {
		return nil, fmt.Errorf("failed to parse order records: %w", err)
	}
	return orders, nil
}

// Place validates spec and appends a new open order owned by the
// current identity.
func (s *Store) Place(ctx context.Context, spec models.OrderSpec) (*models.Order, error) {
	identity, err := s.accounts.Current(ctx)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrNotAuthenticated
	}

	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	order := models.Order{
		ID:         uuid.NewString(),
		IdentityID: identity.ID,
		Pair:       spec.Pair,
		Kind:       spec.Kind,
		Side:       spec.Side,
		Price:      spec.Price,
		Amount:     spec.Amount,
		Filled:     decimal.Zero,
		Status:     models.StatusOpen,
		CreatedAt:  time.Now().UnixMilli(),
	}

	err = s.storage.Update(ctx, ordersKey, func(value string, ok bool) (string, error) {
		orders, err := decodeOrders(value, ok)
		if err != nil {
			return "", err
		}
		orders = append(orders, order)
		data, err := json.Marshal(orders)
		if err != nil {
			return "", fmt.Errorf("failed to marshal order records: %w", err)
		}
		return string(data), nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// List returns all orders in insertion order, or only those owned by
// identityID when it is non-empty.
func (s *Store) List(ctx context.Context, identityID string) ([]models.Order, error) {
	value, ok, err := s.storage.Get(ctx, ordersKey)
	if err != nil {
		return nil, err
	}
	orders, err := decodeOrders(value, ok)
	if err != nil {
		return nil, err
	}
	if identityID == "" {
		return orders, nil
	}

	var owned []models.Order
	for _, order := range orders {
		if order.IdentityID == identityID {
			owned = append(owned, order)
		}
	}
	return owned, nil
}

// Cancel moves an open order owned by the current identity to
// cancelled. Not-found, foreign-owner, and non-open cases are reported
// as distinct errors.
func (s *Store) Cancel(ctx context.Context, orderID string) error {
	identity, err := s.accounts.Current(ctx)
	if err != nil {
		return err
	}
	if identity == nil {
		return ErrNotAuthenticated
	}

	return s.storage.Update(ctx, ordersKey, func(value string, ok bool) (string, error) {
		orders, err := decodeOrders(value, ok)
		if err != nil {
			return "", err
		}

		idx := -1
		for i := range orders {
			if orders[i].ID == orderID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return "", ErrOrderNotFound
		}
		if orders[idx].IdentityID != identity.ID {
			return "", ErrNotOrderOwner
		}
		if orders[idx].Status != models.StatusOpen {
			return "", ErrOrderNotOpen
		}

		orders[idx].Status = models.StatusCancelled
		data, err := json.Marshal(orders)
		if err != nil {
			return "", fmt.Errorf("failed to marshal order records: %w", err)
		}
		return string(data), nil
	})
}
