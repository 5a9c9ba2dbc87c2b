package account

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradedesk/tradedesk/internal/models"
	"github.com/tradedesk/tradedesk/internal/storage"
)

// userKey is the storage key holding the current identity record.
const userKey = "user"

// Store manages the current authenticated identity. At most one
// identity is current at a time; a new login replaces the previous one.
type Store struct {
	storage *storage.Store

	mu      sync.Mutex
	current *models.Identity
}

// NewStore creates a new account store backed by the given storage.
func NewStore(st *storage.Store) *Store {
	return &Store{storage: st}
}

// seedBalances returns the illustrative starting balances every new
// identity receives. Balances are never debited by order placement.
func seedBalances() map[models.Asset]decimal.Decimal {
	return map[models.Asset]decimal.Decimal{
		models.AssetBTC:  decimal.NewFromFloat(0.5),
		models.AssetETH:  decimal.NewFromInt(5),
		models.AssetUSDT: decimal.NewFromInt(10000),
	}
}

// Login creates a fresh identity for the given wallet address and
// persists it as current. The address is taken at face value; no
// signature verification happens here.
func (s *Store) Login(ctx context.Context, address string) (*models.Identity, error) {
	if address == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	identity := &models.Identity{
		ID:       uuid.NewString(),
		Address:  address,
		Balances: seedBalances(),
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Put(ctx, userKey, string(data)); err != nil {
		return nil, fmt.Errorf("failed to persist identity: %w", err)
	}
	s.current = identity

	return identity, nil
}

// Current returns the current identity, loading it from storage on
// first use. Returns (nil, nil) when no identity is logged in.
func (s *Store) Current(ctx context.Context) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return s.current, nil
	}

	data, ok, err := s.storage.Get(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	if !ok {
		return nil, nil
	}

	identity := &models.Identity{}
	if err := json.Unmarshal([]byte(data), identity); err != nil {
		return nil, fmt.Errorf("failed to parse identity record: %w", err)
	}
	s.current = identity

	return identity, nil
}

// Logout removes the persisted identity and clears the in-memory
// reference. Logging out with no identity is a no-op success.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, userKey); err != nil {
		return fmt.Errorf("failed to remove identity: %w", err)
	}
	s.current = nil
	return nil
}
