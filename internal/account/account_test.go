package account

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedesk/tradedesk/internal/models"
	"github.com/tradedesk/tradedesk/internal/storage"
)

func newTestStorage(t *testing.T) *storage.Store {
	t.Helper()
	st, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestStore_Login(t *testing.T) {
	s := NewStore(newTestStorage(t))
	ctx := context.Background()

	identity, err := s.Login(ctx, "0xABC")
	require.NoError(t, err)
	assert.NotEmpty(t, identity.ID)
	assert.Equal(t, "0xABC", identity.Address)
	assert.True(t, identity.Balances[models.AssetUSDT].Equal(decimal.NewFromInt(10000)))
	assert.True(t, identity.Balances[models.AssetBTC].Equal(decimal.NewFromFloat(0.5)))
	assert.True(t, identity.Balances[models.AssetETH].Equal(decimal.NewFromInt(5)))

	current, err := s.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, identity.ID, current.ID)
	assert.Equal(t, "0xABC", current.Address)
}

func TestStore_LoginEmptyAddress(t *testing.T) {
	s := NewStore(newTestStorage(t))

	_, err := s.Login(context.Background(), "")
	assert.Error(t, err)
}

func TestStore_LoginReplacesPrevious(t *testing.T) {
	s := NewStore(newTestStorage(t))
	ctx := context.Background()

	first, err := s.Login(ctx, "0xAAA")
	require.NoError(t, err)

	second, err := s.Login(ctx, "0xBBB")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	current, err := s.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "0xBBB", current.Address)
}

func TestStore_CurrentAbsent(t *testing.T) {
	s := NewStore(newTestStorage(t))

	current, err := s.Current(context.Background())
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestStore_CurrentLoadsFromStorage(t *testing.T) {
	st := newTestStorage(t)
	ctx := context.Background()

	identity, err := NewStore(st).Login(ctx, "0xABC")
	require.NoError(t, err)

	// A fresh store instance sees only the persisted record
	restored := NewStore(st)
	current, err := restored.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, identity.ID, current.ID)
	assert.Equal(t, "0xABC", current.Address)
	assert.True(t, current.Balances[models.AssetUSDT].Equal(decimal.NewFromInt(10000)))
}

func TestStore_CurrentCorruptRecord(t *testing.T) {
	st := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "user", "{not json"))

	_, err := NewStore(st).Current(ctx)
	assert.Error(t, err)
}

func TestStore_Logout(t *testing.T) {
	st := newTestStorage(t)
	s := NewStore(st)
	ctx := context.Background()

	// Logout without a login succeeds
	require.NoError(t, s.Logout(ctx))

	_, err := s.Login(ctx, "0xABC")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	current, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	// The persisted record is gone too, not just the cache
	_, ok, err := st.Get(ctx, "user")
	require.NoError(t, err)
	assert.False(t, ok)
}
