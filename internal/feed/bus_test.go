package feed

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedesk/tradedesk/internal/models"
)

func tick(pair string, price int64) models.PriceTick {
	return models.PriceTick{Pair: pair, Price: decimal.NewFromInt(price)}
}

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()

	first, unsubFirst := bus.Subscribe(1)
	second, unsubSecond := bus.Subscribe(1)
	defer unsubFirst()
	defer unsubSecond()

	bus.Publish(tick("BTC/USDT", 42000))

	got := <-first
	assert.Equal(t, "BTC/USDT", got.Pair)
	got = <-second
	assert.True(t, got.Price.Equal(decimal.NewFromInt(42000)))
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	ch, unsubscribe := bus.Subscribe(1)
	assert.Equal(t, 1, bus.Len())

	unsubscribe()
	assert.Equal(t, 0, bus.Len())

	// Channel is closed
	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic
	bus.Publish(tick("BTC/USDT", 42000))

	// Unsubscribing twice is safe
	unsubscribe()
}

func TestBus_SlowSubscriberDropsTicks(t *testing.T) {
	bus := NewBus()

	ch, unsubscribe := bus.Subscribe(1)
	defer unsubscribe()

	bus.Publish(tick("BTC/USDT", 1))
	bus.Publish(tick("BTC/USDT", 2)) // dropped, buffer full

	got := <-ch
	assert.True(t, got.Price.Equal(decimal.NewFromInt(1)))

	select {
	case extra := <-ch:
		require.Failf(t, "unexpected tick", "price %s", extra.Price)
	default:
	}
}
