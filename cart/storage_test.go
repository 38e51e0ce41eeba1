package cart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"

	"goflare.io/catering/models"
)

func TestCartCodec_RoundTrip(t *testing.T) {
	original := &models.Cart{
		Items: []models.CartItem{
			{
				ProductID: "prod-1",
				Name:      "Paella Tray",
				UnitPrice: decimal.RequireFromString("24.50"),
				Image:     "https://example.com/paella.jpg",
				Quantity:  3,
			},
			{
				ProductID: "prod-2",
				Name:      "Tapas Platter",
				UnitPrice: decimal.RequireFromString("0.10"),
				Quantity:  1,
			},
		},
		Currency:  stripe.CurrencyUSD,
		UpdatedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	data, err := encodeCart(original)
	require.NoError(t, err)

	decoded, err := decodeCart(data)
	require.NoError(t, err)

	require.Len(t, decoded.Items, 2)
	assert.Equal(t, "prod-1", decoded.Items[0].ProductID)
	assert.Equal(t, "Paella Tray", decoded.Items[0].Name)
	assert.Equal(t, "https://example.com/paella.jpg", decoded.Items[0].Image)
	assert.EqualValues(t, 3, decoded.Items[0].Quantity)
	assert.Equal(t, original.Currency, decoded.Currency)

	// prices must survive the round trip exactly
	assert.True(t, decoded.Items[0].UnitPrice.Equal(decimal.RequireFromString("24.50")),
		"price = %s", decoded.Items[0].UnitPrice)
	assert.True(t, decoded.Items[1].UnitPrice.Equal(decimal.RequireFromString("0.10")),
		"price = %s", decoded.Items[1].UnitPrice)
}

func TestCartCodec_CorruptBlob(t *testing.T) {
	_, err := decodeCart([]byte(`{"items": [{`))
	assert.Error(t, err)
}

func TestMemoryStorage_LoadAbsent(t *testing.T) {
	s := NewMemoryStorage()

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage_SaveLoadClear(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	cart := &models.Cart{
		Items: []models.CartItem{
			{ProductID: "prod-1", Name: "Paella Tray", UnitPrice: decimal.RequireFromString("24.50"), Quantity: 2},
		},
		Currency: stripe.CurrencyUSD,
	}
	require.NoError(t, s.Save(ctx, cart))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.True(t, loaded.Items[0].UnitPrice.Equal(cart.Items[0].UnitPrice))

	require.NoError(t, s.Clear(ctx))
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage_PendingClearMarker(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	pending, err := s.PendingClear(ctx)
	require.NoError(t, err)
	assert.False(t, pending)

	require.NoError(t, s.SetPendingClear(ctx))
	pending, err = s.PendingClear(ctx)
	require.NoError(t, err)
	assert.True(t, pending)

	require.NoError(t, s.ClearPendingClear(ctx))
	pending, err = s.PendingClear(ctx)
	require.NoError(t, err)
	assert.False(t, pending)
}
