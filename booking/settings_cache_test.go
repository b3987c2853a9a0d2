package booking_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidyhive/booking-engine/booking"
	"github.com/tidyhive/booking-engine/engine"
)

type countingSource struct {
	loads int
	data  map[string]any
	err   error
}

func (c *countingSource) LoadSettings(context.Context) (map[string]any, error) {
	c.loads++
	return c.data, c.err
}

func TestSettingsCache_ReadThroughAndInvalidate(t *testing.T) {
	src := &countingSource{data: map[string]any{engine.KeyBaseRatePer500: 55.0}}
	cache := booking.NewSettingsCache(src)
	ctx := context.Background()

	first := cache.Get(ctx)
	assert.True(t, first.BaseRatePer500.Equal(decimal.NewFromInt(55)))
	require.Equal(t, 1, src.loads)

	// Cached: no second load.
	cache.Get(ctx)
	assert.Equal(t, 1, src.loads)

	// Invalidate forces a re-read, picking up the new value.
	src.data = map[string]any{engine.KeyBaseRatePer500: 60.0}
	cache.Invalidate()
	updated := cache.Get(ctx)
	assert.True(t, updated.BaseRatePer500.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, 2, src.loads)
}

func TestSettingsCache_SourceFailureFallsBackWithoutPinning(t *testing.T) {
	src := &countingSource{err: errors.New("store down")}
	cache := booking.NewSettingsCache(src)
	ctx := context.Background()

	got := cache.Get(ctx)
	assert.True(t, got.BaseRatePer500.Equal(engine.DefaultSettings().BaseRatePer500))

	// The failure was not cached: the source recovers and the next Get
	// sees real values.
	src.err = nil
	src.data = map[string]any{engine.KeyBaseRatePer500: 48.0}
	got = cache.Get(ctx)
	assert.True(t, got.BaseRatePer500.Equal(decimal.NewFromInt(48)))
	assert.Equal(t, 2, src.loads)
}
