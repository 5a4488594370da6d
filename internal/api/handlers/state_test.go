package handlers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/repositories"
)

func TestStateRoundTrip(t *testing.T) {
	state, nonce, err := GenerateState(map[string]string{"return": "/dashboard/storage"})
	require.NoError(t, err)

	gotNonce, data, err := DecodeState(state)
	require.NoError(t, err)
	assert.Equal(t, nonce, gotNonce)
	assert.Equal(t, "/dashboard/storage", data["return"])

	_, _, err = DecodeState("no-dot")
	assert.Error(t, err)
	_, _, err = DecodeState("abc.!!!")
	assert.Error(t, err)
}

func TestStateIsSingleUse(t *testing.T) {
	h := New(Deps{Cache: repositories.NewMemoryCache()})
	ctx := context.Background()

	state, err := h.issueState(ctx, map[string]string{"return": "/dashboard"})
	require.NoError(t, err)

	data, err := h.consumeState(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", data["return"])

	_, err = h.consumeState(ctx, state)
	assert.True(t, apperr.Is(err, apperr.ErrorTypeValidation))

	forged, _, err := GenerateState(map[string]string{"return": "/dashboard"})
	require.NoError(t, err)
	_, err = h.consumeState(ctx, forged)
	assert.True(t, apperr.Is(err, apperr.ErrorTypeValidation))
}

type unreachableCache struct {
	*repositories.MemoryCache
}

func (unreachableCache) Take(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

func TestStateRejectedWhenTakeFails(t *testing.T) {
	cache := unreachableCache{repositories.NewMemoryCache()}
	h := New(Deps{Cache: cache})
	ctx := context.Background()

	state, err := h.issueState(ctx, map[string]string{"return": "/dashboard"})
	require.NoError(t, err)
	_, err = h.consumeState(ctx, state)
	assert.True(t, apperr.Is(err, apperr.ErrorTypeValidation))
}

func TestConcurrentCallbacksConsumeStateOnce(t *testing.T) {
	h := New(Deps{Cache: repositories.NewMemoryCache()})
	ctx := context.Background()
	state, err := h.issueState(ctx, map[string]string{"return": "/dashboard"})
	require.NoError(t, err)

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.consumeState(ctx, state); err == nil {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), accepted.Load())
}
