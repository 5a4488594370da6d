package main

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/otadash/internal/models"
	"github.com/rohits-web03/otadash/internal/ota"
)

func TestGenerateIsConsistent(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for seed := uint64(1); seed <= 20; seed++ {
		ds := generate(rand.New(rand.NewPCG(seed, seed)), now, options{Devices: 4, SessionsPerDevice: 4, Products: 5})
		require.NoError(t, validate(ds), "seed %d", seed)

		assert.Len(t, ds.devices, 4)
		assert.Len(t, ds.sessions, 16)
		assert.Len(t, ds.products, 5)
	}
}

func TestGenerateCoversEveryStatus(t *testing.T) {
	ds := generate(rand.New(rand.NewPCG(7, 7)), time.Now(), options{Devices: 4, SessionsPerDevice: 4})
	seen := map[models.SessionStatus]int{}
	for _, ss := range ds.sessions {
		seen[ss.session.Status]++
		if ss.session.Status == models.StatusCompleted {
			require.Len(t, ss.history, 1)
			assert.Equal(t, ss.session.SlotSelected, ss.history[0].ToSlot)
			assert.Equal(t, 100, ota.CurrentProgress(ss.session.Events).Percent)
		} else {
			assert.Empty(t, ss.history)
		}
	}
	for _, st := range statusCycle {
		assert.Positive(t, seen[st], st)
	}
}
