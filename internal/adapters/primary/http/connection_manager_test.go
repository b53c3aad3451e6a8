package http

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

func startManager(t *testing.T) (*ConnectionManager, context.CancelFunc) {
	t.Helper()
	cm := NewConnectionManager()
	ctx, cancel := context.WithCancel(context.Background())
	go cm.Run(ctx)
	t.Cleanup(cancel)
	return cm, cancel
}

func TestConnectionManager(t *testing.T) {
	t.Run("register and unregister connection", func(t *testing.T) {
		cm, _ := startManager(t)

		send := make(chan entities.GenerationEvent, 1)
		require.True(t, cm.RegisterConnection(&Connection{ID: "test-conn", Send: send}))
		assert.Eventually(t, func() bool { return cm.Count() == 1 }, time.Second, 5*time.Millisecond)

		cm.Unregister("test-conn")
		assert.Eventually(t, func() bool { return cm.Count() == 0 }, time.Second, 5*time.Millisecond)

		_, open := <-send
		assert.False(t, open, "send channel should be closed on unregister")
	})

	t.Run("publish reaches every connection", func(t *testing.T) {
		cm, _ := startManager(t)

		receivers := make([]chan entities.GenerationEvent, 3)
		for i := range receivers {
			receivers[i] = make(chan entities.GenerationEvent, 1)
			require.True(t, cm.RegisterConnection(&Connection{ID: string(rune('a' + i)), Send: receivers[i]}))
		}

		cm.Publish(entities.NewGenerationEvent(entities.EventOutlineReady, "gen-1", map[string]interface{}{"slides": 3}))

		for i, ch := range receivers {
			select {
			case event := <-ch:
				assert.Equal(t, entities.EventOutlineReady, event.Type)
				assert.Equal(t, "gen-1", event.ID)
			case <-time.After(time.Second):
				t.Fatalf("receiver %d did not get the event", i)
			}
		}
	})

	t.Run("slow client is dropped", func(t *testing.T) {
		cm, _ := startManager(t)

		slow := make(chan entities.GenerationEvent)
		require.True(t, cm.RegisterConnection(&Connection{ID: "slow", Send: slow}))

		cm.Publish(entities.NewGenerationEvent(entities.EventDeckReady, "gen-1", nil))
		assert.Eventually(t, func() bool { return cm.Count() == 0 }, time.Second, 5*time.Millisecond)

		_, open := <-slow
		assert.False(t, open)
	})

	t.Run("close all", func(t *testing.T) {
		cm, _ := startManager(t)

		send := make(chan entities.GenerationEvent, 1)
		require.True(t, cm.RegisterConnection(&Connection{ID: "c", Send: send}))
		assert.Eventually(t, func() bool { return cm.Count() == 1 }, time.Second, 5*time.Millisecond)

		cm.CloseAll()
		assert.Equal(t, 0, cm.Count())
		_, open := <-send
		assert.False(t, open)
	})
}

func TestConnectionManagerShutdown(t *testing.T) {
	cm, cancel := startManager(t)

	send := make(chan entities.GenerationEvent, 1)
	require.True(t, cm.RegisterConnection(&Connection{ID: "c", Send: send}))

	cancel()

	assert.Eventually(t, func() bool {
		return !cm.RegisterConnection(&Connection{ID: "late", Send: make(chan entities.GenerationEvent, 1)})
	}, time.Second, 5*time.Millisecond)

	_, open := <-send
	assert.False(t, open)

	assert.NotPanics(t, func() {
		cm.Publish(entities.NewGenerationEvent(entities.EventDeckReady, "gen-1", nil))
		cm.Unregister("c")
	})
}
