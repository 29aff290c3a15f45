package heartbeat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/pkg/clock"
	"github.com/dmitrymomot/sessionguard/pkg/heartbeat"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := heartbeat.New(clock.Fake(epoch), 0, func() {})
	assert.ErrorIs(t, err, heartbeat.ErrInvalidInterval)

	_, err = heartbeat.New(clock.Fake(epoch), time.Minute, nil)
	assert.ErrorIs(t, err, heartbeat.ErrNilBeat)
}

func TestHeartbeat_BeatsOnInterval(t *testing.T) {
	t.Parallel()

	c := clock.Fake(epoch)
	var at []time.Time
	h, err := heartbeat.New(c, 5*time.Minute, func() { at = append(at, c.Now()) },
		heartbeat.WithLogger(logger.Discard()))
	require.NoError(t, err)

	require.NoError(t, h.Start())
	assert.True(t, h.Running())
	assert.ErrorIs(t, h.Start(), heartbeat.ErrAlreadyRunning)

	c.Advance(4 * time.Minute)
	assert.Empty(t, at)

	c.Advance(11 * time.Minute)
	require.Len(t, at, 3)
	assert.Equal(t, epoch.Add(5*time.Minute), at[0])
	assert.Equal(t, epoch.Add(10*time.Minute), at[1])
	assert.Equal(t, epoch.Add(15*time.Minute), at[2])
	assert.Equal(t, 3, h.Beats())
}

func TestHeartbeat_Stop(t *testing.T) {
	t.Parallel()

	c := clock.Fake(epoch)
	beats := 0
	h, err := heartbeat.New(c, time.Minute, func() { beats++ })
	require.NoError(t, err)

	assert.False(t, h.Stop())
	require.NoError(t, h.Start())
	c.Advance(time.Minute)
	assert.Equal(t, 1, beats)

	assert.True(t, h.Stop())
	assert.False(t, h.Running())
	assert.Equal(t, 0, c.Pending())

	c.Advance(time.Hour)
	assert.Equal(t, 1, beats)
}

func TestHeartbeat_StopFromBeat(t *testing.T) {
	t.Parallel()

	c := clock.Fake(epoch)
	beats := 0
	var h *heartbeat.Heartbeat
	h, err := heartbeat.New(c, time.Minute, func() {
		beats++
		h.Stop()
	})
	require.NoError(t, err)

	require.NoError(t, h.Start())
	c.Advance(10 * time.Minute)
	assert.Equal(t, 1, beats)
	assert.False(t, h.Running())
}

func TestHeartbeat_Restart(t *testing.T) {
	t.Parallel()

	c := clock.Fake(epoch)
	beats := 0
	h, err := heartbeat.New(c, time.Minute, func() { beats++ })
	require.NoError(t, err)

	require.NoError(t, h.Start())
	c.Advance(30 * time.Second)
	h.Stop()
	require.NoError(t, h.Start())

	c.Advance(45 * time.Second)
	assert.Equal(t, 0, beats)
	c.Advance(15 * time.Second)
	assert.Equal(t, 1, beats)
}
