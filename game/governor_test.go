package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run offers frames at fps for d and returns the rendered count and the time after the last frame
func run(g *Governor, from time.Time, fps int, d time.Duration) (int, time.Time) {
	step := time.Second / time.Duration(fps)
	n := int(d / step)

	var rendered int
	for i := 1; i <= n; i++ {
		if g.ShouldRender(from.Add(time.Duration(i) * step)) {
			rendered++
		}
	}
	return rendered, from.Add(time.Duration(n) * step)
}

func TestGovernor_FirstFrameRenders(t *testing.T) {
	g := NewGovernor(DefaultGovernorConfig(), nil)
	assert.True(t, g.ShouldRender(epoch))
	assert.False(t, g.ShouldRender(epoch.Add(time.Millisecond)))

	g.Reset()
	assert.True(t, g.ShouldRender(epoch.Add(2*time.Millisecond)))
}

func TestGovernor_Throttle(t *testing.T) {
	g := NewGovernor(DefaultGovernorConfig(), nil)
	require.Equal(t, 60, g.Target())
	require.True(t, g.ShouldRender(epoch))

	rendered, _ := run(g, epoch, 250, time.Second)
	assert.InDelta(t, 60, rendered, 1)
}

func TestGovernor_NoDrift(t *testing.T) {
	g := NewGovernor(DefaultGovernorConfig(), nil)
	require.True(t, g.ShouldRender(epoch))

	// 25ms frames: one render per frame, the remainder is kept
	ts := epoch.Add(25 * time.Millisecond)
	assert.True(t, g.ShouldRender(ts))
	assert.Equal(t, epoch.Add(g.Interval()), g.lastRender)

	// 8.4ms later the next interval since the last booked render has passed
	assert.True(t, g.ShouldRender(ts.Add(8400*time.Microsecond)))
}

func TestGovernor_Adapts(t *testing.T) {
	g := NewGovernor(DefaultGovernorConfig(), nil)
	require.True(t, g.ShouldRender(epoch))

	// slow host: 20 frames per second for one window
	_, ts := run(g, epoch, 20, 5*time.Second)
	assert.InDelta(t, 20, g.Measured(), 1e-6)
	assert.Equal(t, 30, g.Target())
	assert.Equal(t, time.Second/30, g.Interval())

	// 40 fps is neither low nor good enough
	_, ts = run(g, ts, 40, 5*time.Second)
	assert.Equal(t, 30, g.Target())

	// recovered host, capped at the reduced rate until the window closes
	rendered, ts := run(g, ts, 64, 5*time.Second)
	assert.InDelta(t, 64, g.Measured(), 1e-6)
	assert.Equal(t, 60, g.Target())
	assert.InDelta(t, 150, rendered, 2)

	rendered, _ = run(g, ts, 125, time.Second)
	assert.InDelta(t, 60, rendered, 1)
}

func TestGovernor_AdaptsOncePerWindow(t *testing.T) {
	g := NewGovernor(DefaultGovernorConfig(), nil)
	require.True(t, g.ShouldRender(epoch))

	run(g, epoch, 20, 4*time.Second)
	assert.Equal(t, 60, g.Target())
	assert.Zero(t, g.Measured())
}
