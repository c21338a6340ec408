package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/der-antikeks/backdrop/ecs"
	"github.com/der-antikeks/backdrop/engine/gltest"
)

// frames returns a source delivering n frames at fps and then err
func frames(n, fps int, err error) (FrameSource, *int) {
	var delivered int
	return FrameFunc(func(ctx context.Context) (time.Time, error) {
		if delivered == n {
			return time.Time{}, err
		}
		ts := epoch.Add(time.Duration(delivered) * time.Second / time.Duration(fps))
		delivered++
		return ts, nil
	}), &delivered
}

func TestRun_SourceClosed(t *testing.T) {
	dev, e := newTestEngine(t, nil)

	src, delivered := frames(10, 25, ErrSourceClosed)
	require.NoError(t, e.Run(context.Background(), src))

	assert.Equal(t, 10, *delivered)
	assert.Equal(t, 10, dev.Clears)
	assert.Equal(t, Stopped, e.State())
}

func TestRun_SourceError(t *testing.T) {
	_, e := newTestEngine(t, nil)

	failure := errors.New("lost context")
	src, _ := frames(3, 25, failure)

	assert.ErrorIs(t, e.Run(context.Background(), src), failure)
	assert.Equal(t, Stopped, e.State())
}

func TestRun_StopEndsLoop(t *testing.T) {
	_, e := newTestEngine(t, nil)

	src, delivered := frames(100, 25, ErrSourceClosed)
	en, err := e.CreateEntity("stopper")
	require.NoError(t, err)
	var updates int
	en.AddComponent(ecs.NewScript(func(*ecs.Entity, float64) {
		if updates++; updates == 5 {
			e.Stop()
		}
	}, nil))

	require.NoError(t, e.Run(context.Background(), src))
	assert.Equal(t, 5, *delivered)
}

func TestRun_Destroyed(t *testing.T) {
	_, e := newTestEngine(t, nil)
	e.Destroy()

	src, delivered := frames(1, 25, ErrSourceClosed)
	assert.ErrorIs(t, e.Run(context.Background(), src), ErrDestroyed)
	assert.Zero(t, *delivered)
}

func TestRun_TickerCancel(t *testing.T) {
	dev, e := newTestEngine(t, nil)

	src := NewTickerSource(200)
	defer src.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(100*time.Millisecond, cancel)

	require.NoError(t, e.Run(ctx, src))
	assert.Equal(t, Stopped, e.State())
	assert.NotZero(t, dev.Clears)
}

func TestTickerSource_Cancelled(t *testing.T) {
	src := NewTickerSource(1)
	defer src.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.NextFrame(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// vsyncSource delivers frames at a fixed rate and counts presented frames
type vsyncSource struct {
	dev      *gltest.Device
	n, fps   int
	ticks    int
	presents int
	stale    int // presents without a render since the previous one
	clears   int
}

func (s *vsyncSource) NextFrame(ctx context.Context) (time.Time, error) {
	if s.ticks == s.n {
		return time.Time{}, ErrSourceClosed
	}
	ts := epoch.Add(time.Duration(s.ticks) * time.Second / time.Duration(s.fps))
	s.ticks++
	return ts, nil
}

func (s *vsyncSource) Present() {
	s.presents++
	if s.dev.Clears == s.clears {
		s.stale++
	}
	s.clears = s.dev.Clears
}

func TestRun_PresentsRenderedFramesOnly(t *testing.T) {
	dev, e := newTestEngine(t, nil)
	_, err := NewBackground(e, "", "")
	require.NoError(t, err)

	// a 120 Hz display against the 60 fps target
	src := &vsyncSource{dev: dev, n: 240, fps: 120}
	require.NoError(t, e.Run(context.Background(), src))

	assert.Equal(t, 240, src.ticks)
	assert.Equal(t, dev.Clears, src.presents)
	assert.InDelta(t, 120, src.presents, 1)
	assert.Zero(t, src.stale)
}
