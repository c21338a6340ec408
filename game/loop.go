package game

import (
	"context"
	"errors"
	"time"
)

// ErrSourceClosed is returned by a FrameSource that will not deliver further frames
var ErrSourceClosed = errors.New("frame source closed")

// FrameSource blocks until the next frame is due and returns its timestamp.
// Timestamps must increase monotonically.
type FrameSource interface {
	NextFrame(ctx context.Context) (time.Time, error)
}

// Presenter is implemented by frame sources that show rendered frames,
// Present is only called after a frame was rendered
type Presenter interface {
	Present()
}

// FrameFunc adapts a function to a FrameSource
type FrameFunc func(ctx context.Context) (time.Time, error)

func (f FrameFunc) NextFrame(ctx context.Context) (time.Time, error) { return f(ctx) }

// TickerSource delivers frames at a fixed rate
type TickerSource struct {
	ticker *time.Ticker
}

func NewTickerSource(fps int) *TickerSource {
	if fps < 1 {
		fps = 1
	}
	return &TickerSource{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

func (s *TickerSource) NextFrame(ctx context.Context) (time.Time, error) {
	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	case t := <-s.ticker.C:
		return t, nil
	}
}

func (s *TickerSource) Stop() { s.ticker.Stop() }

// Run drives the engine on the calling goroutine until it is stopped,
// the context is cancelled or the source is closed.
// The goroutine must own the graphics context.
func (e *Engine) Run(ctx context.Context, src FrameSource) error {
	if e.state == Destroyed {
		return ErrDestroyed
	}
	presenter, _ := src.(Presenter)
	e.Start()

	for e.state == Running {
		ts, err := src.NextFrame(ctx)
		if err != nil {
			e.Stop()
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrSourceClosed) {
				return nil
			}
			return err
		}
		if e.Tick(ts) && presenter != nil {
			presenter.Present()
		}
	}
	return nil
}
