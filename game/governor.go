package game

import (
	"time"

	"go.uber.org/zap"
)

// GovernorConfig configures the adaptive frame rate
type GovernorConfig struct {
	TargetFPS  int           `yaml:"target_fps"`
	ReducedFPS int           `yaml:"reduced_fps"`
	Window     time.Duration `yaml:"window"`
	LowerBelow float64       `yaml:"lower_below"` // measured fps below which the reduced rate is used
	RaiseAbove float64       `yaml:"raise_above"` // measured fps from which the target rate is restored
}

func DefaultGovernorConfig() GovernorConfig {
	return GovernorConfig{
		TargetFPS:  60,
		ReducedFPS: 30,
		Window:     5 * time.Second,
		LowerBelow: 30,
		RaiseAbove: 55,
	}
}

// Governor throttles render passes to a target rate. The target adapts to the
// rate frames arrive at, measured over a window. Updates are never throttled.
type Governor struct {
	cfg GovernorConfig
	log *zap.Logger

	target     int
	interval   time.Duration
	lastRender time.Time

	windowStart time.Time
	ticks       int
	measured    float64
}

func NewGovernor(cfg GovernorConfig, log *zap.Logger) *Governor {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Governor{cfg: cfg, log: log}
	g.setTarget(cfg.TargetFPS)
	return g
}

func (g *Governor) setTarget(fps int) {
	if fps < 1 {
		fps = 1
	}
	g.target = fps
	g.interval = time.Second / time.Duration(fps)
}

// Reset restarts timing, the next frame is always rendered
func (g *Governor) Reset() {
	g.lastRender = time.Time{}
	g.windowStart = time.Time{}
	g.ticks = 0
}

func (g *Governor) Target() int             { return g.target }
func (g *Governor) Interval() time.Duration { return g.interval }
func (g *Governor) Measured() float64       { return g.measured }

// ShouldRender books the frame at now and reports whether it is rendered
func (g *Governor) ShouldRender(now time.Time) bool {
	if g.lastRender.IsZero() {
		g.lastRender = now
		g.windowStart = now
		g.ticks = 0
		return true
	}

	g.ticks++
	if span := now.Sub(g.windowStart); span >= g.cfg.Window && span > 0 {
		g.measured = float64(g.ticks) / span.Seconds()
		g.adapt()

		g.ticks = 0
		g.windowStart = now
	}

	elapsed := now.Sub(g.lastRender)
	if elapsed < g.interval {
		return false
	}

	// keep the phase, drop the remainder
	g.lastRender = g.lastRender.Add(elapsed - elapsed%g.interval)
	return true
}

func (g *Governor) adapt() {
	switch {
	case g.measured < g.cfg.LowerBelow && g.target > g.cfg.ReducedFPS:
		g.setTarget(g.cfg.ReducedFPS)
		g.log.Warn("low frame rate, reducing target", zap.Float64("measured", g.measured), zap.Int("target", g.target))

	case g.measured >= g.cfg.RaiseAbove && g.target < g.cfg.TargetFPS:
		g.setTarget(g.cfg.TargetFPS)
		g.log.Info("frame rate recovered, restoring target", zap.Float64("measured", g.measured), zap.Int("target", g.target))
	}
}
