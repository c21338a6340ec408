package game

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/der-antikeks/backdrop/ecs"
	"github.com/der-antikeks/backdrop/engine"
)

// ProviderSet builds an *Engine from an engine.Device, a Config and a *zap.Logger
var ProviderSet = wire.NewSet(
	ProvideGraphicsDevice,
	ProvideResourceManager,
	ProvideScene,
	ProvideRenderSystem,
	ProvideGovernor,
	NewEventBus,
	NewEngine,
)

func ProvideGraphicsDevice(dev engine.Device, cfg Config) (*engine.GraphicsDevice, error) {
	return engine.NewGraphicsDevice(dev, cfg.Window.Width, cfg.Window.Height)
}

func ProvideResourceManager(dev engine.Device, log *zap.Logger) *engine.ResourceManager {
	return engine.NewResourceManager(dev, log.Named("resources"))
}

func ProvideScene(log *zap.Logger) *ecs.Scene {
	return ecs.NewScene(log.Named("scene"))
}

func ProvideRenderSystem(g *engine.GraphicsDevice, cfg Config, log *zap.Logger) (*engine.RenderSystem, error) {
	return engine.NewRenderSystem(g, cfg.RenderOptions(), log.Named("render"))
}

func ProvideGovernor(cfg Config, log *zap.Logger) *Governor {
	return NewGovernor(cfg.Governor, log.Named("governor"))
}
