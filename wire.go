//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/der-antikeks/backdrop/engine"
	"github.com/der-antikeks/backdrop/engine/opengl"
	"github.com/der-antikeks/backdrop/game"
)

func initEngine(dev *opengl.Device, cfg game.Config, log *zap.Logger) (*game.Engine, error) {
	wire.Build(
		game.ProviderSet,
		wire.Bind(new(engine.Device), new(*opengl.Device)),
	)
	return nil, nil
}
