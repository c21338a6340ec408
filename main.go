package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/der-antikeks/backdrop/engine/opengl"
	"github.com/der-antikeks/backdrop/game"
	"github.com/der-antikeks/backdrop/window"
)

func init() {
	// glfw and gl calls must stay on the main thread
	runtime.LockOSThread()
}

var (
	configPath   = flag.String("config", "", "yaml configuration file")
	fragmentPath = flag.String("fragment", "", "fragment shader replacing the built-in background, reloaded when the file changes")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := game.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = game.LoadConfig(*configPath); err != nil {
			return err
		}
	}

	log, err := game.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	win, err := window.New(cfg.Window, log)
	if err != nil {
		return err
	}
	defer win.Destroy()

	dev, err := opengl.New()
	if err != nil {
		return err
	}
	defer dev.Release()
	log.Info("opengl context", zap.String("version", dev.Version()))

	// the engine renders in framebuffer pixels
	cfg.Window.Width, cfg.Window.Height = win.Size()

	e, err := initEngine(dev, cfg, log)
	if err != nil {
		log.Error("engine construction failed, using fallback", zap.Error(err))
		return fallback(ctx, win, dev, cfg)
	}
	defer e.Destroy()

	var fragment string
	if *fragmentPath != "" {
		src, err := os.ReadFile(*fragmentPath)
		if err != nil {
			return err
		}
		fragment = string(src)
	}

	bg, err := game.NewBackground(e, "", fragment)
	if err != nil {
		log.Error("background construction failed, using fallback", zap.Error(err))
		e.Destroy()
		return fallback(ctx, win, dev, cfg)
	}

	win.OnResize(func(width, height int) {
		if err := e.Resize(width, height); err != nil {
			log.Error("resize", zap.Error(err))
		}
	})

	if *fragmentPath != "" {
		w, err := game.WatchShader(e, bg, *fragmentPath)
		if err != nil {
			return err
		}
		defer w.Close()
	}

	return e.Run(ctx, win)
}

// fallback clears the window to the fallback color until it is closed
func fallback(ctx context.Context, win *window.Window, dev *opengl.Device, cfg game.Config) error {
	c := cfg.Render.FallbackColor
	for {
		if _, err := win.NextFrame(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, game.ErrSourceClosed) {
				return nil
			}
			return err
		}

		w, h := win.Size()
		dev.BindFramebuffer(0)
		dev.Viewport(0, 0, w, h)
		dev.ClearColor(c[0], c[1], c[2], c[3])
		dev.Clear(true, true)
		win.Present()
	}
}
