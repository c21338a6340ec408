package game

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/der-antikeks/backdrop/ecs"
)

// ShaderWatcherEntity is the name of the entity applying reloads
const ShaderWatcherEntity = "ShaderWatcher"

// ShaderWatcher reloads the background fragment shader when its file changes.
// File events arrive on the watcher goroutine, the reload itself runs as a
// script on the frame loop, whether or not the frame is rendered.
type ShaderWatcher struct {
	background *Background
	path       string
	log        *zap.Logger

	watcher *fsnotify.Watcher
	changed chan struct{}
	entity  *ecs.Entity
}

// WatchShader watches the fragment shader file at path for bg
func WatchShader(e *Engine, bg *Background, path string) (*ShaderWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch shader: %w", err)
	}
	// editors replace files, watch the directory
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch shader: %w", err)
	}

	entity, err := e.CreateEntity(ShaderWatcherEntity)
	if err != nil {
		fw.Close()
		return nil, err
	}

	w := &ShaderWatcher{
		background: bg,
		path:       abs,
		log:        e.Logger().Named("watcher"),
		watcher:    fw,
		changed:    make(chan struct{}, 1),
		entity:     entity,
	}
	entity.AddComponent(ecs.NewScript(w.update, func() { w.watcher.Close() }))

	go w.watch()

	w.log.Info("watching shader", zap.String("path", abs))
	return w, nil
}

func (w *ShaderWatcher) watch() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// coalesce bursts of events into one reload
			select {
			case w.changed <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *ShaderWatcher) update(*ecs.Entity, float64) {
	select {
	case <-w.changed:
	default:
		return
	}

	src, err := os.ReadFile(w.path)
	if err != nil {
		w.log.Warn("read shader", zap.String("path", w.path), zap.Error(err))
		return
	}
	// failures keep the running shader and are logged by the background
	_ = w.background.UpdateShader(w.background.vertex, string(src))
}

// Close stops watching and removes the entity
func (w *ShaderWatcher) Close() {
	if w.entity.Destroyed() {
		return
	}
	w.entity.Destroy()
}
