// Package uc3d ties the scene graph, the render boundary and the audio layer into a
// frame loop, with asset caching, parallel preloading and hot reload.
package uc3d

import (
	"log"
	"math"

	"github.com/akmonengine/uc3d/actor"
	"github.com/akmonengine/uc3d/asset"
	"github.com/akmonengine/uc3d/audio"
	"github.com/akmonengine/uc3d/config"
	"github.com/akmonengine/uc3d/render"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const DEFAULT_WORKERS = 1

var ErrNoCamera = errors.New("engine has no camera")

type Engine struct {
	Config config.EngineConfig
	Scene  *actor.Scene
	Device render.Device
	Audio  *audio.Context
	Logger *log.Logger

	// Camera renders the scene; the first camera built from a scene config takes it
	Camera *render.Camera

	assets  *assets
	watcher *asset.Watcher
	frame   int
}

// New creates an engine with an empty scene. device may be nil for a run without
// rendering; backend may be nil for a run without sound.
func New(cfg config.EngineConfig, device render.Device, backend audio.Backend) *Engine {
	e := &Engine{
		Config: cfg,
		Scene:  actor.NewScene(),
		Device: device,
		Logger: log.Default(),
	}
	if backend != nil {
		e.Audio = audio.NewContext(backend)
	}
	e.assets = newAssets()

	e.Scene.Events.Subscribe(actor.OBJECT_DESTROYED, func(event actor.Event) {
		destroyed := event.(actor.ObjectDestroyedEvent)
		if e.Camera != nil && e.Camera.GameObject == destroyed.Object {
			e.Camera = nil
		}
	})

	return e
}

// Frame returns the number of completed steps
func (e *Engine) Frame() int {
	return e.frame
}

// Fog returns the fog settings of the configuration
func (e *Engine) Fog() render.FogSettings {
	f := e.Config.Fog
	return render.FogSettings{
		Enabled: f.Enabled,
		Start:   f.Start,
		End:     f.End,
		Color:   mgl64.Vec3(f.Color),
	}
}

// NewCamera adds a camera configured from the engine settings.
func (e *Engine) NewCamera(t actor.Transform) *render.Camera {
	c := e.Config.Camera
	return render.NewCameraWith(e.Scene, t, c.FOVDegrees*math.Pi/180, c.Near, c.Far)
}

// Step applies pending asset reloads, then delivers the buffered scene events.
func (e *Engine) Step() {
	e.reloadChanged()
	e.Scene.Events.Flush()
	e.frame++
}

// Entities returns the live entities in depth-first scene order.
func (e *Engine) Entities() []*render.Entity {
	var entities []*render.Entity
	e.Scene.Walk(func(o *actor.GameObject) {
		if entity, ok := o.Behavior().(*render.Entity); ok {
			entities = append(entities, entity)
		}
	})

	return entities
}

// Render draws every entity from the engine camera. A failing entity does not stop
// the others; the first error is returned.
func (e *Engine) Render(shader render.Shader, pipeline render.Pipeline) error {
	if e.Camera == nil {
		return ErrNoCamera
	}

	view := e.Camera.GetViewMatrix()
	projection := e.Camera.GetProjectionMatrixFor(e.Config.Window.Width, e.Config.Window.Height)
	camera := e.Camera.GetGlobalTransform()
	fog := e.Fog()

	var first error
	for _, entity := range e.Entities() {
		if err := entity.Render(shader, pipeline, view, projection, camera, fog); err != nil {
			e.Logger.Printf("render: %v", err)
			if first == nil {
				first = err
			}
		}
	}

	return first
}

// Close stops the watcher and releases the audio context.
func (e *Engine) Close() error {
	var first error
	if e.watcher != nil {
		first = e.watcher.Close()
		e.watcher = nil
	}
	if e.Audio != nil {
		if err := e.Audio.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}
