package uc3d

import (
	"math"

	"github.com/akmonengine/uc3d/actor"
	"github.com/akmonengine/uc3d/audio"
	"github.com/akmonengine/uc3d/config"
	"github.com/akmonengine/uc3d/render"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// DefaultCameraName names the camera Build adds to a scene that declares none.
const DefaultCameraName = "default camera"

// Build adds the nodes of a scene config to the engine scene. Nodes are created in
// declaration order with their local transforms, then attached to their parents, each
// keeping its global pose when preserve_global is set. The first camera becomes the
// engine camera. On error the nodes built so far stay in the scene.
func (e *Engine) Build(sc config.SceneConfig) error {
	if err := sc.Validate(); err != nil {
		return errors.Wrapf(err, "scene %q", sc.Name)
	}

	nodes := make(map[string]*actor.GameObject, len(sc.Nodes))
	for _, n := range sc.Nodes {
		o, err := e.buildNode(n)
		if err != nil {
			return errors.Wrapf(err, "scene %q node %q", sc.Name, n.Name)
		}
		o.SetName(n.Name)
		nodes[n.Name] = o
	}

	for _, n := range sc.Nodes {
		if n.Parent == "" {
			continue
		}
		if nodes[n.Name].SetParent(nodes[n.Parent], n.PreserveGlobal) == actor.NotAttached {
			return errors.Errorf("scene %q: node %q cannot be attached to %q", sc.Name, n.Name, n.Parent)
		}
	}

	if e.Camera == nil {
		e.Camera = e.NewCamera(actor.NewTransform())
		e.Camera.SetName(DefaultCameraName)
	}
	e.Logger.Printf("scene %q: %d nodes built", sc.Name, len(sc.Nodes))

	return nil
}

func (e *Engine) buildNode(n config.NodeConfig) (*actor.GameObject, error) {
	t, err := transformOf(n.Transform)
	if err != nil {
		return nil, err
	}

	switch n.Kind {
	case config.KindEntity:
		return e.buildEntity(n, t)
	case config.KindCamera:
		c := e.NewCamera(t)
		if e.Camera == nil {
			e.Camera = c
		}
		return c.GameObject, nil
	case config.KindAudioSource:
		return e.buildSource(n, t)
	case config.KindAudioListener:
		if e.Audio == nil {
			return nil, ErrNoAudio
		}
		l, err := audio.NewListener(e.Audio, e.Scene, t)
		if err != nil {
			return nil, err
		}
		return l.GameObject, nil
	default:
		return e.Scene.NewObject(t, nil), nil
	}
}

func (e *Engine) buildEntity(n config.NodeConfig, t actor.Transform) (*actor.GameObject, error) {
	entity := render.NewEntity(e.Scene, t)
	color, err := config.ColorVec(n.Color)
	if err != nil {
		entity.Destroy()
		return nil, err
	}
	entity.Color = mgl64.Vec4(color)

	for i, sc := range n.Surfaces {
		s, err := e.buildSurface(sc)
		if err != nil {
			entity.Destroy()
			return nil, errors.Wrapf(err, "surface %d", i)
		}
		entity.AddSurface(s)
	}

	return entity.GameObject, nil
}

func (e *Engine) buildSurface(sc config.SurfaceConfig) (*render.Surface, error) {
	var mesh *render.Mesh
	if sc.Mesh != "" {
		m, err := e.Mesh(sc.Mesh)
		if err != nil {
			return nil, err
		}
		mesh = m
	}

	var texture *render.Texture
	if sc.Texture != "" {
		tex, err := e.Texture(sc.Texture)
		if err != nil {
			return nil, err
		}
		texture = tex
	}

	s := render.NewSurface(mesh, texture)
	offset, err := transformOf(sc.Offset)
	if err != nil {
		return nil, err
	}
	s.Transform = offset

	color, err := config.ColorVec(sc.Color)
	if err != nil {
		return nil, err
	}
	s.Color = mgl64.Vec4(color)

	if s.Culling, err = render.ParseFaceCulling(sc.Culling); err != nil {
		return nil, err
	}
	s.Enabled = !sc.Disabled

	return s, nil
}

func (e *Engine) buildSource(n config.NodeConfig, t actor.Transform) (*actor.GameObject, error) {
	if e.Audio == nil {
		return nil, ErrNoAudio
	}

	s, err := audio.NewSource(e.Audio, e.Scene, t)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*actor.GameObject, error) {
		s.Destroy()
		return nil, err
	}

	if err := s.SetLooping(n.Looping); err != nil {
		return fail(err)
	}
	if n.Clip != "" {
		clip, err := e.Clip(n.Clip)
		if err != nil {
			return fail(err)
		}
		if n.Play {
			err = s.PlayClip(clip)
		} else {
			err = s.SetClip(clip)
		}
		if err != nil {
			return fail(err)
		}
	}

	return s.GameObject, nil
}

// transformOf converts a transform config, with rotation in degrees.
func transformOf(tc config.TransformConfig) (actor.Transform, error) {
	scale, err := tc.ScaleVec()
	if err != nil {
		return actor.Transform{}, err
	}

	euler := mgl64.Vec3(tc.Rotation).Mul(math.Pi / 180)

	return actor.NewTransformEuler(mgl64.Vec3(tc.Position), euler, mgl64.Vec3(scale)), nil
}
