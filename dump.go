package uc3d

import (
	"io"

	"github.com/akmonengine/uc3d/actor"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl64"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
}

// NodeDump is a snapshot of a scene node and its subtree. Rotations are Euler angles in
// degrees.
type NodeDump struct {
	Name           string
	Kind           string
	Position       [3]float64
	Rotation       [3]float64
	Scale          [3]float64
	GlobalPosition [3]float64
	Children       []NodeDump
}

// Snapshot returns the scene as one NodeDump per root, in scene order.
func (e *Engine) Snapshot() []NodeDump {
	roots := e.Scene.Roots()
	dumps := make([]NodeDump, 0, len(roots))
	for _, root := range roots {
		dumps = append(dumps, snapshot(root))
	}

	return dumps
}

func snapshot(o *actor.GameObject) NodeDump {
	local := o.Transform()
	global := o.GetGlobalTransform()

	d := NodeDump{
		Name:           o.Name(),
		Kind:           o.Kind().String(),
		Position:       local.GetPosition(),
		Rotation:       degrees(local.GetEulerAngles()),
		Scale:          local.GetScale(),
		GlobalPosition: global.GetPosition(),
	}
	for _, child := range o.Children() {
		d.Children = append(d.Children, snapshot(child))
	}

	return d
}

func degrees(v mgl64.Vec3) [3]float64 {
	return [3]float64{mgl64.RadToDeg(v[0]), mgl64.RadToDeg(v[1]), mgl64.RadToDeg(v[2])}
}

// Dump writes the scene tree to w.
func (e *Engine) Dump(w io.Writer) {
	spewConfig.Fdump(w, e.Snapshot())
}
