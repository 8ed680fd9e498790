package render

import (
	"math"

	"github.com/akmonengine/uc3d/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultFOV  = 60 * math.Pi / 180
	DefaultNear = 0.05
	DefaultFar  = 1000
)

// Camera is a perspective viewpoint. Its view matrix follows the global pose.
type Camera struct {
	*actor.GameObject

	// FOV is the vertical field of view in radians
	FOV  float64
	Near float64
	Far  float64

	view mgl64.Mat4
}

func NewCamera(scene *actor.Scene, t actor.Transform) *Camera {
	return NewCameraWith(scene, t, DefaultFOV, DefaultNear, DefaultFar)
}

func NewCameraWith(scene *actor.Scene, t actor.Transform, fov, near, far float64) *Camera {
	c := &Camera{FOV: fov, Near: near, Far: far}
	c.GameObject = scene.NewObject(t, c)
	c.Refresh()

	return c
}

func (c *Camera) Kind() actor.Kind {
	return actor.KindCamera
}

func (c *Camera) OnGlobalTransformChanged(object *actor.GameObject) {
	global := object.GetGlobalTransform()
	position := global.GetPosition()
	c.view = mgl64.LookAtV(position, position.Add(global.GetFront()), global.GetUp())
}

// GetViewMatrix looks from the global position along the global front.
func (c *Camera) GetViewMatrix() mgl64.Mat4 {
	return c.view
}

func (c *Camera) GetProjectionMatrix(aspect float64) mgl64.Mat4 {
	return mgl64.Perspective(c.FOV, aspect, c.Near, c.Far)
}

func (c *Camera) GetProjectionMatrixFor(width, height int) mgl64.Mat4 {
	return c.GetProjectionMatrix(float64(width) / float64(max(height, 1)))
}
