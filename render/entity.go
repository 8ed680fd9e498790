package render

import (
	"github.com/akmonengine/uc3d/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Entity is a scene node drawn as a list of surfaces.
type Entity struct {
	*actor.GameObject

	Enabled  bool
	Color    mgl64.Vec4
	Surfaces []*Surface
}

func NewEntity(scene *actor.Scene, t actor.Transform) *Entity {
	e := &Entity{
		Enabled: true,
		Color:   mgl64.Vec4{1, 1, 1, 1},
	}
	e.GameObject = scene.NewObject(t, e)

	return e
}

func (e *Entity) Kind() actor.Kind {
	return actor.KindEntity
}

// OnGlobalTransformChanged does nothing: the model matrix is resolved at draw time.
func (e *Entity) OnGlobalTransformChanged(*actor.GameObject) {}

func (e *Entity) AddSurface(s *Surface) {
	e.Surfaces = append(e.Surfaces, s)
}

// Render draws every drawable surface with shader. camera is the camera's global transform.
// Drawing goes on after a failing surface; the first error is returned.
func (e *Entity) Render(shader Shader, pipeline Pipeline, view, projection mgl64.Mat4, camera actor.Transform, fog FogSettings) error {
	if !e.Enabled {
		return nil
	}

	shader.Use()

	shader.SetMat4("projection", mat4f(projection))
	shader.SetMat4("view", mat4f(view))
	shader.SetInt("texture", 0)

	shader.SetVec3("cameraPosition", vec3f(camera.GetPosition()))
	shader.SetVec3("cameraRotation", vec3f(camera.GetEulerAngles()))
	shader.SetVec3("cameraFront", vec3f(camera.GetFront()))
	shader.SetVec3("cameraUp", vec3f(camera.GetUp()))
	shader.SetVec3("cameraRight", vec3f(camera.GetRight()))

	shader.SetInt("fogEnabled", boolInt(fog.Enabled))
	shader.SetFloat("fogStartDistance", float32(fog.Start))
	shader.SetFloat("fogEndDistance", float32(fog.End))
	shader.SetVec3("fogColor", vec3f(fog.Color))

	model := e.GetGlobalMatrix()

	var first error
	for i, surface := range e.Surfaces {
		if !surface.drawable() {
			continue
		}

		pipeline.SetCulling(surface.Culling)

		if surface.Texture != nil && surface.Texture.HasTexture() {
			shader.SetInt("hasTexture", 1)
			if err := surface.Texture.BindTexture(); err != nil && first == nil {
				first = errors.Wrapf(err, "entity %q surface %d", e.Name(), i)
			}
		} else {
			shader.SetInt("hasTexture", 0)
		}

		shader.SetMat4("model", mat4f(model.Mul4(surface.Transform.GetTransformationMatrix())))
		shader.SetVec4("color", vec4f(mulVec4(e.Color, surface.Color)))

		if err := surface.Mesh.RenderMesh(); err != nil && first == nil {
			first = errors.Wrapf(err, "entity %q surface %d", e.Name(), i)
		}
	}

	return first
}

func mulVec4(a, b mgl64.Vec4) mgl64.Vec4 {
	return mgl64.Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}
