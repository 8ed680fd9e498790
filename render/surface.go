package render

import (
	"github.com/akmonengine/uc3d/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Surface is a mesh and texture pair drawn with its own offset from the entity.
type Surface struct {
	Transform actor.Transform
	Mesh      *Mesh
	Texture   *Texture
	Color     mgl64.Vec4
	Enabled   bool
	Culling   FaceCulling
}

// NewSurface returns an enabled, white, back-face culled surface. texture may be nil.
func NewSurface(mesh *Mesh, texture *Texture) *Surface {
	return &Surface{
		Transform: actor.NewTransform(),
		Mesh:      mesh,
		Texture:   texture,
		Color:     mgl64.Vec4{1, 1, 1, 1},
		Enabled:   true,
		Culling:   BackFace,
	}
}

// drawable reports whether the surface produces a draw call
func (s *Surface) drawable() bool {
	return s.Enabled && s.Mesh != nil && s.Mesh.HasBuffers() && s.Culling != BothFaces
}
