// Package render holds the drawable side of the engine: meshes, textures, surfaces,
// the camera and renderable entities. The GPU itself stays behind the Device, Shader
// and Pipeline interfaces.
package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

var (
	ErrNoBuffers     = errors.New("mesh has no buffers")
	ErrBuffersExist  = errors.New("mesh buffers already generated")
	ErrNoDevice      = errors.New("no render device")
	ErrNoTexture     = errors.New("texture not uploaded")
	ErrNoTextureData = errors.New("texture has no data")
)

// MeshBuffer is the GPU copy of a mesh
type MeshBuffer interface {
	Draw(indexCount int) error
	Delete() error
}

type TextureParameter uint8

const (
	MinFilter TextureParameter = iota
	MagFilter
	WrapS
	WrapT
)

type TextureValue uint8

const (
	FilterNearest TextureValue = iota
	FilterLinear
	WrapRepeat
	WrapClampToEdge
)

// TextureBuffer is the GPU copy of a texture
type TextureBuffer interface {
	Bind() error
	SetParameter(p TextureParameter, v TextureValue) error
	Delete() error
}

// Device allocates GPU resources. Implementations are not required to be safe for
// concurrent use: the engine only calls them from the frame goroutine.
type Device interface {
	CreateMeshBuffers(vertices []mgl32.Vec3, uvs []mgl32.Vec2, indices []uint32) (MeshBuffer, error)
	CreateTexture(width, height int, rgba []byte) (TextureBuffer, error)
}

// Shader is a linked GPU program.
type Shader interface {
	Use()
	HasUniform(name string) bool
	SetInt(name string, v int32)
	SetFloat(name string, v float32)
	SetVec3(name string, v mgl32.Vec3)
	SetVec4(name string, v mgl32.Vec4)
	SetMat4(name string, v mgl32.Mat4)
}

// Pipeline is the fixed-function state touched while drawing.
type Pipeline interface {
	SetCulling(c FaceCulling)
}

type FaceCulling uint8

const (
	NoCulling FaceCulling = iota
	BackFace
	FrontFace
	BothFaces
)

func (c FaceCulling) String() string {
	switch c {
	case NoCulling:
		return "none"
	case BackFace:
		return "back"
	case FrontFace:
		return "front"
	case BothFaces:
		return "both"
	default:
		return "unknown"
	}
}

// ParseFaceCulling accepts the names returned by String; "" is BackFace.
func ParseFaceCulling(s string) (FaceCulling, error) {
	switch s {
	case "none":
		return NoCulling, nil
	case "", "back":
		return BackFace, nil
	case "front":
		return FrontFace, nil
	case "both":
		return BothFaces, nil
	default:
		return BackFace, errors.Errorf("unknown face culling %q", s)
	}
}

type FogSettings struct {
	Enabled bool
	Start   float64
	End     float64
	Color   mgl64.Vec3
}

func vec3f(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

func vec4f(v mgl64.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3])}
}

func mat4f(m mgl64.Mat4) (r mgl32.Mat4) {
	for i := range m {
		r[i] = float32(m[i])
	}

	return r
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}

	return 0
}
