package render

import (
	"slices"

	"github.com/akmonengine/uc3d/actor"
	"github.com/akmonengine/uc3d/asset"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is an indexed triangle list with one UV per vertex, and its optional GPU buffers.
// Once buffers exist, edits mark them dirty and the next RenderMesh uploads again,
// unless the buffers are locked.
type Mesh struct {
	vertices []mgl32.Vec3
	uvs      []mgl32.Vec2
	indices  []uint32

	device Device
	buffer MeshBuffer
	dirty  bool
	locked bool
}

// NewMesh copies the given geometry into a mesh without buffers.
func NewMesh(vertices []mgl32.Vec3, indices []uint32, uvs []mgl32.Vec2) *Mesh {
	return &Mesh{
		vertices: slices.Clone(vertices),
		indices:  slices.Clone(indices),
		uvs:      slices.Clone(uvs),
	}
}

func (m *Mesh) ClearVertices() {
	m.vertices = m.vertices[:0]
	m.dropBuffers()
}

func (m *Mesh) ClearIndices() {
	m.indices = m.indices[:0]
	m.dropBuffers()
}

func (m *Mesh) ClearUVs() {
	m.uvs = m.uvs[:0]
	m.dropBuffers()
}

func (m *Mesh) ClearMesh() {
	m.ClearVertices()
	m.ClearIndices()
	m.ClearUVs()
}

func (m *Mesh) AddVertexWithUV(vertex mgl32.Vec3, uv mgl32.Vec2) {
	m.vertices = append(m.vertices, vertex)
	m.uvs = append(m.uvs, uv)
	m.touch()
}

func (m *Mesh) AddTriangle(v0, v1, v2 uint32) {
	m.indices = append(m.indices, v0, v1, v2)
	m.touch()
}

// AddQuad adds the quad
//
//	v0 ... v1
//	.       .
//	v3 ... v2
//
// as the triangles (v3, v0, v1) and (v1, v2, v3).
func (m *Mesh) AddQuad(v0, v1, v2, v3 uint32) {
	m.AddTriangle(v3, v0, v1)
	m.AddTriangle(v1, v2, v3)
}

func (m *Mesh) GetVertices() []mgl32.Vec3 {
	return slices.Clone(m.vertices)
}

func (m *Mesh) GetIndices() []uint32 {
	return slices.Clone(m.indices)
}

func (m *Mesh) GetUVs() []mgl32.Vec2 {
	return slices.Clone(m.uvs)
}

func (m *Mesh) GetIndicesCount() int {
	return len(m.indices)
}

// ApplyTransformation transforms every vertex as a point.
func (m *Mesh) ApplyTransformation(mat mgl64.Mat4) {
	for i, v := range m.vertices {
		p := mgl64.TransformCoordinate(mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}, mat)
		m.vertices[i] = vec3f(p)
	}
	m.touch()
}

// ApplyTransform applies the TRS matrix of t.
func (m *Mesh) ApplyTransform(t actor.Transform) {
	m.ApplyTransformation(t.GetTransformationMatrix())
}

// SetData replaces the geometry. Without buffers nothing is uploaded; otherwise the
// buffers are regenerated on the device that created them.
func (m *Mesh) SetData(data asset.MeshData) error {
	hadBuffers := m.HasBuffers()
	m.ClearMesh()
	m.vertices = append(m.vertices, data.Vertices...)
	m.uvs = append(m.uvs, data.UVs...)
	m.indices = append(m.indices, data.Indices...)

	if hadBuffers {
		return m.GenerateBuffers(m.device)
	}

	return nil
}

// LoadFromUCMESHFile replaces the geometry with the file content.
// On error the mesh is left untouched.
func (m *Mesh) LoadFromUCMESHFile(path string) error {
	data, err := asset.LoadMesh(path)
	if err != nil {
		return err
	}

	return m.SetData(data)
}

func (m *Mesh) HasBuffers() bool {
	return m.buffer != nil
}

func (m *Mesh) IsBuffersLocked() bool {
	return m.locked
}

// LockBuffers defers every upload until UnlockBuffers.
func (m *Mesh) LockBuffers() {
	m.locked = true
}

func (m *Mesh) UnlockBuffers() {
	m.locked = false
}

// GenerateBuffers uploads the mesh to dev. It fails with ErrBuffersExist when buffers are
// already there.
func (m *Mesh) GenerateBuffers(dev Device) error {
	if m.HasBuffers() {
		return ErrBuffersExist
	}
	if dev == nil {
		return ErrNoDevice
	}

	buffer, err := dev.CreateMeshBuffers(m.vertices, m.uvs, m.indices)
	if err != nil {
		return err
	}
	m.device = dev
	m.buffer = buffer
	m.dirty = false

	return nil
}

func (m *Mesh) DeleteBuffers() error {
	if !m.HasBuffers() {
		return ErrNoBuffers
	}

	err := m.buffer.Delete()
	m.buffer = nil

	return err
}

// RegenerateBuffers replaces the buffers with a fresh upload to the same device.
func (m *Mesh) RegenerateBuffers() error {
	if m.device == nil {
		return ErrNoDevice
	}
	if m.HasBuffers() {
		if err := m.DeleteBuffers(); err != nil {
			return err
		}
	}

	return m.GenerateBuffers(m.device)
}

// RenderMesh draws every index. Pending edits are uploaded first unless the buffers are locked.
func (m *Mesh) RenderMesh() error {
	if !m.HasBuffers() {
		return ErrNoBuffers
	}
	if m.dirty && !m.locked {
		if err := m.RegenerateBuffers(); err != nil {
			return err
		}
	}

	return m.buffer.Draw(len(m.indices))
}

func (m *Mesh) touch() {
	if m.HasBuffers() {
		m.dirty = true
	}
}

// dropBuffers releases the buffers a clear invalidated; the device is kept for SetData.
func (m *Mesh) dropBuffers() {
	if m.HasBuffers() {
		_ = m.buffer.Delete()
		m.buffer = nil
	}
	m.dirty = false
}
