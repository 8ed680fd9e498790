package render

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// RecordingDevice is a headless Device keeping every resource it created, for tools and tests.
type RecordingDevice struct {
	Meshes   []*RecordedMesh
	Textures []*RecordedTexture

	// Fail makes every following Create call fail with it
	Fail error
}

func NewRecordingDevice() *RecordingDevice {
	return &RecordingDevice{}
}

type RecordedMesh struct {
	Vertices []mgl32.Vec3
	UVs      []mgl32.Vec2
	Indices  []uint32
	Draws    []int
	Deleted  bool
}

func (m *RecordedMesh) Draw(indexCount int) error {
	if m.Deleted {
		return errors.New("draw of a deleted mesh buffer")
	}
	m.Draws = append(m.Draws, indexCount)

	return nil
}

func (m *RecordedMesh) Delete() error {
	if m.Deleted {
		return errors.New("mesh buffer deleted twice")
	}
	m.Deleted = true

	return nil
}

type RecordedTexture struct {
	Width   int
	Height  int
	Pix     []byte
	Params  map[TextureParameter]TextureValue
	Binds   int
	Deleted bool
}

func (t *RecordedTexture) Bind() error {
	if t.Deleted {
		return errors.New("bind of a deleted texture")
	}
	t.Binds++

	return nil
}

func (t *RecordedTexture) SetParameter(p TextureParameter, v TextureValue) error {
	if t.Deleted {
		return errors.New("parameter on a deleted texture")
	}
	t.Params[p] = v

	return nil
}

func (t *RecordedTexture) Delete() error {
	if t.Deleted {
		return errors.New("texture deleted twice")
	}
	t.Deleted = true

	return nil
}

func (d *RecordingDevice) CreateMeshBuffers(vertices []mgl32.Vec3, uvs []mgl32.Vec2, indices []uint32) (MeshBuffer, error) {
	if d.Fail != nil {
		return nil, d.Fail
	}

	m := &RecordedMesh{
		Vertices: slices.Clone(vertices),
		UVs:      slices.Clone(uvs),
		Indices:  slices.Clone(indices),
	}
	d.Meshes = append(d.Meshes, m)

	return m, nil
}

func (d *RecordingDevice) CreateTexture(width, height int, rgba []byte) (TextureBuffer, error) {
	if d.Fail != nil {
		return nil, d.Fail
	}
	if len(rgba) < 4*width*height {
		return nil, errors.Errorf("texture %dx%d with %d bytes", width, height, len(rgba))
	}

	t := &RecordedTexture{
		Width:  width,
		Height: height,
		Pix:    slices.Clone(rgba),
		Params: make(map[TextureParameter]TextureValue),
	}
	d.Textures = append(d.Textures, t)

	return t, nil
}

// Live returns the number of mesh and texture buffers not deleted yet
func (d *RecordingDevice) Live() (meshes, textures int) {
	for _, m := range d.Meshes {
		if !m.Deleted {
			meshes++
		}
	}
	for _, t := range d.Textures {
		if !t.Deleted {
			textures++
		}
	}

	return meshes, textures
}

// Uniform is one recorded uniform assignment
type Uniform struct {
	Name  string
	Value any
}

// RecordingShader records uniform assignments. With Declared set, HasUniform only
// accepts those names.
type RecordingShader struct {
	Declared map[string]bool
	History  []Uniform
	Uses     int
}

func NewRecordingShader() *RecordingShader {
	return &RecordingShader{}
}

func (s *RecordingShader) Use() {
	s.Uses++
}

func (s *RecordingShader) HasUniform(name string) bool {
	return s.Declared == nil || s.Declared[name]
}

func (s *RecordingShader) record(name string, v any) {
	s.History = append(s.History, Uniform{Name: name, Value: v})
}

func (s *RecordingShader) SetInt(name string, v int32)        { s.record(name, v) }
func (s *RecordingShader) SetFloat(name string, v float32)    { s.record(name, v) }
func (s *RecordingShader) SetVec3(name string, v mgl32.Vec3)  { s.record(name, v) }
func (s *RecordingShader) SetVec4(name string, v mgl32.Vec4)  { s.record(name, v) }
func (s *RecordingShader) SetMat4(name string, v mgl32.Mat4)  { s.record(name, v) }

// Last returns the latest value assigned to name.
func (s *RecordingShader) Last(name string) (any, bool) {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Name == name {
			return s.History[i].Value, true
		}
	}

	return nil, false
}

// All returns every value assigned to name, in order.
func (s *RecordingShader) All(name string) []any {
	var values []any
	for _, u := range s.History {
		if u.Name == name {
			values = append(values, u.Value)
		}
	}

	return values
}

type RecordingPipeline struct {
	Culling []FaceCulling
}

func (p *RecordingPipeline) SetCulling(c FaceCulling) {
	p.Culling = append(p.Culling, c)
}
