package asset

import (
	"bytes"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Primitive types of the UCMESH primitive list
const (
	PrimitiveTriangle uint8 = 0
	PrimitiveQuad     uint8 = 1
)

// MaxMeshVertices bounds the vertex count a header may declare.
const MaxMeshVertices = 1 << 24

// meshVertexSize is the encoded size of one vertex: x, y, z, u, v as f32.
const meshVertexSize = 5 * 4

// MeshData is a decoded triangle list; UVs has one entry per vertex.
type MeshData struct {
	Vertices []mgl32.Vec3
	UVs      []mgl32.Vec2
	Indices  []uint32
}

// AddQuad appends the quad v0 v1 v2 v3 (clockwise from top left) as the two triangles
// (v3, v0, v1) and (v1, v2, v3).
func (m *MeshData) AddQuad(v0, v1, v2, v3 uint32) {
	m.Indices = append(m.Indices, v3, v0, v1, v1, v2, v3)
}

// DecodeMesh parses an UCMESH file:
//
//	"UCMESH" u16 version u32 vertexCount u32 primitiveCount
//	vertexCount * (f32 x, y, z, u, v)
//	primitiveCount * (u8 type, 3 or 4 * u32 index)
//
// A truncated vertex section keeps the vertices it starts, the last one zero-padded; the
// primitives that would follow are missing too, so nothing references the dropped ones.
// A truncated primitive list ends early, and primitives referencing a vertex past the
// decoded vertices are skipped.
func DecodeMesh(data []byte) (MeshData, error) {
	c := &cursor{data: data}
	if err := c.signature(meshSignature); err != nil {
		return MeshData{}, err
	}
	if err := c.version(); err != nil {
		return MeshData{}, err
	}
	vertexCount, ok1 := c.u32()
	primitiveCount, ok2 := c.u32()
	if !ok1 || !ok2 {
		return MeshData{}, ErrTruncatedHeader
	}
	if vertexCount > MaxMeshVertices {
		return MeshData{}, errors.Wrapf(ErrTooLarge, "%d vertices", vertexCount)
	}

	decoded := min(int(vertexCount), (c.remaining()+meshVertexSize-1)/meshVertexSize)
	mesh := MeshData{
		Vertices: make([]mgl32.Vec3, decoded),
		UVs:      make([]mgl32.Vec2, decoded),
	}
	for i := range mesh.Vertices {
		var v [5]float32
		for k := range v {
			v[k], _ = c.f32()
		}
		mesh.Vertices[i] = mgl32.Vec3{v[0], v[1], v[2]}
		mesh.UVs[i] = mgl32.Vec2{v[3], v[4]}
	}

	var idx [4]uint32
primitives:
	for range primitiveCount {
		kind, ok := c.u8()
		if !ok {
			break
		}

		n := 0
		switch kind {
		case PrimitiveTriangle:
			n = 3
		case PrimitiveQuad:
			n = 4
		default:
			return MeshData{}, errors.Wrapf(ErrUnsupportedType, "primitive type %d", kind)
		}

		valid := true
		for k := range n {
			if idx[k], ok = c.u32(); !ok {
				break primitives
			}
			valid = valid && idx[k] < uint32(decoded)
		}
		if !valid {
			continue
		}

		if kind == PrimitiveTriangle {
			mesh.Indices = append(mesh.Indices, idx[0], idx[1], idx[2])
		} else {
			mesh.AddQuad(idx[0], idx[1], idx[2], idx[3])
		}
	}

	return mesh, nil
}

// EncodeMesh writes mesh as an UCMESH file made of triangles only.
func EncodeMesh(mesh MeshData) []byte {
	var buf bytes.Buffer
	header(&buf, meshSignature)
	putU32(&buf, uint32(len(mesh.Vertices)))
	putU32(&buf, uint32(len(mesh.Indices)/3))

	for i, v := range mesh.Vertices {
		var uv mgl32.Vec2
		if i < len(mesh.UVs) {
			uv = mesh.UVs[i]
		}
		putF32(&buf, v.X())
		putF32(&buf, v.Y())
		putF32(&buf, v.Z())
		putF32(&buf, uv.X())
		putF32(&buf, uv.Y())
	}

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		buf.WriteByte(PrimitiveTriangle)
		putU32(&buf, mesh.Indices[i])
		putU32(&buf, mesh.Indices[i+1])
		putU32(&buf, mesh.Indices[i+2])
	}

	return buf.Bytes()
}

// LoadMesh reads and decodes an UCMESH file.
func LoadMesh(path string) (MeshData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MeshData{}, errors.Wrapf(err, "ucmesh %s", path)
	}

	mesh, err := DecodeMesh(data)
	if err != nil {
		return MeshData{}, errors.Wrapf(err, "ucmesh %s", path)
	}

	return mesh, nil
}

func SaveMesh(path string, mesh MeshData) error {
	return errors.Wrapf(os.WriteFile(path, EncodeMesh(mesh), 0o644), "ucmesh %s", path)
}
