// Package asset decodes and encodes the engine's binary asset files.
//
// Every format starts with a fixed ASCII signature followed by little-endian
// fixed-width header fields and a flat payload. A bad signature, version or type
// rejects the whole load; a truncated payload is zero or placeholder filled.
package asset

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"

	"github.com/pkg/errors"
)

var (
	ErrBadSignature    = errors.New("bad signature")
	ErrBadVersion      = errors.New("unsupported version")
	ErrUnsupportedType = errors.New("unsupported type")
	ErrTruncatedHeader = errors.New("truncated header")
	ErrTooLarge        = errors.New("declared size too large")
)

const Version = 0

type Kind uint8

const (
	KindUnknown Kind = iota
	KindMesh
	KindTexture
	KindSound
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "ucmesh"
	case KindTexture:
		return "uctex"
	case KindSound:
		return "ucsound"
	default:
		return "unknown"
	}
}

const (
	meshSignature    = "UCMESH"
	textureSignature = "UCTEX"
	soundSignature   = "UCSOUND"
)

// Identify returns the asset kind announced by the signature of data.
func Identify(data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, []byte(meshSignature)):
		return KindMesh
	case bytes.HasPrefix(data, []byte(textureSignature)):
		return KindTexture
	case bytes.HasPrefix(data, []byte(soundSignature)):
		return KindSound
	default:
		return KindUnknown
	}
}

// Load reads path and decodes it according to its signature. The result is a
// MeshData, TextureData or SoundData.
func Load(path string) (Kind, any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return KindUnknown, nil, err
	}

	kind := Identify(data)
	var v any
	switch kind {
	case KindMesh:
		v, err = DecodeMesh(data)
	case KindTexture:
		v, err = DecodeTexture(data)
	case KindSound:
		v, err = DecodeSound(data)
	default:
		err = ErrBadSignature
	}
	if err != nil {
		return kind, nil, errors.Wrapf(err, "asset %s", path)
	}

	return kind, v, nil
}

// cursor reads little-endian fields from a byte slice. Reads past the end report false
// and consume whatever was left.
type cursor struct {
	data []byte
	off  int
}

func (c *cursor) remaining() int {
	return len(c.data) - c.off
}

func (c *cursor) take(n int) ([]byte, bool) {
	if c.remaining() < n {
		c.off = len(c.data)
		return nil, false
	}
	b := c.data[c.off : c.off+n]
	c.off += n

	return b, true
}

func (c *cursor) signature(sig string) error {
	b, ok := c.take(len(sig))
	if !ok || string(b) != sig {
		return ErrBadSignature
	}

	return nil
}

func (c *cursor) version() error {
	v, ok := c.u16()
	if !ok {
		return ErrTruncatedHeader
	}
	if v != Version {
		return errors.Wrapf(ErrBadVersion, "version %d", v)
	}

	return nil
}

func (c *cursor) u8() (uint8, bool) {
	b, ok := c.take(1)
	if !ok {
		return 0, false
	}

	return b[0], true
}

func (c *cursor) u16() (uint16, bool) {
	b, ok := c.take(2)
	if !ok {
		return 0, false
	}

	return binary.LittleEndian.Uint16(b), true
}

func (c *cursor) u32() (uint32, bool) {
	b, ok := c.take(4)
	if !ok {
		return 0, false
	}

	return binary.LittleEndian.Uint32(b), true
}

func (c *cursor) f32() (float32, bool) {
	v, ok := c.u32()

	return math.Float32frombits(v), ok
}

func (c *cursor) rest() []byte {
	b := c.data[c.off:]
	c.off = len(c.data)

	return b
}

// header writes the signature and version
func header(buf *bytes.Buffer, sig string) {
	buf.WriteString(sig)
	putU16(buf, Version)
}

func putU16(buf *bytes.Buffer, v uint16) {
	buf.Write(binary.LittleEndian.AppendUint16(nil, v))
}

func putU32(buf *bytes.Buffer, v uint32) {
	buf.Write(binary.LittleEndian.AppendUint32(nil, v))
}

func putF32(buf *bytes.Buffer, v float32) {
	putU32(buf, math.Float32bits(v))
}
