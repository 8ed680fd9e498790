package asset

import (
	"bytes"
	"image"
	"os"

	"github.com/pkg/errors"
)

// TextureFormat is the pixel layout stored in an UCTEX file
type TextureFormat uint8

const (
	TextureRGBA8888 TextureFormat = iota
	TextureRGB888
	TextureA1B5G5R5
	TextureB5G5R5
)

func (f TextureFormat) String() string {
	switch f {
	case TextureRGBA8888:
		return "rgba8888"
	case TextureRGB888:
		return "rgb888"
	case TextureA1B5G5R5:
		return "a1b5g5r5"
	case TextureB5G5R5:
		return "b5g5r5"
	default:
		return "unknown"
	}
}

// BytesPerPixel returns the stored size of one pixel, 0 for an unknown format.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case TextureRGBA8888:
		return 4
	case TextureRGB888:
		return 3
	case TextureA1B5G5R5, TextureB5G5R5:
		return 2
	default:
		return 0
	}
}

// placeholder returns the "missing texture" checkerboard color of the format, as RGBA.
func (f TextureFormat) placeholder(odd bool) [4]byte {
	switch f {
	case TextureRGB888:
		if odd {
			return [4]byte{0, 255, 0, 255}
		}
		return [4]byte{255, 255, 255, 255}
	case TextureA1B5G5R5:
		if odd {
			return unpack5551(0b1000001111111111, true)
		}
		return unpack5551(0b1111110000000000, true)
	case TextureB5G5R5:
		if odd {
			return unpack5551(0b0111111111100000, false)
		}
		return unpack5551(0b0000000000011111, false)
	default:
		if odd {
			return [4]byte{255, 0, 255, 255}
		}
		return [4]byte{0, 0, 0, 255}
	}
}

// TextureData is a decoded texture, always expanded to 8 bits per RGBA channel,
// rows from top to bottom.
type TextureData struct {
	Format TextureFormat
	Width  int
	Height int
	Pix    []byte
}

// Image wraps the pixels, without copying them.
func (t TextureData) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    t.Pix,
		Stride: 4 * t.Width,
		Rect:   image.Rect(0, 0, t.Width, t.Height),
	}
}

// NewTextureData copies img into a texture stored in format.
func NewTextureData(img image.Image, format TextureFormat) TextureData {
	nrgba := ToNRGBA(img)
	b := nrgba.Bounds()
	t := TextureData{
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]byte, 4*b.Dx()*b.Dy()),
	}
	for y := 0; y < t.Height; y++ {
		row := nrgba.Pix[nrgba.PixOffset(b.Min.X, b.Min.Y+y):]
		copy(t.Pix[4*t.Width*y:4*t.Width*(y+1)], row[:4*t.Width])
	}

	return t
}

// DecodeTexture parses an UCTEX file:
//
//	"UCTEX" u16 version u8 format u16 width-1 u16 height-1
//	height rows of width pixels
//
// Every pixel missing from a truncated file gets the checkerboard placeholder color:
// the phase starts even at (0, 0) and flips at each column and each row.
func DecodeTexture(data []byte) (TextureData, error) {
	c := &cursor{data: data}
	if err := c.signature(textureSignature); err != nil {
		return TextureData{}, err
	}
	if err := c.version(); err != nil {
		return TextureData{}, err
	}
	format, ok := c.u8()
	if !ok {
		return TextureData{}, ErrTruncatedHeader
	}
	if format > uint8(TextureB5G5R5) {
		return TextureData{}, errors.Wrapf(ErrUnsupportedType, "texture format %d", format)
	}
	w, ok1 := c.u16()
	h, ok2 := c.u16()
	if !ok1 || !ok2 {
		return TextureData{}, ErrTruncatedHeader
	}

	t := TextureData{
		Format: TextureFormat(format),
		Width:  int(w) + 1,
		Height: int(h) + 1,
	}
	t.Pix = make([]byte, 0, 4*t.Width*t.Height)
	size := t.Format.BytesPerPixel()

	oddRow := false
	for y := 0; y < t.Height; y++ {
		odd := oddRow
		for x := 0; x < t.Width; x++ {
			var px [4]byte
			if b, ok := c.take(size); ok {
				px = t.Format.unpack(b)
			} else {
				px = t.Format.placeholder(odd)
			}
			t.Pix = append(t.Pix, px[:]...)
			odd = !odd
		}
		oddRow = !oddRow
	}

	return t, nil
}

func (f TextureFormat) unpack(b []byte) [4]byte {
	switch f {
	case TextureRGB888:
		return [4]byte{b[0], b[1], b[2], 255}
	case TextureA1B5G5R5:
		return unpack5551(uint16(b[0])|uint16(b[1])<<8, true)
	case TextureB5G5R5:
		return unpack5551(uint16(b[0])|uint16(b[1])<<8, false)
	default:
		return [4]byte{b[0], b[1], b[2], b[3]}
	}
}

func (f TextureFormat) pack(px []byte) []byte {
	switch f {
	case TextureRGB888:
		return px[:3]
	case TextureA1B5G5R5:
		v := pack5551(px, px[3] >= 128)
		return []byte{byte(v), byte(v >> 8)}
	case TextureB5G5R5:
		v := pack5551(px, false)
		return []byte{byte(v), byte(v >> 8)}
	default:
		return px[:4]
	}
}

// unpack5551 expands 0bABBBBBGGGGGRRRRR; without alpha the top bit is ignored.
func unpack5551(v uint16, alpha bool) [4]byte {
	px := [4]byte{
		byte(v&0x1f) << 3,
		byte(v>>5&0x1f) << 3,
		byte(v>>10&0x1f) << 3,
		255,
	}
	if alpha && v>>15 == 0 {
		px[3] = 0
	}

	return px
}

func pack5551(px []byte, alpha bool) uint16 {
	v := uint16(px[0]>>3) | uint16(px[1]>>3)<<5 | uint16(px[2]>>3)<<10
	if alpha {
		v |= 1 << 15
	}

	return v
}

// EncodeTexture writes t as an UCTEX file in t.Format. Width and height must be in [1, 65536].
func EncodeTexture(t TextureData) ([]byte, error) {
	if t.Width < 1 || t.Height < 1 || t.Width > 1<<16 || t.Height > 1<<16 {
		return nil, errors.Wrapf(ErrTooLarge, "texture %dx%d", t.Width, t.Height)
	}
	if t.Format.BytesPerPixel() == 0 {
		return nil, errors.Wrapf(ErrUnsupportedType, "texture format %d", t.Format)
	}
	if len(t.Pix) < 4*t.Width*t.Height {
		return nil, errors.Errorf("texture has %d bytes of pixels, want %d", len(t.Pix), 4*t.Width*t.Height)
	}

	var buf bytes.Buffer
	header(&buf, textureSignature)
	buf.WriteByte(byte(t.Format))
	putU16(&buf, uint16(t.Width-1))
	putU16(&buf, uint16(t.Height-1))
	for i := 0; i < t.Width*t.Height; i++ {
		buf.Write(t.Format.pack(t.Pix[4*i : 4*i+4]))
	}

	return buf.Bytes(), nil
}

// LoadTexture reads and decodes an UCTEX file.
func LoadTexture(path string) (TextureData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TextureData{}, errors.Wrapf(err, "uctex %s", path)
	}

	t, err := DecodeTexture(data)
	if err != nil {
		return TextureData{}, errors.Wrapf(err, "uctex %s", path)
	}

	return t, nil
}

func SaveTexture(path string, t TextureData) error {
	data, err := EncodeTexture(t)
	if err != nil {
		return errors.Wrapf(err, "uctex %s", path)
	}

	return errors.Wrapf(os.WriteFile(path, data, 0o644), "uctex %s", path)
}
