package render

import (
	"image"

	"github.com/akmonengine/uc3d/asset"
)

// Texture is an RGBA image and its optional GPU copy.
type Texture struct {
	data   asset.TextureData
	loaded bool

	device Device
	buffer TextureBuffer
	linear bool
}

func NewTexture(data asset.TextureData) *Texture {
	return &Texture{data: data, loaded: true}
}

// SetData replaces the pixels, uploading them again if the texture was on a device.
func (t *Texture) SetData(data asset.TextureData) error {
	t.data = data
	t.loaded = true

	if t.HasTexture() {
		return t.Upload(t.device)
	}

	return nil
}

// LoadFromUCTEXFile replaces the pixels with the file content.
// On error the texture is left untouched.
func (t *Texture) LoadFromUCTEXFile(path string) error {
	data, err := asset.LoadTexture(path)
	if err != nil {
		return err
	}

	return t.SetData(data)
}

func (t *Texture) Width() int {
	return t.data.Width
}

func (t *Texture) Height() int {
	return t.data.Height
}

// Image returns the pixels, or nil before any data was set.
func (t *Texture) Image() *image.NRGBA {
	if !t.loaded {
		return nil
	}

	return t.data.Image()
}

// Upload replaces the GPU copy with the current pixels, with nearest filtering and repeat
// wrapping unless linear smoothing was requested.
func (t *Texture) Upload(dev Device) error {
	if dev == nil {
		return ErrNoDevice
	}
	if !t.loaded {
		return ErrNoTextureData
	}

	buffer, err := dev.CreateTexture(t.data.Width, t.data.Height, t.data.Pix)
	if err != nil {
		return err
	}
	if t.HasTexture() {
		_ = t.DeleteTexture()
	}
	t.device = dev
	t.buffer = buffer

	if err := t.SetDefaultParameters(); err != nil {
		return err
	}
	if t.linear {
		return t.SetLinearSmoothing(true)
	}

	return nil
}

func (t *Texture) HasTexture() bool {
	return t.buffer != nil
}

func (t *Texture) BindTexture() error {
	if !t.HasTexture() {
		return ErrNoTexture
	}

	return t.buffer.Bind()
}

func (t *Texture) DeleteTexture() error {
	if !t.HasTexture() {
		return ErrNoTexture
	}

	err := t.buffer.Delete()
	t.buffer = nil

	return err
}

func (t *Texture) SetParameter(p TextureParameter, v TextureValue) error {
	if !t.HasTexture() {
		return ErrNoTexture
	}

	return t.buffer.SetParameter(p, v)
}

// SetDefaultParameters sets nearest filtering and repeat wrapping.
func (t *Texture) SetDefaultParameters() error {
	for _, p := range []struct {
		param TextureParameter
		value TextureValue
	}{
		{MinFilter, FilterNearest},
		{MagFilter, FilterNearest},
		{WrapS, WrapRepeat},
		{WrapT, WrapRepeat},
	} {
		if err := t.SetParameter(p.param, p.value); err != nil {
			return err
		}
	}

	return nil
}

// SetLinearSmoothing switches both filters between linear and nearest. The choice
// survives later uploads.
func (t *Texture) SetLinearSmoothing(linear bool) error {
	t.linear = linear
	if !t.HasTexture() {
		return nil
	}

	filter := FilterNearest
	if linear {
		filter = FilterLinear
	}
	if err := t.SetParameter(MinFilter, filter); err != nil {
		return err
	}

	return t.SetParameter(MagFilter, filter)
}
