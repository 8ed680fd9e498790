package asset

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// The tga package registers itself with an empty magic string, which makes image.Decode
// hand every file to it. Decoders are picked by extension instead.
var imageDecoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".bmp":  bmp.Decode,
	".tga":  tga.Decode,
	".webp": nativewebp.Decode,
}

var imageEncoders = map[string]func(io.Writer, image.Image) error{
	".png":  png.Encode,
	".bmp":  bmp.Encode,
	".tga":  tga.Encode,
	".webp": func(w io.Writer, img image.Image) error { return nativewebp.Encode(w, img, nil) },
}

// ImportImage decodes a PNG, JPEG, BMP, TGA or WebP file, chosen by the extension of path.
func ImportImage(path string) (image.Image, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := imageDecoders[ext]
	if !ok {
		return nil, errors.Errorf("import %s: unknown image extension %q", path, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "import %s", path)
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "import %s", path)
	}

	return img, nil
}

// ExportImage encodes img by the extension of path: .png, .bmp, .tga or .webp.
func ExportImage(path string, img image.Image) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	encode, ok := imageEncoders[ext]
	if !ok {
		return errors.Errorf("export %s: unknown image extension %q", path, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "export %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "export %s", path)
		}
	}()

	return errors.Wrapf(encode(f, img), "export %s", path)
}

// ToNRGBA returns img as non-premultiplied 8-bit RGBA with its origin at (0, 0).
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}

	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	return dst
}

// Resize scales img to width x height.
func Resize(img image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	return dst
}
