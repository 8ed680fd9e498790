// Command uctool converts images to and from UCTEX and prints UC asset headers.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/akmonengine/uc3d/asset"
	"github.com/pkg/errors"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage:
  uctool import [-format rgba8888|rgb888|a1b5g5r5|b5g5r5] [-width w -height h] <image> <out.uctex>
  uctool export <in.uctex> <out.png|out.bmp|out.tga|out.webp>
  uctool info <file>...
`)
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("uctool: ")

	if len(os.Args) < 2 {
		usage()
	}

	var err error
	switch os.Args[1] {
	case "import":
		err = importCmd(os.Args[2:])
	case "export":
		err = exportCmd(os.Args[2:])
	case "info":
		err = infoCmd(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func parseFormat(name string) (asset.TextureFormat, error) {
	for f := asset.TextureRGBA8888; f <= asset.TextureB5G5R5; f++ {
		if f.String() == name {
			return f, nil
		}
	}

	return 0, errors.Errorf("unknown texture format %q", name)
}

func importCmd(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	formatName := fs.String("format", "rgba8888", "stored pixel format")
	width := fs.Int("width", 0, "resize to this width")
	height := fs.Int("height", 0, "resize to this height")
	fs.Parse(args)
	if fs.NArg() != 2 {
		usage()
	}

	format, err := parseFormat(*formatName)
	if err != nil {
		return err
	}

	img, err := asset.ImportImage(fs.Arg(0))
	if err != nil {
		return err
	}
	if *width > 0 || *height > 0 {
		b := img.Bounds()
		w, h := *width, *height
		if w <= 0 {
			w = b.Dx() * h / max(b.Dy(), 1)
		}
		if h <= 0 {
			h = b.Dy() * w / max(b.Dx(), 1)
		}
		img = asset.Resize(img, max(w, 1), max(h, 1))
	}

	tex := asset.NewTextureData(img, format)
	if err := asset.SaveTexture(fs.Arg(1), tex); err != nil {
		return err
	}
	log.Printf("%s: %dx%d %s", fs.Arg(1), tex.Width, tex.Height, tex.Format)

	return nil
}

func exportCmd(args []string) error {
	if len(args) != 2 {
		usage()
	}

	tex, err := asset.LoadTexture(args[0])
	if err != nil {
		return err
	}

	return asset.ExportImage(args[1], tex.Image())
}

func infoCmd(args []string) error {
	if len(args) == 0 {
		usage()
	}

	for _, path := range args {
		kind, v, err := asset.Load(path)
		if err != nil {
			return err
		}

		switch data := v.(type) {
		case asset.MeshData:
			fmt.Printf("%s: %s, %d vertices, %d triangles\n", path, kind, len(data.Vertices), len(data.Indices)/3)
		case asset.TextureData:
			fmt.Printf("%s: %s, %dx%d %s\n", path, kind, data.Width, data.Height, data.Format)
		case asset.SoundData:
			fmt.Printf("%s: %s, %s %d Hz, %v\n", path, kind, data.Format, data.Frequency, data.Duration())
		}
	}

	return nil
}
