package loaders

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/vista/engine/assets"
)

// ImageLoader decodes png, jpeg, bmp, tiff and webp files into RGBA8 images.
type ImageLoader struct {
	// FlipY stores rows bottom to top.
	FlipY bool
}

func (il *ImageLoader) Load(path string, _ assets.LoadContext) (assets.Asset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)

	pixels := rgba.Pix
	if il.FlipY {
		pixels = flipRows(pixels, b.Dx()*4, b.Dy())
	}
	return assets.NewImage(path, uint32(b.Dx()), uint32(b.Dy()), assets.PixelFormatRGBA8, pixels), nil
}

func flipRows(pixels []byte, stride, rows int) []byte {
	out := make([]byte, len(pixels))
	for y := 0; y < rows; y++ {
		copy(out[(rows-1-y)*stride:(rows-y)*stride], pixels[y*stride:(y+1)*stride])
	}
	return out
}
