package software

import (
	"image"
	"image/color"

	"github.com/spaghettifunk/vista/engine/math"
)

// Snapshot copies the colour buffer into an 8-bit image. Channels are
// clamped to [0, 1].
func (d *Device) Snapshot() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, d.width, d.height))
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			c := d.colour[y*d.width+x]
			img.SetRGBA(x, y, color.RGBA{
				R: channel(c.X),
				G: channel(c.Y),
				B: channel(c.Z),
				A: channel(c.W),
			})
		}
	}
	return img
}

func channel(v float32) uint8 {
	return uint8(math.Clamp(v, 0, 1)*255 + 0.5)
}
