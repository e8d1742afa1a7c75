package resources

import (
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/gpu"
)

// FallbackKind selects the texture bound to an empty material slot.
type FallbackKind uint8

const (
	// Opaque white, for diffuse maps.
	FallbackWhite FallbackKind = iota + 1
	// Opaque black, for specular maps.
	FallbackBlack
	// Tangent space +Z, for normal maps.
	FallbackNormal
	// Checkerboard, for slots that should stand out when empty.
	FallbackChecker
)

func (k FallbackKind) String() string {
	switch k {
	case FallbackWhite:
		return "white"
	case FallbackBlack:
		return "black"
	case FallbackNormal:
		return "normal"
	case FallbackChecker:
		return "checker"
	}
	return "unknown"
}

const checkerSize = 8

// Fallback returns the fallback texture of the given kind, creating it on
// first use. Fallbacks live until Destroy and never age.
func (c *Cache) Fallback(kind FallbackKind) (gpu.ResourceID, error) {
	if id, ok := c.fallbacks[kind]; ok {
		return id, nil
	}
	desc := gpu.UploadDesc{
		Kind:   gpu.ResourceTexture,
		Label:  "fallback." + kind.String(),
		Width:  1,
		Height: 1,
		Layout: gpu.Layout{Format: gpu.TextureRGBA8},
	}
	switch kind {
	case FallbackWhite:
		desc.Data = []byte{255, 255, 255, 255}
	case FallbackBlack:
		desc.Data = []byte{0, 0, 0, 255}
	case FallbackNormal:
		desc.Data = []byte{128, 128, 255, 255}
	case FallbackChecker:
		desc.Width, desc.Height = checkerSize, checkerSize
		desc.Data = checkerPixels(checkerSize)
	default:
		core.Violation("Cache.Fallback", "unknown fallback kind %d", kind)
	}
	id, err := c.device.Upload(desc)
	if err != nil {
		return 0, err
	}
	c.fallbacks[kind] = id
	return id, nil
}

// checkerPixels builds a blue and white checkerboard.
func checkerPixels(size int) []byte {
	pixels := make([]byte, size*size*4)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			i := (row*size + col) * 4
			pixels[i], pixels[i+1], pixels[i+2], pixels[i+3] = 255, 255, 255, 255
			if (row+col)%2 == 0 {
				pixels[i], pixels[i+1] = 0, 0
			}
		}
	}
	return pixels
}
