package assets

import "github.com/google/uuid"

type PixelFormat uint8

const (
	// 8 bits per channel, red green blue alpha.
	PixelFormatRGBA8 PixelFormat = iota + 1
	// Single 8 bit channel.
	PixelFormatR8
)

func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatRGBA8:
		return 4
	case PixelFormatR8:
		return 1
	}
	return 0
}

// Image is a tightly packed pixel buffer, rows top to bottom.
type Image struct {
	header
	width  uint32
	height uint32
	format PixelFormat
	pixels []byte
}

func NewImage(name string, width, height uint32, format PixelFormat, pixels []byte) *Image {
	return &Image{
		header: newHeader(uuid.New(), name),
		width:  width,
		height: height,
		format: format,
		pixels: pixels,
	}
}

func (i *Image) Kind() Kind {
	return KindImage
}

func (i *Image) Width() uint32 {
	return i.width
}

func (i *Image) Height() uint32 {
	return i.height
}

func (i *Image) Format() PixelFormat {
	return i.format
}

func (i *Image) Pixels() []byte {
	return i.pixels
}

// SetPixels replaces the image contents and bumps the version.
func (i *Image) SetPixels(width, height uint32, format PixelFormat, pixels []byte) {
	i.width = width
	i.height = height
	i.format = format
	i.pixels = pixels
	i.bump()
}
