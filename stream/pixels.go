package stream

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"
)

// Pixels is a tightly packed RGBA8 pixel buffer: Width*Height pixels,
// four bytes each, rows top to bottom with no padding.
//
// Image arguments decode to *Pixels.
type Pixels struct {
	Width  uint32
	Height uint32
	Data   []byte
}

// NewPixels allocates a zeroed width x height buffer.
func NewPixels(width, height uint32) *Pixels {
	return &Pixels{
		Width:  width,
		Height: height,
		Data:   make([]byte, int(width)*int(height)*4),
	}
}

// PixelsFromImage copies img into a new RGBA8 buffer. Images that are
// not already tightly packed *image.RGBA are converted.
func PixelsFromImage(img image.Image) *Pixels {
	b := img.Bounds()
	// #nosec G115 -- image bounds are non-negative and fit in memory
	p := NewPixels(uint32(b.Dx()), uint32(b.Dy()))
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*b.Dx() {
		copy(p.Data, rgba.Pix)
		return p
	}
	dst := &image.RGBA{
		Pix:    p.Data,
		Stride: 4 * b.Dx(),
		Rect:   image.Rect(0, 0, b.Dx(), b.Dy()),
	}
	xdraw.Draw(dst, dst.Rect, img, b.Min, xdraw.Src)
	return p
}

// Format returns the texture format of the data.
func (p *Pixels) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Extent returns the size of the buffer as a single-layer texture extent.
func (p *Pixels) Extent() gputypes.Extent3D {
	return gputypes.Extent3D{
		Width:              p.Width,
		Height:             p.Height,
		DepthOrArrayLayers: 1,
	}
}

// ByteSize returns Width*Height*4 without overflowing.
func (p *Pixels) ByteSize() uint64 {
	return pixelBytes(p.Width, p.Height)
}

// Validate checks that Data holds exactly Width*Height*4 bytes.
func (p *Pixels) Validate() error {
	if uint64(len(p.Data)) != p.ByteSize() {
		return fmt.Errorf("%w: %dx%d needs %d bytes, have %d",
			ErrPixelSize, p.Width, p.Height, p.ByteSize(), len(p.Data))
	}
	return nil
}

// Image returns the buffer as an *image.RGBA sharing p.Data.
func (p *Pixels) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    p.Data,
		Stride: 4 * int(p.Width),
		Rect:   image.Rect(0, 0, int(p.Width), int(p.Height)),
	}
}

func pixelBytes(width, height uint32) uint64 {
	return uint64(width) * uint64(height) * 4
}
