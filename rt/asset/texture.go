package asset

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type TextureFormat uint32

const (
	TextureFormatRGBA8Unorm     TextureFormat = 0x00000012
	TextureFormatRGBA8UnormSrgb TextureFormat = 0x00000013
)

type TextureOptions struct {
	// FlipY mirrors rows so the first row is the bottom of the image.
	FlipY bool
	// SRGB marks color data that should be sampled with gamma decode.
	SRGB bool
	// MaxSize downsamples either side larger than this. 0 keeps the original size.
	MaxSize int
}

// Image is a decoded, tightly packed RGBA8 texture.
type Image struct {
	Width  uint32
	Height uint32
	Format TextureFormat
	Texels []uint8
}

type ImageDecoder struct{}

func (ImageDecoder) DecodeTexture(path string, opts TextureOptions) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("decode %s: empty %s image", path, format)
	}
	return ToRGBA(src, opts), nil
}

// ToRGBA converts any image into a packed RGBA8 texture honoring opts.
func ToRGBA(src image.Image, opts TextureOptions) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if opts.MaxSize > 0 && (w > opts.MaxSize || h > opts.MaxSize) {
		if w >= h {
			h = max(1, h*opts.MaxSize/w)
			w = opts.MaxSize
		} else {
			w = max(1, w*opts.MaxSize/h)
			h = opts.MaxSize
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}

	if opts.FlipY {
		stride := dst.Stride
		row := make([]uint8, stride)
		for y := 0; y < h/2; y++ {
			top := dst.Pix[y*stride : (y+1)*stride]
			bottom := dst.Pix[(h-1-y)*stride : (h-y)*stride]
			copy(row, top)
			copy(top, bottom)
			copy(bottom, row)
		}
	}

	format := TextureFormatRGBA8Unorm
	if opts.SRGB {
		format = TextureFormatRGBA8UnormSrgb
	}
	return &Image{
		Width:  uint32(w),
		Height: uint32(h),
		Format: format,
		Texels: dst.Pix,
	}
}
