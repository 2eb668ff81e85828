package asset

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoRowImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	img.Set(0, 0, red)
	img.Set(1, 0, red)
	img.Set(0, 1, blue)
	img.Set(1, 1, blue)
	return img
}

func TestToRGBA_KeepsRows(t *testing.T) {
	out := ToRGBA(twoRowImage(), TextureOptions{})

	assert.Equal(t, uint32(2), out.Width)
	assert.Equal(t, uint32(2), out.Height)
	assert.Equal(t, TextureFormatRGBA8Unorm, out.Format)
	require.Len(t, out.Texels, 16)
	assert.Equal(t, []uint8{255, 0, 0, 255}, out.Texels[0:4])
	assert.Equal(t, []uint8{0, 0, 255, 255}, out.Texels[8:12])
}

func TestToRGBA_FlipY(t *testing.T) {
	out := ToRGBA(twoRowImage(), TextureOptions{FlipY: true, SRGB: true})

	assert.Equal(t, TextureFormatRGBA8UnormSrgb, out.Format)
	assert.Equal(t, []uint8{0, 0, 255, 255}, out.Texels[0:4])
	assert.Equal(t, []uint8{255, 0, 0, 255}, out.Texels[8:12])
}

func TestToRGBA_MaxSize(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 16))
	out := ToRGBA(src, TextureOptions{MaxSize: 32})
	assert.Equal(t, uint32(32), out.Width)
	assert.Equal(t, uint32(8), out.Height)
	assert.Len(t, out.Texels, 32*8*4)

	tall := image.NewRGBA(image.Rect(0, 0, 1, 100))
	out = ToRGBA(tall, TextureOptions{MaxSize: 10})
	assert.Equal(t, uint32(1), out.Width)
	assert.Equal(t, uint32(10), out.Height)
}

func TestImageDecoder_DecodeTexture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matcap.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, twoRowImage()))
	require.NoError(t, f.Close())

	img, err := ImageDecoder{}.DecodeTexture(path, TextureOptions{FlipY: true})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), img.Width)
	assert.Equal(t, []uint8{0, 0, 255, 255}, img.Texels[0:4])
}

func TestImageDecoder_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ImageDecoder{}.DecodeTexture(filepath.Join(dir, "missing.png"), TextureOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	junk := filepath.Join(dir, "junk.jpg")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0o644))
	_, err = ImageDecoder{}.DecodeTexture(junk, TextureOptions{})
	assert.ErrorIs(t, err, image.ErrFormat)
}
