package textures

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int, c color.Color) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestDecodeConvertsToRGBA(t *testing.T) {
	path := writePNG(t, t.TempDir(), "ice.png", 3, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	img, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.Equal(t, Channels, img.Channels)
	require.Len(t, img.Pixels, 3*2*4)
	assert.Equal(t, []byte{10, 20, 30, 255}, img.Pixels[:4])
}

func TestDecodeGrayIsExpandedToFourChannels(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.SetGray(1, 1, color.Gray{Y: 200})

	img := FromImage("gray", gray)
	assert.Equal(t, 4, img.Channels)
	assert.Equal(t, []byte{200, 200, 200, 255}, img.Pixels[12:16])
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := Decode(filepath.Join(t.TempDir(), "nonexistent.png"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "block.txt")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, err := Decode(path)
	require.ErrorIs(t, err, image.ErrFormat)
}

func TestLoaderCachesByFileIdentity(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "brick.png", 4, 4, color.White)

	l := NewLoader(4)
	a, err := l.Load(path)
	require.NoError(t, err)
	b, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, l.Len())

	// rewrite with a different size and a later mtime
	writePNG(t, dir, "brick.png", 8, 8, color.Black)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	c, err := l.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, 8, c.Width)

	l.Purge()
	assert.Equal(t, 0, l.Len())
}

func TestLoaderWithoutCache(t *testing.T) {
	path := writePNG(t, t.TempDir(), "a.png", 1, 1, color.White)

	l := NewLoader(0)
	a, err := l.Load(path)
	require.NoError(t, err)
	b, err := l.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, 0, l.Len())

	_, err = l.Load(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}

func TestDecodeKeepsStraightAlpha(t *testing.T) {
	path := writePNG(t, t.TempDir(), "glass.png", 1, 1, color.NRGBA{R: 255, G: 128, B: 0, A: 128})

	img, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 128, 0, 128}, img.Pixels)
}

func TestFromImageUnpremultipliesRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 100, G: 50, B: 0, A: 200})

	img := FromImage("premultiplied", src)
	assert.Equal(t, []byte{127, 63, 0, 200}, img.Pixels)
}

func TestFromImageSubImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(2, 3, color.NRGBA{R: 1, G: 2, B: 3, A: 4})

	img := FromImage("atlas", src.SubImage(image.Rect(2, 2, 4, 4)))
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.Equal(t, []byte{1, 2, 3, 4}, img.Pixels[8:12])
}
