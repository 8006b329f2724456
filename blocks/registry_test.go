package blocks

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mainboard-engine/gpu"
	"mainboard-engine/gpu/gputest"
	"mainboard-engine/textures"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})

	path := filepath.Join(t.TempDir(), "block.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func newRegistry() (*Registry, *gputest.Device) {
	dev := gputest.New()
	return NewRegistry(dev, textures.NewLoader(8)), dev
}

func TestRegisterEveryID(t *testing.T) {
	path := writePNG(t, 2, 2)

	for id := 0; id < Capacity; id++ {
		r, dev := newRegistry()
		require.NoError(t, r.Register(id, path))
		assert.Equal(t, 1, r.Len())
		assert.True(t, r.Occupied(id))
		assert.Len(t, dev.Textures, 1)
	}
}

func TestRegisterStoresMetadata(t *testing.T) {
	r, dev := newRegistry()
	require.NoError(t, r.Register(3, writePNG(t, 16, 8)))

	b, ok := r.Get(3)
	require.True(t, ok)
	assert.Equal(t, 16, b.Width)
	assert.Equal(t, 8, b.Height)
	assert.Equal(t, 4, b.Channels)
	require.True(t, b.Texture.Valid())

	info := dev.Textures[b.Texture]
	assert.Equal(t, gpu.SamplerPoint, info.Flags&gpu.SamplerPoint)
	assert.Equal(t, []byte{1, 2, 3, 4}, info.Pixels[:4])
}

func TestRegisterOccupiedLeavesRegistryUnchanged(t *testing.T) {
	path := writePNG(t, 2, 2)
	r, dev := newRegistry()
	require.NoError(t, r.Register(7, path))

	before := r.slots
	uploaded := len(dev.Textures)

	err := r.Register(7, writePNG(t, 4, 4))
	require.ErrorIs(t, err, ErrOccupied)
	assert.Equal(t, before, r.slots)
	assert.Equal(t, 1, r.Len())
	assert.Len(t, dev.Textures, uploaded)
}

func TestRegisterOutOfRange(t *testing.T) {
	path := writePNG(t, 2, 2)
	r, dev := newRegistry()

	require.ErrorIs(t, r.Register(-1, path), ErrOutOfRange)
	require.ErrorIs(t, r.Register(Capacity, path), ErrOutOfRange)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, dev.Textures)

	_, ok := r.Get(Capacity)
	assert.False(t, ok)
	assert.False(t, r.Occupied(-1))
}

func TestRegisterMissingFile(t *testing.T) {
	r, dev := newRegistry()

	err := r.Register(5, "/nonexistent.png")
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, r.Occupied(5))
	assert.Empty(t, dev.Textures)
}

func TestRegisterUploadFailure(t *testing.T) {
	r, dev := newRegistry()
	dev.FailTexture = true

	require.ErrorIs(t, r.Register(1, writePNG(t, 2, 2)), gputest.ErrInjected)
	assert.False(t, r.Occupied(1))
	assert.Equal(t, 0, r.Len())
}

func TestClearReleasesTextures(t *testing.T) {
	path := writePNG(t, 2, 2)
	r, dev := newRegistry()
	for _, id := range []int{0, 5, 1023} {
		require.NoError(t, r.Register(id, path))
	}
	require.Len(t, dev.Textures, 3)

	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, dev.Textures)
	for _, id := range []int{0, 5, 1023} {
		assert.False(t, r.Occupied(id))
	}

	// the slot can be reused after a clear
	require.NoError(t, r.Register(5, path))
}

func TestClearTwiceEqualsOnce(t *testing.T) {
	r, dev := newRegistry()
	require.NoError(t, r.Register(2, writePNG(t, 2, 2)))

	r.Clear()
	afterOnce := r.slots

	r.Clear()
	assert.Equal(t, afterOnce, r.slots)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, dev.Textures)
}

func TestClearEmptyRegistry(t *testing.T) {
	r, _ := newRegistry()
	r.Clear()
	assert.Equal(t, 0, r.Len())
}
