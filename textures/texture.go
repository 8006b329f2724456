package textures

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"mainboard-engine/internal/logging"
)

// Channels is the channel count of every decoded image.
const Channels = 4

var ErrEmptyImage = errors.New("image has zero dimensions")

// Image is a decoded image in straight-alpha RGBA8 layout (4 bytes per pixel, row-major,
// top-to-bottom, tightly packed).
type Image struct {
	Path     string
	Width    int
	Height   int
	Channels int
	Pixels   []byte
}

// Decode reads an image file and converts it to RGBA8.
func Decode(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, err)
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", path, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("decode image %q: %w", path, ErrEmptyImage)
	}

	logging.Logger().Debug("Decoded image",
		"path", path, "format", format,
		"width", bounds.Dx(), "height", bounds.Dy())

	return FromImage(path, src), nil
}

// FromImage converts any image.Image to a tightly packed RGBA8 Image with
// straight (non-premultiplied) alpha.
func FromImage(name string, src image.Image) *Image {
	bounds := src.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	// copying rows keeps low-alpha colors that a premultiplied round trip loses
	if n, ok := src.(*image.NRGBA); ok {
		rowBytes := bounds.Dx() * Channels
		for y := 0; y < bounds.Dy(); y++ {
			i := n.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(nrgba.Pix[y*nrgba.Stride:], n.Pix[i:i+rowBytes])
		}
	} else {
		draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)
	}

	return &Image{
		Path:     name,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Channels: Channels,
		Pixels:   nrgba.Pix,
	}
}

type cacheKey struct {
	path    string
	size    int64
	modTime time.Time
}

// Loader decodes images and keeps the most recently decoded ones in an LRU
// cache. Entries are keyed by path, size and modification time, so an image
// rewritten on disk is decoded again.
type Loader struct {
	cache *lru.Cache[cacheKey, *Image]
}

// NewLoader creates a Loader caching up to size images. A size of zero or
// less disables caching.
func NewLoader(size int) *Loader {
	l := &Loader{}
	if size > 0 {
		l.cache, _ = lru.New[cacheKey, *Image](size)
	}
	return l
}

// Load returns the decoded image at path. The returned Image is shared with
// the cache and must not be modified.
func (l *Loader) Load(path string) (*Image, error) {
	if l == nil || l.cache == nil {
		return Decode(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, err)
	}

	key := cacheKey{path: path, size: info.Size(), modTime: info.ModTime()}
	if img, ok := l.cache.Get(key); ok {
		logging.Logger().Debug("Image cache hit", "path", path)
		return img, nil
	}

	img, err := Decode(path)
	if err != nil {
		return nil, err
	}

	l.cache.Add(key, img)
	return img, nil
}

// Len reports the number of cached images.
func (l *Loader) Len() int {
	if l == nil || l.cache == nil {
		return 0
	}
	return l.cache.Len()
}

// Purge drops every cached image.
func (l *Loader) Purge() {
	if l != nil && l.cache != nil {
		l.cache.Purge()
	}
}
