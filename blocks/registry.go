// Package blocks holds the fixed-capacity table of loaded block textures.
package blocks

import (
	"errors"
	"fmt"

	"mainboard-engine/gpu"
	"mainboard-engine/internal/logging"
	"mainboard-engine/textures"
)

// Capacity is the number of block slots. Valid IDs are [0, Capacity).
const Capacity = 1024

var (
	ErrOutOfRange = errors.New("block id out of range")
	ErrOccupied   = errors.New("block slot already occupied")
)

// Block is a registered, GPU-resident texture.
type Block struct {
	Width    int
	Height   int
	Channels int
	Texture  gpu.TextureHandle
}

type slot struct {
	occupied bool
	block    Block
}

// Registry maps block IDs to textures. It owns every texture it creates.
// A Registry is not safe for concurrent use.
type Registry struct {
	device gpu.Device
	loader *textures.Loader
	slots  [Capacity]slot
	count  int
}

// NewRegistry creates an empty registry uploading through device. loader may
// be nil, in which case every load decodes from disk.
func NewRegistry(device gpu.Device, loader *textures.Loader) *Registry {
	return &Registry{device: device, loader: loader}
}

func validID(id int) bool {
	return id >= 0 && id < Capacity
}

// Register decodes the image at path and uploads it as block id. The
// registry is left untouched on any failure.
func (r *Registry) Register(id int, path string) error {
	if !validID(id) {
		return fmt.Errorf("register block %d: %w", id, ErrOutOfRange)
	}
	if r.slots[id].occupied {
		return fmt.Errorf("register block %d: %w", id, ErrOccupied)
	}

	img, err := r.loader.Load(path)
	if err != nil {
		return fmt.Errorf("register block %d: %w", id, err)
	}

	tex, err := r.device.CreateTexture2D(
		img.Width, img.Height,
		gpu.TextureFormatRGBA8,
		gpu.SamplerPoint|gpu.SamplerUClamp|gpu.SamplerVClamp,
		img.Pixels,
	)
	if err != nil {
		return fmt.Errorf("register block %d: upload texture: %w", id, err)
	}

	r.slots[id] = slot{
		occupied: true,
		block: Block{
			Width:    img.Width,
			Height:   img.Height,
			Channels: img.Channels,
			Texture:  tex,
		},
	}
	r.count++

	logging.Logger().Debug("Registered block",
		"id", id, "path", path, "width", img.Width, "height", img.Height)
	return nil
}

// Get returns the block stored at id.
func (r *Registry) Get(id int) (Block, bool) {
	if !validID(id) || !r.slots[id].occupied {
		return Block{}, false
	}
	return r.slots[id].block, true
}

func (r *Registry) Occupied(id int) bool {
	return validID(id) && r.slots[id].occupied
}

// Len returns the number of occupied slots.
func (r *Registry) Len() int {
	return r.count
}

// Clear releases every block texture and empties all slots. Clearing an
// empty registry is a no-op.
func (r *Registry) Clear() {
	released := 0
	for id := range r.slots {
		s := &r.slots[id]
		if !s.occupied {
			continue
		}
		if s.block.Texture.Valid() {
			r.device.DestroyTexture(s.block.Texture)
			released++
		} else {
			logging.Logger().Warn("Block texture already invalid", "id", id)
		}
		*s = slot{}
	}
	r.count = 0

	if released > 0 {
		logging.Logger().Debug("Cleared blocks", "released", released)
	}
}
