package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"mainboard-engine/gpu"
)

// CreateTexture2D uploads an immutable RGBA8 texture without mipmaps.
func (d *Device) CreateTexture2D(width, height int, format gpu.TextureFormat, flags gpu.SamplerFlags, pixels []byte) (gpu.TextureHandle, error) {
	if format != gpu.TextureFormatRGBA8 {
		return gpu.InvalidTexture, fmt.Errorf("opengl: unsupported texture format %d", format)
	}
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 {
		return gpu.InvalidTexture, fmt.Errorf("opengl: texture %dx%d has %d bytes of pixel data", width, height, len(pixels))
	}
	idx, err := d.next()
	if err != nil {
		return gpu.InvalidTexture, err
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	minFilter, magFilter := textureFilters(flags)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, textureWrap(flags&gpu.SamplerUClamp != 0))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, textureWrap(flags&gpu.SamplerVClamp != 0))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA8,
		int32(width),
		int32(height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(pixels),
	)

	gl.BindTexture(gl.TEXTURE_2D, 0)

	d.textures[idx] = id
	return gpu.TextureHandle{Idx: idx}, nil
}

func (d *Device) DestroyTexture(h gpu.TextureHandle) {
	id, ok := d.textures[h.Idx]
	if !ok {
		return
	}
	gl.DeleteTextures(1, &id)
	delete(d.textures, h.Idx)
	d.alloc.Free(h.Idx)
}

func textureFilters(flags gpu.SamplerFlags) (int32, int32) {
	minFilter, magFilter := int32(gl.LINEAR), int32(gl.LINEAR)
	if flags&gpu.SamplerMinPoint != 0 {
		minFilter = gl.NEAREST
	}
	if flags&gpu.SamplerMagPoint != 0 {
		magFilter = gl.NEAREST
	}
	return minFilter, magFilter
}

func textureWrap(clamp bool) int32 {
	if clamp {
		return gl.CLAMP_TO_EDGE
	}
	return gl.REPEAT
}
