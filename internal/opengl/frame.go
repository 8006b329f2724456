package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"mainboard-engine/core"
	"mainboard-engine/gpu"
	"mainboard-engine/internal/logging"
)

func (d *Device) SetScissor(x, y, width, height int) {
	d.pending.scissor = [4]int{x, y, width, height}
}

func (d *Device) SetUniform(h gpu.UniformHandle, value []float32) {
	d.pending.uniforms[h] = append([]float32(nil), value...)
}

func (d *Device) SetVertexBuffer(_ int, h gpu.VertexBufferHandle) {
	d.pending.vertex = h
}

func (d *Device) SetIndexBuffer(h gpu.IndexBufferHandle) {
	d.pending.index = h
}

func (d *Device) SetTexture(stage int, sampler gpu.UniformHandle, h gpu.TextureHandle) {
	d.pending.textures[stage] = textureBinding{sampler: sampler, texture: h}
}

func (d *Device) SetState(state gpu.State) {
	d.pending.state = state
}

// Submit queues the pending state as one draw on view and starts a new one.
func (d *Device) Submit(id gpu.ViewID, program gpu.ProgramHandle) {
	draw := d.pending
	draw.program = program
	d.pending = newDraw()

	v := d.view(id)
	v.draws = append(v.draws, draw)
}

// Touch makes view clear on the next frame even if nothing is drawn to it.
func (d *Device) Touch(id gpu.ViewID) {
	d.view(id).touched = true
}

// Frame executes every queued draw in view order, presents and returns the
// new frame number.
func (d *Device) Frame() uint32 {
	if !d.initialized {
		return d.frame
	}

	for _, id := range d.sortedViews() {
		v := d.views[id]
		if v.touched || len(v.draws) > 0 {
			d.executeView(v)
		}
		v.draws = v.draws[:0]
		v.touched = false
	}

	if err := d.surface.SwapBuffers(); err != nil {
		logging.Logger().Warn("Present failed", "error", err)
	}

	d.frame++
	return d.frame
}

func (d *Device) executeView(v *view) {
	x, y, w, h := v.rect[0], v.rect[1], v.rect[2], v.rect[3]
	if w == 0 || h == 0 {
		w, h = d.width, d.height
	}
	gl.Viewport(int32(x), int32(d.height-y-h), int32(w), int32(h))

	if bits := clearBits(v.clear); bits != 0 {
		gl.Disable(gl.SCISSOR_TEST)
		gl.ColorMask(true, true, true, true)
		gl.DepthMask(true)
		c := core.ColorFromRGBA8(v.rgba)
		gl.ClearColor(c.R, c.G, c.B, c.A)
		gl.ClearDepthf(v.depth)
		gl.ClearStencil(int32(v.stencil))
		gl.Clear(bits)
	}

	for i := range v.draws {
		d.execute(&v.draws[i])
	}

	gl.Disable(gl.SCISSOR_TEST)
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

func (d *Device) execute(dr *draw) {
	p, ok := d.programs[dr.program.Idx]
	if !ok {
		return
	}
	vb, ok := d.vertexBuffers[dr.vertex.Idx]
	if !ok {
		return
	}

	gl.UseProgram(p.id)

	if sx, sy, sw, sh, ok := flipScissor(dr.scissor, d.height); ok {
		gl.Enable(gl.SCISSOR_TEST)
		gl.Scissor(sx, sy, sw, sh)
	} else {
		gl.Disable(gl.SCISSOR_TEST)
	}

	applyState(dr.state)

	for h, value := range dr.uniforms {
		loc := d.location(p, h)
		if loc < 0 || len(value) == 0 {
			continue
		}
		switch d.uniforms[h.Idx].typ {
		case gpu.UniformVec4:
			gl.Uniform4fv(loc, int32(len(value)/4), &value[0])
		case gpu.UniformMat4:
			gl.UniformMatrix4fv(loc, int32(len(value)/16), false, &value[0])
		}
	}

	for stage, binding := range dr.textures {
		tex, ok := d.textures[binding.texture.Idx]
		if !ok {
			continue
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(stage))
		gl.BindTexture(gl.TEXTURE_2D, tex)
		if loc := d.location(p, binding.sampler); loc >= 0 {
			gl.Uniform1i(loc, int32(stage))
		}
	}

	gl.BindVertexArray(vb.vao)
	if ib, ok := d.indexBuffers[dr.index.Idx]; ok {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.ebo)
		gl.DrawElements(gl.TRIANGLES, ib.count, gl.UNSIGNED_SHORT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, vb.count)
	}
}

func applyState(state gpu.State) {
	gl.ColorMask(
		state&gpu.StateWriteR != 0,
		state&gpu.StateWriteG != 0,
		state&gpu.StateWriteB != 0,
		state&gpu.StateWriteA != 0,
	)
	gl.DepthMask(state&gpu.StateWriteZ != 0)

	if state&gpu.StateBlendAlpha != 0 {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}
}

// flipScissor converts a top-left origin scissor to GL's bottom-left
// origin. ok is false when the draw is unclipped.
func flipScissor(s [4]int, height int) (x, y, w, h int32, ok bool) {
	if s[2] <= 0 || s[3] <= 0 {
		return 0, 0, 0, 0, false
	}
	return int32(s[0]), int32(height - s[1] - s[3]), int32(s[2]), int32(s[3]), true
}

func clearBits(flags gpu.ClearFlags) uint32 {
	var bits uint32
	if flags&gpu.ClearColor != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if flags&gpu.ClearDepth != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	if flags&gpu.ClearStencil != 0 {
		bits |= gl.STENCIL_BUFFER_BIT
	}
	return bits
}
