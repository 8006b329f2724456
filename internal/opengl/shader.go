package opengl

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"mainboard-engine/gpu"
)

// CreateShader compiles GLSL source. The glsl shader directory stores
// source text in its .bin files.
func (d *Device) CreateShader(code []byte, stage gpu.ShaderStage) (gpu.ShaderHandle, error) {
	id, err := compileShader(string(code), glShaderType(stage))
	if err != nil {
		return gpu.InvalidShader, fmt.Errorf("opengl: %s shader: %w", stage, err)
	}
	idx, err := d.next()
	if err != nil {
		gl.DeleteShader(id)
		return gpu.InvalidShader, err
	}
	d.shaders[idx] = shader{id: id, stage: stage}
	return gpu.ShaderHandle{Idx: idx}, nil
}

// CreateProgram links vs and fs. On failure the shaders are left alive.
func (d *Device) CreateProgram(vs, fs gpu.ShaderHandle, destroyShaders bool) (gpu.ProgramHandle, error) {
	vert, ok := d.shaders[vs.Idx]
	if !ok {
		return gpu.InvalidProgram, fmt.Errorf("opengl: vertex shader: %w", gpu.ErrInvalidHandle)
	}
	frag, ok := d.shaders[fs.Idx]
	if !ok {
		return gpu.InvalidProgram, fmt.Errorf("opengl: fragment shader: %w", gpu.ErrInvalidHandle)
	}

	id, err := linkProgram(vert.id, frag.id)
	if err != nil {
		return gpu.InvalidProgram, fmt.Errorf("opengl: %w", err)
	}
	idx, err := d.next()
	if err != nil {
		gl.DeleteProgram(id)
		return gpu.InvalidProgram, err
	}

	if destroyShaders {
		d.DestroyShader(vs)
		d.DestroyShader(fs)
	}

	d.programs[idx] = &program{id: id, locations: map[gpu.UniformHandle]int32{}}
	return gpu.ProgramHandle{Idx: idx}, nil
}

func (d *Device) DestroyShader(h gpu.ShaderHandle) {
	s, ok := d.shaders[h.Idx]
	if !ok {
		return
	}
	gl.DeleteShader(s.id)
	delete(d.shaders, h.Idx)
	d.alloc.Free(h.Idx)
}

func (d *Device) DestroyProgram(h gpu.ProgramHandle) {
	p, ok := d.programs[h.Idx]
	if !ok {
		return
	}
	gl.DeleteProgram(p.id)
	delete(d.programs, h.Idx)
	d.alloc.Free(h.Idx)
}

// location resolves a uniform in p, caching the answer. Uniforms the
// program does not use resolve to -1, which GL ignores.
func (d *Device) location(p *program, h gpu.UniformHandle) int32 {
	if loc, ok := p.locations[h]; ok {
		return loc
	}
	u, ok := d.uniforms[h.Idx]
	if !ok {
		return -1
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(cString(u.name)))
	p.locations[h] = loc
	return loc
}

func glShaderType(stage gpu.ShaderStage) uint32 {
	if stage == gpu.StageVertex {
		return gl.VERTEX_SHADER
	}
	return gl.FRAGMENT_SHADER
}

func cString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func linkProgram(vert, frag uint32) (uint32, error) {
	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %s", trimLog(log))
	}

	gl.DetachShader(prog, vert)
	gl.DetachShader(prog, frag)
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(cString(src))
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %s", trimLog(log))
	}
	return shader, nil
}

func trimLog(log string) string {
	return strings.TrimRight(log, "\x00\n ")
}
