package renderer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mainboard-engine/gpu"
)

const (
	vertexShaderFile   = "vs_fullscreen.bin"
	fragmentShaderFile = "fs_tiled.bin"
)

var ErrShaderLoad = errors.New("load shader")

// shaderDir is the directory holding the shader binaries for a backend.
func shaderDir(root string, renderer gpu.RendererType) string {
	return filepath.Join(root, gpu.ShaderDir(renderer))
}

func loadShader(device gpu.Device, path string, stage gpu.ShaderStage) (gpu.ShaderHandle, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return gpu.InvalidShader, fmt.Errorf("%w %s: %w", ErrShaderLoad, stage, err)
	}

	h, err := device.CreateShader(code, stage)
	if err != nil {
		return gpu.InvalidShader, fmt.Errorf("%w %s %q: %w", ErrShaderLoad, stage, path, err)
	}
	return h, nil
}

// loadProgram loads the vertex and fragment shaders for renderer and links
// them. The shaders are released once the program exists.
func loadProgram(device gpu.Device, root string, renderer gpu.RendererType) (gpu.ProgramHandle, error) {
	dir := shaderDir(root, renderer)

	vs, err := loadShader(device, filepath.Join(dir, vertexShaderFile), gpu.StageVertex)
	if err != nil {
		return gpu.InvalidProgram, err
	}

	fs, err := loadShader(device, filepath.Join(dir, fragmentShaderFile), gpu.StageFragment)
	if err != nil {
		device.DestroyShader(vs)
		return gpu.InvalidProgram, err
	}

	program, err := device.CreateProgram(vs, fs, true)
	if err != nil {
		device.DestroyShader(vs)
		device.DestroyShader(fs)
		return gpu.InvalidProgram, fmt.Errorf("link program: %w", err)
	}
	return program, nil
}
