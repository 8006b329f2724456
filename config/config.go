// Package config holds the engine settings and loads them from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"mainboard-engine/core"
	"mainboard-engine/gpu"
	"mainboard-engine/internal/logging"
	"mainboard-engine/renderer"
)

// EnvPath names the environment variable the C library reads its config
// path from.
const EnvPath = "MBENGINE_CONFIG"

var ErrInvalid = errors.New("invalid config")

// Color is an RGBA8 value written as a hex string such as "0x443355ff".
type Color uint32

func (c Color) String() string {
	return fmt.Sprintf("0x%08x", uint32(c))
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	v, err := parseColor(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: clear_color: %w", node.Line, err)
	}
	*c = v
	return nil
}

func parseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: color %q", ErrInvalid, s)
	}
	return Color(v), nil
}

type Config struct {
	Renderer        string  `yaml:"renderer"`
	ShaderRoot      string  `yaml:"shader_root"`
	ClearColor      Color   `yaml:"clear_color"`
	ClearDepth      float32 `yaml:"clear_depth"`
	VSync           bool    `yaml:"vsync"`
	DecodeCacheSize int     `yaml:"decode_cache_size"`
	LogLevel        string  `yaml:"log_level"`
}

func Default() Config {
	opts := renderer.DefaultOptions()
	return Config{
		Renderer:        "auto",
		ShaderRoot:      opts.ShaderRoot,
		ClearColor:      Color(opts.ClearColor.RGBA8()),
		ClearDepth:      opts.ClearDepth,
		VSync:           opts.VSync,
		DecodeCacheSize: opts.DecodeCacheSize,
		LogLevel:        "info",
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("load config %q: %w", path, err)
	}

	logging.Logger().Debug("Config loaded", "path", path, "renderer", cfg.Renderer)
	return cfg, nil
}

// FromEnv loads the file named by MBENGINE_CONFIG, or returns the defaults
// when the variable is unset.
func FromEnv() (Config, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c Config) Validate() error {
	if _, _, err := c.RendererType(); err != nil {
		return err
	}
	if c.ShaderRoot == "" {
		return fmt.Errorf("%w: shader_root is empty", ErrInvalid)
	}
	if c.ClearDepth < 0 || c.ClearDepth > 1 {
		return fmt.Errorf("%w: clear_depth %v outside [0, 1]", ErrInvalid, c.ClearDepth)
	}
	if c.DecodeCacheSize < 0 {
		return fmt.Errorf("%w: decode_cache_size %d is negative", ErrInvalid, c.DecodeCacheSize)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

// RendererType resolves the renderer name. ok is false for "auto", which
// means the best registered backend is picked.
func (c Config) RendererType() (t gpu.RendererType, ok bool, err error) {
	name := strings.ToLower(strings.TrimSpace(c.Renderer))
	if name == "" || name == "auto" {
		return gpu.Noop, false, nil
	}
	if name == gpu.Metal.String() {
		return gpu.Noop, false, fmt.Errorf("%w: renderer %q", ErrInvalid, c.Renderer)
	}
	t, ok = gpu.ParseRendererType(name)
	if !ok {
		return gpu.Noop, false, fmt.Errorf("%w: renderer %q", ErrInvalid, c.Renderer)
	}
	return t, true, nil
}

func (c Config) Level() slog.Level {
	return logging.ParseLevel(c.LogLevel)
}

func (c Config) Options() renderer.Options {
	return renderer.Options{
		ShaderRoot:      c.ShaderRoot,
		ClearColor:      core.ColorFromRGBA8(uint32(c.ClearColor)),
		ClearDepth:      c.ClearDepth,
		VSync:           c.VSync,
		DecodeCacheSize: c.DecodeCacheSize,
	}
}
