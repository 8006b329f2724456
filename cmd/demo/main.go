// Command demo opens a window and draws two blocks every frame, putting the
// frame number in the title. Blocks can be passed as arguments; without
// arguments two generated checkerboards are used.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/profile"

	"mainboard-engine/config"
	"mainboard-engine/core"
	"mainboard-engine/engine"
)

const blockSize = 48

func main() {
	configPath := flag.String("config", "", "engine config file (YAML)")
	profileMode := flag.String("profile", "", "write a cpu or mem profile to the working directory")
	frames := flag.Int("frames", 0, "stop after this many frames, 0 runs until the window closes")
	flag.Parse()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		fmt.Fprintf(os.Stderr, "unknown profile mode %q\n", *profileMode)
		os.Exit(2)
	}

	if err := run(*configPath, *frames, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "demo:", err)
		os.Exit(1)
	}
}

func run(configPath string, frames int, blocks []string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	engine.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	if len(blocks) == 0 {
		dir, err := os.MkdirTemp("", "mbengine-demo")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)

		blocks, err = writeCheckerboards(dir)
		if err != nil {
			return err
		}
	}

	session := engine.NewSession(engine.WithConfig(cfg))
	if err := session.Initialize(); err != nil {
		return err
	}
	defer session.Shutdown()

	winCfg := core.DefaultWindowConfig()
	win, err := session.CreateWindow(winCfg)
	if err != nil {
		return err
	}

	for id, path := range blocks {
		if err := session.LoadBlock(id, path); err != nil {
			return err
		}
	}

	start := time.Now()
	for {
		msg, err := session.ProcessEvents(win)
		if err != nil {
			return err
		}
		if msg == core.Quit {
			break
		}

		for id := range blocks {
			if err := session.RenderBlock(id, blockSize*id, blockSize*id); err != nil {
				return err
			}
		}

		frame, err := session.RenderFrame(win)
		if err != nil {
			return err
		}
		if err := session.SetWindowTitle(win, fmt.Sprintf("%s - frame %d", winCfg.Title, frame)); err != nil {
			return err
		}
		if frames > 0 && int(frame) >= frames {
			break
		}
	}

	fmt.Printf("rendered in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func writeCheckerboards(dir string) ([]string, error) {
	palettes := [][2]color.NRGBA{
		{{R: 0x6a, G: 0xa8, B: 0x4f, A: 0xff}, {R: 0x4e, G: 0x7d, B: 0x3a, A: 0xff}},
		{{R: 0x8b, G: 0x5a, B: 0x2b, A: 0xff}, {R: 0x6b, G: 0x44, B: 0x20, A: 0xff}},
	}

	paths := make([]string, 0, len(palettes))
	for i, p := range palettes {
		img := image.NewNRGBA(image.Rect(0, 0, blockSize, blockSize))
		for y := 0; y < blockSize; y++ {
			for x := 0; x < blockSize; x++ {
				img.SetNRGBA(x, y, p[(x/8+y/8)%2])
			}
		}

		path := filepath.Join(dir, fmt.Sprintf("block%d.png", i))
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
