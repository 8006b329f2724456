package core

import (
	"errors"
	"fmt"
)

// MessageType is the result of one message pump pass.
type MessageType int

const (
	NoEvent MessageType = 0
	Quit    MessageType = 1
)

func (m MessageType) String() string {
	switch m {
	case NoEvent:
		return "NoEvent"
	case Quit:
		return "Quit"
	}
	return fmt.Sprintf("MessageType(%d)", int(m))
}

type WindowConfig struct {
	Fullscreen bool
	X, Y       int
	Width      int
	Height     int
	Title      string
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		X:      100,
		Y:      100,
		Width:  800,
		Height: 600,
		Title:  "Mainboard Engine",
	}
}

var ErrInvalidWindowSize = errors.New("invalid window size")

// Validate reports whether the config can be handed to a platform driver.
// Fullscreen windows take the monitor size, so their width/height are not
// checked.
func (c WindowConfig) Validate() error {
	if c.Fullscreen {
		return nil
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidWindowSize, c.Width, c.Height)
	}
	return nil
}

func (c WindowConfig) Rect() Rect {
	return RectFromXYWH(c.X, c.Y, c.Width, c.Height)
}
