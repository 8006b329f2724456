//go:build darwin

package platform

import (
	"fmt"

	"mainboard-engine/core"
)

// darwinDriver reserves the macOS slot. Nothing is wired to Cocoa yet, so
// every operation fails loudly instead of pretending to work.
type darwinDriver struct{}

func newDriver() Driver { return darwinDriver{} }

func (darwinDriver) Initialize() error {
	return fmt.Errorf("darwin initialize: %w", ErrNotImplemented)
}

func (darwinDriver) Shutdown() {}

func (darwinDriver) CreateWindow(core.WindowConfig) (Window, error) {
	return nil, fmt.Errorf("darwin create window: %w", ErrNotImplemented)
}

func (darwinDriver) ProcessEvents(Window) core.MessageType { return core.NoEvent }
