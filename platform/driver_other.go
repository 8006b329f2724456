//go:build !windows && !linux && !darwin

package platform

import "mainboard-engine/core"

type unsupportedDriver struct{}

func newDriver() Driver { return unsupportedDriver{} }

func (unsupportedDriver) Initialize() error { return ErrNoPlatform }
func (unsupportedDriver) Shutdown()         {}

func (unsupportedDriver) CreateWindow(core.WindowConfig) (Window, error) {
	return nil, ErrNoPlatform
}

func (unsupportedDriver) ProcessEvents(Window) core.MessageType { return core.NoEvent }
