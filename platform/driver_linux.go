//go:build linux

package platform

func newDriver() Driver {
	return newCompositorDriver()
}
