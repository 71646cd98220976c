//go:build cgo

package desktop

import "github.com/mj1618/botvision/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		return &platform.Provider{
			Inputter:      NewInputter(),
			Screenshotter: NewScreenshotter(),
		}, nil
	}
}
