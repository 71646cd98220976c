// Package desktop implements platform.Inputter and platform.Screenshotter on
// top of robotgo. It needs cgo and registers itself with platform.NewProviderFunc
// when linked in.
package desktop
