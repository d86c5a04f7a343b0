package displaymedia

import "runtime"

// DefaultSupportedPlatform is the platform with a capture provider
// (xdg-desktop-portal ScreenCast).
const DefaultSupportedPlatform = "linux"

// PlatformProbe reports the current platform identifier.
type PlatformProbe interface {
	Platform() string
}

// PlatformFunc adapts a function to PlatformProbe.
type PlatformFunc func() string

func (f PlatformFunc) Platform() string { return f() }

// StaticPlatform always reports the same identifier.
type StaticPlatform string

func (p StaticPlatform) Platform() string { return string(p) }

// RuntimePlatform reports runtime.GOOS.
var RuntimePlatform PlatformProbe = StaticPlatform(runtime.GOOS)
