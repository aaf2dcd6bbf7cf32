package config

// Platform identifies an entry in the launch configuration file.
type Platform string

// Platforms with an entry in the launch configuration file.
const (
	PlatformWindows Platform = "windows"
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
)

// CurrentPlatform returns the platform this binary was built for. It is empty
// on operating systems without a launch configuration entry.
func CurrentPlatform() Platform {
	return currentPlatform
}

// Supported reports whether p names one of the configuration entries.
func (p Platform) Supported() bool {
	switch p {
	case PlatformWindows, PlatformMacOS, PlatformLinux:
		return true
	default:
		return false
	}
}

// Platforms lists every entry key in the order they are reported.
func Platforms() []Platform {
	return []Platform{PlatformWindows, PlatformMacOS, PlatformLinux}
}
