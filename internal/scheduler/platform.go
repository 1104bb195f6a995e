package scheduler

import (
	"fmt"
	"runtime"
)

// Platform is a host tag with a known native scheduler.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformDarwin  Platform = "darwin"
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform maps a GOOS value to a Platform.
func DetectPlatform(goos string) Platform {
	switch goos {
	case "linux":
		return PlatformLinux
	case "darwin":
		return PlatformDarwin
	default:
		return PlatformUnknown
	}
}

// HostPlatform is DetectPlatform(runtime.GOOS).
func HostPlatform() Platform { return DetectPlatform(runtime.GOOS) }

// UnsupportedPlatformError means no backend exists for the host.
type UnsupportedPlatformError struct {
	GOOS string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %q (supported: linux via crontab, darwin via launchd)", e.GOOS)
}
