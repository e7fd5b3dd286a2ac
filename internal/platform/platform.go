// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package platform

import (
	"runtime"
	"strings"
)

// Platform identifies the host operating system family.
type Platform string

const (
	Windows Platform = "windows"
	Mac     Platform = "mac"
	Linux   Platform = "linux"
)

// FromUserAgent classifies a browser user-agent string. Anything that is
// neither Windows nor macOS counts as linux.
func FromUserAgent(userAgent string) Platform {
	switch {
	case strings.Contains(userAgent, "Windows NT"):
		return Windows
	case strings.Contains(userAgent, "Mac OS X"):
		return Mac
	default:
		return Linux
	}
}

// FromGOOS classifies a runtime.GOOS value.
func FromGOOS(goos string) Platform {
	switch goos {
	case "windows":
		return Windows
	case "darwin", "ios":
		return Mac
	default:
		return Linux
	}
}

// Current returns the platform this binary runs on.
func Current() Platform {
	return FromGOOS(runtime.GOOS)
}

// SecondaryClick reports whether a primary-button press with ctrl held is
// treated as a context click, which is the macOS convention.
func (p Platform) SecondaryClick(ctrlKey bool) bool {
	return p == Mac && ctrlKey
}
