// Copyright (c) 2026 Mangetsu. All rights reserved.

// Package useragent provides a coarse classifier for User-Agent strings.
//
// # Scope
//
// The visitor tracker only needs bucket-level granularity (mobile vs
// desktop, browser family, OS family) for the admin analytics screen.
// Full UA parsing is deliberately out of scope.
package useragent

import "strings"

// Info is the classification result for one User-Agent string.
type Info struct {
	Device  string // mobile, tablet, desktop, bot
	Browser string // chrome, firefox, safari, edge, opera, other
	OS      string // windows, macos, linux, android, ios, other
}

// Classify buckets a raw User-Agent string into device, browser, and OS
// families. Unknown agents fall back to "desktop"/"other"/"other".
func Classify(userAgent string) Info {
	ua := strings.ToLower(userAgent)

	return Info{
		Device:  classifyDevice(ua),
		Browser: classifyBrowser(ua),
		OS:      classifyOS(ua),
	}
}

func classifyDevice(ua string) string {
	switch {
	case strings.Contains(ua, "bot"), strings.Contains(ua, "crawler"), strings.Contains(ua, "spider"):
		return "bot"
	case strings.Contains(ua, "ipad"), strings.Contains(ua, "tablet"):
		return "tablet"
	case strings.Contains(ua, "mobile"), strings.Contains(ua, "iphone"), strings.Contains(ua, "android"):
		return "mobile"
	default:
		return "desktop"
	}
}

func classifyBrowser(ua string) string {
	// Order matters: Edge and Opera embed "chrome", Chrome embeds "safari".
	switch {
	case strings.Contains(ua, "edg/"), strings.Contains(ua, "edge"):
		return "edge"
	case strings.Contains(ua, "opr/"), strings.Contains(ua, "opera"):
		return "opera"
	case strings.Contains(ua, "firefox"):
		return "firefox"
	case strings.Contains(ua, "chrome"):
		return "chrome"
	case strings.Contains(ua, "safari"):
		return "safari"
	default:
		return "other"
	}
}

func classifyOS(ua string) string {
	switch {
	case strings.Contains(ua, "android"):
		return "android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ios"):
		return "ios"
	case strings.Contains(ua, "windows"):
		return "windows"
	case strings.Contains(ua, "mac os"), strings.Contains(ua, "macintosh"):
		return "macos"
	case strings.Contains(ua, "linux"):
		return "linux"
	default:
		return "other"
	}
}
