// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admission

import (
	"strings"

	"github.com/mssola/useragent"

	"github.com/danielhkuo/quickly-survey/models"
)

// MetaFromUserAgent derives the device classification stored with a
// response when the client did not send one.
func MetaFromUserAgent(raw string) models.ResponseMeta {
	meta := models.ResponseMeta{UserAgent: raw}
	if strings.TrimSpace(raw) == "" {
		return meta
	}

	ua := useragent.New(raw)
	meta.OS = osName(ua)

	meta.IsTablet = isTablet(ua, raw, meta.OS)
	meta.IsMobile = !meta.IsTablet && (ua.Mobile() || meta.OS == "Windows Phone")

	if name, version := ua.Browser(); name != "" {
		meta.Browser = name
		if major, _, _ := strings.Cut(version, "."); major != "" {
			meta.Browser += " " + major
		}
	}

	return meta
}

// isTablet covers iPads, Kindle devices and Android builds that do not
// advertise themselves as mobile.
func isTablet(ua *useragent.UserAgent, raw, os string) bool {
	if ua.Platform() == "iPad" {
		return true
	}
	if strings.Contains(raw, "Tablet") || strings.Contains(raw, "Silk/") || strings.Contains(raw, "Kindle") {
		return true
	}
	return os == "Android" && !ua.Mobile()
}

// osName collapses the parser's OS names into the families the
// analytics breakdown reports.
func osName(ua *useragent.UserAgent) string {
	info := ua.OSInfo()
	switch p := ua.Platform(); {
	case strings.HasPrefix(info.Name, "Windows Phone") || strings.Contains(ua.OS(), "Windows Phone"):
		return "Windows Phone"
	case strings.HasPrefix(info.Name, "Windows"):
		return "Windows"
	case p == "iPhone" || p == "iPad" || p == "iPod" || p == "iPod touch":
		return "iOS"
	case info.Name == "Android":
		return "Android"
	case strings.HasPrefix(info.Name, "Mac OS"):
		return "macOS"
	case info.Name == "Linux":
		return "Linux"
	}
	return info.Name
}
