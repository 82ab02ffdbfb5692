package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo holds parsed information from a User-Agent string
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile, desktop, unknown
	Platform   string `json:"platform"`    // android, ios, windows, mac, linux
	OS         string `json:"os"`
	Client     string `json:"client"` // Browser or app name
	IsBot      bool   `json:"is_bot"`
}

// ParseUserAgent parses a User-Agent string and extracts device information
func ParseUserAgent(userAgent string) DeviceInfo {
	if strings.TrimSpace(userAgent) == "" {
		return DeviceInfo{DeviceType: "unknown", Platform: "unknown", OS: "Unknown", Client: "Unknown"}
	}

	parser := ua.New(userAgent)

	info := DeviceInfo{
		DeviceType: "desktop",
		OS:         "Unknown",
		Client:     "Unknown",
		IsBot:      parser.Bot(),
		Platform:   getPlatform(parser),
	}
	if parser.Mobile() {
		info.DeviceType = "mobile"
	}

	osInfo := parser.OSInfo()
	if osInfo.Name != "" {
		info.OS = strings.TrimSpace(osInfo.Name + " " + osInfo.Version)
	}

	if name, version := parser.Browser(); name != "" {
		info.Client = strings.TrimSpace(name + " " + version)
	}

	return info
}

// getPlatform determines the platform (android, ios, windows, etc.)
func getPlatform(parser *ua.UserAgent) string {
	osName := strings.ToLower(parser.OSInfo().Name)
	if osName == "" {
		osName = strings.ToLower(parser.Platform())
	}

	platforms := []struct{ key, platform string }{
		{"android", "android"},
		{"iphone", "ios"},
		{"ios", "ios"},
		{"windows", "windows"},
		{"mac os", "mac"},
		{"macos", "mac"},
		{"linux", "linux"},
	}

	for _, p := range platforms {
		if strings.Contains(osName, p.key) {
			return p.platform
		}
	}

	return "unknown"
}
