package useragent

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Device types.
const (
	DeviceBot     = "bot"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceTV      = "tv"
	DeviceConsole = "console"
	Unknown       = "unknown"
)

// Operating systems.
const (
	OSWindows      = "windows"
	OSWindowsPhone = "windows phone"
	OSMacOS        = "macos"
	OSiOS          = "ios"
	OSAndroid      = "android"
	OSLinux        = "linux"
	OSChromeOS     = "chromeos"
	OSHarmonyOS    = "harmonyos"
	OSFireOS       = "fireos"
)

// Browsers.
const (
	BrowserChrome  = "chrome"
	BrowserFirefox = "firefox"
	BrowserSafari  = "safari"
	BrowserEdge    = "edge"
	BrowserOpera   = "opera"
	BrowserSamsung = "samsung"
	BrowserBrave   = "brave"
	BrowserVivaldi = "vivaldi"
	BrowserYandex  = "yandex"
	BrowserIE      = "ie"
)

// Device is a parsed User-Agent.
type Device struct {
	Raw            string
	Type           string
	Model          string
	OS             string
	Browser        string
	BrowserVersion string
}

// Parse classifies ua. It never fails; unrecognised parts are Unknown and
// ErrEmptyUserAgent is returned only for an empty string.
func Parse(ua string) (Device, error) {
	if strings.TrimSpace(ua) == "" {
		return Device{Type: Unknown, OS: Unknown, Browser: Unknown}, ErrEmptyUserAgent
	}

	lower := strings.ToLower(ua)
	d := Device{
		Raw:  ua,
		Type: deviceType(lower),
		OS:   operatingSystem(lower),
	}
	d.Model = deviceModel(lower, d.Type)
	d.Browser, d.BrowserVersion = browser(lower)
	return d, nil
}

// IsMobile reports whether the device is a phone or tablet.
func (d Device) IsMobile() bool {
	return d.Type == DeviceMobile || d.Type == DeviceTablet
}

// OSName returns a display name for the operating system.
func (d Device) OSName() string {
	return displayOS(d.OS)
}

// BrowserName returns a display name for the browser.
func (d Device) BrowserName() string {
	return displayBrowser(d.Browser)
}

// Name returns a short device name such as "iPhone" or "Windows desktop".
func (d Device) Name() string {
	switch {
	case d.Model == "iphone":
		return "iPhone"
	case d.Model == "ipad":
		return "iPad"
	case d.Model != "" && d.Model != Unknown:
		return fmt.Sprintf("%s %s", title(d.Model), d.typeName())
	case d.OS != "" && d.OS != Unknown:
		return fmt.Sprintf("%s %s", displayOS(d.OS), d.typeName())
	default:
		return "Unknown device"
	}
}

// Label renders "Browser on OS (type)", dropping unknown parts.
func (d Device) Label() string {
	return Label(d.Browser, d.OS, d.Type)
}

// Label renders a label from already classified fields, as stored by the
// session registry.
func Label(browser, os, deviceType string) string {
	known := func(s string) bool { return s != "" && s != Unknown }

	var b strings.Builder
	switch {
	case known(browser) && known(os):
		fmt.Fprintf(&b, "%s on %s", displayBrowser(browser), displayOS(os))
	case known(browser):
		b.WriteString(displayBrowser(browser))
	case known(os):
		b.WriteString(displayOS(os))
	default:
		b.WriteString("Unknown browser")
	}
	if known(deviceType) {
		fmt.Fprintf(&b, " (%s)", deviceType)
	}
	return b.String()
}

func (d Device) typeName() string {
	if d.Type == "" || d.Type == Unknown {
		return "device"
	}
	return d.Type
}

var osNames = map[string]string{
	OSWindows:      "Windows",
	OSWindowsPhone: "Windows Phone",
	OSMacOS:        "macOS",
	OSiOS:          "iOS",
	OSAndroid:      "Android",
	OSLinux:        "Linux",
	OSChromeOS:     "ChromeOS",
	OSHarmonyOS:    "HarmonyOS",
	OSFireOS:       "Fire OS",
}

var browserNames = map[string]string{
	BrowserIE:      "Internet Explorer",
	BrowserSamsung: "Samsung Internet",
}

func displayOS(os string) string {
	if name, ok := osNames[strings.ToLower(os)]; ok {
		return name
	}
	if os == "" || os == Unknown {
		return "Unknown OS"
	}
	return title(os)
}

func displayBrowser(browser string) string {
	if name, ok := browserNames[strings.ToLower(browser)]; ok {
		return name
	}
	if browser == "" || browser == Unknown {
		return "Unknown browser"
	}
	return title(browser)
}

func title(s string) string {
	return cases.Title(language.English).String(s)
}
