package useragent

import (
	"regexp"
	"strings"
)

type keywords []string

func (k keywords) in(s string) bool {
	for _, kw := range k {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

var (
	botKeywords     = keywords{"bot", "spider", "crawler", "slurp", "lighthouse", "facebookexternalhit", "monitor", "fetcher", "scraper"}
	tvKeywords      = keywords{"smarttv", "smart-tv", "googletv", "appletv", "android tv", "webos", "tizen", "hbbtv"}
	consoleKeywords = keywords{"playstation", "xbox", "nintendo"}
	tabletKeywords  = keywords{"tablet", "kindle", "silk", "playbook"}
	mobileKeywords  = keywords{"mobile", "iphone", "ipod", "windows phone", "iemobile", "blackberry", "opera mini"}
	desktopKeywords = keywords{"windows nt", "macintosh", "mac os x", "x11", "linux", "cros"}
)

// deviceType checks unambiguous markers first. Android tablets are the
// Android agents without "mobile".
func deviceType(ua string) string {
	switch {
	case strings.Contains(ua, "ipad"):
		return DeviceTablet
	case strings.Contains(ua, "iphone"):
		return DeviceMobile
	case botKeywords.in(ua):
		return DeviceBot
	case tvKeywords.in(ua):
		return DeviceTV
	case consoleKeywords.in(ua):
		return DeviceConsole
	case strings.Contains(ua, "android"):
		if strings.Contains(ua, "mobile") {
			return DeviceMobile
		}
		return DeviceTablet
	case tabletKeywords.in(ua):
		return DeviceTablet
	case mobileKeywords.in(ua):
		return DeviceMobile
	case desktopKeywords.in(ua):
		return DeviceDesktop
	default:
		return Unknown
	}
}

var models = []struct {
	name string
	kw   keywords
}{
	{"iphone", keywords{"iphone"}},
	{"ipad", keywords{"ipad"}},
	{"pixel", keywords{"pixel"}},
	{"samsung", keywords{"samsung", "sm-g", "sm-a", "sm-n", "sm-s", "sm-t", "sm-x"}},
	{"huawei", keywords{"huawei", "honor", "mediapad"}},
	{"xiaomi", keywords{"xiaomi", "redmi", "miui"}},
	{"kindle", keywords{"kindle", "silk", "kftt"}},
}

func deviceModel(ua, typ string) string {
	if typ != DeviceMobile && typ != DeviceTablet {
		return ""
	}
	for _, m := range models {
		if m.kw.in(ua) {
			return m.name
		}
	}
	return ""
}

func operatingSystem(ua string) string {
	switch {
	case strings.Contains(ua, "windows phone"):
		return OSWindowsPhone
	case strings.Contains(ua, "windows"):
		return OSWindows
	case keywords{"iphone", "ipad", "ipod"}.in(ua):
		return OSiOS
	case keywords{"macintosh", "mac os x"}.in(ua):
		return OSMacOS
	case strings.Contains(ua, "harmonyos"):
		return OSHarmonyOS
	case keywords{"kindle", "silk"}.in(ua):
		return OSFireOS
	case strings.Contains(ua, "android"):
		return OSAndroid
	case keywords{"cros", "chromeos"}.in(ua):
		return OSChromeOS
	case keywords{"linux", "x11", "ubuntu", "fedora"}.in(ua):
		return OSLinux
	default:
		return Unknown
	}
}

type browserPattern struct {
	name     string
	match    keywords
	excludes keywords
	version  *regexp.Regexp
}

// Order matters: Chromium derivatives advertise "chrome" and Chrome
// advertises "safari".
var browserPatterns = []browserPattern{
	{name: BrowserEdge, match: keywords{"edg/", "edge/", "edga/", "edgios/"}, version: regexp.MustCompile(`(?:edge|edg|edga|edgios)/([\d.]+)`)},
	{name: BrowserSamsung, match: keywords{"samsungbrowser"}, version: regexp.MustCompile(`samsungbrowser/([\d.]+)`)},
	{name: BrowserYandex, match: keywords{"yabrowser"}, version: regexp.MustCompile(`yabrowser/([\d.]+)`)},
	{name: BrowserVivaldi, match: keywords{"vivaldi"}, version: regexp.MustCompile(`vivaldi/([\d.]+)`)},
	{name: BrowserBrave, match: keywords{"brave"}, version: regexp.MustCompile(`brave/([\d.]+)`)},
	{name: BrowserOpera, match: keywords{"opr/", "opera"}, version: regexp.MustCompile(`(?:opr|version|opera)/([\d.]+)`)},
	{name: BrowserFirefox, match: keywords{"firefox/", "fxios/"}, version: regexp.MustCompile(`(?:firefox|fxios)/([\d.]+)`)},
	{name: BrowserChrome, match: keywords{"chrome/", "crios/"}, version: regexp.MustCompile(`(?:chrome|crios)/([\d.]+)`)},
	{name: BrowserSafari, match: keywords{"safari/"}, excludes: keywords{"chrome", "chromium", "android"}, version: regexp.MustCompile(`version/([\d.]+)`)},
	{name: BrowserIE, match: keywords{"msie ", "trident/"}, version: regexp.MustCompile(`(?:msie |rv:)([\d.]+)`)},
}

func browser(ua string) (name, version string) {
	for _, p := range browserPatterns {
		if !p.match.in(ua) || p.excludes.in(ua) {
			continue
		}
		if m := p.version.FindStringSubmatch(ua); len(m) > 1 {
			version = m[1]
			if len(version) > 20 {
				version = version[:20]
			}
		}
		return p.name, version
	}
	return Unknown, ""
}
