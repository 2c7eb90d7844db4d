package useragent

import "strings"

// Device types.
const (
	DeviceBot     = "bot"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// Mail image proxies.
const (
	ProxyGmail = "gmail"
	ProxyYahoo = "yahoo"
)

// Client is the classified user agent.
type Client struct {
	Device    string
	MailProxy string
}

// IsBot reports whether the request was automated, including mail proxies.
func (c Client) IsBot() bool {
	return c.Device == DeviceBot || c.MailProxy != ""
}

type keywordSet []string

func (k keywordSet) contains(s string) bool {
	for _, kw := range k {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

var (
	proxies = []struct {
		name     string
		keywords keywordSet
	}{
		{ProxyGmail, keywordSet{"googleimageproxy", "ggpht.com"}},
		{ProxyYahoo, keywordSet{"yahoomailproxy"}},
	}

	botKeywords     = keywordSet{"bot", "spider", "crawler", "slurp", "preview", "fetcher", "scanner", "monitor", "curl/", "wget/", "python-requests", "go-http-client", "headless"}
	tabletKeywords  = keywordSet{"ipad", "tablet", "kindle", "silk", "playbook"}
	mobileKeywords  = keywordSet{"iphone", "ipod", "mobile", "windows phone", "blackberry", "opera mini"}
	desktopKeywords = keywordSet{"windows", "macintosh", "mac os x", "x11", "linux", "cros "}
)

// Classify inspects a raw User-Agent header.
func Classify(ua string) Client {
	lower := strings.ToLower(strings.TrimSpace(ua))
	if lower == "" {
		return Client{Device: DeviceUnknown}
	}

	for _, p := range proxies {
		if p.keywords.contains(lower) {
			return Client{Device: DeviceBot, MailProxy: p.name}
		}
	}

	return Client{Device: deviceType(lower)}
}

// deviceType checks tablets before phones: iPads and Android tablets also
// match generic mobile keywords.
func deviceType(lower string) string {
	switch {
	case botKeywords.contains(lower):
		return DeviceBot
	case tabletKeywords.contains(lower):
		return DeviceTablet
	case strings.Contains(lower, "android"):
		if strings.Contains(lower, "mobile") {
			return DeviceMobile
		}
		return DeviceTablet
	case mobileKeywords.contains(lower):
		return DeviceMobile
	case desktopKeywords.contains(lower):
		return DeviceDesktop
	default:
		return DeviceUnknown
	}
}
