package browser

import (
	"runtime"
	"strings"
)

// userAgents maps friendly names to full user-agent strings for the
// current platform. Headless launches carry a realistic UA so the target
// site serves the same session flow a desktop browser gets.
var userAgents = map[string]string{
	"chrome":  chromeUA(),
	"firefox": firefoxUA(),
}

// ResolveUserAgent maps a friendly name ("chrome", "firefox") to a full
// user-agent string. Anything else passes through verbatim, so operators
// can supply a literal UA.
func ResolveUserAgent(s string) string {
	if ua, ok := userAgents[strings.ToLower(s)]; ok {
		return ua
	}
	return s
}

func chromeUA() string {
	switch runtime.GOOS {
	case "windows":
		return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	case "darwin":
		return "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	default:
		return "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	}
}

func firefoxUA() string {
	switch runtime.GOOS {
	case "windows":
		return "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0"
	case "darwin":
		return "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:127.0) Gecko/20100101 Firefox/127.0"
	default:
		return "Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0"
	}
}
