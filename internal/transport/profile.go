package transport

// DefaultUserAgent is the desktop Chrome identity sent with every request
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultProfile returns the browser-like header set applied to every request.
// The map is a fresh copy; callers may modify it.
func DefaultProfile() map[string]string {
	return map[string]string{
		"User-Agent":                DefaultUserAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"Accept-Encoding":           "gzip, deflate, br",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Cache-Control":             "max-age=0",
	}
}

// BrowserHeaders returns the subset of the profile a real browser lets a
// page override. Transport-level headers stay under the browser's control.
func BrowserHeaders(profile map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range profile {
		switch k {
		case "User-Agent", "Accept-Encoding", "Connection", "Sec-Fetch-Dest", "Sec-Fetch-Mode", "Sec-Fetch-Site", "Upgrade-Insecure-Requests":
			continue
		}
		out[k] = v
	}
	return out
}
