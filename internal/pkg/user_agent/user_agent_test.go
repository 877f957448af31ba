package user_agent_test

import (
	"testing"

	"visitortracker/internal/pkg/user_agent"
)

func TestParseUserAgent(t *testing.T) {
	testCases := []struct {
		name            string
		userAgent       string
		expectedBrowser string
		expectedOS      string
		expectedDevice  string
	}{
		{
			name:            "Minimal Chrome on Windows 10",
			userAgent:       "Mozilla/5.0 (Windows NT 10) Chrome",
			expectedBrowser: "Chrome",
			expectedOS:      "Windows 10",
			expectedDevice:  "Desktop",
		},
		{
			name:            "Chrome on Windows",
			userAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			expectedBrowser: "Chrome",
			expectedOS:      "Windows 10",
			expectedDevice:  "Desktop",
		},
		{
			name:            "Edge wins over Chrome token",
			userAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91",
			expectedBrowser: "Microsoft Edge",
			expectedOS:      "Windows 10",
			expectedDevice:  "Desktop",
		},
		{
			name:            "Internet Explorer 11",
			userAgent:       "Mozilla/5.0 (Windows NT 6.1; Trident/7.0; rv:11.0) like Gecko",
			expectedBrowser: "Internet Explorer",
			expectedOS:      "Windows",
			expectedDevice:  "Desktop",
		},
		{
			name:            "Windows 11 token",
			userAgent:       "Mozilla/5.0 (Windows NT 11.0; Win64; x64) Firefox/121.0",
			expectedBrowser: "Firefox",
			expectedOS:      "Windows 11",
			expectedDevice:  "Desktop",
		},
		{
			name:            "Safari on macOS",
			userAgent:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
			expectedBrowser: "Safari",
			expectedOS:      "Mac OS X",
			expectedDevice:  "Desktop",
		},
		{
			name:            "Safari on iPhone",
			userAgent:       "Mozilla/5.0 (iPhone; CPU iPhone OS 14_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1",
			expectedBrowser: "Safari",
			expectedOS:      "Mac OS X",
			expectedDevice:  "Mobile",
		},
		{
			name:            "Safari on iPad",
			userAgent:       "Mozilla/5.0 (iPad; CPU OS 14_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1",
			expectedBrowser: "Safari",
			expectedOS:      "Mac OS X",
			expectedDevice:  "Tablet",
		},
		{
			name:            "Chrome on Android reports Linux first",
			userAgent:       "Mozilla/5.0 (Linux; Android 11; SM-G998B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.120 Mobile Safari/537.36",
			expectedBrowser: "Chrome",
			expectedOS:      "Linux",
			expectedDevice:  "Mobile",
		},
		{
			name:            "Android tablet",
			userAgent:       "Mozilla/5.0 (Android 13; Tablet; rv:120.0) Gecko/120.0 Firefox/120.0",
			expectedBrowser: "Firefox",
			expectedOS:      "Android",
			expectedDevice:  "Tablet",
		},
		{
			name:            "Opera presto",
			userAgent:       "Opera/9.80 (X11; Linux x86_64) Presto/2.12.388 Version/12.16",
			expectedBrowser: "Opera",
			expectedOS:      "Linux",
			expectedDevice:  "Desktop",
		},
		{
			name:            "Opera on Chromium matches Chrome first",
			userAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36 OPR/105.0.0.0",
			expectedBrowser: "Chrome",
			expectedOS:      "Windows 10",
			expectedDevice:  "Desktop",
		},
		{
			name:            "iOS token without Apple device",
			userAgent:       "CustomClient/1.0 (iOS 17.0)",
			expectedBrowser: "Unknown",
			expectedOS:      "iOS",
			expectedDevice:  "Desktop",
		},
		{
			name:            "Case insensitive tokens",
			userAgent:       "mozilla/5.0 (windows nt 10.0) firefox/115.0",
			expectedBrowser: "Firefox",
			expectedOS:      "Windows 10",
			expectedDevice:  "Desktop",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := user_agent.ParseUserAgent(tc.userAgent)

			t.Logf("Parsed - Browser: %s, OS: %s, Device: %s", result.Browser, result.OS, result.Device)

			if result.Browser != tc.expectedBrowser {
				t.Errorf("Expected browser %s, got %s", tc.expectedBrowser, result.Browser)
			}
			if result.OS != tc.expectedOS {
				t.Errorf("Expected OS %s, got %s", tc.expectedOS, result.OS)
			}
			if result.Device != tc.expectedDevice {
				t.Errorf("Expected device %s, got %s", tc.expectedDevice, result.Device)
			}
		})
	}
}

func TestParseUserAgentUnmatched(t *testing.T) {
	for _, ua := range []string{"", "curl/8.4.0", "Wget/1.21", "totally-unknown-agent", "   "} {
		result := user_agent.ParseUserAgent(ua)
		if result.Browser != user_agent.Unknown || result.OS != user_agent.Unknown || result.Device != user_agent.DeviceDesktop {
			t.Errorf("Expected Unknown/Unknown/Desktop for %q, got %s/%s/%s", ua, result.Browser, result.OS, result.Device)
		}
		if !result.Desktop || result.Mobile || result.Tablet {
			t.Errorf("Expected desktop flags for %q", ua)
		}
	}
}

func TestParseUserAgentDeviceFlags(t *testing.T) {
	result := user_agent.ParseUserAgent("Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) Mobile/15E148")
	if !result.Tablet || result.Mobile || result.Desktop {
		t.Errorf("Expected tablet flags, got mobile=%v tablet=%v desktop=%v", result.Mobile, result.Tablet, result.Desktop)
	}

	result = user_agent.ParseUserAgent("Mozilla/5.0 (iPod touch; CPU iPhone OS 12_0 like Mac OS X)")
	if !result.Mobile || result.Tablet || result.Desktop {
		t.Errorf("Expected mobile flags, got mobile=%v tablet=%v desktop=%v", result.Mobile, result.Tablet, result.Desktop)
	}
}
