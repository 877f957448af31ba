package http

import (
	"net"
	"net/netip"
	"strings"

	"github.com/gofiber/fiber/v2"

	"visitortracker/internal/visits"
)

// clientIP resolves the visitor address: the first X-Forwarded-For entry,
// then X-Real-IP, then the peer address, then the 0.0.0.0 sentinel.
func clientIP(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := normalizeIP(first); ip != "" {
			return ip
		}
	}

	if ip := normalizeIP(c.Get("X-Real-IP")); ip != "" {
		return ip
	}

	if addr := c.Context().RemoteAddr(); addr != nil {
		if ip := normalizeIP(addr.String()); ip != "" {
			return ip
		}
	}

	return visits.UnknownIPAddress
}

// normalizeIP strips quotes, ports, brackets and IPv6 zones. Values that are
// not addresses are returned trimmed so proxies sending hostnames are still recorded.
func normalizeIP(raw string) string {
	clean := strings.Trim(strings.TrimSpace(raw), "\"")
	if clean == "" {
		return ""
	}

	if percent := strings.Index(clean, "%"); percent != -1 {
		clean = clean[:percent]
	}

	if addrPort, err := netip.ParseAddrPort(clean); err == nil {
		return addrPort.Addr().Unmap().String()
	}

	trimmed := strings.TrimSuffix(strings.TrimPrefix(clean, "["), "]")
	if addr, err := netip.ParseAddr(trimmed); err == nil {
		return addr.Unmap().String()
	}

	if host, _, err := net.SplitHostPort(clean); err == nil && host != "" {
		return host
	}

	return clean
}
