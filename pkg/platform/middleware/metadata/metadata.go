// Package metadata records who is on the other end of a request. Admin
// sign-ins and registrant submissions log the client address and agent.
package metadata

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

const unknownIP = "unknown"

// Client describes the caller as seen at the edge.
type Client struct {
	IP        string
	UserAgent string
}

type clientKey struct{}

// ClientMetadata stores the caller's Client on the request context.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithClientMetadata(r.Context(), ClientIPFromRequest(r), r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	return context.WithValue(ctx, clientKey{}, Client{IP: clientIP, UserAgent: userAgent})
}

// FromContext returns the Client stored by ClientMetadata.
func FromContext(ctx context.Context) (Client, bool) {
	c, ok := ctx.Value(clientKey{}).(Client)
	return c, ok
}

func GetClientIP(ctx context.Context) string {
	c, _ := FromContext(ctx)
	return c.IP
}

func GetUserAgent(ctx context.Context) string {
	c, _ := FromContext(ctx)
	return c.UserAgent
}

// Device condenses the stored User-Agent into "Browser on OS", with a
// "(mobile)" suffix for handsets. Crawlers report "bot".
func Device(ctx context.Context) string {
	return DeviceSummary(GetUserAgent(ctx))
}

func DeviceSummary(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return ""
	}
	ua := useragent.New(userAgent)
	if ua.Bot() {
		return "bot"
	}
	browser, _ := ua.Browser()
	summary := browser
	if os := ua.OS(); os != "" {
		summary += " on " + os
	}
	if ua.Mobile() {
		summary += " (mobile)"
	}
	return summary
}

// ClientIPFromRequest takes the first parseable X-Forwarded-For hop, then
// X-Real-IP, then RemoteAddr without its port. Proxy headers that do not
// hold an address are ignored.
func ClientIPFromRequest(r *http.Request) string {
	for _, hop := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := net.ParseIP(strings.TrimSpace(hop)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	if r.RemoteAddr == "" {
		return unknownIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
