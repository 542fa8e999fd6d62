package config

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

const (
	// ClientName is the product token used in the upstream User-Agent.
	ClientName = "go-oaiadapter"
	// ClientVersion is sent upstream as part of the User-Agent.
	ClientVersion = "0.3.0"
)

// UserAgent builds the upstream User-Agent:
// <name>/<version> (<os_type>; <arch>)
func UserAgent() string {
	candidate := fmt.Sprintf("%s/%s (%s; %s)", ClientName, ClientVersion, osType(), archName())
	return sanitizeUserAgent(candidate, ClientName+"/"+ClientVersion)
}

// ApplyUpstreamHeaders sets the User-Agent and the optional OpenAI
// organization and project headers.
func ApplyUpstreamHeaders(headers http.Header, up UpstreamConfig) {
	if headers == nil {
		return
	}
	headers.Set("User-Agent", UserAgent())
	if org := strings.TrimSpace(up.Organization); isValidHeaderValue(org) {
		headers.Set("OpenAI-Organization", org)
	}
	if project := strings.TrimSpace(up.Project); isValidHeaderValue(project) {
		headers.Set("OpenAI-Project", project)
	}
}

func osType() string {
	switch runtime.GOOS {
	case "darwin":
		return "Mac OS"
	case "linux":
		return "Linux"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	default:
		return runtime.GOOS
	}
}

func archName() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	default:
		return runtime.GOARCH
	}
}

func sanitizeUserAgent(candidate, fallback string) string {
	if isValidHeaderValue(candidate) {
		return candidate
	}
	sanitized := sanitizePrintableASCII(candidate)
	if sanitized != "" && isValidHeaderValue(sanitized) {
		return sanitized
	}
	if isValidHeaderValue(fallback) {
		return fallback
	}
	return ClientName
}

func sanitizePrintableASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= ' ' && r <= '~' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isValidHeaderValue(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, r := range s {
		if r < ' ' || r == 0x7f {
			return false
		}
	}
	return true
}
