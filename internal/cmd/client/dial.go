package client

import (
	"net"
	"strings"
)

// defaultPort is Pond's default query-server port, matching
// internal/config.Default's ListenAddr.
const defaultPort = "5480"

// withDefaultPort appends defaultPort to addr if it names no port. An addr
// beginning with "[" is returned unchanged, with or without a port.
func withDefaultPort(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	if strings.HasPrefix(addr, "[") {
		return addr
	}
	return addr + ":" + defaultPort
}
