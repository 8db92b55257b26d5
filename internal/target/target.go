package target

import (
	"fmt"
	"regexp"
	"strings"
)

// Descriptor holds the target host/port/scheme and its safety classification.
// Attacks are refused unless the host is a known lab address or the operator
// has explicitly confirmed authorization.
type Descriptor struct {
	Host     string
	Port     int
	UseHTTPS bool

	confirmed bool
}

// allowedHosts are loopback/unspecified addresses that never require confirmation.
var allowedHosts = []string{
	"localhost",
	"127.0.0.1",
	"::1",
	"0.0.0.0",
}

// privateIPPatterns match RFC 1918 IPv4 ranges.
var privateIPPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^10\.`),
	regexp.MustCompile(`^172\.(1[6-9]|2[0-9]|3[0-1])\.`),
	regexp.MustCompile(`^192\.168\.`),
}

// New creates a Descriptor for the given host, port, and scheme.
func New(host string, port int, useHTTPS bool) *Descriptor {
	return &Descriptor{Host: host, Port: port, UseHTTPS: useHTTPS}
}

// BaseURL composes scheme://host[:port], omitting the port when it matches
// the scheme's default.
func (d *Descriptor) BaseURL() string {
	scheme := "http"
	defaultPort := 80
	if d.UseHTTPS {
		scheme = "https"
		defaultPort = 443
	}
	if d.Port == defaultPort {
		return fmt.Sprintf("%s://%s", scheme, d.Host)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, d.Host, d.Port)
}

// ResolvePath joins a path to the base URL with exactly one separating slash.
// No percent-encoding or other normalization is applied.
func (d *Descriptor) ResolvePath(path string) string {
	return d.BaseURL() + "/" + strings.TrimPrefix(path, "/")
}

// IsSafe reports whether the target is a known lab environment: loopback,
// private IPv4, or explicitly confirmed by the operator.
func (d *Descriptor) IsSafe() bool {
	host := strings.ToLower(d.Host)
	for _, allowed := range allowedHosts {
		if host == allowed {
			return true
		}
	}
	for _, pattern := range privateIPPatterns {
		if pattern.MatchString(d.Host) {
			return true
		}
	}
	return d.confirmed
}

// Confirm marks the target as explicitly authorized for testing.
func (d *Descriptor) Confirm() {
	d.confirmed = true
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("Target(%s)", d.BaseURL())
}
