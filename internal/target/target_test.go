package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSafe_KnownLabHosts(t *testing.T) {
	hosts := []string{
		"localhost",
		"LOCALHOST",
		"127.0.0.1",
		"::1",
		"0.0.0.0",
		"10.1.2.3",
		"172.16.0.5",
		"172.31.255.255",
		"192.168.1.1",
	}

	for _, host := range hosts {
		t.Run(host, func(t *testing.T) {
			d := New(host, 80, false)
			assert.True(t, d.IsSafe(), "host %s should be safe without confirmation", host)
		})
	}
}

func TestIsSafe_PublicHostRequiresConfirmation(t *testing.T) {
	tests := []struct {
		name string
		host string
	}{
		{name: "Public IP", host: "8.8.8.8"},
		{name: "Public hostname", host: "example.com"},
		{name: "Near-private range", host: "172.32.0.1"},
		{name: "Private-looking suffix", host: "110.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.host, 80, false)
			assert.False(t, d.IsSafe())

			d.Confirm()
			assert.True(t, d.IsSafe())
		})
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		port     int
		useHTTPS bool
		want     string
	}{
		{name: "Default http port omitted", host: "localhost", port: 80, want: "http://localhost"},
		{name: "Custom port included", host: "localhost", port: 8080, want: "http://localhost:8080"},
		{name: "Default https port omitted", host: "localhost", port: 443, useHTTPS: true, want: "https://localhost"},
		{name: "Https on custom port", host: "10.0.0.2", port: 8443, useHTTPS: true, want: "https://10.0.0.2:8443"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.host, tt.port, tt.useHTTPS)
			assert.Equal(t, tt.want, d.BaseURL())
		})
	}
}

func TestResolvePath(t *testing.T) {
	d := New("localhost", 80, false)

	assert.Equal(t, "http://localhost/vulnerabilities/xss_r/", d.ResolvePath("vulnerabilities/xss_r/"))
	assert.Equal(t, "http://localhost/vulnerabilities/xss_r/", d.ResolvePath("/vulnerabilities/xss_r/"))
	assert.Equal(t, "http://localhost/login.php", d.ResolvePath("login.php"))
}
