package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 80, cfg.Port)
	assert.Equal(t, "all", cfg.Mode)
	assert.True(t, cfg.Interactive)
	assert.Equal(t, "admin", cfg.Credentials.Username)
	assert.Equal(t, "password", cfg.Credentials.Password)
	assert.Equal(t, "logs", cfg.Output.LogDir)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
host: 192.168.1.50
port: 8080
mode: stored
security_level: low
interactive: false
credentials:
  username: tester
  password: secret
output:
  log_dir: /tmp/xsslab-logs
  verbose: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.50", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "stored", cfg.Mode)
	assert.Equal(t, "low", cfg.SecurityLevel)
	assert.False(t, cfg.Interactive)
	assert.Equal(t, "tester", cfg.Credentials.Username)
	assert.Equal(t, "secret", cfg.Credentials.Password)
	assert.Equal(t, "/tmp/xsslab-logs", cfg.Output.LogDir)
	assert.True(t, cfg.Output.Verbose)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "Defaults are valid", mutate: func(*Config) {}},
		{
			name:    "Unknown mode",
			mutate:  func(c *Config) { c.Mode = "blind" },
			wantErr: "invalid mode",
		},
		{
			name:    "Port zero",
			mutate:  func(c *Config) { c.Port = 0 },
			wantErr: "invalid port",
		},
		{
			name:    "Port out of range",
			mutate:  func(c *Config) { c.Port = 70000 },
			wantErr: "invalid port",
		},
		{
			name:    "Unknown security level",
			mutate:  func(c *Config) { c.SecurityLevel = "extreme" },
			wantErr: "invalid security level",
		},
		{
			name:   "Empty security level means leave as-is",
			mutate: func(c *Config) { c.SecurityLevel = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
