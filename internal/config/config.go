package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OutputConfig holds configuration settings related to output and logging.
type OutputConfig struct {
	LogDir  string `yaml:"log_dir"` // Directory for log files and request captures.
	Verbose bool   `yaml:"verbose"` // Enable verbose (DEBUG) logging.
}

// Config is the main struct to hold all configuration data from the YAML file.
// Command-line flags override anything set here.
type Config struct {
	Host     string `yaml:"host"`  // Target hostname.
	Port     int    `yaml:"port"`  // Target port.
	UseHTTPS bool   `yaml:"https"` // Use HTTPS instead of HTTP.

	Mode          string `yaml:"mode"`           // Walkthrough selector: reflected, stored, dom, all.
	SecurityLevel string `yaml:"security_level"` // Optional DVWA security level to set before testing.
	Interactive   bool   `yaml:"interactive"`    // Pause for operator confirmation at key steps.
	ConfirmTarget bool   `yaml:"confirm_target"` // Explicit authorization for non-local targets.
	SkipBanner    bool   `yaml:"skip_banner"`    // Skip the safety banner and authorization prompt.

	// Credential settings for the DVWA login form.
	Credentials struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"credentials"`

	// Output configuration settings.
	Output OutputConfig `yaml:"output"`
}

// validModes are the recognized walkthrough selectors.
var validModes = map[string]bool{
	"reflected": true,
	"stored":    true,
	"dom":       true,
	"all":       true,
}

// Load reads the configuration from a YAML file and returns a Config struct.
// A missing file yields the defaults without error.
func Load(filePath string) (*Config, error) {
	config := defaults()

	yamlFile, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, err
	}

	return config, nil
}

func defaults() *Config {
	cfg := &Config{
		Host:        "localhost",
		Port:        80,
		Mode:        "all",
		Interactive: true,
		Output: OutputConfig{
			LogDir: "logs",
		},
	}
	cfg.Credentials.Username = "admin"
	cfg.Credentials.Password = "password"
	return cfg
}

// Validate checks the resolved configuration for values the core cannot act on.
func (c *Config) Validate() error {
	if !validModes[c.Mode] {
		return fmt.Errorf("invalid mode %q: must be one of reflected, stored, dom, all", c.Mode)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.SecurityLevel {
	case "", "low", "medium", "high", "impossible":
	default:
		return fmt.Errorf("invalid security level %q", c.SecurityLevel)
	}
	return nil
}
