package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the launcher. All fields have working
// defaults so the tool runs with no config file at all.
type Config struct {
	Entrypoint   string        `yaml:"entrypoint"`
	OutputDir    string        `yaml:"output_dir"`
	DataPattern  string        `yaml:"data_pattern"`
	Generator    string        `yaml:"generator"`
	Python       string        `yaml:"python"`
	Pip          string        `yaml:"pip"`
	Streamlit    string        `yaml:"streamlit"`
	Packages     []string      `yaml:"packages"`
	DashboardURL string        `yaml:"dashboard_url"`
	HealthPath   string        `yaml:"health_path"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	JournalDB    string        `yaml:"journal_db"`
}

// DefaultFile is the config file looked up when no --config flag is given.
const DefaultFile = "dashstrap.yaml"

// Load reads the optional YAML config at path. An empty path or a missing
// default file yields the built-in defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = DefaultFile
		if _, err := os.Stat(path); os.IsNotExist(err) {
			cfg.applyDefaults()
			return &cfg, nil
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Entrypoint == "" {
		c.Entrypoint = "consolidated_telecom_dashboard_new.py"
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.DataPattern == "" {
		c.DataPattern = "*.csv"
	}
	if c.Generator == "" {
		c.Generator = "telecom_data_generator.py"
	}
	if c.Python == "" {
		c.Python = "python3"
	}
	if c.Pip == "" {
		c.Pip = "pip3"
	}
	if c.Streamlit == "" {
		c.Streamlit = "streamlit"
	}
	if len(c.Packages) == 0 {
		c.Packages = []string{"streamlit", "pandas", "matplotlib", "seaborn", "plotly"}
	}
	if c.DashboardURL == "" {
		c.DashboardURL = "http://localhost:8501"
	}
	if c.HealthPath == "" {
		c.HealthPath = "/_stcore/health"
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = 5 * time.Second
	}
	if c.JournalDB == "" {
		c.JournalDB = "dashstrap"
	}
}

func (c *Config) validate() error {
	if _, err := filepath.Match(c.DataPattern, "probe.csv"); err != nil {
		return fmt.Errorf("invalid data_pattern %q: %w", c.DataPattern, err)
	}
	if c.ProbeTimeout < 0 {
		return fmt.Errorf("probe_timeout must not be negative")
	}
	return nil
}
