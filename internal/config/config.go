package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is discovered by walking up from the working directory
const ConfigFileName = "sqlload.toml"

// EnvironmentConfig describes a single named environment from sqlload.toml.
type EnvironmentConfig struct {
	DatabaseURL  string `toml:"database_url"`
	AdminURL     string `toml:"admin_url"`
	Owner        string `toml:"owner"`
	ArtifactsDir string `toml:"artifacts_dir"`
}

type Config struct {
	DefaultEnvironment string                       `toml:"default_environment"`
	ArtifactsDir       string                       `toml:"artifacts_dir"`
	Environments       map[string]EnvironmentConfig `toml:"environments"`
	ConfigFilePath     string                       `toml:"-"`
}

// ConfigDir returns the directory containing the discovered config file,
// or "" when no file was found.
func (c *Config) ConfigDir() string {
	if c.ConfigFilePath == "" {
		return ""
	}
	return filepath.Dir(c.ConfigFilePath)
}

// LoadConfig walks up from the working directory looking for sqlload.toml,
// stopping at a project root marker. A missing file is not an error: it
// returns an empty config so flags and dotenv files can still drive a run.
func LoadConfig() (*Config, error) {
	startDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return loadConfigFrom(startDir)
}

func loadConfigFrom(startDir string) (*Config, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, err
			}

			var config Config
			if err := toml.Unmarshal(data, &config); err != nil {
				return nil, err
			}

			config.ConfigFilePath = configPath
			return &config, nil
		}

		// Check if we've reached a project boundary
		if isProjectRoot(dir) {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return &Config{}, nil
}

// isProjectRoot checks if the directory is a project root based on common markers
func isProjectRoot(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, "package.json")); err == nil {
		return true
	}
	return false
}
