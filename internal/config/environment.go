package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const defaultEnvironmentName = "local"

// ResolvedEnvironment is a fully-resolved environment with concrete values.
type ResolvedEnvironment struct {
	Name         string
	DatabaseURL  string
	AdminURL     string
	Owner        string
	ArtifactsDir string
	DotenvPath   string
	FromConfig   bool
	FromDotenv   bool
}

// ResolveEnvironment resolves a named environment into concrete connection
// strings and paths. Precedence per field: .env.<name> values override
// sqlload.toml values, which override the config-wide defaults. The original
// course scripts hardcoded dev/test DSNs; named environments replace that.
func ResolveEnvironment(config *Config, name string) (*ResolvedEnvironment, error) {
	envName := strings.TrimSpace(name)
	if envName == "" {
		if config != nil && config.DefaultEnvironment != "" {
			envName = config.DefaultEnvironment
		} else {
			envName = defaultEnvironmentName
		}
	}

	var (
		envConfig EnvironmentConfig
		envExists bool
	)
	if config != nil && config.Environments != nil {
		if cfg, ok := config.Environments[envName]; ok {
			envConfig = cfg
			envExists = true
		}
	}

	resolved := &ResolvedEnvironment{
		Name:         envName,
		DatabaseURL:  envConfig.DatabaseURL,
		AdminURL:     envConfig.AdminURL,
		Owner:        envConfig.Owner,
		ArtifactsDir: envConfig.ArtifactsDir,
		FromConfig:   envExists,
	}

	if resolved.ArtifactsDir == "" && config != nil {
		resolved.ArtifactsDir = config.ArtifactsDir
	}

	baseDir := ""
	if config != nil {
		baseDir = config.ConfigDir()
	}
	if baseDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			baseDir = cwd
		}
	}

	dotenvFileName := ".env." + envName
	if baseDir != "" {
		resolved.DotenvPath = filepath.Join(baseDir, dotenvFileName)
	} else {
		resolved.DotenvPath = dotenvFileName
	}

	if info, err := os.Stat(resolved.DotenvPath); err == nil && !info.IsDir() {
		values, err := godotenv.Read(resolved.DotenvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", resolved.DotenvPath, err)
		}
		resolved.FromDotenv = true

		if value := values["DATABASE_URL"]; value != "" {
			resolved.DatabaseURL = value
		}
		if value := values["ADMIN_URL"]; value != "" {
			resolved.AdminURL = value
		}
		if value := values["SQLLOAD_OWNER"]; value != "" {
			resolved.Owner = value
		}
		if value := values["ARTIFACTS_DIR"]; value != "" {
			resolved.ArtifactsDir = value
		}
	} else if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to access %s: %w", resolved.DotenvPath, err)
	}

	// Relative artifact paths resolve against the config file location so
	// a run works from any subdirectory
	if resolved.ArtifactsDir != "" && !filepath.IsAbs(resolved.ArtifactsDir) && baseDir != "" {
		resolved.ArtifactsDir = filepath.Join(baseDir, resolved.ArtifactsDir)
	}

	if config != nil && len(config.Environments) > 0 && !envExists && !resolved.FromDotenv {
		return nil, fmt.Errorf("environment %q not defined in %s and %s not found",
			envName, ConfigFileName, resolved.DotenvPath)
	}

	return resolved, nil
}
