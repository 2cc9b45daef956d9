package wizard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sqlload/sqlload/internal/config"
)

// GenerateConfig renders the sqlload.toml content for the given answers.
func GenerateConfig(answers Answers) string {
	var b strings.Builder

	b.WriteString("default_environment = \"local\"\n")
	b.WriteString(fmt.Sprintf("artifacts_dir = %q\n", answers.ArtifactsDir))
	b.WriteString("\n")
	b.WriteString("[environments.local]\n")
	b.WriteString(fmt.Sprintf("database_url = %q\n", answers.DatabaseURL))
	if answers.AdminURL != "" {
		b.WriteString(fmt.Sprintf("admin_url = %q\n", answers.AdminURL))
	}
	if answers.Owner != "" {
		b.WriteString(fmt.Sprintf("owner = %q\n", answers.Owner))
	}

	return b.String()
}

// WriteConfig writes sqlload.toml into dir and creates the artifacts
// directory if it does not exist yet. Returns the config file path.
func WriteConfig(dir string, answers Answers, force bool) (string, error) {
	path := filepath.Join(dir, config.ConfigFileName)

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if answers.ArtifactsDir != "" && !filepath.IsAbs(answers.ArtifactsDir) {
		artifactsPath := filepath.Join(dir, answers.ArtifactsDir)
		if err := os.MkdirAll(artifactsPath, 0o755); err != nil {
			return "", fmt.Errorf("failed to create artifacts directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(GenerateConfig(answers)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", config.ConfigFileName, err)
	}

	return path, nil
}
