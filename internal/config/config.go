// Package config loads sk settings from the environment and .env files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sidekick-cli/sidekick/internal/debug"
)

// Keys of the settings sk reads.
const (
	KeyAtlassianURL      = "atlassian_url"
	KeyAtlassianEmail    = "atlassian_email"
	KeyAtlassianAPIToken = "atlassian_api_token"

	// Legacy names, read when the ATLASSIAN_* ones are unset.
	KeyJiraURL      = "jira_url"
	KeyJiraEmail    = "jira_email"
	KeyJiraAPIToken = "jira_api_token"

	KeyJiraTimeout       = "jira_timeout"
	KeyJiraPageSize      = "jira_page_size"
	KeyHierarchyMaxDepth = "hierarchy_max_depth"
)

// EnvFileName is the dotenv file sk looks for.
const EnvFileName = ".env"

var v *viper.Viper

// Initialize sets up the viper configuration singleton
// Should be called once at application startup
func Initialize() error {
	v = viper.New()
	v.SetConfigType("env")

	// Precedence: .env in CWD or a parent > ~/.config/sk/.env
	configFileSet := false

	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; ; dir = filepath.Dir(dir) {
			path := filepath.Join(dir, EnvFileName)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				v.SetConfigFile(path)
				configFileSet = true
				break
			}
			if dir == filepath.Dir(dir) {
				break
			}
		}
	}

	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			path := filepath.Join(configDir, "sk", EnvFileName)
			if _, err := os.Stat(path); err == nil {
				v.SetConfigFile(path)
				configFileSet = true
			}
		}
	}

	// Environment variables take precedence over the .env file.
	// Keys map to upper-case names: atlassian_url -> ATLASSIAN_URL.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyJiraTimeout, "30s")
	v.SetDefault(KeyJiraPageSize, 100)
	v.SetDefault(KeyHierarchyMaxDepth, 10)

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading %s: %w", v.ConfigFileUsed(), err)
		}
		debug.Logf("Debug: loaded config from %s\n", v.ConfigFileUsed())
	} else {
		debug.Logf("Debug: no .env found; using environment variables\n")
	}

	return nil
}

// ResetForTesting clears the config state, allowing Initialize() to be called again.
// WARNING: Not thread-safe. Only call from single-threaded test contexts.
func ResetForTesting() {
	v = nil
}

// ConfigFileUsed returns the .env file that was loaded, or "".
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetInt retrieves an integer configuration value
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration retrieves a duration configuration value
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set sets a configuration value
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// Atlassian holds the credentials of an Atlassian Cloud site.
type Atlassian struct {
	URL      string
	Email    string
	APIToken string
}

// AtlassianConfig returns the Atlassian credentials, reading each value from
// its ATLASSIAN_* key and falling back to the legacy JIRA_* key.
func AtlassianConfig() (Atlassian, error) {
	cfg := Atlassian{
		URL:      firstSet(KeyAtlassianURL, KeyJiraURL),
		Email:    firstSet(KeyAtlassianEmail, KeyJiraEmail),
		APIToken: firstSet(KeyAtlassianAPIToken, KeyJiraAPIToken),
	}

	var missing []string
	if cfg.URL == "" {
		missing = append(missing, "ATLASSIAN_URL")
	}
	if cfg.Email == "" {
		missing = append(missing, "ATLASSIAN_EMAIL")
	}
	if cfg.APIToken == "" {
		missing = append(missing, "ATLASSIAN_API_TOKEN")
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("missing Atlassian configuration: set %s in the environment or a %s file",
			strings.Join(missing, ", "), EnvFileName)
	}

	cfg.URL = strings.TrimSuffix(cfg.URL, "/")
	return cfg, nil
}

func firstSet(keys ...string) string {
	for _, key := range keys {
		if s := strings.TrimSpace(GetString(key)); s != "" {
			return s
		}
	}
	return ""
}
