package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port              int
	ConfigDir         string
	ShowDir           string
	TmpDir            string
	ShowURL           string
	DoCleanup         bool
	SonarrURL         string
	SonarrAPIKey      string
	ShowNameOverrides map[string]string
	AnthologyMarker   string
	AnthologyBaseURL  string
	NewReleasesURL    string
}

func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	doCleanup, err := strconv.ParseBool(getEnv("DO_CLEANUP", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid DO_CLEANUP: %w", err)
	}

	overrides, err := parseOverrides(getEnv("SHOW_NAME_OVERRIDES",
		"Very Important People=Very Important People (2023)"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHOW_NAME_OVERRIDES: %w", err)
	}

	return &Config{
		Port:              port,
		ConfigDir:         getEnv("CONFIG_DIR", "/config"),
		ShowDir:           getEnv("SHOW_DIR", "/tvshows"),
		TmpDir:            getEnv("TMP_DIR", "/tmp"),
		ShowURL:           os.Getenv("SHOW_URL"),
		DoCleanup:         doCleanup,
		SonarrURL:         os.Getenv("SONARR_URL"),
		SonarrAPIKey:      os.Getenv("SONARR_API_KEY"),
		ShowNameOverrides: overrides,
		AnthologyMarker:   getEnv("ANTHOLOGY_MARKER", "Dimension 20:"),
		AnthologyBaseURL:  getEnv("ANTHOLOGY_BASE_URL", "https://watch.dropout.tv/dimension-20"),
		NewReleasesURL:    getEnv("NEW_RELEASES_URL", "https://watch.dropout.tv/new-releases"),
	}, nil
}

// parseOverrides reads "Name=Override;Name2=Override2" pairs.
func parseOverrides(raw string) (map[string]string, error) {
	overrides := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, override, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("expected name=override, got %q", pair)
		}
		name = strings.TrimSpace(name)
		override = strings.TrimSpace(override)
		if name == "" || override == "" {
			return nil, fmt.Errorf("empty name or override in %q", pair)
		}
		overrides[name] = override
	}
	return overrides, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
