package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultThreshold is the similarity score a playlist track must reach
// against its best local match to count as present, on the 0-100 scale.
const DefaultThreshold = 80

// defaultScopes are the Spotify OAuth scopes the run needs: reading the
// source playlist (which may be private) and creating the missing-tracks
// playlist.
var defaultScopes = []string{
	"playlist-read-private",
	"playlist-modify-private",
	"playlist-modify-public",
}

// Config holds all configuration values
type Config struct {
	Spotify SpotifyConfig
	Library LibraryConfig
	Match   MatchConfig
}

// SpotifyConfig holds Spotify API configuration
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string // OAuth scopes requested during authorization
	PlaylistID   string   // Spotify playlist to reconcile against the local library
}

// LibraryConfig holds local music library configuration
type LibraryConfig struct {
	MusicDir string // root directory scanned for audio files
}

// MatchConfig holds similarity matching configuration
type MatchConfig struct {
	Threshold int // minimum similarity score (0-100) to treat a track as present locally
}

// Load loads configuration following the specified order:
// 1. Start with default values (redirect URI, scopes, threshold)
// 2. Load from OS environment variables (only if they exist)
// 3. Load from .env file (only if it exists and values exist)
func Load() (*Config, error) {
	config := &Config{}

	// Step 1: Initialize with default values
	config.initializeDefaults()

	// Step 2: Load from OS environment variables (only if they exist)
	config.loadFromOSEnv()

	// Step 3: Load from .env file (only if it exists and values exist)
	config.loadFromEnvFile()

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides
func LoadWithOverrides(overrides map[string]string) (*Config, error) {
	config := &Config{}

	// Step 1: Initialize with default values
	config.initializeDefaults()

	// Step 2: Load from OS environment variables (only if they exist)
	config.loadFromOSEnv()

	// Step 3: Load from .env file (only if it exists and values exist)
	config.loadFromEnvFile()

	// Step 4: Apply CLI flag overrides (only if they exist)
	config.applyOverrides(overrides)

	// Validate required configuration after all sources have been loaded
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// initializeDefaults sets up the initial configuration with default values
func (c *Config) initializeDefaults() {
	c.Spotify = SpotifyConfig{
		ClientID:     "",                               // Empty by default
		ClientSecret: "",                               // Empty by default
		RedirectURI:  "http://127.0.0.1:8888/callback", // Default value
		Scopes:       defaultScopes,
		PlaylistID:   "", // Empty by default
	}

	c.Library = LibraryConfig{
		MusicDir: "", // Empty by default
	}

	c.Match = MatchConfig{
		Threshold: DefaultThreshold,
	}
}

// loadFromOSEnv loads configuration from OS environment variables (only if they exist)
func (c *Config) loadFromOSEnv() {
	// Spotify configuration
	if value := os.Getenv("SPOTIFY_CLIENT_ID"); value != "" {
		c.Spotify.ClientID = value
	}
	if value := os.Getenv("SPOTIFY_CLIENT_SECRET"); value != "" {
		c.Spotify.ClientSecret = value
	}
	if value := os.Getenv("SPOTIFY_REDIRECT_URI"); value != "" {
		c.Spotify.RedirectURI = value
	}
	if value := os.Getenv("SPOTIFY_SCOPE"); value != "" {
		c.Spotify.Scopes = parseScopeList(value)
	}
	if value := os.Getenv("SPOTIFY_PLAYLIST_ID"); value != "" {
		c.Spotify.PlaylistID = strings.TrimSpace(value)
	}

	// Library configuration
	if value := os.Getenv("LOCAL_MUSIC_DIR"); value != "" {
		c.Library.MusicDir = value
	}

	// Matching configuration
	if value := os.Getenv("MATCH_THRESHOLD"); value != "" {
		if threshold, err := parseThreshold(value); err == nil {
			c.Match.Threshold = threshold
		}
	}
}

// loadFromEnvFile loads configuration from .env file (only if it exists and values exist)
func (c *Config) loadFromEnvFile() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// .env file doesn't exist, skip this step
		return
	}

	// Spotify configuration (only replace if values exist and are not empty)
	if value := os.Getenv("SPOTIFY_CLIENT_ID"); value != "" {
		c.Spotify.ClientID = value
	}
	if value := os.Getenv("SPOTIFY_CLIENT_SECRET"); value != "" {
		c.Spotify.ClientSecret = value
	}
	if value := os.Getenv("SPOTIFY_REDIRECT_URI"); value != "" {
		c.Spotify.RedirectURI = value
	}
	if value := os.Getenv("SPOTIFY_SCOPE"); value != "" {
		c.Spotify.Scopes = parseScopeList(value)
	}
	if value := os.Getenv("SPOTIFY_PLAYLIST_ID"); value != "" {
		c.Spotify.PlaylistID = strings.TrimSpace(value)
	}

	// Library configuration (only replace if values exist and are not empty)
	if value := os.Getenv("LOCAL_MUSIC_DIR"); value != "" {
		c.Library.MusicDir = value
	}

	// Matching configuration (only replace if values exist and are not empty)
	if value := os.Getenv("MATCH_THRESHOLD"); value != "" {
		if threshold, err := parseThreshold(value); err == nil {
			c.Match.Threshold = threshold
		}
	}
}

// parseScopeList parses a space- or comma-separated scope string into a slice
// of trimmed scope names
func parseScopeList(input string) []string {
	if input == "" {
		return nil
	}

	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' '
	})

	var scopes []string
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			scopes = append(scopes, trimmed)
		}
	}

	return scopes
}

// parseThreshold parses the similarity threshold from string
func parseThreshold(value string) (int, error) {
	threshold, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid threshold '%s': %w", value, err)
	}

	if threshold < 0 || threshold > 100 {
		return 0, fmt.Errorf("threshold %d outside the 0-100 score scale", threshold)
	}

	return threshold, nil
}

// validate checks that all required configuration values are present
func (c *Config) validate() error {
	var missingFields []string

	// Check Spotify configuration
	if c.Spotify.ClientID == "" {
		missingFields = append(missingFields, "SPOTIFY_CLIENT_ID")
	}
	if c.Spotify.ClientSecret == "" {
		missingFields = append(missingFields, "SPOTIFY_CLIENT_SECRET")
	}
	if c.Spotify.PlaylistID == "" {
		missingFields = append(missingFields, "SPOTIFY_PLAYLIST_ID")
	}

	// Check library configuration
	if c.Library.MusicDir == "" {
		missingFields = append(missingFields, "LOCAL_MUSIC_DIR")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required configuration values:\n%s\n\nSet these values via environment variables, .env file, or CLI flags", strings.Join(missingFields, "\n"))
	}

	return nil
}

// applyOverrides applies CLI flag overrides to the configuration (only if they exist)
func (c *Config) applyOverrides(overrides map[string]string) {
	for key, value := range overrides {
		// Only apply if the value is not empty
		if value == "" {
			continue
		}

		switch key {
		case "SPOTIFY_CLIENT_ID":
			c.Spotify.ClientID = value
		case "SPOTIFY_CLIENT_SECRET":
			c.Spotify.ClientSecret = value
		case "SPOTIFY_REDIRECT_URI":
			c.Spotify.RedirectURI = value
		case "SPOTIFY_SCOPE":
			c.Spotify.Scopes = parseScopeList(value)
		case "SPOTIFY_PLAYLIST_ID":
			c.Spotify.PlaylistID = strings.TrimSpace(value)
		case "LOCAL_MUSIC_DIR":
			c.Library.MusicDir = value
		case "MATCH_THRESHOLD":
			if threshold, err := parseThreshold(value); err == nil {
				c.Match.Threshold = threshold
			}
		}
	}
}
