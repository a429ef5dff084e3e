package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Partner     PartnerConfig     `toml:"partner"`
	Drive       DriveConfig       `toml:"drive"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Web API OAuth credentials and the last issued token.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token"`
	TokenType    string    `toml:"token_type"`
	Expiry       time.Time `toml:"expiry,omitempty"`
}

// Token returns the stored token, or nil when no login has happened yet.
func (s SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" && s.RefreshToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.Expiry,
	}
}

// Update stores tok, keeping the previous refresh token when tok omits one.
func (s *SpotifyConfig) Update(tok *oauth2.Token) {
	if tok == nil {
		return
	}
	s.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		s.RefreshToken = tok.RefreshToken
	}
	s.TokenType = tok.TokenType
	s.Expiry = tok.Expiry
}

// PartnerConfig contains partner API transport settings.
type PartnerConfig struct {
	BaseURL        string `toml:"base_url"`
	CookieFile     string `toml:"cookie_file"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
	PageLimit      int    `toml:"page_limit"`
	MaxPages       int    `toml:"max_pages"`
}

// Timeout returns the request timeout as a [time.Duration].
func (p PartnerConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// DriveConfig contains the playlist reorder settings.
type DriveConfig struct {
	SourcePlaylistID string   `toml:"source_playlist_id"`
	TargetPlaylistID string   `toml:"target_playlist_id"`
	Shows            []string `toml:"shows"`
	SkipLeading      int      `toml:"skip_leading"`
	LookbackDays     int      `toml:"lookback_days"`
	EpisodesPerShow  int      `toml:"episodes_per_show"`
	IncludePlayed    bool     `toml:"include_played"`
	Spacing          int      `toml:"spacing"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the OAuth callback listener settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values absent from the file keep their defaults and environment variables override both.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(config)
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// EnvConfig returns the defaults with environment overrides applied, for running without a config file.
func EnvConfig() *Config {
	config := DefaultConfig()
	applyEnvOverrides(config)
	return config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports settings that would make requests or reordering misbehave.
func (c *Config) Validate() error {
	switch {
	case c.Partner.BaseURL == "":
		return fmt.Errorf("%w: partner.base_url is empty", ErrInvalidConfig)
	case c.Partner.PageLimit <= 0:
		return fmt.Errorf("%w: partner.page_limit must be positive", ErrInvalidConfig)
	case c.Partner.MaxPages <= 0:
		return fmt.Errorf("%w: partner.max_pages must be positive", ErrInvalidConfig)
	case c.Partner.MaxRetries < 0:
		return fmt.Errorf("%w: partner.max_retries cannot be negative", ErrInvalidConfig)
	case c.Drive.Spacing < 0:
		return fmt.Errorf("%w: drive.spacing cannot be negative", ErrInvalidConfig)
	case c.Drive.SkipLeading < 0:
		return fmt.Errorf("%w: drive.skip_leading cannot be negative", ErrInvalidConfig)
	case c.Drive.LookbackDays < 0:
		return fmt.Errorf("%w: drive.lookback_days cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Spotify
	if v := os.Getenv("SPOTIPY_CLIENT_ID"); v != "" {
		cfg.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIPY_CLIENT_SECRET"); v != "" {
		cfg.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIPY_REDIRECT_URI"); v != "" {
		cfg.Credentials.Spotify.RedirectURI = v
	}

	// Partner
	if v := os.Getenv("DAILYDRIVE_COOKIE_FILE"); v != "" {
		cfg.Partner.CookieFile = v
	}

	// Drive
	if v := os.Getenv("SPOTIFY_DAILY_DRIVE_ID"); v != "" {
		cfg.Drive.SourcePlaylistID = v
	}
	if v := os.Getenv("MY_DAILY_DRIVE_ID"); v != "" {
		cfg.Drive.TargetPlaylistID = v
	}
	for _, key := range []string{"THE_ESSENTIAL_PODCAST_ID", "STORIES_PODCAST_ID"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" && !slices.Contains(cfg.Drive.Shows, v) {
			cfg.Drive.Shows = append(cfg.Drive.Shows, v)
		}
	}

	// Log
	if v := os.Getenv("DAILYDRIVE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
