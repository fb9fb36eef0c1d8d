package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jfmyers9/earshot/pkg/audd"
)

// DefaultOutputFormat renders a track as "Artist - Title"
const DefaultOutputFormat = "{{.Artist}} - {{.Title}}"

// Config holds application configuration
type Config struct {
	// Output format template for track lines
	// Default: "{{.Artist}} - {{.Title}}"
	OutputFormat string

	AudD      AudDConfig
	Artwork   ArtworkConfig
	DeepLink  DeepLinkConfig
	Queue     QueueConfig
	Recording RecordingConfig
}

// AudDConfig holds recognition service configuration
type AudDConfig struct {
	APIToken string
	BaseURL  string
	Return   []string
}

// ArtworkConfig holds cover lookup configuration
type ArtworkConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// DeepLinkConfig controls the URIs attached to notifications
type DeepLinkConfig struct {
	Scheme    string
	Component string
}

// QueueConfig controls how the daemon drains the recognition queue
type QueueConfig struct {
	ProcessInterval time.Duration
	RateLimit       time.Duration // Minimum spacing between submissions
	MaxAge          time.Duration // Finished entries older than this are removed
}

// RecordingConfig controls local recording checks
type RecordingConfig struct {
	MinDuration time.Duration
}

// Load reads configuration from .env, the config file and environment
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	// EARSHOT_AUDD_API_TOKEN etc.
	v.SetEnvPrefix("EARSHOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_format", DefaultOutputFormat)
	v.SetDefault("audd.base_url", audd.DefaultBaseURL)
	v.SetDefault("audd.return", audd.DefaultReturn)
	v.SetDefault("artwork.endpoint", "https://api.deezer.com")
	v.SetDefault("artwork.timeout", "5s")
	v.SetDefault("deeplink.scheme", "app")
	v.SetDefault("deeplink.component", "main")
	v.SetDefault("queue.process_interval", "30s")
	v.SetDefault("queue.rate_limit", "2s")
	v.SetDefault("queue.max_age", "168h")
	v.SetDefault("recording.min_duration", "3s")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		OutputFormat: v.GetString("output_format"),
		AudD: AudDConfig{
			APIToken: v.GetString("audd.api_token"),
			BaseURL:  v.GetString("audd.base_url"),
			Return:   v.GetStringSlice("audd.return"),
		},
		Artwork: ArtworkConfig{
			Endpoint: v.GetString("artwork.endpoint"),
			Timeout:  v.GetDuration("artwork.timeout"),
		},
		DeepLink: DeepLinkConfig{
			Scheme:    v.GetString("deeplink.scheme"),
			Component: v.GetString("deeplink.component"),
		},
		Queue: QueueConfig{
			ProcessInterval: v.GetDuration("queue.process_interval"),
			RateLimit:       v.GetDuration("queue.rate_limit"),
			MaxAge:          v.GetDuration("queue.max_age"),
		},
		Recording: RecordingConfig{
			MinDuration: v.GetDuration("recording.min_duration"),
		},
	}
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	if dir := os.Getenv("EARSHOT_CONFIG_DIR"); dir != "" {
		_ = os.MkdirAll(dir, 0755)
		return dir
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "earshot")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// Save writes configuration to file
func (c *Config) Save() error {
	v := viper.New()

	configFile := filepath.Join(getConfigDir(), "config.yaml")

	v.Set("output_format", c.OutputFormat)
	v.Set("audd.api_token", c.AudD.APIToken)
	v.Set("audd.base_url", c.AudD.BaseURL)
	v.Set("audd.return", c.AudD.Return)
	v.Set("artwork.endpoint", c.Artwork.Endpoint)
	v.Set("artwork.timeout", c.Artwork.Timeout.String())
	v.Set("deeplink.scheme", c.DeepLink.Scheme)
	v.Set("deeplink.component", c.DeepLink.Component)
	v.Set("queue.process_interval", c.Queue.ProcessInterval.String())
	v.Set("queue.rate_limit", c.Queue.RateLimit.String())
	v.Set("queue.max_age", c.Queue.MaxAge.String())
	v.Set("recording.min_duration", c.Recording.MinDuration.String())

	return v.WriteConfigAs(configFile)
}
