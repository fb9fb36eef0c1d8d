package audd

import (
	"net/http"
	"strings"
	"time"
)

// Config holds client configuration.
type Config struct {
	APIToken   string       // Optional: AudD API token (anonymous requests are heavily rate limited)
	Return     []string     // Optional: extra metadata services (defaults to DefaultReturn)
	HTTPClient *http.Client // Optional: HTTP client (defaults to a client with a 60s timeout)
	BaseURL    string       // Optional: Base URL for API (defaults to AudD API, used for testing)
	Logger     Logger       // Optional: Logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client is the main entry point for AudD API operations.
type Client struct {
	apiToken   string
	returns    string
	httpClient *http.Client
	baseURL    string
	logger     Logger
}

const (
	// DefaultBaseURL is the default AudD API endpoint.
	DefaultBaseURL = "https://api.audd.io/"
)

// DefaultReturn lists the metadata services requested alongside a match.
var DefaultReturn = []string{"lyrics", "apple_music", "spotify", "deezer", "napster", "musicbrainz"}

// NewClient creates a new AudD API client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	returns := cfg.Return
	if len(returns) == 0 {
		returns = DefaultReturn
	}

	return &Client{
		apiToken:   cfg.APIToken,
		returns:    strings.Join(returns, ","),
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     cfg.Logger,
	}
}

// SetAPIToken sets the token used for subsequent requests.
func (c *Client) SetAPIToken(token string) {
	c.apiToken = token
}

// HasToken reports whether the client has an API token.
func (c *Client) HasToken() bool {
	return c.apiToken != ""
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
