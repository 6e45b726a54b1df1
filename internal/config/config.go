// ABOUTME: Configuration loader for the learnctl client
// ABOUTME: Loads settings from environment variables (optionally via .env) with defaults

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/markalston/learnctl/internal/client"
	"github.com/markalston/learnctl/internal/storage"
)

type Config struct {
	// API
	APIURL         string
	RequestTimeout time.Duration // per attempt, default 15s
	AllProxy       string        // ssh+socks5://user@host:port?private-key=/path (optional)
	FanOut         int           // concurrent catalog fetches (default: 5)

	// Local state
	DataDir     string
	KeyDir      string        // master key for the credential tier, outside DataDir
	Ephemeral   bool          // keep state in memory only
	InitTimeout time.Duration // startup storage wait before routing anyway (default: 5s)

	// Catalog
	CatalogSize int // courses fetched per refresh (default: 10)
}

// Load reads configuration from the environment. A .env file in the working
// directory, or the files named in envFiles, pre-populates unset variables.
func Load(envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	cfg := &Config{
		APIURL:         ensureScheme(getEnv("LEARN_API_URL", client.DefaultBaseURL)),
		RequestTimeout: getEnvDuration("LEARN_REQUEST_TIMEOUT", client.DefaultTimeout),
		AllProxy:       os.Getenv("LEARN_ALL_PROXY"),
		FanOut:         getEnvInt("LEARN_FAN_OUT", client.DefaultFanOut),

		DataDir:     getEnv("LEARN_DATA_DIR", storage.DefaultDir()),
		KeyDir:      getEnv("LEARN_KEY_DIR", storage.DefaultKeyDir()),
		Ephemeral:   getEnvBool("LEARN_EPHEMERAL", false),
		InitTimeout: getEnvDuration("LEARN_INIT_TIMEOUT", 5*time.Second),

		CatalogSize: getEnvInt("LEARN_CATALOG_SIZE", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks bounds; called again after flags override fields
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("LEARN_API_URL must be an http(s) URL, got %q", c.APIURL)
	}
	if c.RequestTimeout < time.Second || c.RequestTimeout > 5*time.Minute {
		return fmt.Errorf("LEARN_REQUEST_TIMEOUT must be between 1s and 5m, got %s", c.RequestTimeout)
	}
	if c.InitTimeout <= 0 {
		return fmt.Errorf("LEARN_INIT_TIMEOUT must be positive, got %s", c.InitTimeout)
	}

	for _, b := range []struct {
		name     string
		value    int
		min, max int
	}{
		{"LEARN_CATALOG_SIZE", c.CatalogSize, 1, 50},
		{"LEARN_FAN_OUT", c.FanOut, 1, 32},
	} {
		if b.value < b.min || b.value > b.max {
			return fmt.Errorf("%s must be between %d and %d, got %d", b.name, b.min, b.max, b.value)
		}
	}

	if !c.Ephemeral && c.DataDir == "" {
		return fmt.Errorf("LEARN_DATA_DIR is required when no home directory is available")
	}
	return nil
}

func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("15s") or bare seconds ("15")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
