package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/chatterwise/chatcheck/internal/chatbot"
	"github.com/chatterwise/chatcheck/internal/store"
)

// Config carries the environment-driven settings shared by the commands.
type Config struct {
	EndpointURL  string
	APIKey       string
	ResponsePath string
	Timeout      time.Duration

	SupabaseURL string
	SupabaseKey string
	PostgresDSN string

	HistoryPath string
	CacheTTL    time.Duration
}

// LoadConfig reads settings from CHATCHECK_* environment variables.
func LoadConfig() Config {
	return Config{
		EndpointURL:  os.Getenv("CHATCHECK_ENDPOINT_URL"),
		APIKey:       os.Getenv("CHATCHECK_API_KEY"),
		ResponsePath: getEnvOrDefault("CHATCHECK_RESPONSE_PATH", chatbot.DefaultResponsePath),
		Timeout:      getEnvDurationOrDefault("CHATCHECK_TIMEOUT", chatbot.DefaultTimeout),
		SupabaseURL:  os.Getenv("CHATCHECK_SUPABASE_URL"),
		SupabaseKey:  os.Getenv("CHATCHECK_SUPABASE_KEY"),
		PostgresDSN:  os.Getenv("CHATCHECK_POSTGRES_DSN"),
		HistoryPath:  os.Getenv("CHATCHECK_HISTORY"),
		CacheTTL:     getEnvDurationOrDefault("CHATCHECK_CACHE_TTL", time.Minute),
	}
}

// NewChatClient builds the chat endpoint client from config.
func (c Config) NewChatClient() (*chatbot.Client, error) {
	if c.EndpointURL == "" {
		return nil, fmt.Errorf("CHATCHECK_ENDPOINT_URL is not set")
	}
	return chatbot.NewClient(chatbot.Config{
		BaseURL:      c.EndpointURL,
		APIKey:       c.APIKey,
		Timeout:      c.Timeout,
		ResponsePath: c.ResponsePath,
	})
}

// NewRemoteStore builds the configured scenario store, Supabase taking
// precedence over direct Postgres. Loads go through a short TTL cache.
func (c Config) NewRemoteStore(ctx context.Context) (store.Store, func(), error) {
	switch {
	case c.SupabaseURL != "":
		s, err := store.NewSupabaseStore(store.SupabaseConfig{URL: c.SupabaseURL, Key: c.SupabaseKey})
		if err != nil {
			return nil, nil, err
		}
		return store.NewCachedStore(s, c.CacheTTL, nil), func() {}, nil
	case c.PostgresDSN != "":
		s, err := store.NewPostgresStore(ctx, c.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return store.NewCachedStore(s, c.CacheTTL, nil), s.Close, nil
	default:
		return nil, nil, fmt.Errorf("no scenario store configured: set CHATCHECK_SUPABASE_URL or CHATCHECK_POSTGRES_DSN")
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDurationOrDefault(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Bare numbers are treated as seconds.
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
