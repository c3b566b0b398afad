package internal

import (
	"fmt"
	"strings"
	"time"

	"huddle/domain"

	"github.com/samber/lo"
)

const (
	StoreBadger = "badger"
	StoreValkey = "valkey"
)

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=8080"`
	GrpcPort             int           `env:"GRPC_PORT,default=9090"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	StoreBackend         string        `env:"STORE_BACKEND,default=badger"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH"`
	ValkeyAddr           string        `env:"VALKEY_ADDR,default=localhost:6379"`
	ValkeyPassword       string        `env:"VALKEY_PASSWORD"`
	InviteTTL            time.Duration `env:"INVITE_TTL,default=15m"`
	MaxNameLength        int           `env:"MAX_NAME_LENGTH,default=48"`
	MaxRoleLength        int           `env:"MAX_ROLE_LENGTH,default=32"`
	MaxContentLength     int           `env:"MAX_CONTENT_LENGTH,default=2000"`
	MaxTokenLength       int           `env:"MAX_TOKEN_LENGTH,default=128"`
	CommandBufferSize    int           `env:"COMMAND_BUFFER_SIZE,default=64"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=32"`
	CensoredWords        string        `env:"CENSORED_WORDS"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	AllowedOrigin        string        `env:"ALLOWED_ORIGIN,default=*"`
}

func (c Config) Validate() error {
	if c.StoreBackend != StoreBadger && c.StoreBackend != StoreValkey {
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreBadger, StoreValkey, c.StoreBackend)
	}
	if _, err := CharacterRune(c.CharReplacement); err != nil {
		return err
	}
	return nil
}

func (c Config) Limits() domain.Limits {
	return domain.Limits{
		Name:    c.MaxNameLength,
		Role:    c.MaxRoleLength,
		Content: c.MaxContentLength,
		Token:   c.MaxTokenLength,
	}
}

// AllowedOrigins splits ALLOWED_ORIGIN on commas.
func (c Config) AllowedOrigins() []string {
	origins := lo.FilterMap(strings.Split(c.AllowedOrigin, ","), func(o string, _ int) (string, bool) {
		o = strings.TrimSpace(o)
		return o, o != ""
	})
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
