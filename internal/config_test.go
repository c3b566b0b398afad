package internal

import (
	"testing"
	"time"

	"huddle/domain"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	var config Config

	err := env.Unmarshal(env.EnvSet{}, &config)

	req.NoError(err)
	req.NoError(config.Validate())
	req.Equal(8080, config.Port)
	req.Equal(StoreBadger, config.StoreBackend)
	req.Equal(15*time.Minute, config.InviteTTL)
	req.Equal(domain.DefaultLimits, config.Limits())
	req.Equal([]string{"*"}, config.AllowedOrigins())
}

func TestConfig_From_Environment(t *testing.T) {
	req := require.New(t)
	environ := env.EnvSet{
		"STORE_BACKEND":   "valkey",
		"INVITE_TTL":      "900s",
		"ALLOWED_ORIGIN":  "http://a.test, http://b.test",
		"MAX_NAME_LENGTH": "10",
	}
	var config Config

	err := env.Unmarshal(environ, &config)

	req.NoError(err)
	req.NoError(config.Validate())
	req.Equal(900*time.Second, config.InviteTTL)
	req.Equal(10, config.Limits().Name)
	req.Equal([]string{"http://a.test", "http://b.test"}, config.AllowedOrigins())
}

func TestConfig_Validate(t *testing.T) {
	req := require.New(t)

	req.Error(Config{StoreBackend: "postgres", CharReplacement: "*"}.Validate())
	req.Error(Config{StoreBackend: StoreBadger, CharReplacement: "**"}.Validate())
	req.NoError(Config{StoreBackend: StoreBadger, CharReplacement: "#"}.Validate())
}
