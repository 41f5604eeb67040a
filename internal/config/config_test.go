package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongSecret = "0123456789abcdef0123456789abcdef"

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})

	require.NoError(t, err)
	assert.Empty(t, cfg.Overridden())
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.ProfileCacheEnabled)
	assert.Equal(t, 5*time.Minute, cfg.ProfileCacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Zero(t, cfg.SlowQueryThreshold)
	assert.Equal(t, []string{"127.0.0.1/32", "::1/128"}, cfg.PprofAllowedCIDRs)
}

func TestLoad_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("ACCOUNTS_HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"ENVIRONMENT":             "production",
		"JWT_SECRET":              strongSecret,
		"DATABASE_URL":            "postgres://u:p@db:5432/accounts",
		"DB_MAX_CONNS":            "40",
		"DB_SLOW_QUERY_THRESHOLD": "250ms",
		"PROFILE_CACHE_TTL":       "90s",
		"REDIS_URL":               "redis://cache:6379/2",
		"REDIS_TIMEOUT":           "200ms",
		"CORS_ALLOWED_ORIGINS":    "https://shop.example.com,https://admin.example.com",
		"OTEL_ENABLED":            "true",
		"OTEL_SAMPLE_RATE":        "0.25",
	})

	require.NoError(t, err)
	assert.Contains(t, cfg.Overridden(), "JWT_SECRET")
	assert.NotContains(t, cfg.Overridden(), "ACCOUNTS_HTTP_PORT")
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 250*time.Millisecond, cfg.SlowQueryThreshold)

	pg := cfg.Postgres()
	assert.Equal(t, "postgres://u:p@db:5432/accounts", pg.URL)
	assert.Equal(t, int32(40), pg.MaxConns)
	assert.Equal(t, int32(2), pg.MinConns)
	assert.Equal(t, 5*time.Second, pg.StatementTimeout)
	assert.Equal(t, ServiceName, pg.ApplicationName)

	tc := cfg.Tracing()
	assert.Equal(t, ServiceName, tc.ServiceName)
	assert.True(t, tc.Enabled)
	assert.Equal(t, 0.25, tc.SampleRate)
	assert.Equal(t, "production", tc.Environment)

	rc := cfg.Redis()
	assert.Equal(t, "redis://cache:6379/2", rc.URL)
	assert.Equal(t, ServiceName, rc.ClientName)
	assert.Equal(t, 10, rc.PoolSize)
	assert.Equal(t, 200*time.Millisecond, rc.Timeout)

	cc := cfg.CORS()
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cc.AllowedOrigins)
	assert.Equal(t, "production", cc.Environment)
	assert.Equal(t, 90*time.Second, cfg.ProfileCacheTTL)
}

func TestLoadFrom_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "production default secret",
			env:     map[string]string{"ENVIRONMENT": "production"},
			wantErr: "JWT_SECRET must be explicitly set",
		},
		{
			name:    "staging short secret",
			env:     map[string]string{"ENVIRONMENT": "staging", "JWT_SECRET": "too-short"},
			wantErr: "at least 32 characters",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"ACCOUNTS_HTTP_PORT": "70000"},
			wantErr: "invalid HTTP port",
		},
		{
			name:    "zero cache ttl",
			env:     map[string]string{"PROFILE_CACHE_TTL": "0s"},
			wantErr: "PROFILE_CACHE_TTL must be positive",
		},
		{
			name:    "min above max conns",
			env:     map[string]string{"DB_MIN_CONNS": "30", "DB_MAX_CONNS": "10"},
			wantErr: "exceeds DB_MAX_CONNS",
		},
		{
			name:    "sample rate above one",
			env:     map[string]string{"OTEL_SAMPLE_RATE": "1.5"},
			wantErr: "OTEL_SAMPLE_RATE",
		},
		{
			name:    "unparseable duration",
			env:     map[string]string{"JWT_ACCESS_TOKEN_EXPIRY": "soon"},
			wantErr: "load accounts config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.env)
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFrom_ZeroCacheTTLAllowedWhenDisabled(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PROFILE_CACHE_ENABLED": "false",
		"PROFILE_CACHE_TTL":     "0s",
	})

	require.NoError(t, err)
	assert.False(t, cfg.ProfileCacheEnabled)
}
