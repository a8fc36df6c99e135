package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAreComplete(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "PlanForge", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Database.Seed)
	assert.Equal(t, "planforge.db", cfg.GetDSN())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("PLANFORGE_SERVER_PORT", "9999")
	t.Setenv("PLANFORGE_DATABASE_DRIVER", "postgres")
	t.Setenv("PLANFORGE_DATABASE_DATABASE", "planforge")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())
	cfg.Server.Port = 8080

	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())
	cfg.Database.Driver = "sqlite"

	cfg.App.Environment = "production"
	assert.Error(t, cfg.Validate(), "default jwt secret must not pass in production")
	cfg.Auth.JWTSecret = "a-real-secret"
	assert.NoError(t, cfg.Validate())
}
