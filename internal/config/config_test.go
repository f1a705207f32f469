package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/userdb")
	t.Setenv("MONGODB_DATABASE", "")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("SERVER_STRICT_ERRORS", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "userdb", cfg.MongoDB.Database, "database comes from the URI path")
	require.Equal(t, "users", cfg.MongoDB.Collection)
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	require.Equal(t, "localhost", cfg.Redis.Host)
	require.Equal(t, "6379", cfg.Redis.Port)
	require.True(t, cfg.Server.StrictErrors)
	require.Equal(t, 2.5, cfg.RateLimit.RPS)
	require.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://127.0.0.1:27017")
	t.Setenv("MONGODB_DATABASE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, DefaultDatabase, cfg.MongoDB.Database)
	require.False(t, cfg.Server.StrictErrors)
	require.Equal(t, "users-snapshots", cfg.Storage.Bucket)
}

func TestLoadConfigExplicitDatabaseWins(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/fromuri")
	t.Setenv("MONGODB_DATABASE", "explicit")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "explicit", cfg.MongoDB.Database)
}

func TestDatabaseFromURI(t *testing.T) {
	db, err := DatabaseFromURI("mongodb://127.0.0.1:27017/db1?retryWrites=true")
	require.NoError(t, err)
	require.Equal(t, "db1", db)

	_, err = DatabaseFromURI("not a uri")
	require.Error(t, err)
}
