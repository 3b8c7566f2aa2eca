package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("UTILIZATION_AUDIT_ROOMS_FILE", "rooms.csv")
	t.Setenv("UTILIZATION_AUDIT_SECTIONS_FILE", "sections.csv")
	t.Setenv("UTILIZATION_AUDIT_TOP", "5")
	t.Setenv("UTILIZATION_AUDIT_HTTP_TIMEOUT", "5s")
	t.Setenv("UTILIZATION_AUDIT_PERIOD", " 2022/2023 ")
	t.Setenv("DATABASE_URL", "")

	cfg := Default()
	require.NoError(t, cfg.LoadFromEnv(EnvPrefix))
	require.Equal(t, "rooms.csv", cfg.RoomsFile)
	require.Equal(t, "sections.csv", cfg.SectionsFile)
	require.Equal(t, 5, cfg.TopN)
	require.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "2022/2023", cfg.Period)
	require.Equal(t, "file", cfg.Source())
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvDatabaseFallback(t *testing.T) {
	t.Setenv("UTILIZATION_AUDIT_DB_URL", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/campus")

	cfg := Default()
	require.NoError(t, cfg.LoadFromEnv(EnvPrefix))
	require.Equal(t, "postgres://localhost/campus", cfg.DBURL)
	require.Equal(t, "postgres", cfg.Source())

	t.Setenv("UTILIZATION_AUDIT_DB_URL", "postgres://localhost/other")
	require.NoError(t, cfg.LoadFromEnv(EnvPrefix))
	require.Equal(t, "postgres://localhost/other", cfg.DBURL)
}

func TestLoadFromEnvRejectsBadNumbers(t *testing.T) {
	t.Setenv("UTILIZATION_AUDIT_TOP", "ten")
	cfg := Default()
	require.Error(t, cfg.LoadFromEnv(EnvPrefix))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "sheet", cfg.Source())

	bad := cfg
	bad.TopN = 0
	require.Error(t, bad.Validate())

	bad = cfg
	bad.RoomsFile = "rooms.csv"
	require.Error(t, bad.Validate())

	bad = cfg
	bad.DBURL = "postgres://localhost/campus"
	bad.DBSchema = "drop table;"
	require.Error(t, bad.Validate())

	bad = cfg
	bad.RoomsURL = ""
	require.Error(t, bad.Validate())
}
