package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4567, cfg.Server.Port)
	assert.Equal(t, BackendCSV, cfg.Storage.Backend)
	assert.Equal(t, "SBSBS.csv", cfg.Storage.CSVPath)
	assert.Equal(t, "/report/data.json", cfg.Report.DataURL)
	assert.Equal(t, 24*time.Hour, cfg.Redis.ReplayTTL)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Drive.Enabled)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SBSBS_STORAGE__BACKEND", "sqlite")
	t.Setenv("SBSBS_DATABASE__SQLITE_PATH", "/tmp/detections.db")
	t.Setenv("SBSBS_SERVER__PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/detections.db", cfg.Database.SQLitePath)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]any
		wantErr string
	}{
		{
			name: "csv default is valid",
		},
		{
			name:    "unknown backend",
			set:     map[string]any{"storage.backend": "mongo"},
			wantErr: "unknown storage backend",
		},
		{
			name:    "postgres without host",
			set:     map[string]any{"storage.backend": BackendPostgres},
			wantErr: "postgres host is required",
		},
		{
			name: "postgres with host",
			set: map[string]any{
				"storage.backend":        BackendPostgres,
				"database.postgres.host": "db.local",
			},
		},
		{
			name:    "negative upload interval",
			set:     map[string]any{"drive.upload_interval": "-1m"},
			wantErr: "upload_interval",
		},
		{
			name:    "zero replay ttl",
			set:     map[string]any{"redis.replay_ttl": "0s"},
			wantErr: "replay_ttl",
		},
		{
			name:    "negative replay ttl",
			set:     map[string]any{"redis.replay_ttl": "-1h"},
			wantErr: "replay_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			setDefaults(v)
			for k, val := range tt.set {
				v.Set(k, val)
			}

			cfg, err := decode(v)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, cfg)
		})
	}
}
