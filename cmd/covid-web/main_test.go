package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidpulse/internal/config"
)

func TestLoadConfigFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		port    int
		source  string
		reload  time.Duration
		wantErr bool
	}{
		{
			name:   "defaults",
			port:   8080,
			source: config.DefaultSourceURL,
		},
		{
			name:   "overrides",
			args:   []string{"--port", "9090", "--source", "data.csv", "--reload", "6h"},
			port:   9090,
			source: "data.csv",
			reload: 6 * time.Hour,
		},
		{
			name:    "invalid port",
			args:    []string{"--port", "70000"},
			wantErr: true,
		},
		{
			name:    "negative reload",
			args:    []string{"--reload", "-1s"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCommand()
			require.NoError(t, cmd.ParseFlags(tt.args))

			var opts webOptions
			opts.port, _ = cmd.Flags().GetInt("port")
			opts.source, _ = cmd.Flags().GetString("source")
			opts.reload, _ = cmd.Flags().GetDuration("reload")

			cfg, err := loadConfig(cmd, &opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.port, cfg.Server.Port)
			assert.Equal(t, tt.source, cfg.Report.Source)
			assert.Equal(t, tt.reload, cfg.Server.ReloadInterval)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7070\n  reload_interval: 1m\n"), 0o644))

	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path}))

	cfg, err := loadConfig(cmd, &webOptions{configFile: path})
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Server.ReloadInterval)
}
