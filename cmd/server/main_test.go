package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/razecmarketing/schedbank/internal/config"
)

func TestLogConfig(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.Config
		wantLevel  string
		wantFormat string
		wantOutput string
	}{
		{
			name:       "development defaults",
			cfg:        config.Config{App: config.AppConfig{Env: "development"}},
			wantLevel:  "info",
			wantFormat: "console",
			wantOutput: "stdout",
		},
		{
			name:       "production defaults",
			cfg:        config.Config{App: config.AppConfig{Env: "production"}},
			wantLevel:  "info",
			wantFormat: "json",
			wantOutput: "stdout",
		},
		{
			name: "configured values win",
			cfg: config.Config{
				App: config.AppConfig{Env: "production"},
				Log: config.LogConfig{Level: "debug", Format: "console", Output: "stderr"},
			},
			wantLevel:  "debug",
			wantFormat: "console",
			wantOutput: "stderr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := logConfig(&tt.cfg)
			assert.Equal(t, tt.wantLevel, got.Level)
			assert.Equal(t, tt.wantFormat, got.Format)
			assert.Equal(t, tt.wantOutput, got.Output)
		})
	}
}

func TestOpenStore_Memory(t *testing.T) {
	store, closeStore, err := openStore(config.DatabaseConfig{Driver: config.DriverMemory}, zap.NewNop())
	require.NoError(t, err)
	defer closeStore()

	transfers, err := store.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, transfers)
}
