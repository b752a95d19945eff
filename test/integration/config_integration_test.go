//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebook/internal/adapters/clients"
	"github.com/jsamuelsen/quotebook/internal/adapters/storage"
	"github.com/jsamuelsen/quotebook/internal/platform/config"
)

// fromRepoRoot runs the test from the module root so Load finds configs/.
func fromRepoRoot(t *testing.T) {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(filepath.Join(wd, "..", "..")))

	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestShippedProfiles(t *testing.T) {
	tests := []struct {
		profile     string
		environment string
		driver      string
		source      string
		syncEnabled bool
	}{
		{profile: "", environment: "local", driver: "sqlite", source: "http", syncEnabled: true},
		{profile: "local", environment: "local", driver: "sqlite", source: "static", syncEnabled: true},
		{profile: "test", environment: "test", driver: "memory", source: "static", syncEnabled: false},
	}

	for _, tt := range tests {
		t.Run("profile "+tt.profile, func(t *testing.T) {
			fromRepoRoot(t)

			cfg, err := config.Load(tt.profile)
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())

			assert.Equal(t, "quotebook", cfg.App.Name)
			assert.Equal(t, tt.environment, cfg.App.Environment)
			assert.Equal(t, tt.driver, cfg.Storage.Driver)
			assert.Equal(t, tt.source, cfg.Sync.Source)
			assert.Equal(t, tt.syncEnabled, cfg.Sync.Enabled)
			assert.Equal(t, 60*time.Second, cfg.Sync.Interval)
		})
	}
}

func TestShippedProfiles_OpenStorage(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		env     map[string]string
		want    string
	}{
		{name: "test profile keeps quotes in memory", profile: "test", want: "memory"},
		{
			name:    "base profile with a sqlite path override",
			profile: "",
			env:     map[string]string{"APP_STORAGE_SQLITE_PATH": filepath.Join(t.TempDir(), "quotebook.db")},
			want:    "sqlite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fromRepoRoot(t)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load(tt.profile)
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())

			ctx := context.Background()

			kv, err := storage.Open(ctx, storage.Config{
				Driver:      cfg.Storage.Driver,
				Table:       cfg.Storage.Table,
				SQLitePath:  cfg.Storage.SQLitePath,
				PostgresDSN: cfg.Storage.PostgresDSN,
			})
			require.NoError(t, err)
			t.Cleanup(func() { _ = kv.Close() })

			assert.Equal(t, tt.want, kv.Name())

			require.NoError(t, kv.Set(ctx, cfg.Storage.Keys.Filter, "Wisdom"))

			got, ok, err := kv.Get(ctx, cfg.Storage.Keys.Filter)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "Wisdom", got)
		})
	}
}

func TestShippedProfiles_BuildClient(t *testing.T) {
	fromRepoRoot(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	client, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Quote.BaseURL,
		ServiceName: cfg.Services.Quote.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
	})
	require.NoError(t, err)

	assert.Equal(t, clients.StateClosed, client.CircuitState())
}

func TestStorageOpen_UnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), storage.Config{Driver: "bolt"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bolt"`)
}
