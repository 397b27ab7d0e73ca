package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"SourceURL", cfg.SourceURL, "https://www.maybank2u.com.my/maybank2u/malaysia/en/personal/rates/gold_and_silver.page"},
		{"ExpectedHostSuffix", cfg.ExpectedHostSuffix, "maybank2u.com.my"},
		{"ExpectedPathFragment", cfg.ExpectedPathFragment, "gold_and_silver"},
		{"PollInterval", cfg.PollInterval, 30 * time.Minute},
		{"PollSchedule", cfg.PollSchedule, ""},
		{"RequestTimeout", cfg.RequestTimeout, 60 * time.Second},
		{"SearchWindow", cfg.SearchWindow, 300},
		{"ListenAddr", cfg.ListenAddr, ":8000"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFormat", cfg.LogFormat, "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("METALRATES_POLL_INTERVAL", "15m")
	t.Setenv("METALRATES_REQUEST_TIMEOUT", "20s")
	t.Setenv("METALRATES_SEARCH_WINDOW", "120")
	t.Setenv("METALRATES_LOG_LEVEL", "DEBUG")
	t.Setenv("METALRATES_LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.PollInterval)
	assert.Equal(t, 20*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 120, cfg.SearchWindow)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_ReportsEveryInvalidKey(t *testing.T) {
	t.Setenv("METALRATES_POLL_INTERVAL", "10ms")
	t.Setenv("METALRATES_SEARCH_WINDOW", "0")
	t.Setenv("METALRATES_LOG_FORMAT", "xml")
	t.Setenv("METALRATES_SOURCE_URL", "not a url")

	_, err := Load()
	require.Error(t, err)

	for _, key := range []string{"poll_interval", "search_window", "log_format", "source_url"} {
		assert.Contains(t, err.Error(), key)
	}
	assert.NotContains(t, err.Error(), "log_level")
}

func TestLoad_SearchWindowUpperBound(t *testing.T) {
	t.Setenv("METALRATES_SEARCH_WINDOW", "1001")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search_window")
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "poll_schedule: \"*/15 * * * *\"\nsearch_window: 250\nlisten_addr: \":9000\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("METALRATES_LISTEN_ADDR", ":9100")

	v := NewViper()
	v.SetConfigFile(path)
	require.NoError(t, ReadFile(v))
	cfg, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.SearchWindow)
	assert.Equal(t, ":9100", cfg.ListenAddr, "environment beats the file")

	sched, err := cfg.Schedule()
	require.NoError(t, err)
	from := time.Date(2025, 10, 1, 10, 7, 0, 0, time.Local)
	assert.True(t, sched.Next(from).Equal(time.Date(2025, 10, 1, 10, 15, 0, 0, time.Local)))
}

func TestReadFile_MissingExplicitFile(t *testing.T) {
	v := NewViper()
	v.SetConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, ReadFile(v))
}

func TestLoad_InvalidSchedule(t *testing.T) {
	t.Setenv("METALRATES_POLL_SCHEDULE", "every now and then")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll_schedule")
}

func TestLoad_ScheduleThatNeverFires(t *testing.T) {
	// 30 February parses but has no next activation.
	t.Setenv("METALRATES_POLL_SCHEDULE", "0 0 30 2 *")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll_schedule never fires")
}

func TestSchedule_Interval(t *testing.T) {
	cfg := &Config{PollInterval: 15 * time.Minute}

	sched, err := cfg.Schedule()
	require.NoError(t, err)
	from := time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, sched.Next(from).Equal(from.Add(15*time.Minute)))
}
