package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"), true)
	require.NoError(t, err)

	assert.Equal(t, DEFAULT_JOBS_FILENAME, cfg.JobsFile)
	assert.Equal(t, DEFAULT_ENV_FILENAME, cfg.EnvFile)
	assert.False(t, cfg.Render.CountryLabels)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "noctowl", cfg.Metrics.Namespace)
	assert.Equal(t, filepath.FromSlash("logs/noctowl.log"), cfg.Logging.Filename)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"), false)
	assert.Error(t, err)
}

func TestLoadConfig_File(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "noctowl.toml")
	contents := `
jobs_file = "jobs/asia.yaml"

[render]
country_labels = true

[metrics]
enabled = true
textfile = "/tmp/noctowl.prom"

[logging]
debug = true
filename = ""
`
	require.NoError(t, os.WriteFile(filename, []byte(contents), 0o644))

	cfg, err := LoadConfig(filename, false)
	require.NoError(t, err)

	assert.Equal(t, "jobs/asia.yaml", cfg.JobsFile)
	assert.Equal(t, DEFAULT_ENV_FILENAME, cfg.EnvFile)
	assert.True(t, cfg.Render.CountryLabels)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/tmp/noctowl.prom", cfg.Metrics.Textfile)
	assert.Equal(t, "noctowl", cfg.GetPrometheusConfig().Namespace)
	assert.True(t, cfg.Logging.Debug)
	assert.Empty(t, cfg.Logging.Filename)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"metrics without textfile", "[metrics]\nenabled = true\n"},
		{"empty jobs file", "jobs_file = \"\"\n"},
		{"negative log size", "[logging]\nmax_size = -1\n"},
		{"bad toml", "jobs_file = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "noctowl.toml")
			require.NoError(t, os.WriteFile(filename, []byte(tt.contents), 0o644))
			_, err := LoadConfig(filename, false)
			assert.Error(t, err)
		})
	}
}
