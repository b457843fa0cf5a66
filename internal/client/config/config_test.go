package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mediavault/internal/client/validation"
	"github.com/dmitrijs2005/mediavault/internal/common"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.SigningEndpoint)
	assert.Equal(t, 3, c.Concurrency)
	assert.Equal(t, 50*common.MiB, c.SinglePartThreshold)
	assert.Equal(t, 8*common.MiB, c.PartSize)
	assert.Zero(t, c.MaxFileSize)
	assert.Equal(t, validation.DefaultAllowedTypes, c.AllowedTypes)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestLoad_NoArgsUsesDefaults(t *testing.T) {
	var want Config
	want.LoadDefaults()
	want.MaxFileSize = 10000 * 8 * common.MiB

	assert.Equal(t, &want, load(nil))
}

func TestLoad_MaxFileSizeFollowsPartSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uploader.yaml")
	require.NoError(t, os.WriteFile(path, []byte("part_size_mib: 2\n"), 0o600))

	tests := []struct {
		name string
		args []string
		want int64
	}{
		{"part size flag", []string{"-p", "1"}, 10000 * common.MiB},
		{"part size from file", []string{"-c", path}, 20000 * common.MiB},
		{"explicit limit wins", []string{"-p", "1", "-m", "500"}, 500 * common.MiB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := load(tt.args)
			assert.Equal(t, tt.want, cfg.MaxFileSize)
			assert.LessOrEqual(t, cfg.MaxFileSize/cfg.PartSize, int64(common.MaxMultipartParts))
		})
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		check       func(t *testing.T, c *Config)
		expectPanic bool
	}{
		{
			name: "overrides and ignores file names",
			args: []string{"-a", "http://signer:9000", "clip.mp4", "-n", "5", "-t", "16", "-p", "4", "-m", "100", "-r", "5", "-retry", "2", "photo.png"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "http://signer:9000", c.SigningEndpoint)
				assert.Equal(t, 5, c.Concurrency)
				assert.Equal(t, 16*common.MiB, c.SinglePartThreshold)
				assert.Equal(t, 4*common.MiB, c.PartSize)
				assert.Equal(t, 100*common.MiB, c.MaxFileSize)
				assert.Equal(t, 5*time.Second, c.RequestTimeout)
				assert.Equal(t, 2, c.RetryRounds)
			},
		},
		{
			name: "types list",
			args: []string{"-types", "image/png, video/mp4"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, []string{"image/png", "video/mp4"}, c.AllowedTypes)
			},
		},
		{
			name: "any type",
			args: []string{"-types=*"},
			check: func(t *testing.T, c *Config) {
				assert.Nil(t, c.AllowedTypes)
			},
		},
		{
			name:        "bad number",
			args:        []string{"-n", "many"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.LoadDefaults()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg, tt.args) })
			tt.check(t, cfg)
		})
	}
}

func TestParseFile_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "uploader.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(
		"signing_endpoint: http://yaml:8080\nconcurrency: 6\npart_size_mib: 16\nrequest_timeout: 10s\n",
	), 0o600))

	jsonPath := filepath.Join(dir, "uploader.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(
		`{"access_token":"tok","allowed_types":["image/png"],"request_timeout":2000000000}`,
	), 0o600))

	t.Run("yaml keeps unset keys", func(t *testing.T) {
		cfg := load([]string{"-c", yamlPath})

		assert.Equal(t, "http://yaml:8080", cfg.SigningEndpoint)
		assert.Equal(t, 6, cfg.Concurrency)
		assert.Equal(t, 16*common.MiB, cfg.PartSize)
		assert.Equal(t, 50*common.MiB, cfg.SinglePartThreshold)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	})

	t.Run("json with nanosecond duration", func(t *testing.T) {
		cfg := load([]string{"-config", jsonPath})

		assert.Equal(t, "tok", cfg.AccessToken)
		assert.Equal(t, []string{"image/png"}, cfg.AllowedTypes)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	})

	t.Run("flags win over file", func(t *testing.T) {
		cfg := load([]string{"-c", yamlPath, "-n", "2"})
		assert.Equal(t, 2, cfg.Concurrency)
	})

	t.Run("invalid file panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		require.Panics(t, func() { load([]string{"-c", bad}) })
	})
}
