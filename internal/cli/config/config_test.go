package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lkml2cube.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("outputdir", ".", "output directory")
	flags.String("rootdir", "", "root directory")
	flags.Bool("use-explores-name", false, "use explore names")
	flags.Bool("printonly", false, "print only")
	flags.String("token", "", "meta token")
	flags.Duration("timeout", 0, "meta timeout")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	cfg, err := LoadConfig(writeConfig(t, ""), nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultMetaTimeout, cfg.Meta.Timeout)
	assert.Equal(t, DefaultMetaRetries, cfg.Meta.Retries)
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, `output_dir: generated
root_dir: lookml
use_explores_name: true
meta:
  url: http://localhost:4000/cubejs-api/v1/meta
  timeout: 5s
  retries: 1
`)
	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, "generated", cfg.OutputDir)
	assert.Equal(t, "lookml", cfg.RootDir)
	assert.True(t, cfg.UseExploresName)
	assert.Equal(t, "http://localhost:4000/cubejs-api/v1/meta", cfg.Meta.URL)
	assert.Equal(t, 5*time.Second, cfg.Meta.Timeout)
	assert.Equal(t, 1, cfg.Meta.Retries)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeConfig(t, "output_dir: from_file\nmeta:\n  token: file-token\n")

	t.Run("env over file", func(t *testing.T) {
		ResetConfig()
		t.Setenv("LKML2CUBE_OUTPUT_DIR", "from_env")
		t.Setenv("LKML2CUBE_META_TOKEN", "env-token")

		cfg, err := LoadConfig(path, testFlags())
		require.NoError(t, err)
		assert.Equal(t, "from_env", cfg.OutputDir)
		assert.Equal(t, "env-token", cfg.Meta.Token)
	})

	t.Run("flag over env", func(t *testing.T) {
		ResetConfig()
		t.Setenv("LKML2CUBE_OUTPUT_DIR", "from_env")

		flags := testFlags()
		require.NoError(t, flags.Set("outputdir", "from_flag"))
		require.NoError(t, flags.Set("token", "flag-token"))
		require.NoError(t, flags.Set("timeout", "2s"))
		require.NoError(t, flags.Set("printonly", "true"))

		cfg, err := LoadConfig(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "from_flag", cfg.OutputDir)
		assert.Equal(t, "flag-token", cfg.Meta.Token)
		assert.Equal(t, 2*time.Second, cfg.Meta.Timeout)
	})

	t.Run("unset flag keeps file value", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfig(path, testFlags())
		require.NoError(t, err)
		assert.Equal(t, "from_file", cfg.OutputDir)
		assert.Equal(t, "file-token", cfg.Meta.Token)
	})
}

func TestLoadConfig_VerboseForcesDebug(t *testing.T) {
	ResetConfig()
	cfg, err := LoadConfig(writeConfig(t, "verbose: true\nlog_level: error\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(writeConfig(t, "output: yaml\nmeta:\n  url: not a url\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "output must be one of")
	assert.Contains(t, err.Error(), "meta.url")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty output dir", mutate: func(c *Config) { c.OutputDir = "" }, wantErr: "output_dir is a required field"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "log_level must be one of"},
		{name: "bad fail-on level", mutate: func(c *Config) { c.FailOn = "fatal" }, wantErr: "fail_on must be one of"},
		{name: "fail-on warning", mutate: func(c *Config) { c.FailOn = "warning" }},
		{name: "negative retries", mutate: func(c *Config) { c.Meta.Retries = -1 }, wantErr: "meta.retries"},
		{name: "too many retries", mutate: func(c *Config) { c.Meta.Retries = 11 }, wantErr: "meta.retries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "output_dir", envKey("LKML2CUBE_OUTPUT_DIR"))
	assert.Equal(t, "meta.token", envKey("LKML2CUBE_META_TOKEN"))
	assert.Equal(t, "use_explores_name", envKey("LKML2CUBE_USE_EXPLORES_NAME"))
}

func TestFlagKey(t *testing.T) {
	assert.Equal(t, "output_dir", FlagKey("outputdir"))
	assert.Equal(t, "meta.retries", FlagKey("retries"))
	assert.Equal(t, "output", FlagKey("output"))
	assert.Equal(t, "fail_on", FlagKey("fail-on"))
	assert.Empty(t, FlagKey("printonly"))

	for _, key := range []string{"output_dir", "meta.token", "fail_on"} {
		assert.Equal(t, key, envKey(EnvVar(key)))
	}
	assert.Equal(t, "LKML2CUBE_META_TIMEOUT", EnvVar("meta.timeout"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("bogus"))
}
