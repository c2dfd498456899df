package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultOutDir, cfg.OutDir)
	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultDebounceMs, cfg.Watch.DebounceMs)
	assert.True(t, cfg.History)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	content := `out_dir: artifacts
state_path: runs.db
output: json
watch:
  debounce_ms: 500
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reportlens.yaml"), []byte(content), 0o644))

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "artifacts", cfg.OutDir)
	assert.Equal(t, "runs.db", cfg.StatePath)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, 500, cfg.Watch.DebounceMs)
	assert.NotEmpty(t, GetConfigFileUsed())
}

func TestLoadConfigUpwardSearch(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "reportlens.yml"), []byte("out_dir: from_parent\n"), 0o644))

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from_parent", cfg.OutDir)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reportlens.yaml"), []byte("out_dir: from_file\n"), 0o644))

	t.Setenv("REPORTLENS_OUT_DIR", "from_env")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.OutDir)
}

func TestLoadConfigFlagsWin(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("REPORTLENS_OUT_DIR", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("out-dir", "", "")
	flags.String("state", "", "")
	flags.Bool("no-history", false, "")
	require.NoError(t, flags.Parse([]string{"--out-dir", "from_flag", "--state", "flag.db", "--no-history"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "from_flag", cfg.OutDir)
	assert.Equal(t, "flag.db", cfg.StatePath)
	assert.False(t, cfg.History)
}

func TestLoadConfigUnsetFlagsIgnored(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("out-dir", "flag_default", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, DefaultOutDir, cfg.OutDir)
}

func TestLoadConfigExplicitFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: markdown\n"), 0o644))
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.OutputFormat)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfigBadFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t-"), 0o644))

	_, err := LoadConfig(path, nil)
	assert.Error(t, err)
}
