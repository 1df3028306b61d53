package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gear6io/msidump/pkg/errors"
)

func TestLoadDefaultConfig(t *testing.T) {
	cfg := LoadDefaultConfig()
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Log.Console)
	assert.Equal(t, "msidump-out", cfg.Output.Directory)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msidump.yml")
	content := `
log:
  level: debug
  console: false
output:
  directory: /tmp/unpacked
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Console)
	assert.Equal(t, "/tmp/unpacked", cfg.Output.Directory)
	// unset fields keep their defaults
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrConfigFileReadFailed))
}

func TestValidate(t *testing.T) {
	cfg := LoadDefaultConfig()
	cfg.Output.Directory = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrOutputDirRequired))

	cfg = LoadDefaultConfig()
	cfg.Log.Level = "chatty"
	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrLogLevelInvalid))
}
