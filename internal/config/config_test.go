package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-assembler/internal/cache"
	"field-assembler/internal/executor"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Executor, cfg.Executor)
	assert.Equal(t, d.Cache.Policy, cfg.Cache.Policy)
	assert.Equal(t, d.Cache.TTL, cfg.Cache.TTL)
	assert.Equal(t, d.Log, cfg.Log)
	assert.Empty(t, cfg.Descriptors)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
executor:
  ordered: true
  parallelism: 8
  conversion_policy: collect
cache:
  policy: size
  size: 128
  ttl: 90s
  namespaces: [users, products]
log:
  level: debug
  format: json
descriptors:
  - ./ops.yaml
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Executor.Ordered)
	assert.Equal(t, 8, cfg.Executor.Parallelism)
	policy, err := cfg.Executor.Policy()
	require.NoError(t, err)
	assert.Equal(t, executor.ConversionCollect, policy)

	cc, err := cfg.Cache.ToCache()
	require.NoError(t, err)
	assert.Equal(t, cache.Config{
		Policy:          cache.PolicySize,
		TTL:             90 * time.Second,
		CleanupInterval: cache.DefaultCleanupInterval,
		Size:            128,
	}, cc)
	assert.Equal(t, []string{"users", "products"}, cfg.Cache.Namespaces)

	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	assert.Equal(t, []string{"./ops.yaml"}, cfg.Descriptors)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FIELD_ASSEMBLER_EXECUTOR_PARALLELISM", "2")
	t.Setenv("FIELD_ASSEMBLER_CACHE_TTL", "5m")
	t.Setenv("FIELD_ASSEMBLER_DESCRIPTORS", "a.yaml,b.yaml")

	cfg, err := Load(writeConfig(t, "executor:\n  parallelism: 6\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Executor.Parallelism)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, cfg.Descriptors)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate_CollectsEveryError(t *testing.T) {
	cfg := Default()
	cfg.Executor.Parallelism = 0
	cfg.Executor.ConversionPolicy = "retry"
	cfg.Cache.Policy = "weak"
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	cfg.Descriptors = []string{""}

	err := cfg.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 6)
}

func TestValidate_CachePolicyBounds(t *testing.T) {
	cfg := Default()
	cfg.Cache.Policy = "size"
	cfg.Cache.Size = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache")

	assert.NoError(t, Default().Validate())
}

func TestLogConfig_Apply(t *testing.T) {
	require.NoError(t, LogConfig{Level: "warn", Format: "json"}.Apply())
	t.Cleanup(func() { _ = Default().Log.Apply() })

	require.Error(t, LogConfig{Level: "warn", Format: "xml"}.Apply())
}
