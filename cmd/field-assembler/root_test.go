package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-assembler/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func write(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

const descriptors = `
containers:
  - namespace: status
    data: {"1": active}
types:
  - type: orders.Order
    assemble:
      - key: StatusID
        container: status
        props: Status
      - key: UserID
        container: users
        props: UserName
`

func TestCheck_Valid(t *testing.T) {
	out, err := run(t, "check", write(t, "ops.yaml", descriptors))
	require.NoError(t, err)
	assert.Contains(t, out, "warning: ")
	assert.Contains(t, out, "container_not_declared")
	assert.Contains(t, out, "ok: 1 type(s), 1 container(s)")
}

func TestCheck_Invalid(t *testing.T) {
	path := write(t, "ops.yaml", "types:\n  - type: a.B\n    assemble:\n      - key: K\n        handler: nope\n")

	out, err := run(t, "check", path)
	require.Error(t, err)
	assert.Contains(t, out, "unknown_handler")
}

func TestCheck_UsesConfiguredDescriptors(t *testing.T) {
	ops := write(t, "ops.yaml", descriptors)
	cfg := write(t, "config.yaml", "descriptors: ["+ops+"]\n")

	_, err := run(t, "--config", cfg, "check")
	require.NoError(t, err)

	_, err = run(t, "check")
	require.ErrorIs(t, err, config.ErrNoDescriptors)
}

func TestContainers(t *testing.T) {
	cfg := write(t, "config.yaml", "cache:\n  namespaces: [status]\n")

	out, err := run(t, "-c", cfg, "containers", write(t, "ops.yaml", descriptors))
	require.NoError(t, err)
	assert.Equal(t, "status\t1 entries\tcached\nusers\texternal\n", out)
}

func TestConfig_PrintsEffective(t *testing.T) {
	out, err := run(t, "--log-level", "warn", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "level: warn")
	assert.Contains(t, out, "parallelism: 4")
	assert.Contains(t, out, "ttl: 10m0s")
}

func TestConfig_RejectsInvalid(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "config")
	require.Error(t, err)
}
