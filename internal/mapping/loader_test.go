package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Descriptors(t *testing.T) {
	f, err := Parse([]byte(ordersYAML))
	require.NoError(t, err)

	assert.Equal(t, "1", f.Version)
	require.Len(t, f.Containers, 5)
	assert.Equal(t, "status", f.Containers[0].Namespace)
	assert.Equal(t, "active", f.Containers[0].Data["1"])

	require.Len(t, f.Types, 3)
	order := f.Types[0]
	assert.Equal(t, "mapping.Order", order.Type)
	require.Len(t, order.Assemble, 3)

	status := order.Assemble[0]
	assert.Equal(t, StringOrArray{"status"}, status.Groups)
	assert.Equal(t, PropArray{{Ref: "Status"}}, status.Props)

	customer := order.Assemble[1]
	assert.Equal(t, PropArray{{Src: "Name", Ref: "CustomerName"}}, customer.Props)

	tags := order.Assemble[2]
	assert.Equal(t, "many-to-many", tags.Handler)
	assert.Equal(t, ";", tags.Separator)

	require.Len(t, order.Disassemble, 2)
	assert.Equal(t, "Lines", order.Disassemble[0].Key)
	assert.Empty(t, order.Disassemble[0].Type)
	assert.Equal(t, "mapping.Shipment", order.Disassemble[1].Type)

	assert.Equal(t, PropArray{{Src: "Title", Ref: "ProductName"}}, f.Types[1].Assemble[0].Props)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("types: [:"))
	require.Error(t, err)

	_, err = Parse([]byte("types:\n  - type: A\n    assemble:\n      - key: K\n        groups: {a: b}\n"))
	require.Error(t, err)
}

func TestParse_EmptyContainerData(t *testing.T) {
	f, err := Parse([]byte("containers:\n  - namespace: empty\n"))
	require.NoError(t, err)
	require.Len(t, f.Containers, 1)
	assert.NotNil(t, f.Containers[0].Data)
}

func TestLoadFiles_Merges(t *testing.T) {
	dir := t.TempDir()

	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(a, []byte("containers:\n  - namespace: one\n    data: {x: 1}\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(ordersYAML), 0o644))

	f, err := LoadFiles(a, b)
	require.NoError(t, err)

	assert.Len(t, f.Containers, 6)
	assert.Len(t, f.Types, 3)
	assert.Equal(t, []string{"one", "status", "customers", "tags", "products", "carriers"}, f.Namespaces())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	f, err := Parse([]byte(ordersYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, WriteFile(f, path))

	back, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, f, back)
}
