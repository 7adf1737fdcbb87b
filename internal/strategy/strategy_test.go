package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-assembler/internal/property"
)

type profile struct {
	Nick  string
	Email string
}

type account struct {
	Name    string
	Profile profile
	Ref     *profile
	Extra   map[string]any
	Count   int
}

func TestOverwrite(t *testing.T) {
	acc := property.Default()
	a := &account{Name: "old"}

	require.NoError(t, Overwrite.Apply(acc, a, "Name", "new", true))
	assert.Equal(t, "new", a.Name)

	require.NoError(t, Overwrite.Apply(acc, a, "Name", "ignored", false))
	assert.Empty(t, a.Name)
}

func TestOverwriteNotNull(t *testing.T) {
	acc := property.Default()
	a := &account{Name: "old"}

	require.NoError(t, OverwriteNotNull.Apply(acc, a, "Name", nil, true))
	assert.Equal(t, "old", a.Name)

	require.NoError(t, OverwriteNotNull.Apply(acc, a, "Name", "x", false))
	assert.Equal(t, "old", a.Name)

	require.NoError(t, OverwriteNotNull.Apply(acc, a, "Name", "new", true))
	assert.Equal(t, "new", a.Name)

	// zero values are not nil and still overwrite
	require.NoError(t, OverwriteNotNull.Apply(acc, a, "Count", 0, true))
	assert.Equal(t, 0, a.Count)
}

func TestReferenceMerge(t *testing.T) {
	acc := property.Default()

	t.Run("assigns unset property", func(t *testing.T) {
		a := &account{}
		require.NoError(t, ReferenceMerge.Apply(acc, a, "Name", "n", true))
		assert.Equal(t, "n", a.Name)
	})

	t.Run("keeps set scalar", func(t *testing.T) {
		a := &account{Name: "kept"}
		require.NoError(t, ReferenceMerge.Apply(acc, a, "Name", "n", true))
		assert.Equal(t, "kept", a.Name)
	})

	t.Run("merges struct value", func(t *testing.T) {
		a := &account{Profile: profile{Nick: "kept"}}
		src := map[string]any{"Nick": "other", "Email": "e@x"}
		require.NoError(t, ReferenceMerge.Apply(acc, a, "Profile", src, true))
		assert.Equal(t, profile{Nick: "kept", Email: "e@x"}, a.Profile)
	})

	t.Run("merges struct pointer in place", func(t *testing.T) {
		p := &profile{Email: "kept@x"}
		a := &account{Ref: p}
		require.NoError(t, ReferenceMerge.Apply(acc, a, "Ref", profile{Nick: "nick", Email: "other"}, true))
		assert.Same(t, p, a.Ref)
		assert.Equal(t, profile{Nick: "nick", Email: "kept@x"}, *a.Ref)
	})

	t.Run("merges maps without mutating source", func(t *testing.T) {
		orig := map[string]any{"a": 1}
		a := &account{Extra: orig}
		require.NoError(t, ReferenceMerge.Apply(acc, a, "Extra", map[string]any{"a": 2, "b": 3}, true))
		assert.Equal(t, map[string]any{"a": 1, "b": 3}, a.Extra)
		assert.Equal(t, map[string]any{"a": 1}, orig)
	})

	t.Run("absent leaves untouched", func(t *testing.T) {
		a := &account{}
		require.NoError(t, ReferenceMerge.Apply(acc, a, "Name", "n", false))
		assert.Empty(t, a.Name)
	})
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		s, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}

	s, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, Default, s)

	_, err = ByName("bogus")
	assert.Error(t, err)
}
