package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-assembler/internal/operation"
	"field-assembler/internal/property"
	"field-assembler/internal/strategy"
)

type user struct {
	ID   int
	Name string
	Mail string
}

type post struct {
	AuthorID  int
	Author    string
	AuthorObj *user
	Mail      string
	TagIDs    []string
	TagCSV    string
	Tags      []string
	Comments  []string
	Commented []int
}

var users = map[any]any{
	1: &user{ID: 1, Name: "ann", Mail: "ann@x"},
	2: &user{ID: 2, Name: "bob", Mail: "bob@x"},
}

func TestOneToOne(t *testing.T) {
	acc := property.Default()

	t.Run("whole value", func(t *testing.T) {
		p := &post{AuthorID: 1}
		op := operation.NewAssemble("AuthorID", "users", operation.WithRef("AuthorObj"))

		keys, err := OneToOne.Keys(acc, p, op)
		require.NoError(t, err)
		assert.Equal(t, []any{1}, keys)

		require.NoError(t, OneToOne.Merge(acc, p, op, keys, users))
		assert.Same(t, users[1], p.AuthorObj)
	})

	t.Run("mapped sub properties", func(t *testing.T) {
		p := &post{AuthorID: 2}
		op := operation.NewAssemble("AuthorID", "users", operation.WithMappings(
			operation.Mapping{Source: "Name", Reference: "Author"},
			operation.Mapping{Source: "Mail", Reference: "Mail"},
		))

		require.NoError(t, OneToOne.Merge(acc, p, op, []any{2}, users))
		assert.Equal(t, "bob", p.Author)
		assert.Equal(t, "bob@x", p.Mail)
	})

	t.Run("absent key keeps value under overwrite-not-null", func(t *testing.T) {
		p := &post{AuthorID: 9, Author: "kept"}
		op := operation.NewAssemble("AuthorID", "users",
			operation.WithMappings(operation.Mapping{Source: "Name", Reference: "Author"}))

		require.NoError(t, OneToOne.Merge(acc, p, op, []any{9}, users))
		assert.Equal(t, "kept", p.Author)
	})

	t.Run("absent key clears under overwrite", func(t *testing.T) {
		p := &post{AuthorID: 9, Author: "stale"}
		op := operation.NewAssemble("AuthorID", "users",
			operation.WithStrategy(strategy.Overwrite),
			operation.WithMappings(operation.Mapping{Source: "Name", Reference: "Author"}))

		require.NoError(t, OneToOne.Merge(acc, p, op, []any{9}, users))
		assert.Empty(t, p.Author)
	})

	t.Run("nil key yields no keys", func(t *testing.T) {
		op := operation.NewAssemble("AuthorObj", "users")
		keys, err := OneToOne.Keys(acc, &post{}, op)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("missing key property", func(t *testing.T) {
		_, err := OneToOne.Keys(acc, &post{}, operation.NewAssemble("Nope", "users"))
		assert.ErrorIs(t, err, property.ErrPropertyNotFound)
	})

	t.Run("uncomparable key", func(t *testing.T) {
		_, err := OneToOne.Keys(acc, &post{TagIDs: []string{"a"}}, operation.NewAssemble("TagIDs", "tags"))
		assert.ErrorIs(t, err, ErrUncomparableKey)
	})
}

func TestOneToMany(t *testing.T) {
	acc := property.Default()
	comments := map[any]any{
		1: []*user{{Name: "c1"}, {Name: "c2"}},
		2: "single",
	}

	p := &post{AuthorID: 1}
	op := operation.NewAssemble("AuthorID", "comments",
		operation.WithMappings(operation.Mapping{Source: "Name", Reference: "Comments"}))

	require.NoError(t, OneToMany.Merge(acc, p, op, []any{1}, comments))
	assert.Equal(t, []string{"c1", "c2"}, p.Comments)

	// merging again replaces instead of appending
	require.NoError(t, OneToMany.Merge(acc, p, op, []any{1}, comments))
	assert.Equal(t, []string{"c1", "c2"}, p.Comments)

	whole := operation.NewAssemble("AuthorID", "comments", operation.WithRef("Comments"))
	p2 := &post{AuthorID: 2}
	require.NoError(t, OneToMany.Merge(acc, p2, whole, []any{2}, comments))
	assert.Equal(t, []string{"single"}, p2.Comments)
}

func TestManyToMany(t *testing.T) {
	acc := property.Default()
	tags := map[any]any{"a": "alpha", "b": "beta", "c": "gamma"}

	t.Run("collection keys keep order and drop misses", func(t *testing.T) {
		p := &post{TagIDs: []string{"c", "x", "a"}}
		op := operation.NewAssemble("TagIDs", "tags", operation.WithRef("Tags"), operation.WithHandler(ManyToMany))

		keys, err := ManyToMany.Keys(acc, p, op)
		require.NoError(t, err)
		assert.Equal(t, []any{"c", "x", "a"}, keys)

		require.NoError(t, ManyToMany.Merge(acc, p, op, keys, tags))
		assert.Equal(t, []string{"gamma", "alpha"}, p.Tags)

		require.NoError(t, ManyToMany.Merge(acc, p, op, keys, tags))
		assert.Equal(t, []string{"gamma", "alpha"}, p.Tags)
	})

	t.Run("separated string", func(t *testing.T) {
		h := NewManyToMany(";")
		p := &post{TagCSV: "b; a;;"}
		op := operation.NewAssemble("TagCSV", "tags", operation.WithRef("Tags"), operation.WithHandler(h))

		keys, err := h.Keys(acc, p, op)
		require.NoError(t, err)
		assert.Equal(t, []any{"b", "a"}, keys)

		require.NoError(t, h.Merge(acc, p, op, keys, tags))
		assert.Equal(t, []string{"beta", "alpha"}, p.Tags)
	})

	t.Run("mapped source", func(t *testing.T) {
		p := &post{}
		op := operation.NewAssemble("Commented", "users",
			operation.WithMappings(operation.Mapping{Source: "ID", Reference: "Commented"}))

		require.NoError(t, ManyToMany.Merge(acc, p, op, []any{2, 1}, users))
		assert.Equal(t, []int{2, 1}, p.Commented)
	})

	t.Run("no match keeps value", func(t *testing.T) {
		p := &post{Tags: []string{"kept"}}
		op := operation.NewAssemble("TagIDs", "tags", operation.WithRef("Tags"))

		require.NoError(t, ManyToMany.Merge(acc, p, op, []any{"zzz"}, tags))
		assert.Equal(t, []string{"kept"}, p.Tags)
	})
}

type wrappedKey struct {
	V any
}

type wrapped struct {
	Key  wrappedKey
	Keys []wrappedKey
	Name string
}

func TestKeys_RejectUncomparableDynamicValues(t *testing.T) {
	acc := property.Default()
	bad := wrappedKey{V: []int{1}}

	t.Run("one-to-one", func(t *testing.T) {
		_, err := OneToOne.Keys(acc, &wrapped{Key: bad}, operation.NewAssemble("Key", "ns"))
		assert.ErrorIs(t, err, ErrUncomparableKey)

		keys, err := OneToOne.Keys(acc, &wrapped{Key: wrappedKey{V: 1}}, operation.NewAssemble("Key", "ns"))
		require.NoError(t, err)
		assert.Equal(t, []any{wrappedKey{V: 1}}, keys)
	})

	t.Run("one-to-many", func(t *testing.T) {
		_, err := OneToMany.Keys(acc, &wrapped{Key: bad}, operation.NewAssemble("Key", "ns"))
		assert.ErrorIs(t, err, ErrUncomparableKey)
	})

	t.Run("many-to-many", func(t *testing.T) {
		target := &wrapped{Keys: []wrappedKey{{V: "ok"}, bad}}
		_, err := ManyToMany.Keys(acc, target, operation.NewAssemble("Keys", "ns"))
		assert.ErrorIs(t, err, ErrUncomparableKey)
	})
}

func TestMerge_Idempotent(t *testing.T) {
	acc := property.Default()
	comments := map[any]any{1: []*user{{Name: "c1"}, {Name: "c2"}}}
	tags := map[any]any{"a": "alpha", "b": "beta"}

	cases := []struct {
		name   string
		h      operation.AssembleHandler
		target func() *post
		op     func(strategy.Strategy) *operation.AssembleOperation
		keys   []any
		result map[any]any
		want   func(*post)
	}{
		{
			name:   "one-to-one",
			h:      OneToOne,
			target: func() *post { return &post{AuthorID: 1} },
			op: func(st strategy.Strategy) *operation.AssembleOperation {
				return operation.NewAssemble("AuthorID", "users", operation.WithStrategy(st),
					operation.WithMappings(operation.Mapping{Source: "Name", Reference: "Author"}))
			},
			keys:   []any{1},
			result: users,
			want:   func(p *post) { p.Author = "ann" },
		},
		{
			name:   "one-to-many",
			h:      OneToMany,
			target: func() *post { return &post{AuthorID: 1} },
			op: func(st strategy.Strategy) *operation.AssembleOperation {
				return operation.NewAssemble("AuthorID", "comments", operation.WithStrategy(st),
					operation.WithMappings(operation.Mapping{Source: "Name", Reference: "Comments"}))
			},
			keys:   []any{1},
			result: comments,
			want:   func(p *post) { p.Comments = []string{"c1", "c2"} },
		},
		{
			name:   "many-to-many",
			h:      ManyToMany,
			target: func() *post { return &post{TagIDs: []string{"a", "b"}} },
			op: func(st strategy.Strategy) *operation.AssembleOperation {
				return operation.NewAssemble("TagIDs", "tags", operation.WithStrategy(st), operation.WithRef("Tags"))
			},
			keys:   []any{"a", "b"},
			result: tags,
			want:   func(p *post) { p.Tags = []string{"alpha", "beta"} },
		},
	}

	for _, tc := range cases {
		for _, st := range []strategy.Strategy{strategy.Overwrite, strategy.OverwriteNotNull, strategy.ReferenceMerge} {
			t.Run(tc.name+"/"+st.Name(), func(t *testing.T) {
				p := tc.target()
				op := tc.op(st)

				require.NoError(t, tc.h.Merge(acc, p, op, tc.keys, tc.result))
				once := *p

				require.NoError(t, tc.h.Merge(acc, p, op, tc.keys, tc.result))
				assert.Equal(t, once, *p)

				want := tc.target()
				tc.want(want)
				assert.Equal(t, *want, *p)
			})
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		h, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, h.Name())
	}

	h, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, OneToOne, h)

	_, err = ByName("one-to-few")
	assert.Error(t, err)
}
