package load

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestJSON = `{
	"version": 1,
	"entities": [
		{
			"name": "User",
			"properties": [
				{"name": "id", "type": "string", "decorators": [{"name": "PrimaryKey", "shape": "none"}]},
				{"name": "email", "type": "string"},
				{
					"name": "posts",
					"type": "Collection<Post>",
					"decorators": [{"name": "OneToMany", "shape": "thunk", "target": "Post", "raw": "() => Post"}]
				}
			]
		},
		{
			"name": "Post",
			"base": "Content",
			"properties": [
				{"name": "id", "type": "string"},
				{
					"name": "author",
					"type": "User | null",
					"optional": true,
					"decorators": [{"name": "ManyToOne", "shape": "options", "options": {"nullable": true}, "raw": "{ nullable: true }"}]
				}
			]
		}
	]
}`

func TestLoad(t *testing.T) {
	t.Parallel()

	m, err := Load(strings.NewReader(manifestJSON))
	require.NoError(t, err)
	require.Len(t, m.Entities, 2)

	user := m.Entities[0]
	assert.Equal(t, "User", user.Name)
	assert.False(t, user.HasBase())
	require.Len(t, user.Properties, 3)

	// Owner back-references are wired during init.
	for _, p := range user.Properties {
		assert.Same(t, user, p.Entity())
	}

	posts := user.Property("posts")
	require.NotNil(t, posts)
	d := posts.RelationDecorator()
	require.NotNil(t, d)
	assert.Equal(t, DecoratorOneToMany, d.Name)
	assert.Equal(t, ShapeThunk, d.Shape)
	assert.Equal(t, "Post", d.Target)

	post := m.Entities[1]
	assert.True(t, post.HasBase())
	assert.Equal(t, "Content", post.Base)

	author := post.Property("author")
	require.NotNil(t, author)
	require.NotNil(t, author.RelationDecorator())
	v, ok := author.RelationDecorator().BoolOption("nullable")
	assert.True(t, ok)
	assert.True(t, v)
}

func TestLoadValidation(t *testing.T) {
	t.Parallel()

	t.Run("empty entity name", func(t *testing.T) {
		t.Parallel()
		_, err := Load(strings.NewReader(`{"entities":[{"name":""}]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty name")
	})

	t.Run("null entity", func(t *testing.T) {
		t.Parallel()
		// JSON null decodes to a nil declaration; it must be rejected,
		// not dereferenced for its position.
		_, err := Load(strings.NewReader(`{"entities":[null]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "null entity")
	})

	t.Run("self base", func(t *testing.T) {
		t.Parallel()
		_, err := Load(strings.NewReader(`{"entities":[{"name":"A","base":"A"}]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base")
	})

	t.Run("duplicate property", func(t *testing.T) {
		t.Parallel()
		_, err := Load(strings.NewReader(`{"entities":[{"name":"A","properties":[
			{"name":"x","type":"string"},{"name":"x","type":"string"}]}]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "twice")
	})

	t.Run("thunk without target", func(t *testing.T) {
		t.Parallel()
		_, err := Load(strings.NewReader(`{"entities":[{"name":"A","properties":[
			{"name":"x","type":"B","decorators":[{"name":"ManyToOne","shape":"thunk"}]}]}]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "without target")
	})

	t.Run("two relation decorators", func(t *testing.T) {
		t.Parallel()
		_, err := Load(strings.NewReader(`{"entities":[{"name":"A","properties":[
			{"name":"x","type":"B","decorators":[
				{"name":"ManyToOne","shape":"ident","target":"B"},
				{"name":"OneToOne","shape":"ident","target":"B"}]}]}]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "relation decorators")
	})

	t.Run("unknown shape", func(t *testing.T) {
		t.Parallel()
		_, err := Load(strings.NewReader(`{"entities":[{"name":"A","properties":[
			{"name":"x","type":"B","decorators":[{"name":"ManyToOne","shape":"spread"}]}]}]}`))
		require.Error(t, err)
	})
}

func TestShapeText(t *testing.T) {
	t.Parallel()

	for _, s := range []Shape{ShapeNone, ShapeThunk, ShapeIdent, ShapeOptions} {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var got Shape
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, s, got)
	}
}

func TestRelationHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRelation(DecoratorOneToMany))
	assert.True(t, IsRelation(DecoratorManyToOne))
	assert.False(t, IsRelation(DecoratorProperty))
	assert.True(t, ToMany(DecoratorManyToMany))
	assert.False(t, ToMany(DecoratorOneToOne))
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	m, err := Load(strings.NewReader(manifestJSON))
	require.NoError(t, err)

	b, err := m.Snapshot()
	require.NoError(t, err)

	got, err := RestoreSnapshot(b)
	require.NoError(t, err)
	require.Len(t, got.Entities, 2)
	assert.Equal(t, "User", got.Entities[0].Name)

	posts := got.Entities[0].Property("posts")
	require.NotNil(t, posts)
	// Validation re-ran: owners are wired on the restored declarations.
	assert.Same(t, got.Entities[0], posts.Entity())
	d := posts.RelationDecorator()
	require.NotNil(t, d)
	assert.Equal(t, ShapeThunk, d.Shape)
	assert.Equal(t, "Post", d.Target)
}

func TestSnapshotFile(t *testing.T) {
	t.Parallel()

	m, err := Load(strings.NewReader(manifestJSON))
	require.NoError(t, err)

	path := t.TempDir() + "/manifest.snap"
	require.NoError(t, m.WriteSnapshot(path))

	got, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Len(t, got.Entities, 2)
}
