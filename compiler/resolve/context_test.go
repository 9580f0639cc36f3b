package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtoforge/dtoforge"
	"github.com/dtoforge/dtoforge/compiler/load"
	"github.com/dtoforge/dtoforge/schema/fieldtype"
	"github.com/dtoforge/dtoforge/schema/operation"
)

func TestContextFields(t *testing.T) {
	t.Parallel()

	user, _, r := userPosts()
	rc, err := r.Context(user)
	require.NoError(t, err)

	assert.Equal(t, "User", rc.Name)
	require.Len(t, rc.Fields, 3)
	require.True(t, rc.HasID())
	assert.Equal(t, "id", rc.ID.Name)
	assert.Equal(t, fieldtype.TypeString, rc.IDType.Type)

	posts := rc.Fields[2]
	require.True(t, posts.IsRelation())
	assert.Equal(t, "Post", posts.Relation.Target.Name)
	assert.Equal(t, ToMany, posts.Relation.Kind)
	assert.True(t, posts.Relation.TargetIDValid)
	assert.Equal(t, fieldtype.TypeString, posts.Relation.TargetID.Type)
	assert.True(t, posts.Info.Slice)
}

func TestContextExclusionRoundTrip(t *testing.T) {
	t.Parallel()

	e := load.NewEntity("Doc",
		prop("id", "string", pk()),
		prop("internal", "string", exclude(`["data"]`)),
		prop("title", "string"),
	)
	r := New(BuildRegistry([]*load.Entity{e}))
	rc, err := r.Context(e)
	require.NoError(t, err)

	dataNames := fieldNames(rc.FieldsFor(operation.Data))
	createNames := fieldNames(rc.FieldsFor(operation.Create))

	// Excluded from "data" never appears there, but does in "create"
	// since it is not excluded there too.
	assert.NotContains(t, dataNames, "internal")
	assert.Contains(t, createNames, "internal")
	assert.Equal(t, []string{"id", "title"}, dataNames)
}

func TestContextInheritedFields(t *testing.T) {
	t.Parallel()

	base := load.NewEntity("Timestamped",
		prop("createdAt", "Date"),
		prop("updatedAt", "Date"),
	)
	article := load.NewEntity("Article",
		prop("id", "string", pk()),
		prop("title", "string"),
	).WithBase("Timestamped")
	r := New(BuildRegistry([]*load.Entity{base, article}))

	rc, err := r.Context(article)
	require.NoError(t, err)
	assert.Equal(t, []string{"createdAt", "updatedAt", "id", "title"}, fieldNames(rc.Fields))
	assert.Equal(t, fieldtype.TypeTime, rc.Fields[0].Info.Type)
}

func TestContextToManyWithoutTargetPK(t *testing.T) {
	t.Parallel()

	user := load.NewEntity("User",
		prop("id", "string", pk()),
		prop("sessions", "Collection<Session>", relThunk(load.DecoratorOneToMany, "Session")),
	)
	session := load.NewEntity("Session", prop("token", "string"))
	r := New(BuildRegistry([]*load.Entity{user, session}))

	_, err := r.Context(user)
	require.Error(t, err)
	assert.True(t, dtoforge.IsResolution(err))
	var resErr *dtoforge.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "User", resErr.Entity)
	assert.Equal(t, "sessions", resErr.Property)
}

func TestContextToManyUnresolvableTarget(t *testing.T) {
	t.Parallel()

	user := load.NewEntity("User",
		prop("id", "string", pk()),
		prop("ghosts", "Collection<Ghost>", relThunk(load.DecoratorOneToMany, "Ghost")),
	)
	r := New(BuildRegistry([]*load.Entity{user}))

	_, err := r.Context(user)
	require.Error(t, err)
	assert.True(t, dtoforge.IsResolution(err))
}

func TestContextToOneDegrades(t *testing.T) {
	t.Parallel()

	post := load.NewEntity("Post",
		prop("id", "string", pk()),
		prop("author", "Ghost", relIdent(load.DecoratorManyToOne, "Ghost")),
	)
	r := New(BuildRegistry([]*load.Entity{post}))

	// A to-one relation with an unresolvable target keeps the field but
	// drops the relation decoration.
	rc, err := r.Context(post)
	require.NoError(t, err)
	author, ok := fieldByName(rc, "author")
	require.True(t, ok)
	assert.False(t, author.IsRelation())
	assert.Equal(t, fieldtype.TypeEntity, author.Info.Type)
}

func TestContextPrimaryKeyConvention(t *testing.T) {
	t.Parallel()

	t.Run("decorator wins over name", func(t *testing.T) {
		t.Parallel()
		e := load.NewEntity("Legacy",
			prop("id", "string"),
			prop("uuid", "uuid", pk()),
		)
		r := New(BuildRegistry([]*load.Entity{e}))
		rc, err := r.Context(e)
		require.NoError(t, err)
		require.True(t, rc.HasID())
		assert.Equal(t, "uuid", rc.ID.Name)
		assert.Equal(t, fieldtype.TypeUUID, rc.IDType.Type)
	})

	t.Run("underscore id", func(t *testing.T) {
		t.Parallel()
		e := load.NewEntity("Mongoish", prop("_id", "string"))
		r := New(BuildRegistry([]*load.Entity{e}))
		rc, err := r.Context(e)
		require.NoError(t, err)
		require.True(t, rc.HasID())
		assert.Equal(t, "_id", rc.ID.Name)
	})

	t.Run("inherited id", func(t *testing.T) {
		t.Parallel()
		base := load.NewEntity("Base", prop("id", "bigint", pk()))
		child := load.NewEntity("Child", prop("x", "string")).WithBase("Base")
		r := New(BuildRegistry([]*load.Entity{base, child}))
		rc, err := r.Context(child)
		require.NoError(t, err)
		require.True(t, rc.HasID())
		assert.Equal(t, fieldtype.TypeInt64, rc.IDType.Type)
	})

	t.Run("no id", func(t *testing.T) {
		t.Parallel()
		e := load.NewEntity("Blob", prop("data", "Buffer"))
		r := New(BuildRegistry([]*load.Entity{e}))
		rc, err := r.Context(e)
		require.NoError(t, err)
		assert.False(t, rc.HasID())
	})
}

func TestContextRelations(t *testing.T) {
	t.Parallel()

	user, post, r := userPosts()
	rc, err := r.Context(user)
	require.NoError(t, err)
	rels := rc.Relations()
	require.Len(t, rels, 1)
	assert.Equal(t, "Post", rels[0].Target.Name)

	rcPost, err := r.Context(post)
	require.NoError(t, err)
	rels = rcPost.Relations()
	require.Len(t, rels, 1)
	assert.Equal(t, "User", rels[0].Target.Name)
	assert.True(t, rels[0].Nullable)
}

func TestResolverReset(t *testing.T) {
	t.Parallel()

	store := newRecordingCache()
	e := load.NewEntity("Doc", prop("slug", "string", exclude(`["update"]`)))
	r := New(BuildRegistry([]*load.Entity{e}), WithCache(store))

	r.IsExcluded(e.Property("slug"), operation.Update)
	require.NotZero(t, store.Len())
	r.Reset()
	assert.Zero(t, store.Len())
}

func fieldNames(fields []*Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func fieldByName(rc *Context, name string) (*Field, bool) {
	for _, f := range rc.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
