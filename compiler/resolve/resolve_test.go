package resolve

import (
	"sync"

	"github.com/dtoforge/dtoforge/compiler/load"
)

// Builders shared by the resolver tests.

func prop(name, typ string, decorators ...*load.Decorator) *load.Property {
	return &load.Property{Name: name, Type: typ, Decorators: decorators}
}

func optProp(name, typ string, decorators ...*load.Decorator) *load.Property {
	p := prop(name, typ, decorators...)
	p.Optional = true
	return p
}

func pk() *load.Decorator {
	return &load.Decorator{Name: load.DecoratorPrimaryKey, Shape: load.ShapeNone}
}

func relThunk(name, target string) *load.Decorator {
	return &load.Decorator{Name: name, Shape: load.ShapeThunk, Target: target, Raw: "() => " + target}
}

func relIdent(name, target string) *load.Decorator {
	return &load.Decorator{Name: name, Shape: load.ShapeIdent, Target: target, Raw: target}
}

func relOptions(name, raw string) *load.Decorator {
	return &load.Decorator{Name: name, Shape: load.ShapeOptions, Raw: raw}
}

func relNone(name string) *load.Decorator {
	return &load.Decorator{Name: name, Shape: load.ShapeNone}
}

func exclude(raw string) *load.Decorator {
	return &load.Decorator{Name: load.DecoratorExclude, Shape: load.ShapeNone, Raw: raw}
}

// recordingCache is a Cache that remembers every stored value.
type recordingCache struct {
	mu      sync.Mutex
	entries map[string]any
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: make(map[string]any)}
}

func (c *recordingCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *recordingCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *recordingCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]any)
}

func (c *recordingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *recordingCache) values() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, 0, len(c.entries))
	for _, v := range c.entries {
		out = append(out, v)
	}
	return out
}

// userPosts builds the canonical two-entity fixture: User 1-N Post.
func userPosts() (*load.Entity, *load.Entity, *Resolver) {
	user := load.NewEntity("User",
		prop("id", "string", pk()),
		prop("email", "string"),
		prop("posts", "Collection<Post>", relThunk(load.DecoratorOneToMany, "Post")),
	)
	post := load.NewEntity("Post",
		prop("id", "string", pk()),
		prop("title", "string"),
		prop("author", "User | null", relOptions(load.DecoratorManyToOne, "{ nullable: true }")),
	)
	r := New(BuildRegistry([]*load.Entity{user, post}))
	return user, post, r
}
