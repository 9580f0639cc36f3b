package memo

import "sync"

// ScopedStore is the declaration-scoped memoization store: for each
// distinct (declaration identity, cache kind) pair it holds a key-value
// map. The store is owned by one run and dropped wholesale when the
// registry is discarded, so entries cannot outlive the declarations they
// index.
//
// Sibling generators for one entity overlap on the same scopes, so access
// is synchronized.
type ScopedStore struct {
	mu     sync.Mutex
	scopes map[scopeKey]map[string]any
}

type scopeKey struct {
	decl any    // declaration identity (pointer)
	kind string // named cache kind, e.g. "properties"
}

// NewScopedStore creates an empty declaration-scoped store.
func NewScopedStore() *ScopedStore {
	return &ScopedStore{scopes: make(map[scopeKey]map[string]any)}
}

// Get retrieves a value from the (decl, kind) scope.
func (s *ScopedStore) Get(decl any, kind, key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scope, ok := s.scopes[scopeKey{decl: decl, kind: kind}]
	if !ok {
		return nil, false
	}
	v, ok := scope[key]
	return v, ok
}

// Set stores a value in the (decl, kind) scope.
func (s *ScopedStore) Set(decl any, kind, key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk := scopeKey{decl: decl, kind: kind}
	scope, ok := s.scopes[sk]
	if !ok {
		scope = make(map[string]any)
		s.scopes[sk] = scope
	}
	scope[key] = value
}

// Drop removes every scope attached to the given declaration.
func (s *ScopedStore) Drop(decl any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sk := range s.scopes {
		if sk.decl == decl {
			delete(s.scopes, sk)
		}
	}
}
