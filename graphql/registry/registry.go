// Package registry holds the _extension resolvers of the GraphQL API.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"endpoint.GO/core/registry"
)

// ResolverFunc is the signature for custom resolvers. Args is the JSON-decoded args string.
type ResolverFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

var mu sync.Mutex

func getEntries() map[string]ResolverFunc {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryGraphQL); ok && v != nil {
		return v.(map[string]ResolverFunc)
	}
	return nil
}

// Register adds a resolver. Call from init() in custom packages. Name must be unique. Panics if locked.
func Register(name string, resolve ResolverFunc) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryGraphQL) {
		panic("graphql/registry: locked (register only during init before first request)")
	}
	cur := getEntries()
	if _, ok := cur[name]; ok {
		panic("graphql/registry: duplicate " + name)
	}
	next := make(map[string]ResolverFunc, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	next[name] = resolve
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryGraphQL, next)
}

// Unregister removes a registration (for tests).
func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	registry.GlobalRegistry.UnlockForTesting(registry.KeyRegistryGraphQL)
	cur := getEntries()
	next := make(map[string]ResolverFunc, len(cur))
	for k, v := range cur {
		if k != name {
			next[k] = v
		}
	}
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryGraphQL, next)
}

// Lock freezes the extension set. The server calls it once the schema is built.
func Lock() {
	registry.GlobalRegistry.Lock(registry.KeyRegistryGraphQL)
}

// Resolve calls the resolver registered under name.
func Resolve(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	resolve, ok := getEntries()[name]
	if !ok {
		return nil, fmt.Errorf("unknown extension: %s", name)
	}
	return resolve(ctx, args)
}

// Names returns all registered names, sorted.
func Names() []string {
	entries := getEntries()
	names := make([]string, 0, len(entries))
	for n := range entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
