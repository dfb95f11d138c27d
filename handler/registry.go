package handler

import (
	"sort"
	"sync"

	"endpoint.GO/core/registry"
)

// Factory builds a handler instance. Handler types must be constructible without arguments.
type Factory func() interface{}

type moduleTable map[string]map[string]Factory

var mu sync.Mutex

func getModules() moduleTable {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryHandler); ok && v != nil {
		return v.(moduleTable)
	}
	return moduleTable{}
}

// Register exposes symbol under modulePath. Call from init() in handler packages.
// Panics on duplicates or once the table is locked.
func Register(modulePath, symbol string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryHandler) {
		panic("handler/registry: locked (register only during init)")
	}
	if modulePath == "" || symbol == "" || factory == nil {
		panic("handler/registry: module, symbol and factory are required")
	}
	next := getModules().clone()
	syms := next[modulePath]
	if syms == nil {
		syms = make(map[string]Factory)
		next[modulePath] = syms
	}
	if _, ok := syms[symbol]; ok {
		panic("handler/registry: duplicate " + modulePath + "." + symbol)
	}
	syms[symbol] = factory
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryHandler, next)
}

// Unregister removes a symbol (for tests).
func Unregister(modulePath, symbol string) {
	mu.Lock()
	defer mu.Unlock()
	registry.GlobalRegistry.UnlockForTesting(registry.KeyRegistryHandler)
	next := getModules().clone()
	if syms, ok := next[modulePath]; ok {
		delete(syms, symbol)
		if len(syms) == 0 {
			delete(next, modulePath)
		}
	}
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryHandler, next)
}

// Lock freezes the table. Called once the server starts serving.
func Lock() {
	registry.GlobalRegistry.Lock(registry.KeyRegistryHandler)
}

// Modules returns the registered module paths, sorted.
func Modules() []string {
	mods := getModules()
	out := make([]string, 0, len(mods))
	for m := range mods {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// clone copies the table so readers holding the previous snapshot never see a write.
func (t moduleTable) clone() moduleTable {
	out := make(moduleTable, len(t))
	for mod, syms := range t {
		cp := make(map[string]Factory, len(syms))
		for name, f := range syms {
			cp[name] = f
		}
		out[mod] = cp
	}
	return out
}
