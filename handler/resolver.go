package handler

import (
	"fmt"
	"reflect"

	"github.com/labstack/echo/v4"

	"endpoint.GO/core/cache"
)

// Resolver turns a Ref into an invocable echo handler.
type Resolver interface {
	Resolve(ref Ref) (echo.HandlerFunc, error)
}

// TableResolver resolves references against the init-time registration table.
// Nothing is cached: every call walks module, symbol and method again.
type TableResolver struct{}

func NewResolver() TableResolver { return TableResolver{} }

func (TableResolver) Resolve(ref Ref) (echo.HandlerFunc, error) {
	module, symbol := ref.Target()
	syms, ok := getModules()[module]
	if !ok {
		return nil, &ResolutionError{Ref: ref, Err: ErrModuleNotFound}
	}
	factory, ok := syms[symbol]
	if !ok {
		return nil, &ResolutionError{Ref: ref, Err: ErrSymbolNotFound}
	}
	inst := factory()
	if inst == nil {
		return nil, &ResolutionError{Ref: ref, Err: ErrSymbolNotFound, Detail: "factory returned nil"}
	}
	m := reflect.ValueOf(inst).MethodByName(ref.MethodName)
	if !m.IsValid() {
		return nil, &ResolutionError{Ref: ref, Err: ErrMethodNotFound}
	}
	return bind(ref, m)
}

// bind partially applies the reference's default arguments.
func bind(ref Ref, m reflect.Value) (echo.HandlerFunc, error) {
	switch fn := m.Interface().(type) {
	case func(echo.Context, Args) error:
		return func(c echo.Context) error {
			return fn(c, ref.args())
		}, nil
	case func(echo.Context) error:
		return fn, nil
	default:
		return nil, &ResolutionError{
			Ref:    ref,
			Err:    ErrMethodNotFound,
			Detail: fmt.Sprintf("unsupported signature %s", m.Type()),
		}
	}
}

const tagAll = "handler"

// CachingResolver memoizes successful resolutions by reference. Call Reload after
// handler code changes so stale bindings are dropped.
type CachingResolver struct {
	next  Resolver
	cache *cache.Cache
}

func NewCachingResolver(next Resolver, c *cache.Cache) *CachingResolver {
	if c == nil {
		c = cache.NewCache()
	}
	return &CachingResolver{next: next, cache: c}
}

func (r *CachingResolver) Resolve(ref Ref) (echo.HandlerFunc, error) {
	key := ref.cacheKey()
	if v, ok := r.cache.Get(key); ok {
		return v.(echo.HandlerFunc), nil
	}
	h, err := r.next.Resolve(ref)
	if err != nil {
		return nil, err
	}
	module, _ := ref.Target()
	r.cache.Set(key, h, 0, []string{tagAll, moduleTag(module)})
	return h, nil
}

// Reload forgets cached bindings for the given modules, or all of them.
func (r *CachingResolver) Reload(modules ...string) {
	if len(modules) == 0 {
		r.cache.DeleteByTag(tagAll)
		return
	}
	for _, m := range modules {
		r.cache.DeleteByTag(moduleTag(m))
	}
}

func moduleTag(module string) string { return "module:" + module }
