package auth

import (
	"os"
	"sort"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"endpoint.GO/config"
	"endpoint.GO/core/registry"
	"endpoint.GO/route"
)

// ModeFactory builds the middleware enforcing an auth mode. A nil middleware lets requests through.
type ModeFactory func() echo.MiddlewareFunc

var mu sync.Mutex

func init() {
	RegisterMode(route.AuthPublic, func() echo.MiddlewareFunc { return nil })
	RegisterMode(route.AuthUser, func() echo.MiddlewareFunc { return credentials(nil) })
}

// RegisterMode adds an auth mode usable as a route's auth_type. Call from init().
// Panics if the mode exists or the registry is locked.
func RegisterMode(name string, factory ModeFactory) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryAuth) {
		panic("auth/registry: locked (register only during init)")
	}
	modes := getModes()
	if _, ok := modes[name]; ok {
		panic("auth/registry: duplicate mode " + name)
	}
	next := make(map[string]ModeFactory, len(modes)+1)
	for k, v := range modes {
		next[k] = v
	}
	next[name] = factory
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryAuth, next)
	route.RegisterAuthType(name)
}

func getModes() map[string]ModeFactory {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryAuth); ok && v != nil {
		return v.(map[string]ModeFactory)
	}
	return map[string]ModeFactory{}
}

// ForMode returns the middleware for mode. ok is false for unknown modes.
func ForMode(mode string) (mw echo.MiddlewareFunc, ok bool) {
	f, ok := getModes()[mode]
	if !ok {
		return nil, false
	}
	return f(), true
}

func Modes() []string {
	modes := getModes()
	out := make([]string, 0, len(modes))
	for k := range modes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Middleware guards the admin API based on the AUTH_TYPE env var.
func Middleware() echo.MiddlewareFunc {
	return credentials(buildSkipper())
}

func credentials(skipper middleware.Skipper) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = middleware.DefaultSkipper
	}
	switch os.Getenv("AUTH_TYPE") {
	case "key", "token":
		return keyAuth(skipper)
	default:
		return basicAuth(skipper)
	}
}

func buildSkipper() middleware.Skipper {
	skipPaths := config.GetAuthSkipperPaths()
	return func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
}

func basicAuth(skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Validator: func(username, password string, c echo.Context) (bool, error) {
			ok := username == os.Getenv("API_USER") && password == os.Getenv("API_PASS")
			if ok {
				c.Set("auth_user", username)
			}
			return ok, nil
		},
		Skipper: skipper,
	})
}

func keyAuth(skipper middleware.Skipper) echo.MiddlewareFunc {
	apiKey := os.Getenv("API_KEY")
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: func(key string, c echo.Context) (bool, error) {
			ok := apiKey != "" && key == apiKey
			if ok {
				c.Set("auth_user", "api-key")
			}
			return ok, nil
		},
		Skipper: skipper,
	})
}
