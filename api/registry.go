package api

import (
	"errors"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"endpoint.GO/core/registry"
	"endpoint.GO/handler"
	routeRegistry "endpoint.GO/registry"
	"endpoint.GO/route"
	"endpoint.GO/routingmap"
	appService "endpoint.GO/service/app"
	routeService "endpoint.GO/service/route"
)

var mu sync.Mutex

// Deps are the services handed to API modules.
type Deps struct {
	DB       *gorm.DB
	Routes   *routeService.Service
	Apps     *appService.Service
	Registry *routeRegistry.Registry
	Cache    *routingmap.Cache
}

// --- /api group modules (authenticated, DB-dependent) ---

// ModuleFunc registers routes on the /api group.
type ModuleFunc func(g *echo.Group, d *Deps)

func getModules() []ModuleFunc {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryAPI); ok && v != nil {
		return v.([]ModuleFunc)
	}
	return nil
}

// RegisterModule registers an API module. Call from init() in API packages.
func RegisterModule(fn ModuleFunc) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryAPI) {
		panic("api/registry: API modules locked (register only during init)")
	}
	list := getModules()
	list = append(list, fn)
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryAPI, list)
}

// ApplyModules calls all registered /api modules. Locks the registry.
func ApplyModules(g *echo.Group, d *Deps) {
	for _, fn := range getModules() {
		fn(g, d)
	}
	registry.GlobalRegistry.Lock(registry.KeyRegistryAPI)
}

// --- Root-level routes (public: health, listings, GraphQL) ---

// RouteFunc registers routes on the root Echo instance.
type RouteFunc func(e *echo.Echo, d *Deps)

func getRoutes() []RouteFunc {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryRoutes); ok && v != nil {
		return v.([]RouteFunc)
	}
	return nil
}

// RegisterRoute registers a root-level route module. Call from init().
func RegisterRoute(fn RouteFunc) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryRoutes) {
		panic("api/registry: routes locked (register only during init)")
	}
	list := getRoutes()
	list = append(list, fn)
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryRoutes, list)
}

// RegisterGET is shorthand for registering a simple GET route on root.
func RegisterGET(path string, h echo.HandlerFunc) {
	RegisterRoute(func(e *echo.Echo, _ *Deps) {
		e.GET(path, h)
	})
}

// RegisterHTMLModule registers an HTML route module (alias for RegisterRoute).
func RegisterHTMLModule(fn RouteFunc) {
	RegisterRoute(fn)
}

// ApplyRoutes calls all registered root-level routes. Locks the registry.
func ApplyRoutes(e *echo.Echo, d *Deps) {
	for _, fn := range getRoutes() {
		fn(e, d)
	}
	registry.GlobalRegistry.Lock(registry.KeyRegistryRoutes)
}

// Error maps service errors onto HTTP responses.
func Error(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	var resErr *handler.ResolutionError
	switch {
	case errors.Is(err, route.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, route.ErrUniqueness):
		status = http.StatusConflict
	case errors.Is(err, routeService.ErrNotFound),
		errors.Is(err, appService.ErrNotFound),
		errors.Is(err, routeRegistry.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &resErr):
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
