package api

import (
	"gorm.io/gorm"

	"endpoint.GO/config"
	"endpoint.GO/core/cache"
	"endpoint.GO/handler"
	"endpoint.GO/notify"
	routeRegistry "endpoint.GO/registry"
	"endpoint.GO/route"
	"endpoint.GO/routingmap"
	appService "endpoint.GO/service/app"
	routeService "endpoint.GO/service/route"
)

// NewDeps wires the registry, routing map and services over db from config.AppConfig.
// A nil notifier publishes nothing.
func NewDeps(db *gorm.DB, n notify.Notifier) *Deps {
	cfg := config.Get()
	if n == nil {
		n = notify.Noop{}
	}
	var res handler.Resolver = handler.NewResolver()
	if cfg.HandlerCache {
		res = handler.NewCachingResolver(res, cache.GetInstance())
	}
	reg := routeRegistry.New(db)
	rm := routingmap.New(reg, routingmap.Options{
		CheckInterval: cfg.RoutingCheckInterval,
		Resolver:      res,
	})
	routes := routeService.NewService(db,
		route.NewCompiler(cfg.RoutePrefix, cfg.RouteBlacklist),
		routeService.WithCache(rm),
		routeService.WithNotifier(n),
	)
	return &Deps{
		DB:       db,
		Routes:   routes,
		Apps:     appService.NewService(db, routes),
		Registry: reg,
		Cache:    rm,
	}
}
