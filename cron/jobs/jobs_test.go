package jobs

import (
	"context"
	"testing"
	"time"

	"endpoint.GO/config"
	"endpoint.GO/cron"
	"endpoint.GO/handler"
	"endpoint.GO/model/dbtest"
	routeRepo "endpoint.GO/model/repository/route"
	"endpoint.GO/registry"
	"endpoint.GO/route"
	"endpoint.GO/routingmap"
	routeService "endpoint.GO/service/route"
)

func setup(t *testing.T) (*routingmap.Cache, *routeService.Service, *routeRepo.RouteRepository) {
	t.Helper()
	db, _ := dbtest.Open(t)
	cache := routingmap.New(registry.New(db), routingmap.Options{})
	return cache, routeService.NewService(db, route.NewCompiler("", nil), routeService.WithCache(cache)), routeRepo.NewRouteRepository(db)
}

func TestRoutingRefresh_RebuildsOnlyOnVersionChange(t *testing.T) {
	cache, routes, _ := setup(t)
	job := RoutingRefresh(cache)
	job()
	job()
	job()
	if n := cache.Builds(); n != 1 {
		t.Errorf("builds without writes = %d, want 1", n)
	}
	if cache.Current() == nil {
		t.Fatal("no table installed")
	}
	before := cache.Current().Version

	_, err := routes.Create(context.Background(), routeService.Input{
		Key: "k", Route: "/k", AuthType: route.AuthPublic,
		Options: route.Options{Handler: handler.Ref{ModulePath: handler.BuiltinModule, SymbolName: "PingController", MethodName: "Ping"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	job()
	if got := cache.Current(); got == nil || got.Version <= before {
		t.Errorf("table not rebuilt after write: %+v", got)
	}
}

func TestRoutingRefresh_HonoursCheckInterval(t *testing.T) {
	db, _ := dbtest.Open(t)
	cache := routingmap.New(registry.New(db), routingmap.Options{CheckInterval: time.Hour})
	routes := routeService.NewService(db, route.NewCompiler("", nil))
	job := RoutingRefresh(cache)
	job()
	if _, err := routes.Create(context.Background(), routeService.Input{
		Key: "k", Route: "/k", AuthType: route.AuthPublic,
		Options: route.Options{Handler: handler.Ref{ModulePath: handler.BuiltinModule, SymbolName: "PingController", MethodName: "Ping"}},
	}); err != nil {
		t.Fatal(err)
	}
	job()
	if n := cache.Builds(); n != 2 {
		t.Errorf("builds = %d, want 2: the job must read the version inside CheckInterval", n)
	}
}

func TestRoutesResync_SyncsPending(t *testing.T) {
	_, routes, repo := setup(t)
	ctx := context.Background()
	rec, err := routes.Create(ctx, routeService.Input{
		Key: "k", Route: "/k", AuthType: route.AuthPublic,
		Options: route.Options{Handler: handler.Ref{ModulePath: handler.BuiltinModule, SymbolName: "PingController", MethodName: "Ping"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkUnsynced(ctx, []uint{rec.ID}); err != nil {
		t.Fatal(err)
	}

	RoutesResync(routes)()

	got, err := routes.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if !got.RegistrySync {
		t.Error("record still pending after resync")
	}
}

func TestRegister_UsesConfiguredSchedules(t *testing.T) {
	t.Setenv("ROUTES_RESYNC_CRON", "@every 2m")
	cache, routes, _ := setup(t)
	Register(cache, routes)
	defer cron.Unregister(config.JobRoutingRefresh)
	defer cron.Unregister(config.JobRoutesResync)

	jobs := cron.Jobs()
	if got := jobs[config.JobRoutesResync].Schedule; got != "@every 2m" {
		t.Errorf("resync schedule = %q", got)
	}
	if _, ok := jobs[config.JobRoutingRefresh]; !ok {
		t.Error("refresh job not registered")
	}
}

func TestRegister_EmptyScheduleIsManual(t *testing.T) {
	t.Setenv("ROUTING_REFRESH_CRON", "")
	cache, routes, _ := setup(t)
	Register(cache, routes)
	defer cron.Unregister(config.JobRoutingRefresh)
	defer cron.Unregister(config.JobRoutesResync)

	if got := cron.Jobs()[config.JobRoutingRefresh].Schedule; got != cron.Manual {
		t.Errorf("refresh schedule = %q, want %q", got, cron.Manual)
	}
	if !cron.Run(config.JobRoutingRefresh) {
		t.Fatal("manual run not found")
	}
	if cache.Builds() != 1 {
		t.Errorf("builds = %d, want 1", cache.Builds())
	}
}
