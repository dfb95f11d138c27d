package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/labstack/echo/v4"

	"endpoint.GO/model/dbtest"
	"endpoint.GO/registry"
	"endpoint.GO/route"
	"endpoint.GO/routingmap"
	appService "endpoint.GO/service/app"
	routeService "endpoint.GO/service/route"
)

func setup(t *testing.T) (*appService.Service, *routingmap.Cache) {
	t.Helper()
	db, _ := dbtest.Open(t)
	routes := routeService.NewService(db, route.NewCompiler("", nil))
	return appService.NewService(db, routes), routingmap.New(registry.New(db), routingmap.Options{})
}

func TestURLsFor(t *testing.T) {
	want := appService.URLs{
		API:      "/shop/api/",
		URL:      "/shop/app/demo/",
		Docs:     "/shop/api-docs/demo/",
		Manifest: "/shop/manifest.json",
	}
	if diff := cmp.Diff(want, appService.URLsFor("/shop/", "demo")); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestCreate_RegistersRoute(t *testing.T) {
	svc, cache := setup(t)
	ctx := context.Background()
	a, err := svc.Create(ctx, appService.Input{TechName: "demo", Name: "Demo", RootPath: "shop", AuthType: route.AuthPublic})
	if err != nil {
		t.Fatal(err)
	}
	if a.RootPath != "/shop" {
		t.Errorf("root = %q", a.RootPath)
	}
	if got := appService.APIURLForEndpoint(a, "/orders"); got != "/shop/api/orders" {
		t.Errorf("APIURLForEndpoint = %q", got)
	}

	recs, err := svc.Routes(ctx, a)
	if err != nil || len(recs) != 1 {
		t.Fatalf("owned routes = %d, %v", len(recs), err)
	}
	if recs[0].Route != "/shop/app/demo/" || recs[0].Group() != "app:demo" {
		t.Errorf("route = %s group = %s", recs[0].Route, recs[0].Group())
	}

	e := echo.New()
	routingmap.Mount(e, cache)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shop/app/demo/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["tech_name"] != "demo" || body["api"] != "/shop/api/" {
		t.Errorf("body = %v", body)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, appService.Input{RootPath: "/x"}); !errors.Is(err, route.ErrValidation) {
		t.Errorf("missing tech_name: %v", err)
	}
	if _, err := svc.Create(ctx, appService.Input{TechName: "w", RootPath: "/web"}); !errors.Is(err, route.ErrValidation) {
		t.Errorf("blacklisted root: %v", err)
	}
	svc.Create(ctx, appService.Input{TechName: "a", RootPath: "/a"})
	if _, err := svc.Create(ctx, appService.Input{TechName: "a", RootPath: "/b"}); !errors.Is(err, route.ErrUniqueness) {
		t.Errorf("duplicate tech_name: %v", err)
	}
}

func TestUpdate_MovesRoute(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	a, _ := svc.Create(ctx, appService.Input{TechName: "demo", RootPath: "/one"})
	if _, err := svc.Update(ctx, "demo", appService.Input{RootPath: "/two"}); err != nil {
		t.Fatal(err)
	}
	recs, _ := svc.Routes(ctx, a)
	if len(recs) != 1 || recs[0].Route != "/two/app/demo/" {
		t.Errorf("routes = %+v", recs)
	}
	if _, err := svc.Update(ctx, "missing", appService.Input{RootPath: "/x"}); !errors.Is(err, appService.ErrNotFound) {
		t.Errorf("missing app: %v", err)
	}
}

func TestDelete_Cascades(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	a, _ := svc.Create(ctx, appService.Input{TechName: "demo", RootPath: "/one"})
	if err := svc.Delete(ctx, "demo"); err != nil {
		t.Fatal(err)
	}
	recs, _ := svc.Routes(ctx, a)
	if len(recs) != 0 {
		t.Errorf("routes left after delete: %d", len(recs))
	}
	if _, err := svc.Get(ctx, "demo"); !errors.Is(err, appService.ErrNotFound) {
		t.Errorf("app still present: %v", err)
	}
}
