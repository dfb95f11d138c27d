package custom

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"endpoint.GO/api"
	gqlregistry "endpoint.GO/graphql/registry"
	"endpoint.GO/handler"
	"endpoint.GO/model/dbtest"
	"endpoint.GO/registry"
	"endpoint.GO/route"
	"endpoint.GO/routingmap"
	routeService "endpoint.GO/service/route"
)

func TestCustomRoute_Ping(t *testing.T) {
	e := echo.New()
	api.ApplyRoutes(e, &api.Deps{})

	req := httptest.NewRequest(http.MethodGet, "/custom/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /custom/ping status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["pong"] != "ok" {
		t.Errorf("pong = %q, want ok", resp["pong"])
	}
}

func TestHelloModule_DispatchedFromRecord(t *testing.T) {
	db, _ := dbtest.Open(t)
	cache := routingmap.New(registry.New(db), routingmap.Options{})
	svc := routeService.NewService(db, route.NewCompiler("", nil), routeService.WithCache(cache))
	_, err := svc.Create(context.Background(), routeService.Input{
		Key: "hello", Route: "/hello", AuthType: route.AuthPublic,
		Options: route.Options{Handler: handler.Ref{
			ModulePath:    HelloModule,
			SymbolName:    "HelloController",
			MethodName:    "Greet",
			DefaultKwargs: map[string]interface{}{"name": "registry"},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	e := echo.New()
	routingmap.Mount(e, cache)

	for path, want := range map[string]string{"/hello": "registry", "/hello?name=go": "go"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		var resp map[string]string
		json.NewDecoder(rec.Body).Decode(&resp)
		if rec.Code != http.StatusOK || resp["hello"] != want {
			t.Errorf("GET %s = %d %v, want hello=%s", path, rec.Code, resp, want)
		}
	}
}

func TestHandlerModulesExtension(t *testing.T) {
	out, err := gqlregistry.Resolve(context.Background(), "handlerModules", nil)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, m := range out.([]string) {
		if m == HelloModule {
			found = true
		}
	}
	if !found {
		t.Errorf("modules = %v, want %s", out, HelloModule)
	}
}
