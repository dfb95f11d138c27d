package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/labstack/echo/v4"

	"endpoint.GO/api"
	"endpoint.GO/handler"
	"endpoint.GO/model/dbtest"
	"endpoint.GO/registry"
	"endpoint.GO/route"
	"endpoint.GO/routingmap"
	appService "endpoint.GO/service/app"
	routeService "endpoint.GO/service/route"
)

type gqlResponse struct {
	Data   map[string]interface{}
	Errors []struct{ Message string }
}

func newServer(t *testing.T) (*echo.Echo, *api.Deps) {
	t.Helper()
	t.Setenv("AUTH_TYPE", "key")
	t.Setenv("API_KEY", "secret")
	db, _ := dbtest.Open(t)
	reg := registry.New(db)
	cache := routingmap.New(reg, routingmap.Options{})
	routes := routeService.NewService(db, route.NewCompiler("", nil), routeService.WithCache(cache))
	d := &api.Deps{
		DB:       db,
		Routes:   routes,
		Apps:     appService.NewService(db, routes),
		Registry: reg,
		Cache:    cache,
	}
	e := echo.New()
	RegisterGraphQLRoutes(e, d)
	return e, d
}

func runQuery(t *testing.T, e *echo.Echo, query string) gqlResponse {
	t.Helper()
	body, _ := json.Marshal(map[string]interface{}{"query": query})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp gqlResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Errors) > 0 {
		t.Fatalf("errors: %v", resp.Errors)
	}
	return resp
}

func seed(t *testing.T, d *api.Deps) {
	t.Helper()
	ctx := context.Background()
	ping := route.Options{Handler: handler.Ref{ModulePath: handler.BuiltinModule, SymbolName: "PingController", MethodName: "Ping"}}
	for _, in := range []routeService.Input{
		{Key: "b", Route: "/shop/b", RouteGroup: "shop", AuthType: route.AuthPublic, Options: ping},
		{Key: "a", Route: "/shop/a", RouteGroup: "shop", AuthType: route.AuthPublic, RequestMethod: "POST", RequestContentType: route.ContentTypeJSON, Options: ping},
		{Key: "other", Route: "/other", AuthType: route.AuthPublic, Options: ping},
	} {
		if _, err := d.Routes.Create(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
}

func TestGraphQL_RulesByGroup(t *testing.T) {
	e, d := newServer(t)
	seed(t, d)

	resp := runQuery(t, e, `query { rules(group: "shop") { key route group routing { methods auth } handler { symbolName methodName } } }`)
	rules := resp.Data["rules"].([]interface{})
	var routes []string
	for _, r := range rules {
		routes = append(routes, r.(map[string]interface{})["route"].(string))
	}
	if diff := cmp.Diff([]string{"/shop/a", "/shop/b"}, routes); diff != "" {
		t.Errorf("routes (-want +got):\n%s", diff)
	}
	first := rules[0].(map[string]interface{})
	want := map[string]interface{}{
		"key":     "a",
		"route":   "/shop/a",
		"group":   "shop",
		"routing": map[string]interface{}{"methods": []interface{}{"POST"}, "auth": "public"},
		"handler": map[string]interface{}{"symbolName": "PingController", "methodName": "Ping"},
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("rule (-want +got):\n%s", diff)
	}
}

func TestGraphQL_RuleAndVersion(t *testing.T) {
	e, d := newServer(t)
	before := runQuery(t, e, `query { routingVersion }`).Data["routingVersion"]
	seed(t, d)

	resp := runQuery(t, e, `query { rule(key: "other") { route endpointHash } missing: rule(key: "nope") { route } routingVersion }`)
	r := resp.Data["rule"].(map[string]interface{})
	if r["route"] != "/other" || r["endpointHash"] == "" {
		t.Errorf("rule = %v", r)
	}
	if resp.Data["missing"] != nil {
		t.Errorf("missing = %v, want null", resp.Data["missing"])
	}
	if resp.Data["routingVersion"] == before {
		t.Errorf("routingVersion did not move from %v", before)
	}
}

func TestGraphQL_RoutingTable(t *testing.T) {
	e, d := newServer(t)
	seed(t, d)

	resp := runQuery(t, e, `query { routingTable { failed entries { key route } } }`)
	table := resp.Data["routingTable"].(map[string]interface{})
	if n := len(table["entries"].([]interface{})); n != 3 {
		t.Errorf("entries = %d, want 3", n)
	}
	if n := len(table["failed"].([]interface{})); n != 0 {
		t.Errorf("failed = %v", table["failed"])
	}
}

func TestGraphQL_Apps(t *testing.T) {
	e, d := newServer(t)
	if _, err := d.Apps.Create(context.Background(), appService.Input{TechName: "demo", Name: "Demo", RootPath: "/shop"}); err != nil {
		t.Fatal(err)
	}

	resp := runQuery(t, e, `query { apps { techName urls { url manifest } } app(techName: "demo") { name } }`)
	want := []interface{}{
		map[string]interface{}{
			"techName": "demo",
			"urls":     map[string]interface{}{"url": "/shop/app/demo/", "manifest": "/shop/manifest.json"},
		},
	}
	if diff := cmp.Diff(want, resp.Data["apps"]); diff != "" {
		t.Errorf("apps (-want +got):\n%s", diff)
	}
	if name := resp.Data["app"].(map[string]interface{})["name"]; name != "Demo" {
		t.Errorf("app.name = %v", name)
	}
}

func TestGraphQL_Playground(t *testing.T) {
	e, _ := newServer(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playground", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "text/html" {
		t.Errorf("playground = %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}
