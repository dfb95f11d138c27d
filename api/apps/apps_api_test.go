package apps

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"endpoint.GO/api"
	"endpoint.GO/model/dbtest"
	"endpoint.GO/registry"
	"endpoint.GO/route"
	"endpoint.GO/routingmap"
	appService "endpoint.GO/service/app"
	routeService "endpoint.GO/service/route"
)

func TestAppAdmin(t *testing.T) {
	db, _ := dbtest.Open(t)
	cache := routingmap.New(registry.New(db), routingmap.Options{})
	routes := routeService.NewService(db, route.NewCompiler("", nil), routeService.WithCache(cache))
	d := &api.Deps{DB: db, Routes: routes, Apps: appService.NewService(db, routes), Cache: cache}
	e := echo.New()
	RegisterAppAdmin(e.Group("/api"), d)
	routingmap.Mount(e, cache)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/apps", `{"tech_name":"demo","root_path":"/shop","auth_type":"public"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"url":"/shop/app/demo/"`) {
		t.Errorf("urls missing: %s", rec.Body.String())
	}
	if rec := do(http.MethodGet, "/shop/app/demo/", ""); rec.Code != http.StatusOK {
		t.Errorf("app route = %d", rec.Code)
	}
	if rec := do(http.MethodGet, "/api/apps/demo", ""); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"routes"`) {
		t.Errorf("get = %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(http.MethodDelete, "/api/apps/demo", ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete = %d", rec.Code)
	}
	if rec := do(http.MethodGet, "/shop/app/demo/", ""); rec.Code != http.StatusNotFound {
		t.Errorf("app route after delete = %d", rec.Code)
	}
	if rec := do(http.MethodGet, "/api/apps/demo", ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", rec.Code)
	}
}
