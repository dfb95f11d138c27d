package graphqlserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gqlmodels "endpoint.GO/graphql/models"
	"endpoint.GO/graphql/registry"
)

// mockResolver returns fixed data without a database.
type mockResolver struct{}

func (mockResolver) Rules(ctx context.Context, group *string) ([]*gqlmodels.Rule, error) {
	g := "mock"
	return []*gqlmodels.Rule{{
		Key:          "mock-1",
		Route:        "/mock/1",
		Group:        &g,
		EndpointHash: "abc",
		Routing:      &gqlmodels.Routing{Type: "http", Auth: "public", Methods: []string{"GET"}, Routes: []string{"/mock/1"}},
		Handler:      &gqlmodels.Handler{ModulePath: "mock", MethodName: "Index"},
	}}, nil
}

func (mockResolver) Rule(ctx context.Context, key string) (*gqlmodels.Rule, error) { return nil, nil }

func (mockResolver) RoutingVersion(ctx context.Context) (string, error) { return "42", nil }

func (mockResolver) RoutingTable(ctx context.Context) (*gqlmodels.RoutingTable, error) {
	return nil, nil
}

func (mockResolver) Apps(ctx context.Context) ([]*gqlmodels.App, error) { return nil, nil }

func (mockResolver) App(ctx context.Context, techName string) (*gqlmodels.App, error) {
	return nil, nil
}

func init() {
	registry.Register("echo", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return args, nil
	})
}

func execute(t *testing.T, query string) map[string]interface{} {
	t.Helper()
	schema, err := NewSchema(mockResolver{})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	body, _ := json.Marshal(map[string]string{"query": query})
	rec := httptest.NewRecorder()
	Handler(schema).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body)))
	var resp struct {
		Data   map[string]interface{}
		Errors []struct{ Message string }
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Errors) > 0 {
		t.Fatalf("errors: %v", resp.Errors)
	}
	return resp.Data
}

func TestSchema_Rules(t *testing.T) {
	data := execute(t, `{ rules { key group routing { csrf methods } handler { modulePath symbolName } } routingVersion rule(key: "x") { key } }`)
	rules := data["rules"].([]interface{})
	if len(rules) != 1 {
		t.Fatalf("len(rules) = %d", len(rules))
	}
	r := rules[0].(map[string]interface{})
	if r["key"] != "mock-1" || r["group"] != "mock" {
		t.Errorf("rule = %v", r)
	}
	if h := r["handler"].(map[string]interface{}); h["symbolName"] != nil {
		t.Errorf("symbolName = %v, want null", h["symbolName"])
	}
	if data["routingVersion"] != "42" {
		t.Errorf("routingVersion = %v", data["routingVersion"])
	}
	if data["rule"] != nil {
		t.Errorf("rule = %v, want null", data["rule"])
	}
}

func TestSchema_Extension(t *testing.T) {
	data := execute(t, `{ _extension(name: "echo", args: "{\"a\":1}") }`)
	if data["_extension"] != `{"a":1}` {
		t.Errorf("_extension = %v", data["_extension"])
	}
}
