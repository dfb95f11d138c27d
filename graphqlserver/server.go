package graphqlserver

import (
	"context"
	"encoding/json"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"endpoint.GO/graphql"
	gqlmodels "endpoint.GO/graphql/models"
	"endpoint.GO/graphql/registry"
)

// RootResolver resolves the Query fields for graphql-go, adapting argument structs
// to a graphql.QueryResolver.
type RootResolver struct {
	res graphql.QueryResolver
}

// RulesArgs matches rules(group: String).
type RulesArgs struct {
	Group *string
}

func (r *RootResolver) Rules(ctx context.Context, args RulesArgs) ([]*gqlmodels.Rule, error) {
	return r.res.Rules(ctx, args.Group)
}

// RuleArgs matches rule(key: String!).
type RuleArgs struct {
	Key string
}

func (r *RootResolver) Rule(ctx context.Context, args RuleArgs) (*gqlmodels.Rule, error) {
	return r.res.Rule(ctx, args.Key)
}

func (r *RootResolver) RoutingVersion(ctx context.Context) (string, error) {
	return r.res.RoutingVersion(ctx)
}

func (r *RootResolver) RoutingTable(ctx context.Context) (*gqlmodels.RoutingTable, error) {
	return r.res.RoutingTable(ctx)
}

func (r *RootResolver) Apps(ctx context.Context) ([]*gqlmodels.App, error) {
	return r.res.Apps(ctx)
}

// AppArgs matches app(techName: String!).
type AppArgs struct {
	TechName string
}

func (r *RootResolver) App(ctx context.Context, args AppArgs) (*gqlmodels.App, error) {
	return r.res.App(ctx, args.TechName)
}

// ExtensionArgs for _extension(name, args).
type ExtensionArgs struct {
	Name string
	Args *string
}

func (r *RootResolver) Extension(ctx context.Context, args ExtensionArgs) (*string, error) {
	var m map[string]interface{}
	if args.Args != nil && *args.Args != "" {
		if err := json.Unmarshal([]byte(*args.Args), &m); err != nil {
			return nil, err
		}
	}
	if m == nil {
		m = make(map[string]interface{})
	}
	out, err := registry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// NewSchema parses the schema (base + extensions) and freezes the extension registry.
func NewSchema(res graphql.QueryResolver) (*gql.Schema, error) {
	schema, err := gql.ParseSchema(graphql.Schema(), &RootResolver{res: res}, gql.UseFieldResolvers())
	if err != nil {
		return nil, err
	}
	registry.Lock()
	return schema, nil
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
