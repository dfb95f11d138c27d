package graphql

import (
	"context"

	gqlmodels "endpoint.GO/graphql/models"
)

// QueryResolver is the interface for query resolvers (used by resolvers package).
// Lookups that find nothing return nil without an error.
type QueryResolver interface {
	Rules(ctx context.Context, group *string) ([]*gqlmodels.Rule, error)
	Rule(ctx context.Context, key string) (*gqlmodels.Rule, error)
	RoutingVersion(ctx context.Context) (string, error)
	RoutingTable(ctx context.Context) (*gqlmodels.RoutingTable, error)
	Apps(ctx context.Context) ([]*gqlmodels.App, error)
	App(ctx context.Context, techName string) (*gqlmodels.App, error)
}
