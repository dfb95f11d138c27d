package resolvers

import (
	"context"
	"errors"
	"strconv"

	routeRegistry "endpoint.GO/registry"
	"endpoint.GO/routingmap"
	appService "endpoint.GO/service/app"

	gqlmodels "endpoint.GO/graphql/models"
)

// QueryResolver is the single resolver for all Query fields.
// New Query fields: use RegisterSchemaExtension + _extension for fully dynamic resolvers.
type QueryResolver struct {
	reg   *routeRegistry.Registry
	apps  *appService.Service
	cache *routingmap.Cache
}

// NewResolver builds the query resolver. apps and cache may be nil; their fields then resolve empty.
func NewResolver(reg *routeRegistry.Registry, apps *appService.Service, cache *routingmap.Cache) *QueryResolver {
	return &QueryResolver{reg: reg, apps: apps, cache: cache}
}

func (r *QueryResolver) Rules(ctx context.Context, group *string) ([]*gqlmodels.Rule, error) {
	g := ""
	if group != nil {
		g = *group
	}
	rules, err := r.reg.ListRules(ctx, g)
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.Rule, 0, len(rules))
	for _, rule := range rules {
		out = append(out, ruleToGraphQL(rule))
	}
	return out, nil
}

func (r *QueryResolver) Rule(ctx context.Context, key string) (*gqlmodels.Rule, error) {
	rule, err := r.reg.GetRuleByKey(ctx, key)
	if errors.Is(err, routeRegistry.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ruleToGraphQL(rule), nil
}

func (r *QueryResolver) RoutingVersion(ctx context.Context) (string, error) {
	v, err := r.reg.CurrentVersion(ctx)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(v, 10), nil
}

// RoutingTable reports the table this process dispatches from, rebuilding it first when stale.
func (r *QueryResolver) RoutingTable(ctx context.Context) (*gqlmodels.RoutingTable, error) {
	if r.cache == nil {
		return nil, nil
	}
	t, err := r.cache.Table(ctx)
	if err != nil {
		return nil, err
	}
	return tableToGraphQL(t), nil
}

func (r *QueryResolver) Apps(ctx context.Context) ([]*gqlmodels.App, error) {
	if r.apps == nil {
		return []*gqlmodels.App{}, nil
	}
	list, err := r.apps.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.App, 0, len(list))
	for i := range list {
		out = append(out, appToGraphQL(&list[i]))
	}
	return out, nil
}

func (r *QueryResolver) App(ctx context.Context, techName string) (*gqlmodels.App, error) {
	if r.apps == nil {
		return nil, nil
	}
	a, err := r.apps.Get(ctx, techName)
	if errors.Is(err, appService.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return appToGraphQL(a), nil
}
