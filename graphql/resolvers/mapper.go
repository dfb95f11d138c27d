package resolvers

import (
	"strconv"
	"time"

	entity "endpoint.GO/model/entity"
	"endpoint.GO/route"
	"endpoint.GO/routingmap"
	appService "endpoint.GO/service/app"

	gqlmodels "endpoint.GO/graphql/models"
)

func ruleToGraphQL(r *route.Rule) *gqlmodels.Rule {
	routing := r.Routing()
	ref := r.Options().Handler
	out := &gqlmodels.Rule{
		Key:          r.Key(),
		Route:        r.Route(),
		EndpointHash: r.EndpointHash(),
		Routing: &gqlmodels.Routing{
			Type:    routing.Type,
			Auth:    routing.Auth,
			Methods: routing.Methods,
			Routes:  routing.Routes,
			CSRF:    routing.CSRF,
		},
		Handler: &gqlmodels.Handler{
			ModulePath: ref.ModulePath,
			MethodName: ref.MethodName,
		},
	}
	if g := r.Group(); g != "" {
		out.Group = &g
	}
	if ref.SymbolName != "" {
		s := ref.SymbolName
		out.Handler.SymbolName = &s
	}
	return out
}

func tableToGraphQL(t *routingmap.Table) *gqlmodels.RoutingTable {
	out := &gqlmodels.RoutingTable{
		Version: strconv.FormatInt(t.Version, 10),
		BuiltAt: t.BuiltAt.UTC().Format(time.RFC3339),
		Failed:  append([]string{}, t.Failed...),
	}
	for _, e := range t.Entries() {
		out.Entries = append(out.Entries, &gqlmodels.RouteEntry{Key: e.Key, Route: e.Route, Methods: e.Methods})
	}
	if out.Entries == nil {
		out.Entries = []*gqlmodels.RouteEntry{}
	}
	return out
}

func appToGraphQL(a *entity.App) *gqlmodels.App {
	urls := appService.URLsFor(a.RootPath, a.TechName)
	return &gqlmodels.App{
		TechName: a.TechName,
		Name:     a.Name,
		RootPath: a.RootPath,
		AuthType: a.AuthType,
		Active:   a.Active,
		URLs: &gqlmodels.AppURLs{
			API:      urls.API,
			URL:      urls.URL,
			Docs:     urls.Docs,
			Manifest: urls.Manifest,
		},
	}
}
