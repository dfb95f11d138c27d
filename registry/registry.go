// Package registry exposes active route records as dispatch-ready rules.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	entity "endpoint.GO/model/entity"
	routeRepo "endpoint.GO/model/repository/route"
	"endpoint.GO/route"
)

var ErrNotFound = errors.New("registry: rule not found")

// Registry is stateless; every call reads the store.
type Registry struct {
	repo *routeRepo.RouteRepository
}

func New(db *gorm.DB) *Registry {
	return &Registry{repo: routeRepo.NewRouteRepository(db)}
}

// ListRules returns the active rules, restricted to group and sorted by route when group is set.
// Records that cannot be turned into a rule are logged and skipped.
func (r *Registry) ListRules(ctx context.Context, group string) ([]*route.Rule, error) {
	recs, err := r.repo.FindActive(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("registry: list rules: %w", err)
	}
	rules := make([]*route.Rule, 0, len(recs))
	for i := range recs {
		rule, err := RuleFromRecord(&recs[i])
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"key":   recs[i].Key,
				"route": recs[i].Route,
			}).WithError(err).Warn("registry: skipping invalid record")
			continue
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (r *Registry) CurrentVersion(ctx context.Context) (int64, error) {
	v, err := r.repo.CurrentVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("registry: current version: %w", err)
	}
	return v, nil
}

// GetRuleByKey returns ErrNotFound for unknown or inactive keys.
func (r *Registry) GetRuleByKey(ctx context.Context, key string) (*route.Rule, error) {
	rec, err := r.repo.FindByKey(ctx, key, true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("registry: get rule %q: %w", key, err)
	}
	return RuleFromRecord(rec)
}

// RuleFromRecord decodes the stored options and routing of rec.
func RuleFromRecord(rec *entity.EndpointRoute) (*route.Rule, error) {
	opts, err := route.DecodeOptions(rec.Options)
	if err != nil {
		return nil, err
	}
	routing, err := route.DecodeRouting(rec.Routing)
	if err != nil {
		return nil, err
	}
	return route.NewRule(rec.Key, rec.Route, routing, opts, rec.EndpointHash, rec.Group())
}

// RegisteredRoutes lists "route (METHOD, ...)" for the active rules of group, sorted by route.
func (r *Registry) RegisteredRoutes(ctx context.Context, group string) ([]string, error) {
	rules, err := r.ListRules(ctx, group)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Route() < rules[j].Route() })
	out := make([]string, 0, len(rules))
	for _, rule := range rules {
		out = append(out, fmt.Sprintf("%s (%s)", rule.Route(), strings.Join(rule.Routing().Methods, ", ")))
	}
	return out, nil
}
