package route

import (
	"sync"

	"github.com/labstack/echo/v4"

	"endpoint.GO/handler"
)

// Rule is the immutable, dispatch-ready view of an active route record.
type Rule struct {
	key      string
	route    string
	group    string
	hash     string
	routing  Routing
	options  Options
	once     sync.Once
	endpoint *Endpoint
	err      error
}

// Endpoint is a resolved handler paired with its routing payload.
type Endpoint struct {
	Handler echo.HandlerFunc
	Routing Routing
}

// NewRule fails when the handler reference lacks module_path or method_name.
func NewRule(key, route string, routing Routing, options Options, hash, group string) (*Rule, error) {
	if err := ValidateOptions(options); err != nil {
		return nil, err
	}
	if len(routing.Methods) == 0 || len(routing.Routes) == 0 {
		return nil, &ValidationError{Kind: KindMissingKey, Field: "routing", Keys: []string{"methods", "routes"}}
	}
	return &Rule{
		key:     key,
		route:   route,
		group:   group,
		hash:    hash,
		routing: routing.clone(),
		options: options.clone(),
	}, nil
}

func (r *Rule) Key() string          { return r.key }
func (r *Rule) Route() string        { return r.route }
func (r *Rule) Group() string        { return r.group }
func (r *Rule) EndpointHash() string { return r.hash }
func (r *Rule) Routing() Routing     { return r.routing.clone() }
func (r *Rule) Options() Options     { return r.options.clone() }

// Endpoint resolves the handler on first use; later calls return the same result.
func (r *Rule) Endpoint(res handler.Resolver) (*Endpoint, error) {
	r.once.Do(func() {
		h, err := res.Resolve(r.options.Handler)
		if err != nil {
			r.err = err
			return
		}
		r.endpoint = &Endpoint{Handler: h, Routing: r.routing.clone()}
	})
	return r.endpoint, r.err
}
