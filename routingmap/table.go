package routingmap

import (
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"endpoint.GO/core/auth"
	"endpoint.GO/handler"
	"endpoint.GO/route"
)

// Table is an immutable routing table tagged with the store version it was built from.
type Table struct {
	Version int64
	Router  *echo.Echo
	Rules   []*route.Rule
	// Failed lists the keys whose handler could not be resolved or whose auth mode is unknown.
	Failed  []string
	BuiltAt time.Time
}

// Entry is one compiled route, for listings.
type Entry struct {
	Key     string
	Route   string
	Methods []string
}

func build(version int64, rules []*route.Rule, res handler.Resolver) *Table {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	t := &Table{Version: version, Router: e, Rules: rules, BuiltAt: time.Now()}

	for _, rule := range rules {
		routing := rule.Routing()
		log := logrus.WithFields(logrus.Fields{"key": rule.Key(), "route": rule.Route()})

		h := handler.NotFound
		ep, err := rule.Endpoint(res)
		if err != nil {
			log.WithError(err).Error("routingmap: handler resolution failed, serving not found")
			t.Failed = append(t.Failed, rule.Key())
		} else {
			h = ep.Handler
		}

		var mws []echo.MiddlewareFunc
		authMW, ok := auth.ForMode(routing.Auth)
		if !ok {
			log.WithField("auth", routing.Auth).Error("routingmap: unknown auth mode, serving not found")
			t.Failed = append(t.Failed, rule.Key())
			h = handler.NotFound
		} else if authMW != nil {
			mws = append(mws, authMW)
		}
		if routing.CSRF {
			mws = append(mws, middleware.CSRF())
		}

		for _, path := range routing.Routes {
			for _, method := range routing.Methods {
				e.Add(method, path, h, mws...)
			}
		}
	}
	return t
}

// Entries lists the compiled routes sorted by route.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.Rules))
	for _, r := range t.Rules {
		routing := r.Routing()
		out = append(out, Entry{Key: r.Key(), Route: r.Route(), Methods: routing.Methods})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out
}
