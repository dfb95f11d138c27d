// Package routingmap keeps a process-local routing table in step with the route store.
package routingmap

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"endpoint.GO/handler"
	"endpoint.GO/route"
)

// Source is the read side of the registry.
type Source interface {
	ListRules(ctx context.Context, group string) ([]*route.Rule, error)
	CurrentVersion(ctx context.Context) (int64, error)
}

type Options struct {
	// CheckInterval is the minimum time between version reads. Zero reads on every call.
	CheckInterval time.Duration
	// Resolver defaults to handler.NewResolver().
	Resolver handler.Resolver
}

// Cache serves the installed Table and rebuilds it when the store version moves.
type Cache struct {
	src  Source
	opts Options

	table     atomic.Pointer[Table]
	mu        sync.Mutex
	lastCheck atomic.Int64
	stale     atomic.Bool
	builds    atomic.Int64
}

func New(src Source, opts Options) *Cache {
	if opts.Resolver == nil {
		opts.Resolver = handler.NewResolver()
	}
	return &Cache{src: src, opts: opts}
}

// Table returns a table at least as new as the store version read during the call.
// A current table is returned without listing rules.
func (c *Cache) Table(ctx context.Context) (*Table, error) {
	t := c.table.Load()
	if t != nil && c.opts.CheckInterval > 0 && !c.stale.Load() {
		last := time.Unix(0, c.lastCheck.Load())
		if time.Since(last) < c.opts.CheckInterval {
			return t, nil
		}
	}
	stale := c.stale.Swap(false)
	v, err := c.src.CurrentVersion(ctx)
	if err != nil {
		if stale {
			c.stale.Store(true)
		}
		return nil, fmt.Errorf("routingmap: %w", err)
	}
	c.lastCheck.Store(time.Now().UnixNano())
	if t != nil && t.Version == v {
		return t, nil
	}
	return c.rebuild(ctx, v, false)
}

// Current returns the installed table without consulting the store, or nil.
func (c *Cache) Current() *Table {
	return c.table.Load()
}

// Invalidate drops the installed table; the next Table call rebuilds.
func (c *Cache) Invalidate() {
	c.table.Store(nil)
}

// MarkStale makes the next Table call read the version even within CheckInterval.
func (c *Cache) MarkStale() {
	c.stale.Store(true)
}

// Refresh rebuilds unconditionally.
func (c *Cache) Refresh(ctx context.Context) (*Table, error) {
	v, err := c.src.CurrentVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("routingmap: %w", err)
	}
	c.lastCheck.Store(time.Now().UnixNano())
	return c.rebuild(ctx, v, true)
}

// Builds counts completed rebuilds.
func (c *Cache) Builds() int64 {
	return c.builds.Load()
}

func (c *Cache) rebuild(ctx context.Context, version int64, force bool) (*Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur := c.table.Load(); cur != nil && !force && cur.Version >= version {
		return cur, nil
	}
	start := time.Now()
	rules, err := c.src.ListRules(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("routingmap: %w", err)
	}
	t := build(version, rules, c.opts.Resolver)
	c.table.Store(t)
	c.builds.Add(1)
	logrus.WithFields(logrus.Fields{
		"version":  version,
		"rules":    len(rules),
		"failed":   len(t.Failed),
		"duration": time.Since(start).String(),
	}).Info("routingmap: table installed")
	return t, nil
}

// Handler serves requests from the current table.
func (c *Cache) Handler() echo.HandlerFunc {
	return func(ec echo.Context) error {
		t, err := c.Table(ec.Request().Context())
		if err != nil {
			logrus.WithError(err).Error("routingmap: no routing table")
			return echo.NewHTTPError(http.StatusServiceUnavailable, "routing unavailable")
		}
		t.Router.ServeHTTP(ec.Response(), ec.Request())
		return nil
	}
}

// Mount installs the cache as the catch-all route of e. Static routes on e keep priority.
func Mount(e *echo.Echo, c *Cache) {
	e.Any("/*", c.Handler())
}
