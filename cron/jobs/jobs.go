// Package jobs registers the built-in routing jobs with the cron registry.
package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"endpoint.GO/config"
	"endpoint.GO/cron"
	"endpoint.GO/routingmap"
	routeService "endpoint.GO/service/route"
)

const jobTimeout = time.Minute

// Register adds the routing refresh and resync jobs using config.CronSchedules.
// An empty schedule registers the job for manual runs only.
func Register(cache *routingmap.Cache, routes *routeService.Service) {
	sched := config.CronSchedules()
	cron.Register(config.JobRoutingRefresh, sched[config.JobRoutingRefresh], RoutingRefresh(cache))
	cron.Register(config.JobRoutesResync, sched[config.JobRoutesResync], RoutesResync(routes))
}

// RoutingRefresh reads the store version and rebuilds the routing map only when it moved,
// so the next request does not pay for the rebuild.
func RoutingRefresh(cache *routingmap.Cache) func(...string) {
	return func(...string) {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		cache.MarkStale()
		t, err := cache.Table(ctx)
		if err != nil {
			logrus.WithError(err).Error("cron: routing refresh failed")
			return
		}
		logrus.WithFields(logrus.Fields{
			"version": t.Version,
			"rules":   len(t.Rules),
			"failed":  len(t.Failed),
		}).Debug("cron: routing map checked")
	}
}

// RoutesResync re-runs the sync hook for records whose last sync did not complete.
func RoutesResync(routes *routeService.Service) func(...string) {
	return func(...string) {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		n, err := routes.ResyncPending(ctx)
		if err != nil {
			logrus.WithError(err).Error("cron: routes resync failed")
			return
		}
		if n > 0 {
			logrus.WithField("records", n).Info("cron: resynced pending routes")
		}
	}
}
