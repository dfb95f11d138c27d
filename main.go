//go:build !cli

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"endpoint.GO/api"
	_ "endpoint.GO/api/apps"
	_ "endpoint.GO/api/graphql"
	_ "endpoint.GO/api/routes"
	"endpoint.GO/config"
	"endpoint.GO/core/auth"
	"endpoint.GO/cron"
	"endpoint.GO/cron/jobs"
	_ "endpoint.GO/custom"
	"endpoint.GO/handler"
	_ "endpoint.GO/html"
	"endpoint.GO/model/schema"
	"endpoint.GO/notify"
	"endpoint.GO/routingmap"
)

func main() {
	config.LoadEnv()
	config.LoadAppConfig()
	config.InitLogger()
	cfg := config.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Redis
	config.InitRedis()
	var notifier notify.Notifier
	if config.RedisClient != nil {
		pingCtx, cancel := config.RedisCtx()
		err := config.RedisClient.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			notifier = notify.NewRedisNotifier(config.RedisClient, config.RedisChannel(notify.DefaultChannel))
			logrus.Info("Redis connection successful, routing changes will be broadcast.")
		} else {
			config.RedisClient = nil // Disable Redis if not reachable
			logrus.WithError(err).Warn("Redis configured but not reachable, peers rely on polling.")
		}
	}

	db, err := config.NewDB()
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to DB")
	}
	sqldb, err := db.DB()
	if err != nil {
		logrus.WithError(err).Fatal("failed to get DB instance")
	}
	if err := sqldb.Ping(); err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	if err := schema.Migrate(db, config.MySQLDSN()); err != nil {
		logrus.WithError(err).Fatal("schema")
	}
	logrus.Info("Database connection successful.")

	d := api.NewDeps(db, notifier)
	if n, ok := notifier.(*notify.RedisNotifier); ok {
		go func() {
			err := n.Subscribe(ctx, func(v int64) {
				if cur := d.Cache.Current(); cur == nil || cur.Version < v {
					d.Cache.MarkStale()
				}
			})
			if err != nil && ctx.Err() == nil {
				logrus.WithError(err).Warn("notify: subscription ended")
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start).Milliseconds()
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
			return err
		}
	})

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware())
	api.ApplyModules(apiGroup, d)
	api.ApplyRoutes(e, d)
	routingmap.Mount(e, d.Cache)
	handler.Lock()

	jobs.Register(d.Cache, d.Routes)
	scheduler, err := cron.StartCron()
	if err != nil {
		logrus.WithError(err).Fatal("cron")
	}
	defer scheduler.Stop()

	if _, err := d.Cache.Refresh(ctx); err != nil {
		logrus.WithError(err).Warn("routing map warm-up failed, first request will retry")
	}

	figure.NewFigure(cfg.AppName, "slant", true).Print()
	fmt.Println()
	logrus.Infof("Server running on :%s", cfg.Port)

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdown)
	}()
	if err := e.Start(":" + cfg.Port); err != nil && ctx.Err() == nil {
		logrus.WithError(err).Fatal("server")
	}
}
