package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"endpoint.GO/route"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName string
	Port    string
	Env     string
	Debug   bool

	// RoutePrefix is prepended to every registered route that does not already carry it.
	RoutePrefix    string
	RouteBlacklist []string
	// RoutingCheckInterval throttles version reads on the dispatch path. Zero checks on every request.
	RoutingCheckInterval time.Duration
	// HandlerCache memoizes handler resolution across rebuilds.
	HandlerCache bool
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		AppConfig = &Config{
			AppName:              GetEnv("APP_NAME", "endpoint.GO"),
			Port:                 GetEnv("PORT", "8080"),
			Env:                  GetEnv("APP_ENV", "prod"),
			Debug:                os.Getenv("DEBUG") == "true",
			RoutePrefix:          os.Getenv("ROUTE_PREFIX"),
			RouteBlacklist:       parseList(os.Getenv("ROUTE_BLACKLIST"), route.DefaultBlacklist),
			RoutingCheckInterval: parseDuration(os.Getenv("ROUTING_CHECK_INTERVAL")),
			HandlerCache:         os.Getenv("HANDLER_CACHE") == "true",
		}
	})
}

// Get returns AppConfig, loading it on first use.
func Get() *Config {
	LoadAppConfig()
	return AppConfig
}

func parseList(raw string, fallback []string) []string {
	if strings.TrimSpace(raw) == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}
