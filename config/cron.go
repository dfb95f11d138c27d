package config

// Built-in cron job names.
const (
	JobRoutingRefresh = "routingrefresh"
	JobRoutesResync   = "routesresync"
)

// CronSchedules maps built-in jobs to their schedule, read from the environment on each call.
// A variable set to the empty string leaves the job to manual runs.
func CronSchedules() map[string]string {
	return map[string]string{
		JobRoutingRefresh: LookupEnv("ROUTING_REFRESH_CRON", "@every 30s"),
		JobRoutesResync:   LookupEnv("ROUTES_RESYNC_CRON", "@every 5m"),
	}
}
