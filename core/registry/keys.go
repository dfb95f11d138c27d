package registry

// Core keys for GlobalRegistry.
const (
	// Extension registries (cmd, cron, api, graphql, handler) stored in GlobalRegistry
	KeyRegistryCmd     = "registry:cmd"
	KeyRegistryCron    = "registry:cron"
	KeyRegistryAPI     = "registry:api"
	KeyRegistryGraphQL = "registry:graphql"
	KeyRegistryRoutes  = "registry:routes"
	KeyRegistryHandler = "registry:handler"
	KeyRegistryAuth    = "registry:auth"
)
