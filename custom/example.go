package custom

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"endpoint.GO/api"
	"endpoint.GO/cmd"
	"endpoint.GO/cron"
	gqlregistry "endpoint.GO/graphql/registry"
	"endpoint.GO/handler"
)

// HelloModule is the handler module route records can point at, e.g.
// {"module_path":"custom/hello","symbol_name":"HelloController","method_name":"Greet"}.
const HelloModule = "custom/hello"

// HelloController greets args.Keyword["name"], or "world".
type HelloController struct{}

func (HelloController) Greet(c echo.Context, args handler.Args) error {
	name, _ := args.Keyword["name"].(string)
	if q := c.QueryParam("name"); q != "" {
		name = q
	}
	if name == "" {
		name = "world"
	}
	return c.JSON(http.StatusOK, map[string]string{"hello": name})
}

func init() {
	// Handler module for dynamic routes
	handler.Register(HelloModule, "HelloController", func() interface{} { return &HelloController{} })

	// GraphQL extension: query { _extension(name: "handlerModules") }
	gqlregistry.Register("handlerModules", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return handler.Modules(), nil
	})

	// CLI command
	cmd.Register(&cobra.Command{
		Use:   "custom:hello",
		Short: "Custom command example",
		Run: func(c *cobra.Command, args []string) {
			fmt.Fprintln(c.OutOrStdout(), "Hello from custom command")
		},
	})

	// Cron job, manual only: cron:start -j customping
	cron.Register("customping", "", func(args ...string) {
		logrus.WithField("args", args).Info("custom cron: ping")
	})

	// HTTP route
	api.RegisterGET("/custom/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"pong": "ok"})
	})
}
