package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// BuiltinModule hosts the handlers shipped with the registry.
const BuiltinModule = "endpoint/handler/builtin"

func init() {
	Register(BuiltinModule, "NotFoundController", func() interface{} { return &NotFoundController{} })
	Register(BuiltinModule, "PingController", func() interface{} { return &PingController{} })
}

// FallbackRef is assigned to records whose owner declares no handler.
func FallbackRef() Ref {
	return Ref{
		ModulePath: BuiltinModule,
		SymbolName: "NotFoundController",
		MethodName: "AutoNotFound",
	}
}

// NotFound is the placeholder installed for routes whose handler cannot be resolved.
func NotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
}

type NotFoundController struct{}

func (NotFoundController) AutoNotFound(c echo.Context, _ Args) error {
	return NotFound(c)
}

type PingController struct{}

// Ping echoes its bound arguments.
func (PingController) Ping(c echo.Context, args Args) error {
	return c.JSON(http.StatusOK, echo.Map{
		"pong":   "ok",
		"args":   args.Positional,
		"kwargs": args.Keyword,
	})
}
