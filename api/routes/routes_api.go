package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"endpoint.GO/api"
	routeRepo "endpoint.GO/model/repository/route"
	"endpoint.GO/route"
	routeService "endpoint.GO/service/route"
)

func init() {
	api.RegisterModule(RegisterRouteAdmin)
}

type createBody struct {
	Key                string        `json:"key"`
	Name               string        `json:"name"`
	Route              string        `json:"route"`
	RouteGroup         string        `json:"route_group"`
	RouteType          string        `json:"route_type"`
	AuthType           string        `json:"auth_type"`
	RequestMethod      string        `json:"request_method"`
	RequestContentType string        `json:"request_content_type"`
	CSRF               bool          `json:"csrf"`
	Options            route.Options `json:"options"`
	Active             *bool         `json:"active"`
}

type updateBody struct {
	Name               *string        `json:"name"`
	Route              *string        `json:"route"`
	RouteGroup         *string        `json:"route_group"`
	RouteType          *string        `json:"route_type"`
	AuthType           *string        `json:"auth_type"`
	RequestMethod      *string        `json:"request_method"`
	RequestContentType *string        `json:"request_content_type"`
	CSRF               *bool          `json:"csrf"`
	Options            *route.Options `json:"options"`
	Active             *bool          `json:"active"`
}

// RegisterRouteAdmin mounts the route record admin API under /api/routes.
func RegisterRouteAdmin(apiGroup *echo.Group, d *api.Deps) {
	g := apiGroup.Group("/routes")

	// GET /api/routes?group=&active=1&limit=&offset=
	g.GET("", func(c echo.Context) error {
		f := routeRepo.ListFilter{Group: c.QueryParam("group")}
		f.ActiveOnly, _ = strconv.ParseBool(c.QueryParam("active"))
		f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
		f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))
		recs, err := d.Routes.List(c.Request().Context(), f)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"items": recs, "count": len(recs)})
	})

	// GET /api/routes/version – routing version, record counts and the local table version
	g.GET("/version", func(c echo.Context) error {
		ctx := c.Request().Context()
		var (
			version       int64
			total, active int64
		)
		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() (err error) {
			version, err = d.Registry.CurrentVersion(egCtx)
			return
		})
		eg.Go(func() (err error) {
			total, active, err = routeRepo.NewRouteRepository(d.DB).Counts(egCtx)
			return
		})
		if err := eg.Wait(); err != nil {
			return api.Error(c, err)
		}
		resp := echo.Map{"version": version, "total": total, "active": active, "table_version": nil}
		if d.Cache != nil {
			if t := d.Cache.Current(); t != nil {
				resp["table_version"] = t.Version
				resp["failed"] = t.Failed
			}
		}
		return c.JSON(http.StatusOK, resp)
	})

	g.GET("/:key", func(c echo.Context) error {
		rec, err := d.Routes.Get(c.Request().Context(), c.Param("key"))
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	})

	g.POST("", func(c echo.Context) error {
		var body createBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		rec, err := d.Routes.Create(c.Request().Context(), routeService.Input{
			Key:                body.Key,
			Name:               body.Name,
			Route:              body.Route,
			RouteGroup:         body.RouteGroup,
			RouteType:          body.RouteType,
			AuthType:           body.AuthType,
			RequestMethod:      body.RequestMethod,
			RequestContentType: body.RequestContentType,
			CSRF:               body.CSRF,
			Options:            body.Options,
			Active:             body.Active,
		})
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusCreated, rec)
	})

	g.PUT("/:key", func(c echo.Context) error {
		var body updateBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		rec, err := d.Routes.Update(c.Request().Context(), c.Param("key"), routeService.Patch{
			Name:               body.Name,
			Route:              body.Route,
			RouteGroup:         body.RouteGroup,
			RouteType:          body.RouteType,
			AuthType:           body.AuthType,
			RequestMethod:      body.RequestMethod,
			RequestContentType: body.RequestContentType,
			CSRF:               body.CSRF,
			Options:            body.Options,
			Active:             body.Active,
		})
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	})

	g.DELETE("/:key", func(c echo.Context) error {
		if err := d.Routes.Delete(c.Request().Context(), c.Param("key")); err != nil {
			return api.Error(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})

	// POST /api/routes/sync {"keys": [...]} – without keys every pending record is synced
	g.POST("/sync", func(c echo.Context) error {
		var body struct {
			Keys []string `json:"keys"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		ctx := c.Request().Context()
		var (
			n   int
			err error
		)
		if len(body.Keys) > 0 {
			n, err = d.Routes.RequestSync(ctx, body.Keys...)
		} else {
			n, err = d.Routes.ResyncPending(ctx)
		}
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"scheduled": n})
	})
}
