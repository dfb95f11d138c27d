package apps

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"endpoint.GO/api"
	entity "endpoint.GO/model/entity"
	appService "endpoint.GO/service/app"
)

func init() {
	api.RegisterModule(RegisterAppAdmin)
}

type appBody struct {
	TechName  string `json:"tech_name"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	RootPath  string `json:"root_path"`
	AuthType  string `json:"auth_type"`
	Active    *bool  `json:"active"`
}

func (b appBody) input() appService.Input {
	return appService.Input{
		TechName:  b.TechName,
		Name:      b.Name,
		ShortName: b.ShortName,
		RootPath:  b.RootPath,
		AuthType:  b.AuthType,
		Active:    b.Active,
	}
}

func view(a *entity.App) echo.Map {
	return echo.Map{
		"app":  a,
		"urls": appService.URLsFor(a.RootPath, a.TechName),
	}
}

// RegisterAppAdmin mounts the app admin API under /api/apps.
func RegisterAppAdmin(apiGroup *echo.Group, d *api.Deps) {
	g := apiGroup.Group("/apps")

	g.GET("", func(c echo.Context) error {
		list, err := d.Apps.List(c.Request().Context())
		if err != nil {
			return api.Error(c, err)
		}
		items := make([]echo.Map, 0, len(list))
		for i := range list {
			items = append(items, view(&list[i]))
		}
		return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
	})

	g.GET("/:tech", func(c echo.Context) error {
		a, err := d.Apps.Get(c.Request().Context(), c.Param("tech"))
		if err != nil {
			return api.Error(c, err)
		}
		routes, err := d.Apps.Routes(c.Request().Context(), a)
		if err != nil {
			return api.Error(c, err)
		}
		v := view(a)
		v["routes"] = routes
		return c.JSON(http.StatusOK, v)
	})

	g.POST("", func(c echo.Context) error {
		var body appBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		a, err := d.Apps.Create(c.Request().Context(), body.input())
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusCreated, view(a))
	})

	g.PUT("/:tech", func(c echo.Context) error {
		var body appBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		a, err := d.Apps.Update(c.Request().Context(), c.Param("tech"), body.input())
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, view(a))
	})

	g.DELETE("/:tech", func(c echo.Context) error {
		if err := d.Apps.Delete(c.Request().Context(), c.Param("tech")); err != nil {
			return api.Error(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}
