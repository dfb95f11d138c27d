package html

import (
	"embed"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"endpoint.GO/api"
	parts "endpoint.GO/html/parts"
)

//go:embed templates/*.html
var templateFS embed.FS

type Template struct {
	Templates *template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.Templates.ExecuteTemplate(w, name, data)
}

// NewTemplate parses the embedded page templates.
func NewTemplate() *Template {
	return &Template{Templates: template.Must(template.ParseFS(templateFS, "templates/*.html"))}
}

func init() {
	api.RegisterHTMLModule(RegisterRoutesHTMLRoutes)
}

// RegisterRoutesHTMLRoutes serves /routes/:group, the registered routes of a group as "route (METHODS)".
// "-" selects the ungrouped listing of every active route. ?format=text returns plain lines.
func RegisterRoutesHTMLRoutes(e *echo.Echo, d *api.Deps) {
	tmpl := NewTemplate()
	e.GET("/routes/:group", func(c echo.Context) error {
		group := c.Param("group")
		if group == "-" {
			group = ""
		}
		start := time.Now()
		lines, err := d.Registry.RegisteredRoutes(c.Request().Context(), group)
		logrus.WithField("group", group).Debugf("RegisteredRoutes took %s", time.Since(start))
		if err != nil {
			logrus.WithError(err).Error("html: list routes")
			return c.String(http.StatusInternalServerError, "Error listing routes")
		}
		if c.QueryParam("format") == "text" {
			return c.String(http.StatusOK, strings.Join(lines, "\n"))
		}
		title := "Registered routes"
		if group != "" {
			title += " - " + group
		}
		var buf strings.Builder
		err = tmpl.Render(&buf, "routes.html", map[string]interface{}{
			"Title":       title,
			"Routes":      lines,
			"CriticalCSS": template.CSS(parts.GetCriticalCSS()),
		}, c)
		if err != nil {
			logrus.WithError(err).Error("html: render routes")
			return c.String(http.StatusInternalServerError, "Error rendering routes")
		}
		return c.HTML(http.StatusOK, buf.String())
	})
}
