// Standalone read-only GraphQL server over the route store, run with: go run ./cmd/graphql
package main

import (
	"fmt"
	"math/rand"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"endpoint.GO/api"
	graphqlApi "endpoint.GO/api/graphql"
	"endpoint.GO/config"
	"endpoint.GO/model/schema"
)

func main() {
	config.LoadEnv()
	config.LoadAppConfig()
	config.InitLogger()

	db, err := config.NewDB()
	if err != nil {
		logrus.WithError(err).Fatal("db")
	}
	if err := schema.Up(db); err != nil {
		logrus.WithError(err).Fatal("schema")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	graphqlApi.RegisterGraphQLRoutes(e, api.NewDeps(db, nil))

	// ASCII banner on start (random font each run)
	gqlFonts := []string{"banner", "big", "block", "slant", "standard", "small", "shadow", "speed", "thick", "doom", "larry3d", "puffy"}
	fig := figure.NewFigure("Routes GQL ->", gqlFonts[rand.Intn(len(gqlFonts))], true)
	fig.Print()
	fmt.Println("Standalone GraphQL server")

	port := config.Get().Port
	logrus.Infof("GraphQL at http://localhost:%s/graphql  Playground at http://localhost:%s/playground", port, port)
	e.Logger.Fatal(e.Start(":" + port))
}
