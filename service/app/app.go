package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"endpoint.GO/handler"
	entity "endpoint.GO/model/entity"
	appRepo "endpoint.GO/model/repository/app"
	routeRepo "endpoint.GO/model/repository/route"
	"endpoint.GO/model/uow"
	"endpoint.GO/route"
	routeService "endpoint.GO/service/route"
)

// ConsumerModel tags route records owned by apps.
const ConsumerModel = "app"

// HandlerModule hosts the app landing handler.
const HandlerModule = "endpoint/service/app"

var ErrNotFound = errors.New("app: not found")

func init() {
	handler.Register(HandlerModule, "AppController", func() interface{} { return &AppController{} })
}

// URLs are the route patterns derived from an app's root path.
type URLs struct {
	API      string `json:"api"`
	URL      string `json:"url"`
	Docs     string `json:"docs"`
	Manifest string `json:"manifest"`
}

// URLsFor derives the app routes. root must be normalized.
func URLsFor(root, techName string) URLs {
	base := strings.TrimRight(root, "/")
	return URLs{
		API:      base + "/api/",
		URL:      base + "/app/" + techName + "/",
		Docs:     base + "/api-docs/" + techName + "/",
		Manifest: base + "/manifest.json",
	}
}

// APIURLForEndpoint joins an endpoint path onto the app's API root.
func APIURLForEndpoint(a *entity.App, endpoint string) string {
	return URLsFor(a.RootPath, a.TechName).API + strings.TrimLeft(endpoint, "/")
}

// Group is the route group of an app.
func Group(techName string) string { return "app:" + techName }

// owner adapts an App to routeService.RouteOwner.
type owner struct{ app *entity.App }

func (o owner) ConsumerModel() string { return ConsumerModel }
func (o owner) ConsumerID() uint      { return o.app.ID }

func (o owner) RouteInput() routeService.Input {
	urls := URLsFor(o.app.RootPath, o.app.TechName)
	active := o.app.Active
	return routeService.Input{
		Key:        fmt.Sprintf("%s:%d", ConsumerModel, o.app.ID),
		Name:       o.app.Name,
		Route:      urls.URL,
		RouteGroup: Group(o.app.TechName),
		AuthType:   o.app.AuthType,
		Active:     &active,
		Options: route.Options{Handler: handler.Ref{
			ModulePath: HandlerModule,
			SymbolName: "AppController",
			MethodName: "Index",
			DefaultKwargs: map[string]interface{}{
				"tech_name": o.app.TechName,
				"name":      o.app.Name,
				"api":       urls.API,
				"docs":      urls.Docs,
				"manifest":  urls.Manifest,
			},
		}},
	}
}

// AppController serves the app landing route.
type AppController struct{}

func (AppController) Index(c echo.Context, args handler.Args) error {
	return c.JSON(http.StatusOK, args.Keyword)
}

// Input describes an app. Empty AuthType defaults to user; nil Active to true.
type Input struct {
	TechName  string
	Name      string
	ShortName string
	RootPath  string
	AuthType  string
	Active    *bool
}

type Service struct {
	repo   *appRepo.AppRepository
	routes *routeService.Service
}

func NewService(db *gorm.DB, routes *routeService.Service) *Service {
	return &Service{repo: appRepo.NewAppRepository(db), routes: routes}
}

// Create stores the app and its url route in one transaction.
func (s *Service) Create(ctx context.Context, in Input) (*entity.App, error) {
	a := &entity.App{Active: true, AuthType: route.AuthUser}
	if err := s.applyInput(a, in); err != nil {
		return nil, err
	}
	err := s.routes.Runner().Run(ctx, func(tx *uow.Tx) error {
		if err := s.repo.WithTx(tx.DB).Create(ctx, a); err != nil {
			if routeRepo.IsDuplicate(err) {
				return &route.ConflictError{Field: "tech_name or root_path", Value: a.TechName, Err: err}
			}
			return err
		}
		_, err := s.routes.SaveOwnerTx(ctx, tx, owner{a})
		return err
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"tech_name": a.TechName, "root": a.RootPath}).Info("app: created")
	return a, nil
}

// Update rewrites the app and brings its route in line.
func (s *Service) Update(ctx context.Context, techName string, in Input) (*entity.App, error) {
	var a *entity.App
	err := s.routes.Runner().Run(ctx, func(tx *uow.Tx) error {
		repo := s.repo.WithTx(tx.DB)
		cur, err := repo.FindByTechName(ctx, techName)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		in.TechName = cur.TechName
		if err := s.applyInput(cur, in); err != nil {
			return err
		}
		if err := repo.Save(ctx, cur); err != nil {
			if routeRepo.IsDuplicate(err) {
				return &route.ConflictError{Field: "root_path", Value: cur.RootPath, Err: err}
			}
			return err
		}
		a = cur
		_, err = s.routes.SaveOwnerTx(ctx, tx, owner{cur})
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes the app and every route it owns.
func (s *Service) Delete(ctx context.Context, techName string) error {
	return s.routes.Runner().Run(ctx, func(tx *uow.Tx) error {
		repo := s.repo.WithTx(tx.DB)
		a, err := repo.FindByTechName(ctx, techName)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := s.routes.DeleteOwnerTx(ctx, tx, owner{a}); err != nil {
			return err
		}
		return repo.Delete(ctx, a.ID)
	})
}

func (s *Service) Get(ctx context.Context, techName string) (*entity.App, error) {
	a, err := s.repo.FindByTechName(ctx, techName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *Service) List(ctx context.Context) ([]entity.App, error) {
	return s.repo.List(ctx)
}

// Routes returns the route records owned by the app.
func (s *Service) Routes(ctx context.Context, a *entity.App) ([]entity.EndpointRoute, error) {
	return s.routes.OwnerRoutes(ctx, owner{a})
}

func (s *Service) applyInput(a *entity.App, in Input) error {
	if strings.TrimSpace(in.TechName) == "" {
		return &route.ValidationError{Kind: route.KindMissingKey, Field: "app", Keys: []string{"tech_name"}}
	}
	compiler := s.routes.Compiler()
	root := compiler.Normalize(in.RootPath)
	for _, b := range compiler.Blacklist {
		if root == b {
			return &route.ValidationError{Kind: route.KindRouteConflict, Field: "root_path", Value: root}
		}
	}
	a.TechName = strings.TrimSpace(in.TechName)
	a.Name = in.Name
	if a.Name == "" {
		a.Name = a.TechName
	}
	a.ShortName = in.ShortName
	a.RootPath = root
	if in.AuthType != "" {
		a.AuthType = in.AuthType
	}
	if in.Active != nil {
		a.Active = *in.Active
	}
	return nil
}
