package route

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"endpoint.GO/handler"
	entity "endpoint.GO/model/entity"
	routeRepo "endpoint.GO/model/repository/route"
	"endpoint.GO/model/uow"
	"endpoint.GO/notify"
	"endpoint.GO/route"
	"endpoint.GO/routingmap"
)

var ErrNotFound = errors.New("route: record not found")

// Input describes a route record to create. Empty fields take their defaults.
type Input struct {
	Key                string
	Name               string
	Route              string
	RouteGroup         string
	RouteType          string
	AuthType           string
	RequestMethod      string
	RequestContentType string
	CSRF               bool
	Options            route.Options
	Active             *bool
	ConsumerModel      string
	ConsumerRef        uint
}

// Patch changes the non-nil fields of a record.
type Patch struct {
	Name               *string
	Route              *string
	RouteGroup         *string
	RouteType          *string
	AuthType           *string
	RequestMethod      *string
	RequestContentType *string
	CSRF               *bool
	Options            *route.Options
	Active             *bool
}

// Service writes route records and keeps them in sync with the routing map.
type Service struct {
	db       *gorm.DB
	repo     *routeRepo.RouteRepository
	compiler *route.Compiler
	runner   *uow.Runner
	cache    *routingmap.Cache
	notifier notify.Notifier
}

type Option func(*Service)

// WithCache lets deletes invalidate the local routing map immediately.
func WithCache(c *routingmap.Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func NewService(db *gorm.DB, compiler *route.Compiler, opts ...Option) *Service {
	s := &Service{
		db:       db,
		repo:     routeRepo.NewRouteRepository(db),
		compiler: compiler,
		notifier: notify.Noop{},
	}
	for _, o := range opts {
		o(s)
	}
	s.runner = uow.New(db, s.sync)
	return s
}

// Runner returns the unit-of-work runner wired to this service's sync hook.
func (s *Service) Runner() *uow.Runner { return s.runner }

func (s *Service) Compiler() *route.Compiler { return s.compiler }

func (s *Service) Create(ctx context.Context, in Input) (*entity.EndpointRoute, error) {
	var rec *entity.EndpointRoute
	err := s.runner.Run(ctx, func(tx *uow.Tx) error {
		var err error
		rec, err = s.CreateTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CreateTx creates a record inside an open unit of work.
func (s *Service) CreateTx(ctx context.Context, tx *uow.Tx, in Input) (*entity.EndpointRoute, error) {
	in = s.withDefaults(in)
	if in.Key == "" {
		return nil, &route.ValidationError{Kind: route.KindMissingKey, Field: "record", Keys: []string{"key"}}
	}
	prep, err := s.compiler.Prepare(route.Fields{
		Route:              in.Route,
		RouteType:          in.RouteType,
		AuthType:           in.AuthType,
		RequestMethod:      in.RequestMethod,
		RequestContentType: in.RequestContentType,
		CSRF:               in.CSRF,
		Options:            in.Options,
	})
	if err != nil {
		return nil, err
	}
	rec := &entity.EndpointRoute{
		Key:           in.Key,
		Name:          in.Name,
		ConsumerModel: in.ConsumerModel,
		ConsumerRef:   in.ConsumerRef,
		Active:        *in.Active,
	}
	if in.RouteGroup != "" {
		g := in.RouteGroup
		rec.RouteGroup = &g
	}
	if err := apply(rec, prep); err != nil {
		return nil, err
	}

	repo := s.repo.WithTx(tx.DB)
	if err := checkUnique(ctx, repo, rec); err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, rec); err != nil {
		return nil, translate(err, rec)
	}
	tx.ScheduleSync(rec.ID)
	logrus.WithFields(logrus.Fields{"key": rec.Key, "route": rec.Route}).Info("route: created")
	return rec, nil
}

func (s *Service) withDefaults(in Input) Input {
	if in.Key == "" && in.ConsumerModel != "" && in.ConsumerRef != 0 {
		in.Key = fmt.Sprintf("%s:%d", in.ConsumerModel, in.ConsumerRef)
	}
	if in.Name == "" {
		in.Name = in.Key
	}
	if in.RouteType == "" {
		in.RouteType = string(route.TypeHTTP)
	}
	if in.AuthType == "" {
		in.AuthType = route.AuthUser
	}
	if in.RequestMethod == "" {
		in.RequestMethod = "GET"
	}
	if in.Active == nil {
		active := true
		in.Active = &active
	}
	if in.Options.Handler.ModulePath == "" && in.Options.Handler.MethodName == "" {
		logrus.WithField("key", in.Key).Warn("route: no handler declared, using fallback")
		in.Options.Handler = handler.FallbackRef()
	}
	return in
}

// Update applies p to the record with key. Changes to dispatch fields or to active
// mark the record out of sync and schedule a sync.
func (s *Service) Update(ctx context.Context, key string, p Patch) (*entity.EndpointRoute, error) {
	var rec *entity.EndpointRoute
	err := s.runner.Run(ctx, func(tx *uow.Tx) error {
		repo := s.repo.WithTx(tx.DB)
		cur, err := repo.FindByKey(ctx, key, false)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		rec, err = s.UpdateTx(ctx, tx, cur, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateTx applies p to rec inside an open unit of work.
func (s *Service) UpdateTx(ctx context.Context, tx *uow.Tx, rec *entity.EndpointRoute, p Patch) (*entity.EndpointRoute, error) {
	f, err := fieldsOf(rec)
	if err != nil {
		return nil, err
	}
	if p.Route != nil {
		f.Route = *p.Route
	}
	if p.RouteType != nil {
		f.RouteType = *p.RouteType
	}
	if p.AuthType != nil {
		f.AuthType = *p.AuthType
	}
	if p.RequestMethod != nil {
		f.RequestMethod = *p.RequestMethod
	}
	if p.RequestContentType != nil {
		f.RequestContentType = *p.RequestContentType
	}
	if p.CSRF != nil {
		f.CSRF = *p.CSRF
	}
	if p.Options != nil {
		f.Options = *p.Options
	}
	prep, err := s.compiler.Prepare(f)
	if err != nil {
		return nil, err
	}

	dirty := prep.Hash != rec.EndpointHash ||
		prep.Fields.RouteType != rec.RouteType ||
		prep.Fields.RequestContentType != rec.RequestContentType
	if p.Active != nil && *p.Active != rec.Active {
		rec.Active = *p.Active
		dirty = true
	}
	if p.Name != nil {
		rec.Name = *p.Name
	}
	if p.RouteGroup != nil {
		if *p.RouteGroup == "" {
			rec.RouteGroup = nil
		} else {
			g := *p.RouteGroup
			rec.RouteGroup = &g
		}
	}
	if err := apply(rec, prep); err != nil {
		return nil, err
	}
	if dirty {
		rec.RegistrySync = false
	}

	repo := s.repo.WithTx(tx.DB)
	if err := checkUnique(ctx, repo, rec); err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, rec); err != nil {
		return nil, translate(err, rec)
	}
	if dirty {
		tx.ScheduleSync(rec.ID)
	}
	logrus.WithFields(logrus.Fields{"key": rec.Key, "route": rec.Route, "dirty": dirty}).Info("route: updated")
	return rec, nil
}

// Delete removes the record with key and invalidates the local routing map after commit.
func (s *Service) Delete(ctx context.Context, key string) error {
	return s.runner.Run(ctx, func(tx *uow.Tx) error {
		rec, err := s.repo.WithTx(tx.DB).FindByKey(ctx, key, false)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return s.DeleteTx(ctx, tx, *rec)
	})
}

// DeleteTx removes recs inside an open unit of work.
func (s *Service) DeleteTx(ctx context.Context, tx *uow.Tx, recs ...entity.EndpointRoute) error {
	if len(recs) == 0 {
		return nil
	}
	ids := make([]uint, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	if _, err := s.repo.WithTx(tx.DB).Delete(ctx, ids...); err != nil {
		return err
	}
	tx.AfterCommit(s.afterDelete)
	logrus.WithField("ids", ids).Info("route: deleted")
	return nil
}

func (s *Service) afterDelete(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate()
	}
	s.publish(ctx)
}

// RequestSync marks the records with keys out of sync and schedules their sync.
// Unknown keys are ignored. It returns the number of records scheduled.
func (s *Service) RequestSync(ctx context.Context, keys ...string) (int, error) {
	n := 0
	err := s.runner.Run(ctx, func(tx *uow.Tx) error {
		repo := s.repo.WithTx(tx.DB)
		var ids []uint
		for _, key := range keys {
			rec, err := repo.FindByKey(ctx, key, false)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			ids = append(ids, rec.ID)
		}
		if err := repo.MarkUnsynced(ctx, ids); err != nil {
			return err
		}
		tx.ScheduleSync(ids...)
		n = len(ids)
		return nil
	})
	return n, err
}

// ResyncPending schedules a sync for every active record not marked in sync.
func (s *Service) ResyncPending(ctx context.Context) (int, error) {
	ids, err := s.repo.FindUnsyncedIDs(ctx)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	err = s.runner.Run(ctx, func(tx *uow.Tx) error {
		tx.ScheduleSync(ids...)
		return nil
	})
	return len(ids), err
}

func (s *Service) Get(ctx context.Context, key string) (*entity.EndpointRoute, error) {
	rec, err := s.repo.FindByKey(ctx, key, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (s *Service) List(ctx context.Context, f routeRepo.ListFilter) ([]entity.EndpointRoute, error) {
	return s.repo.List(ctx, f)
}

// sync is the post-commit hook: records that still exist and are active are marked in sync.
// Failures are logged only.
func (s *Service) sync(ctx context.Context, ids []uint) {
	log := logrus.WithField("ids", ids)
	var marked int64
	err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		repo := s.repo.WithTx(gtx)
		recs, err := repo.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		live := make([]uint, 0, len(recs))
		for _, r := range recs {
			if r.Active {
				live = append(live, r.ID)
			}
		}
		marked, err = repo.MarkSynced(ctx, live)
		return err
	})
	if err != nil {
		log.WithError(err).Error("route: sync failed")
		return
	}
	log.WithField("marked", marked).Debug("route: synced")
	if s.cache != nil {
		s.cache.MarkStale()
	}
	s.publish(ctx)
}

func (s *Service) publish(ctx context.Context) {
	v, err := s.repo.CurrentVersion(ctx)
	if err != nil {
		logrus.WithError(err).Warn("route: read version for notify")
		return
	}
	if err := s.notifier.Publish(ctx, v); err != nil {
		logrus.WithError(err).WithField("version", v).Warn("route: notify failed")
	}
}

func apply(rec *entity.EndpointRoute, prep *route.Prepared) error {
	opts, err := route.EncodeOptions(prep.Fields.Options)
	if err != nil {
		return err
	}
	routing, err := route.EncodeRouting(prep.Routing)
	if err != nil {
		return err
	}
	rec.Route = prep.Fields.Route
	rec.RouteType = prep.Fields.RouteType
	rec.AuthType = prep.Fields.AuthType
	rec.RequestMethod = prep.Fields.RequestMethod
	rec.RequestContentType = prep.Fields.RequestContentType
	rec.CSRF = prep.Fields.CSRF
	rec.Options = datatypes.JSON(opts)
	rec.Routing = datatypes.JSON(routing)
	rec.EndpointHash = prep.Hash
	return nil
}

func fieldsOf(rec *entity.EndpointRoute) (route.Fields, error) {
	opts, err := route.DecodeOptions(rec.Options)
	if err != nil {
		return route.Fields{}, err
	}
	return route.Fields{
		Route:              rec.Route,
		RouteType:          rec.RouteType,
		AuthType:           rec.AuthType,
		RequestMethod:      rec.RequestMethod,
		RequestContentType: rec.RequestContentType,
		CSRF:               rec.CSRF,
		Options:            opts,
	}, nil
}

func checkUnique(ctx context.Context, repo *routeRepo.RouteRepository, rec *entity.EndpointRoute) error {
	for _, col := range []struct{ name, value string }{{"key", rec.Key}, {"route", rec.Route}} {
		exists, err := repo.Exists(ctx, col.name, col.value, rec.ID)
		if err != nil {
			return err
		}
		if exists {
			return &route.ConflictError{Field: col.name, Value: col.value}
		}
	}
	return nil
}

func translate(err error, rec *entity.EndpointRoute) error {
	if !routeRepo.IsDuplicate(err) {
		return err
	}
	switch routeRepo.DuplicateColumn(err) {
	case "key":
		return &route.ConflictError{Field: "key", Value: rec.Key, Err: err}
	case "route":
		return &route.ConflictError{Field: "route", Value: rec.Route, Err: err}
	}
	return &route.ConflictError{Field: "key or route", Err: err}
}
