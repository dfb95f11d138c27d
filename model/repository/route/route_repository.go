package route

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	entity "endpoint.GO/model/entity"
)

type RouteRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *RouteRepository) WithTx(tx *gorm.DB) *RouteRepository {
	return &RouteRepository{db: tx}
}

func (r *RouteRepository) DB() *gorm.DB { return r.db }

// FindActive returns active records, filtered by group and sorted by route when group is set.
func (r *RouteRepository) FindActive(ctx context.Context, group string) ([]entity.EndpointRoute, error) {
	q := r.db.WithContext(ctx).Where(map[string]interface{}{"active": true})
	if group != "" {
		q = q.Where(map[string]interface{}{"route_group": group}).Order("route ASC")
	} else {
		q = q.Order("id ASC")
	}
	var out []entity.EndpointRoute
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Group      string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// List returns records for administration, inactive ones included unless ActiveOnly.
func (r *RouteRepository) List(ctx context.Context, f ListFilter) ([]entity.EndpointRoute, error) {
	q := r.db.WithContext(ctx).Order("route ASC")
	if f.Group != "" {
		q = q.Where(map[string]interface{}{"route_group": f.Group})
	}
	if f.ActiveOnly {
		q = q.Where(map[string]interface{}{"active": true})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var out []entity.EndpointRoute
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindByKey returns gorm.ErrRecordNotFound when no record matches.
func (r *RouteRepository) FindByKey(ctx context.Context, key string, activeOnly bool) (*entity.EndpointRoute, error) {
	cond := map[string]interface{}{"key": key}
	if activeOnly {
		cond["active"] = true
	}
	var rec entity.EndpointRoute
	if err := r.db.WithContext(ctx).Where(cond).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RouteRepository) FindByID(ctx context.Context, id uint) (*entity.EndpointRoute, error) {
	var rec entity.EndpointRoute
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindByIDs returns the records that still exist among ids.
func (r *RouteRepository) FindByIDs(ctx context.Context, ids []uint) ([]entity.EndpointRoute, error) {
	var out []entity.EndpointRoute
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindByConsumer returns the records owned by a consumer.
func (r *RouteRepository) FindByConsumer(ctx context.Context, model string, ref uint) ([]entity.EndpointRoute, error) {
	var out []entity.EndpointRoute
	err := r.db.WithContext(ctx).
		Where(map[string]interface{}{"consumer_model": model, "consumer_ref": ref}).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Exists reports whether another record (id != excludeID) already uses column=value.
func (r *RouteRepository) Exists(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&entity.EndpointRoute{}).Where(map[string]interface{}{column: value})
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RouteRepository) Create(ctx context.Context, rec *entity.EndpointRoute) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// Save writes every column of rec.
func (r *RouteRepository) Save(ctx context.Context, rec *entity.EndpointRoute) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *RouteRepository) Delete(ctx context.Context, ids ...uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Delete(&entity.EndpointRoute{}, ids)
	return res.RowsAffected, res.Error
}

// MarkSynced flags the active records among ids as in sync.
func (r *RouteRepository) MarkSynced(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&entity.EndpointRoute{}).
		Where("id IN ?", ids).
		Where(map[string]interface{}{"active": true, "registry_sync": false}).
		Update("registry_sync", true)
	return res.RowsAffected, res.Error
}

// MarkUnsynced flags ids as out of sync.
func (r *RouteRepository) MarkUnsynced(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.EndpointRoute{}).
		Where("id IN ?", ids).
		Update("registry_sync", false).Error
}

// FindUnsyncedIDs returns active records not yet marked in sync.
func (r *RouteRepository) FindUnsyncedIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.EndpointRoute{}).
		Where(map[string]interface{}{"active": true, "registry_sync": false}).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// CurrentVersion reads the routing version counter.
func (r *RouteRepository) CurrentVersion(ctx context.Context) (int64, error) {
	var v entity.RouteVersion
	if err := r.db.WithContext(ctx).First(&v, 1).Error; err != nil {
		return 0, err
	}
	return v.Version, nil
}

// Counts returns the total and active record counts.
func (r *RouteRepository) Counts(ctx context.Context) (total, active int64, err error) {
	if err = r.db.WithContext(ctx).Model(&entity.EndpointRoute{}).Count(&total).Error; err != nil {
		return
	}
	err = r.db.WithContext(ctx).Model(&entity.EndpointRoute{}).
		Where(map[string]interface{}{"active": true}).
		Count(&active).Error
	return
}

// IsDuplicate reports a unique constraint violation from any supported driver.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// DuplicateColumn guesses the violated column from the driver message, or "".
func DuplicateColumn(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "endpoint_route.key"), strings.Contains(msg, "uniq_endpoint_route_key"):
		return "key"
	case strings.Contains(msg, "endpoint_route.route"), strings.Contains(msg, "uniq_endpoint_route_route"):
		return "route"
	}
	return ""
}
