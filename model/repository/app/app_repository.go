package app

import (
	"context"

	"gorm.io/gorm"

	entity "endpoint.GO/model/entity"
)

type AppRepository struct {
	db *gorm.DB
}

func NewAppRepository(db *gorm.DB) *AppRepository {
	return &AppRepository{db: db}
}

func (r *AppRepository) WithTx(tx *gorm.DB) *AppRepository {
	return &AppRepository{db: tx}
}

func (r *AppRepository) FindByTechName(ctx context.Context, techName string) (*entity.App, error) {
	var a entity.App
	if err := r.db.WithContext(ctx).Where(map[string]interface{}{"tech_name": techName}).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppRepository) List(ctx context.Context) ([]entity.App, error) {
	var out []entity.App
	if err := r.db.WithContext(ctx).Order("tech_name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AppRepository) Create(ctx context.Context, a *entity.App) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AppRepository) Save(ctx context.Context, a *entity.App) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AppRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.App{}, id).Error
}
