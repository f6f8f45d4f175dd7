package rdb

import (
	"context"

	"ragtime/internal/model"

	"gorm.io/gorm"
)

type RoleRepository struct {
	DB *gorm.DB
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id uint64) (*model.Role, error) {
	var role model.Role
	if err := r.DB.WithContext(ctx).First(&role, id).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

// FindDefault 默认角色，未初始化时返回 ErrNotFound
func (r *RoleRepository) FindDefault(ctx context.Context) (*model.Role, error) {
	var role model.Role
	if err := r.DB.WithContext(ctx).Where(map[string]any{"default": true}).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *RoleRepository) Save(ctx context.Context, role *model.Role) error {
	return translate(r.DB.WithContext(ctx).Save(role).Error)
}

func (r *RoleRepository) List(ctx context.Context) ([]model.Role, error) {
	var list []model.Role
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&list).Error
	return list, err
}
