package rdb

import (
	"context"

	"ragtime/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.DB.WithContext(ctx).Omit("Role").Create(user).Error)
}

// Save 全量更新（后写覆盖）
func (r *UserRepository) Save(ctx context.Context, user *model.User) error {
	return translate(r.DB.WithContext(ctx).Omit("Role").Save(user).Error)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Preload("Role").First(&user, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Preload("Role").Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Preload("Role").Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&n).Error
	return n > 0, err
}

// ListWithoutRole 修复任务用：尚未分配角色的用户
func (r *UserRepository) ListWithoutRole(ctx context.Context) ([]model.User, error) {
	var list []model.User
	err := r.DB.WithContext(ctx).Where("role_id IS NULL").Order("id ASC").Find(&list).Error
	return list, err
}

// ListWithoutSelfFollow 修复任务用：缺少自关注边的用户
func (r *UserRepository) ListWithoutSelfFollow(ctx context.Context) ([]model.User, error) {
	var list []model.User
	err := r.DB.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM follows f WHERE f.follower_id = users.id AND f.following_id = users.id)").
		Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *UserRepository) UpdateLastSeen(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		UpdateColumn("last_seen", user.LastSeen).Error
}

func (r *UserRepository) CountCompositions(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Composition{}).Where("artist_id = ?", userID).Count(&n).Error
	return n, err
}
