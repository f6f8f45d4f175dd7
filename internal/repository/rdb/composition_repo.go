package rdb

import (
	"context"

	"ragtime/internal/model"

	"gorm.io/gorm"
)

type CompositionRepository struct {
	DB *gorm.DB
}

// CompositionPage 页码分页结果
type CompositionPage struct {
	Items   []model.Composition
	Page    int
	PerPage int
	Total   int64
}

func (p *CompositionPage) HasPrev() bool { return p.Page > 1 }

func (p *CompositionPage) HasNext() bool {
	return int64(p.Page*p.PerPage) < p.Total
}

func (r *CompositionRepository) Create(ctx context.Context, c *model.Composition) error {
	return translate(r.DB.WithContext(ctx).Omit("Artist").Create(c).Error)
}

func (r *CompositionRepository) Save(ctx context.Context, c *model.Composition) error {
	return translate(r.DB.WithContext(ctx).Omit("Artist").Save(c).Error)
}

func (r *CompositionRepository) FindByID(ctx context.Context, id uint64) (*model.Composition, error) {
	var c model.Composition
	if err := r.DB.WithContext(ctx).Preload("Artist").First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CompositionRepository) FindBySlug(ctx context.Context, slug string) (*model.Composition, error) {
	var c model.Composition
	if err := r.DB.WithContext(ctx).Preload("Artist").Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Delete 硬删除
func (r *CompositionRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Delete(&model.Composition{}, id).Error
}

// List 全部作品
func (r *CompositionRepository) List(ctx context.Context, page, perPage int) (*CompositionPage, error) {
	return r.paginate(r.DB.WithContext(ctx).Model(&model.Composition{}), page, perPage)
}

// ListByArtist 某用户的作品
func (r *CompositionRepository) ListByArtist(ctx context.Context, artistID uint64, page, perPage int) (*CompositionPage, error) {
	q := r.DB.WithContext(ctx).Model(&model.Composition{}).Where("artist_id = ?", artistID)
	return r.paginate(q, page, perPage)
}

// ListFollowed 用户关注的人（含自己）的作品
func (r *CompositionRepository) ListFollowed(ctx context.Context, userID uint64, page, perPage int) (*CompositionPage, error) {
	q := r.DB.WithContext(ctx).Model(&model.Composition{}).
		Joins("JOIN follows ON follows.following_id = compositions.artist_id").
		Where("follows.follower_id = ?", userID)
	return r.paginate(q, page, perPage)
}

// paginate 按时间倒序；越界页返回空列表而不是错误
func (r *CompositionRepository) paginate(q *gorm.DB, page, perPage int) (*CompositionPage, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultListLimit
	}
	p := &CompositionPage{Page: page, PerPage: perPage}
	if err := q.Session(&gorm.Session{}).Count(&p.Total).Error; err != nil {
		return nil, err
	}
	err := q.Session(&gorm.Session{}).
		Preload("Artist").
		Order("compositions.timestamp DESC").
		Order("compositions.id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&p.Items).Error
	if err != nil {
		return nil, err
	}
	return p, nil
}
