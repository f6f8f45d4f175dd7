package rdb

import (
	"context"
	"encoding/json"
	"time"

	"ragtime/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxOutboxRetry   = 5
)

type FollowRepository struct {
	DB *gorm.DB
}

type OutboxRepository struct {
	DB *gorm.DB
}

// Follow 幂等建立关注边。新建时返回 changed=true 并写入 outbox
func (r *FollowRepository) Follow(ctx context.Context, followerID, followingID uint64) (bool, error) {
	rel := model.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
		Timestamp:   time.Now().UTC(),
	}
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
		DoNothing: true,
	}).Omit("Follower", "Following").Create(&rel)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, r.insertOutbox(ctx, model.EventFollow, followerID, followingID)
}

// Unfollow 删除精确的边；不存在时为空操作
func (r *FollowRepository) Unfollow(ctx context.Context, followerID, followingID uint64) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, r.insertOutbox(ctx, model.EventUnfollow, followerID, followingID)
}

// IsFollowing 判断是否关注
func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint64) (bool, error) {
	if followerID == 0 || followingID == 0 {
		return false, nil
	}
	var n int64
	if err := r.DB.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Follow{}).Where("following_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *FollowRepository) CountFollowings(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", userID).Count(&n).Error
	return n, err
}

// ListFollowings 用户关注的人，按 following_id 倒序，cursor 为上一页最后一个 following_id
func (r *FollowRepository) ListFollowings(ctx context.Context, userID uint64, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	limit = clampLimit(limit)
	q := r.DB.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", userID)
	if cursor > 0 {
		q = q.Where("following_id < ?", cursor)
	}
	var rows []model.Follow
	// limit+1 判断是否还有下一页
	if err := q.Preload("Following").Order("following_id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	var next uint64
	if len(rows) > limit {
		next = rows[limit-1].FollowingID
		rows = rows[:limit]
	}
	return rows, next, nil
}

// ListFollowers 用户的粉丝，按 follower_id 倒序
func (r *FollowRepository) ListFollowers(ctx context.Context, userID uint64, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	limit = clampLimit(limit)
	q := r.DB.WithContext(ctx).Model(&model.Follow{}).
		Where("following_id = ?", userID)
	if cursor > 0 {
		q = q.Where("follower_id < ?", cursor)
	}
	var rows []model.Follow
	if err := q.Preload("Follower").Order("follower_id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	var next uint64
	if len(rows) > limit {
		next = rows[limit-1].FollowerID
		rows = rows[:limit]
	}
	return rows, next, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxListLimit {
		return defaultListLimit
	}
	return limit
}

// 插入outbox事件表
func (r *FollowRepository) insertOutbox(ctx context.Context, event string, follower, followee uint64) error {
	payload, err := json.Marshal(map[string]any{
		"event":      event,
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"follower":   follower,
		"followee":   followee,
	})
	if err != nil {
		return err
	}
	ob := &model.SocialOutbox{
		EventType: event,
		Follower:  follower,
		Followee:  followee,
		Payload:   string(payload),
		Status:    model.OutboxPending,
	}
	return r.DB.WithContext(ctx).Create(ob).Error
}

// List 待投递的 outbox 记录（含未超过重试上限的失败记录）
func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.SocialOutbox, error) {
	var list []model.SocialOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = ? OR (status = ? AND retry < ?)", model.OutboxPending, model.OutboxFailed, maxOutboxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate outbox记录消息失败重试
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.SocialOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

// SuccessUpdate outbox成功记录消息更新
func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.SocialOutbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}
