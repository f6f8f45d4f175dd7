package service

import (
	"context"
	"time"

	"ragtime/internal/logger"
	"ragtime/internal/model"
	"ragtime/internal/pkg"
	"ragtime/internal/repository/rdb"
)

type FollowService struct {
	store *rdb.Store
}

type Sender func(ctx context.Context, ob *model.SocialOutbox) error

// OutboxRelayer outbox表相关服务
type OutboxRelayer struct {
	repo      *rdb.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewFollowService(store *rdb.Store) *FollowService {
	return &FollowService{store: store}
}

func NewOutboxRelayer(store *rdb.Store, sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      &rdb.OutboxRepository{DB: store.DB},
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
	}
}

func (s *FollowService) follows() *rdb.FollowRepository {
	return &rdb.FollowRepository{DB: s.store.DB}
}

// Follow 在工作单元中暂存关注边，已关注时为空操作
func (s *FollowService) Follow(ctx context.Context, uow *rdb.UnitOfWork, follower, target *model.User) (bool, error) {
	if follower.ID == 0 || target.ID == 0 {
		return false, ErrInvalidUser
	}
	return uow.Follows().Follow(ctx, follower.ID, target.ID)
}

// Unfollow 不允许取消自关注
func (s *FollowService) Unfollow(ctx context.Context, uow *rdb.UnitOfWork, follower, target *model.User) (bool, error) {
	if follower.ID == 0 || target.ID == 0 {
		return false, ErrInvalidUser
	}
	if follower.ID == target.ID {
		return false, ErrCannotUnfollowSelf
	}
	return uow.Follows().Unfollow(ctx, follower.ID, target.ID)
}

// IsFollowing 未持久化的目标一律返回 false
func (s *FollowService) IsFollowing(ctx context.Context, follower, target *model.User) (bool, error) {
	if follower == nil || target == nil {
		return false, nil
	}
	return s.follows().IsFollowing(ctx, follower.ID, target.ID)
}

// IsAFollower other 是否是 u 的粉丝
func (s *FollowService) IsAFollower(ctx context.Context, u, other *model.User) (bool, error) {
	if u == nil || other == nil {
		return false, nil
	}
	return s.follows().IsFollowing(ctx, other.ID, u.ID)
}

// FollowedCompositions u 关注的人（含自己）的作品，按时间倒序分页
func (s *FollowService) FollowedCompositions(ctx context.Context, u *model.User, page, perPage int) (*rdb.CompositionPage, error) {
	return (&rdb.CompositionRepository{DB: s.store.DB}).ListFollowed(ctx, u.ID, page, perPage)
}

func (s *FollowService) CountFollowers(ctx context.Context, u *model.User) (int64, error) {
	return s.follows().CountFollowers(ctx, u.ID)
}

func (s *FollowService) CountFollowings(ctx context.Context, u *model.User) (int64, error) {
	return s.follows().CountFollowings(ctx, u.ID)
}

func (s *FollowService) ListFollowings(ctx context.Context, userID uint64, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	return s.follows().ListFollowings(ctx, userID, cursor, limit)
}

func (s *FollowService) ListFollowers(ctx context.Context, userID uint64, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	return s.follows().ListFollowers(ctx, userID, cursor, limit)
}

// AddSelfFollows 给缺少自关注边的用户补边，返回修复数量
func (s *FollowService) AddSelfFollows(ctx context.Context) (int, error) {
	fixed := 0
	err := s.store.Transaction(ctx, func(uow *rdb.UnitOfWork) error {
		users, err := uow.Users().ListWithoutSelfFollow(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			changed, err := uow.Follows().Follow(ctx, u.ID, u.ID)
			if err != nil {
				return err
			}
			if changed {
				fixed++
			}
		}
		return nil
	})
	return fixed, err
}

// Run outbox启动器
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce 投递一批 outbox 记录，返回成功数量
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		logger.Warningf("outbox query err: %v", err)
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err := r.sender(ctx, &ob); err != nil {
			logger.Debugf("outbox send id=%d err: %v", ob.ID, err)
			if err := r.repo.RetryUpdate(ctx, ob.ID); err != nil {
				logger.Warningf("outbox retry update id=%d err: %v", ob.ID, err)
			}
			continue
		}
		if err := r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			logger.Warningf("outbox success update id=%d err: %v", ob.ID, err)
			continue
		}
		sent++
	}
	return sent
}

// LogSender 未配置 kafka 时使用：只打印
func LogSender(_ context.Context, ob *model.SocialOutbox) error {
	logger.Infof("outbox send type=%s follower=%d followee=%d payload=%s", ob.EventType, ob.Follower, ob.Followee, ob.Payload)
	return nil
}

// KafkaSender 以关注者 id 为 key，保证同一用户的事件有序
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.SocialOutbox) error {
		return p.Send(ctx, pkg.MakeKeyFromID(ob.Follower), []byte(ob.Payload))
	}
}
