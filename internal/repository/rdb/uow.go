package rdb

import (
	"errors"

	"gorm.io/gorm"
)

var ErrUnitClosed = errors.New("unit of work already closed")

// UnitOfWork 显式事务句柄：修改先暂存，Commit 后才持久化
type UnitOfWork struct {
	tx     *gorm.DB
	closed bool
}

func (u *UnitOfWork) DB() *gorm.DB { return u.tx }

func (u *UnitOfWork) Users() *UserRepository { return &UserRepository{DB: u.tx} }

func (u *UnitOfWork) Roles() *RoleRepository { return &RoleRepository{DB: u.tx} }

func (u *UnitOfWork) Follows() *FollowRepository { return &FollowRepository{DB: u.tx} }

func (u *UnitOfWork) Compositions() *CompositionRepository { return &CompositionRepository{DB: u.tx} }

func (u *UnitOfWork) Closed() bool { return u.closed }

func (u *UnitOfWork) Commit() error {
	if u.closed {
		return ErrUnitClosed
	}
	u.closed = true
	return translate(u.tx.Commit().Error)
}

// Rollback 已关闭时为空操作，可放在 defer 中
func (u *UnitOfWork) Rollback() error {
	if u.closed {
		return nil
	}
	u.closed = true
	return u.tx.Rollback().Error
}
