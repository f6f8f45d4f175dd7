package service

import (
	"context"
	"errors"
	"fmt"

	"ragtime/internal/model"
	"ragtime/internal/repository/rdb"
)

type RoleService struct {
	store *rdb.Store
}

func NewRoleService(store *rdb.Store) *RoleService {
	return &RoleService{store: store}
}

// InsertRoles 幂等初始化角色：查找或创建，重置后重新授予标准权限，只有 User 为默认
func (s *RoleService) InsertRoles(ctx context.Context) error {
	return s.store.Transaction(ctx, func(uow *rdb.UnitOfWork) error {
		return SeedRoles(ctx, uow.Roles())
	})
}

// SeedRoles stages the canonical role set in roles.
func SeedRoles(ctx context.Context, roles *rdb.RoleRepository) error {
	for _, name := range model.RoleOrder {
		role, err := roles.FindByName(ctx, name)
		if errors.Is(err, rdb.ErrNotFound) {
			role = &model.Role{Name: name}
		} else if err != nil {
			return fmt.Errorf("find role %s: %w", name, err)
		}
		role.ResetPermissions()
		for _, perm := range model.RolePermissions[name] {
			role.AddPermission(perm)
		}
		role.Default = name == model.DefaultRoleName
		if err := roles.Save(ctx, role); err != nil {
			return fmt.Errorf("save role %s: %w", name, err)
		}
	}
	return nil
}

func (s *RoleService) List(ctx context.Context) ([]model.Role, error) {
	return (&rdb.RoleRepository{DB: s.store.DB}).List(ctx)
}

// RolePolicy 决定新用户的角色
type RolePolicy interface {
	ResolveRole(ctx context.Context, roles *rdb.RoleRepository, username string) (*model.Role, error)
}

// AdminNamePolicy 用户名与配置的管理员名一致时授予 Administrator，否则为默认角色
type AdminNamePolicy struct {
	AdminName string
}

func (p AdminNamePolicy) ResolveRole(ctx context.Context, roles *rdb.RoleRepository, username string) (*model.Role, error) {
	if p.AdminName != "" && username == p.AdminName {
		role, err := roles.FindByName(ctx, model.RoleAdministrator)
		if err == nil {
			return role, nil
		}
		if !errors.Is(err, rdb.ErrNotFound) {
			return nil, err
		}
	}
	role, err := roles.FindDefault(ctx)
	if errors.Is(err, rdb.ErrNotFound) {
		return nil, ErrRolesNotSeeded
	}
	return role, err
}
