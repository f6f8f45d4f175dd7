package service

import (
	"context"
	"errors"

	"ragtime/internal/model"
	"ragtime/internal/repository/rdb"
)

type CompositionService struct {
	store   *rdb.Store
	perPage int
}

func NewCompositionService(store *rdb.Store, perPage int) *CompositionService {
	return &CompositionService{store: store, perPage: perPage}
}

func (s *CompositionService) compositions() *rdb.CompositionRepository {
	return &rdb.CompositionRepository{DB: s.store.DB}
}

// PerPage 每页数量
func (s *CompositionService) PerPage() int { return s.perPage }

// Create 先落库拿到 id，再在同一工作单元中写入 slug
func (s *CompositionService) Create(ctx context.Context, uow *rdb.UnitOfWork, artist *model.User, c *model.Composition) error {
	if !artist.Can(model.PermPublish) {
		return ErrForbidden
	}
	c.ArtistID = artist.ID
	c.Artist = artist
	repo := uow.Compositions()
	if err := repo.Create(ctx, c); err != nil {
		return err
	}
	if err := c.GenerateSlug(); err != nil {
		return err
	}
	return repo.Save(ctx, c)
}

// CanModify 作者本人或管理员
func CanModify(u *model.User, c *model.Composition) bool {
	if u == nil {
		return false
	}
	return u.IsAdministrator() || u.ID == c.ArtistID
}

type CompositionInput struct {
	ReleaseType model.ReleaseType
	Title       string
	Description string
}

// Edit 修改后 slug 先置空再按新标题重新生成
func (s *CompositionService) Edit(ctx context.Context, uow *rdb.UnitOfWork, editor *model.User, c *model.Composition, in CompositionInput) error {
	if !CanModify(editor, c) {
		return ErrForbidden
	}
	c.ReleaseType = in.ReleaseType
	c.Title = in.Title
	c.SetDescription(in.Description)
	c.Slug = nil
	repo := uow.Compositions()
	if err := repo.Save(ctx, c); err != nil {
		return err
	}
	if err := c.GenerateSlug(); err != nil {
		return err
	}
	return repo.Save(ctx, c)
}

func (s *CompositionService) Delete(ctx context.Context, uow *rdb.UnitOfWork, editor *model.User, c *model.Composition) error {
	if !CanModify(editor, c) {
		return ErrForbidden
	}
	return uow.Compositions().Delete(ctx, c.ID)
}

func (s *CompositionService) Get(ctx context.Context, id uint64) (*model.Composition, error) {
	c, err := s.compositions().FindByID(ctx, id)
	if errors.Is(err, rdb.ErrNotFound) {
		return nil, ErrCompositionNotFound
	}
	return c, err
}

func (s *CompositionService) GetBySlug(ctx context.Context, slug string) (*model.Composition, error) {
	c, err := s.compositions().FindBySlug(ctx, slug)
	if errors.Is(err, rdb.ErrNotFound) {
		return nil, ErrCompositionNotFound
	}
	return c, err
}

func (s *CompositionService) List(ctx context.Context, page int) (*rdb.CompositionPage, error) {
	return s.compositions().List(ctx, page, s.perPage)
}

func (s *CompositionService) ListByArtist(ctx context.Context, artist *model.User, page int) (*rdb.CompositionPage, error) {
	return s.compositions().ListByArtist(ctx, artist.ID, page, s.perPage)
}
