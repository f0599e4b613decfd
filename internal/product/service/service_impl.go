package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesdash/internal/product/domain"
	"github.com/smallbiznis/salesdash/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("product.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (pagination.Page[domain.Product], error) {
	page := req.Pagination.Normalize()

	items, total, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Search:   strings.TrimSpace(req.Search),
		Category: strings.TrimSpace(req.Category),
		SortBy:   strings.TrimSpace(req.SortBy),
		OrderBy:  strings.TrimSpace(req.OrderBy),
		Limit:    page.PerPage,
		Offset:   page.Offset(),
	})
	if err != nil {
		return pagination.Page[domain.Product]{}, err
	}

	return pagination.NewPage(items, page, total), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.DetailResponse, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || productID <= 0 {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	stats, err := s.repo.Stats(ctx, s.db, item.ID)
	if err != nil {
		return nil, err
	}

	return &domain.DetailResponse{Product: *item, Stats: stats}, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}
