package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/salesdash/internal/clock"
	customerdomain "github.com/smallbiznis/salesdash/internal/customer/domain"
	productdomain "github.com/smallbiznis/salesdash/internal/product/domain"
	regiondomain "github.com/smallbiznis/salesdash/internal/region/domain"
	"github.com/smallbiznis/salesdash/internal/transaction/domain"
	"github.com/smallbiznis/salesdash/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	ProductRepo  productdomain.Repository
	CustomerRepo customerdomain.Repository
	RegionRepo   regiondomain.Repository
	Hooks        []domain.CreatedHook `group:"transaction.created"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	validate     *validator.Validate
	repo         domain.Repository
	productRepo  productdomain.Repository
	customerRepo customerdomain.Repository
	regionRepo   regiondomain.Repository
	hooks        []domain.CreatedHook
}

func New(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("transaction.service"),
		genID:        p.GenID,
		clock:        clk,
		validate:     newValidator(),
		repo:         p.Repo,
		productRepo:  p.ProductRepo,
		customerRepo: p.CustomerRepo,
		regionRepo:   p.RegionRepo,
		hooks:        p.Hooks,
	}
}

func (s *Service) List(ctx context.Context, page pagination.Pagination) (pagination.Page[domain.Detail], error) {
	page = page.Normalize()
	items, total, err := s.repo.List(ctx, s.db, page.PerPage, page.Offset())
	if err != nil {
		return pagination.Page[domain.Detail]{}, err
	}
	return pagination.NewPage(items, page, total), nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Detail, error) {
	req = trimRequest(req)
	verr := domain.NewValidationError()
	if err := collectValidation(s.validate.StructCtx(ctx, req), verr); err != nil {
		return nil, err
	}

	tx := domain.Transaction{}

	if !verr.Has("sales") {
		amount, err := domain.ParseSales(req.Sales)
		switch {
		case errors.Is(err, domain.ErrSalesTooLarge):
			verr.Add("sales", "The sales may not be greater than 9999999999.99.")
		case err != nil:
			verr.Add("sales", "The sales must be at least 0.")
		}
		tx.Sales = amount
	}

	now := s.clock.Now().UTC().Truncate(time.Second)
	tx.TransactionDate = now
	if req.TransactionDate != "" {
		date, ok := parseDate(req.TransactionDate)
		if !ok {
			verr.Add("transaction_date", "The transaction date is not a valid date.")
		}
		tx.TransactionDate = date
	}

	if !verr.Empty() {
		return nil, verr
	}

	if err := s.resolveReferences(ctx, req, &tx, verr); err != nil {
		return nil, err
	}
	if !verr.Empty() {
		return nil, verr
	}

	tx.ID = s.genID.Generate()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	if err := s.repo.Create(ctx, s.db, &tx); err != nil {
		return nil, err
	}

	s.log.Debug("transaction created",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("product_id", tx.ProductID.String()),
	)
	for _, hook := range s.hooks {
		hook.TransactionCreated(ctx, tx)
	}

	detail, err := s.repo.FindDetailByID(ctx, s.db, tx.ID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, errors.New("transaction vanished after insert")
	}
	return detail, nil
}

func (s *Service) resolveReferences(ctx context.Context, req domain.CreateRequest, tx *domain.Transaction, verr *domain.ValidationError) error {
	productID, ok := parseID(req.ProductID)
	if ok {
		product, err := s.productRepo.FindByID(ctx, s.db, productID)
		if err != nil {
			return err
		}
		ok = product != nil
	}
	if !ok {
		verr.Add("product_id", invalidSelection("product_id"))
	}
	tx.ProductID = productID

	if req.CustomerID != "" {
		customerID, ok := parseID(req.CustomerID)
		if ok {
			customer, err := s.customerRepo.FindByID(ctx, s.db, customerID)
			if err != nil {
				return err
			}
			ok = customer != nil
		}
		if !ok {
			verr.Add("customer_id", invalidSelection("customer_id"))
		}
		tx.CustomerID = &customerID
	}

	if req.RegionID != "" {
		regionID, ok := parseID(req.RegionID)
		if ok {
			region, err := s.regionRepo.FindByID(ctx, s.db, regionID)
			if err != nil {
				return err
			}
			ok = region != nil
		}
		if !ok {
			verr.Add("region_id", invalidSelection("region_id"))
		}
		tx.RegionID = &regionID
	}
	return nil
}

func trimRequest(req domain.CreateRequest) domain.CreateRequest {
	req.ProductID = strings.TrimSpace(req.ProductID)
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.RegionID = strings.TrimSpace(req.RegionID)
	req.Sales = strings.TrimSpace(req.Sales)
	req.TransactionDate = strings.TrimSpace(req.TransactionDate)
	return req
}

func parseID(raw string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseDate(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC().Truncate(time.Second), true
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
