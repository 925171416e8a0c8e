package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"directsales/internal/domain"
	"directsales/internal/logging"
	productrepo "directsales/internal/repository/product"
)

type Service struct {
	repo   productrepo.Repository
	logger *zap.Logger
}

func New(repo productrepo.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logging.OrNop(logger).Named("catalog")}
}

// ProductInput is the admin payload for creating or replacing a product.
type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	Category    string `json:"category"`
	VPPoints    int64  `json:"vpPoints"`
	ImageURL    string `json:"imageUrl"`
	Stock       int    `json:"stock"`
}

func (s *Service) List(ctx context.Context, category, search string) ([]domain.Product, error) {
	return s.repo.List(ctx, productrepo.ListFilter{
		Category: strings.TrimSpace(category),
		Search:   strings.TrimSpace(search),
	})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	p, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("product created", zap.String("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	p, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	p.ID = id
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// AdjustStock adds delta to the product's stock. Stock never goes negative.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	if delta == 0 {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.AdjustStock(ctx, id, delta)
}

// Validate checks a product the way Create does, without writing it.
func Validate(in ProductInput) (domain.Product, error) {
	return in.toProduct()
}

func (in ProductInput) toProduct() (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Product{}, domain.Invalid("name", "required")
	}
	if in.PriceCents < 0 {
		return domain.Product{}, domain.Invalid("priceCents", "must not be negative")
	}
	if in.VPPoints < 0 {
		return domain.Product{}, domain.Invalid("vpPoints", "must not be negative")
	}
	if in.Stock < 0 {
		return domain.Product{}, domain.Invalid("stock", "must not be negative")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = domain.DefaultCategory
	}
	return domain.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		Category:    category,
		VPPoints:    in.VPPoints,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Stock:       in.Stock,
	}, nil
}
