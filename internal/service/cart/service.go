package cart

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"directsales/internal/domain"
	"directsales/internal/pricing"
	cartrepo "directsales/internal/repository/cart"
)

type Service struct {
	repo        cartrepo.Repository
	productRepo productRepo
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartrepo.Repository, productRepo productRepo) *Service {
	return &Service{repo: repo, productRepo: productRepo}
}

// View is a cart with its display summary.
type View struct {
	Items     []domain.CartItem `json:"items"`
	ItemCount int               `json:"itemCount"`
	TotalVP   int64             `json:"totalVp"`
	Summary   pricing.Summary   `json:"summary"`
	totals    pricing.Totals
}

// Totals returns the unrounded amounts behind Summary.
func (v View) Totals() pricing.Totals { return v.totals }

type AddInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Get returns the user's cart priced at the display rate.
func (s *Service) Get(ctx context.Context, userID string) (*View, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	totals := pricing.Calculate(pricing.LinesFromCart(items), pricing.DisplayRate)
	view := &View{Items: items, Summary: totals.Display(), totals: totals}
	for _, it := range items {
		view.ItemCount += it.Quantity
		view.TotalVP += it.Snapshot.VPPoints * int64(it.Quantity)
	}
	return view, nil
}

func (s *Service) Add(ctx context.Context, userID string, in AddInput) (*View, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, domain.Invalid("productId", "required")
	}
	if _, err := uuid.Parse(productID); err != nil {
		return nil, domain.Invalid("productId", "product not found")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return nil, domain.Invalid("quantity", "must be positive")
	}
	if s.productRepo == nil {
		return nil, errors.New("product repository unavailable")
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Invalid("productId", "product not found")
		}
		return nil, err
	}
	if _, err := s.repo.AddItem(ctx, userID, *product, in.Quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// ChangeQuantity sets a line's quantity. Zero or less removes the line.
func (s *Service) ChangeQuantity(ctx context.Context, userID, itemID string, quantity int) (*View, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, domain.Invalid("itemId", "required")
	}
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, domain.ErrNotFound
	}
	if err := s.repo.ChangeQuantity(ctx, userID, itemID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, itemID string) (*View, error) {
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, domain.ErrNotFound
	}
	if err := s.repo.Remove(ctx, userID, itemID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID string) (*View, error) {
	if _, err := s.repo.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}
