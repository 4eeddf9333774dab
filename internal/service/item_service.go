package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hexarch/items-api/internal/model"
	"github.com/hexarch/items-api/internal/repository"
)

// ErrInvalidInput marks a validation failure caught before storage is touched.
var ErrInvalidInput = errors.New("invalid input")

// ItemService implements the item use cases on top of the repository port.
// Missing items surface as nil results, not errors; the HTTP layer decides
// what absence means.
type ItemService interface {
	Get(ctx context.Context, id uint64) (*model.Item, error)
	List(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, name string, description *string, price float64, isActive bool) (*model.Item, error)
	Update(ctx context.Context, id uint64, patch model.ItemPatch) (*model.Item, error)
	Delete(ctx context.Context, id uint64) (bool, error)
	SearchByName(ctx context.Context, name string) ([]model.Item, error)
	ListActive(ctx context.Context) ([]model.Item, error)
	ApplyDiscount(ctx context.Context, id uint64, percent float64) (*model.Item, error)
}

type itemService struct {
	repo repository.ItemRepository
}

func NewItemService(repo repository.ItemRepository) ItemService {
	return &itemService{repo: repo}
}

func (s *itemService) Get(ctx context.Context, id uint64) (*model.Item, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *itemService) List(ctx context.Context) ([]model.Item, error) {
	return s.repo.List(ctx, nil)
}

func (s *itemService) Create(ctx context.Context, name string, description *string, price float64, isActive bool) (*model.Item, error) {
	item := &model.Item{
		Name:        strings.TrimSpace(name),
		Description: description,
		Price:       price,
		IsActive:    isActive,
	}
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	return s.repo.Create(ctx, item)
}

func (s *itemService) Update(ctx context.Context, id uint64, patch model.ItemPatch) (*model.Item, error) {
	if patch.Price != nil && *patch.Price <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, model.ErrInvalidPrice)
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, model.ErrNameRequired)
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *itemService) Delete(ctx context.Context, id uint64) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func (s *itemService) SearchByName(ctx context.Context, name string) ([]model.Item, error) {
	return s.repo.FindByName(ctx, name)
}

func (s *itemService) ListActive(ctx context.Context) ([]model.Item, error) {
	return s.repo.FindActive(ctx)
}

// ApplyDiscount loads the item, computes the discounted price via the entity
// rule and persists it. The read and the write are separate statements, so
// two concurrent discounts on the same id race last-writer-wins.
func (s *itemService) ApplyDiscount(ctx context.Context, id uint64, percent float64) (*model.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	discounted, err := item.ApplyDiscount(percent)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, model.ItemPatch{Price: &discounted})
}
