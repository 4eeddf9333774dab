package repository

import (
	"context"
	"errors"

	"github.com/hexarch/items-api/internal/model"
	"gorm.io/gorm"
)

// ItemRepository is the persistence port for items. Lookups report a missing
// row as a nil item with a nil error; errors are reserved for real failures.
type ItemRepository interface {
	FindByID(ctx context.Context, id uint64) (*model.Item, error)
	List(ctx context.Context, filters map[string]any) ([]model.Item, error)
	Create(ctx context.Context, item *model.Item) (*model.Item, error)
	Update(ctx context.Context, id uint64, patch model.ItemPatch) (*model.Item, error)
	Delete(ctx context.Context, id uint64) (bool, error)
	FindByName(ctx context.Context, name string) ([]model.Item, error)
	FindActive(ctx context.Context) ([]model.Item, error)
}

var ErrDBNotReady = errors.New("database not initialized")

// filterableColumns are the item columns List accepts equality filters on.
// Unknown keys are dropped, never an error.
var filterableColumns = map[string]struct{}{
	"id":          {},
	"name":        {},
	"description": {},
	"price":       {},
	"is_active":   {},
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) FindByID(ctx context.Context, id uint64) (*model.Item, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var item model.Item
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) List(ctx context.Context, filters map[string]any) ([]model.Item, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).Model(&model.Item{})
	if len(filters) > 0 {
		conds := make(map[string]any, len(filters))
		for key, value := range filters {
			if _, ok := filterableColumns[key]; ok {
				conds[key] = value
			}
		}
		if len(conds) > 0 {
			q = q.Where(conds)
		}
	}
	var items []model.Item
	if err := q.Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create persists the item and re-reads the row, so the result carries the
// store-assigned id and timestamps rather than an echo of the input.
func (r *itemRepository) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	var created model.Item
	if err := r.db.WithContext(ctx).First(&created, item.ID).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies only the fields set on the patch and returns the row as
// stored afterwards. A missing id yields nil, nil.
func (r *itemRepository) Update(ctx context.Context, id uint64, patch model.ItemPatch) (*model.Item, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var existing model.Item
	if err := r.db.WithContext(ctx).First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if changes := patch.Changes(); len(changes) > 0 {
		if err := r.db.WithContext(ctx).
			Model(&model.Item{ID: id}).
			Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	var updated model.Item
	if err := r.db.WithContext(ctx).First(&updated, id).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete reports whether a row was actually removed; deleting an unknown id
// returns false without an error.
func (r *itemRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	if r.db == nil {
		return false, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).Delete(&model.Item{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *itemRepository) FindByName(ctx context.Context, name string) ([]model.Item, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var items []model.Item
	if err := r.db.WithContext(ctx).
		Where("name ILIKE ?", "%"+name+"%").
		Order("id").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) FindActive(ctx context.Context) ([]model.Item, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var items []model.Item
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
