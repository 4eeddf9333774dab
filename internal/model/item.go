package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNameRequired    = errors.New("name must not be empty")
	ErrInvalidPrice    = errors.New("price must be greater than 0")
	ErrInvalidDiscount = errors.New("discount must be between 0 and 100")
)

type Item struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"size:120;not null"`
	Description *string   `gorm:"type:text"`
	Price       float64   `gorm:"not null"`
	IsActive    bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Item) TableName() string {
	return "items"
}

// Validate checks the entity invariants before the item reaches storage.
func (i *Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrNameRequired
	}
	if i.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// ApplyDiscount returns the price after applying a percentage discount.
// The receiver is not mutated; persisting the result is the caller's call.
// Both 0 and 100 are accepted: 0 returns the price unchanged, 100 returns 0.
func (i *Item) ApplyDiscount(percent float64) (float64, error) {
	if percent < 0 || percent > 100 {
		return 0, ErrInvalidDiscount
	}
	return i.Price * (1 - percent/100), nil
}

// ItemPatch is a partial update: nil fields are left untouched.
type ItemPatch struct {
	Name        *string
	Description *string
	Price       *float64
	IsActive    *bool
}

// Changes returns the set fields as column/value pairs. The id and the
// timestamps are never patchable.
func (p ItemPatch) Changes() map[string]any {
	changes := make(map[string]any, 4)
	if p.Name != nil {
		changes["name"] = *p.Name
	}
	if p.Description != nil {
		changes["description"] = *p.Description
	}
	if p.Price != nil {
		changes["price"] = *p.Price
	}
	if p.IsActive != nil {
		changes["is_active"] = *p.IsActive
	}
	return changes
}
