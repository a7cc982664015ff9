package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"stockroom/internal/domain"
	"stockroom/internal/repository"
)

const defaultMinStockLevel = 10

// ItemInput carries the writable fields of an inventory item.
type ItemInput struct {
	Name          string
	Description   string
	Quantity      int64
	Price         float64
	Category      string
	SKU           string
	Supplier      string
	Location      string
	MinStockLevel *int64
}

// Actor identifies the user performing a mutation.
type Actor struct {
	UserID   int64
	Username string
}

// ItemService coordinates inventory operations backed by the item repository.
type ItemService interface {
	Create(ctx context.Context, input ItemInput, actor Actor) (*domain.Item, error)
	Get(ctx context.Context, id int64) (*domain.Item, error)
	List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	Update(ctx context.Context, id int64, input ItemInput, actor Actor) (*domain.Item, error)
	Delete(ctx context.Context, id int64) (*domain.Item, error)
	Stats(ctx context.Context) (*domain.ItemStats, error)
}

type itemService struct {
	items repository.ItemRepository
}

func NewItemService(items repository.ItemRepository) ItemService {
	return &itemService{items: items}
}

func (s *itemService) Create(ctx context.Context, input ItemInput, actor Actor) (*domain.Item, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		sku = generateSKU()
	}

	minStock := int64(defaultMinStockLevel)
	if input.MinStockLevel != nil {
		minStock = *input.MinStockLevel
	}

	item := &domain.Item{
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Quantity:      input.Quantity,
		Price:         input.Price,
		Category:      strings.TrimSpace(input.Category),
		SKU:           sku,
		Supplier:      strings.TrimSpace(input.Supplier),
		Location:      strings.TrimSpace(input.Location),
		MinStockLevel: minStock,
		CreatedBy:     actor.UserID,
		UpdatedBy:     actor.UserID,
	}
	if _, err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}

	// re-read to pick up the populated creator/updater usernames
	return s.items.Get(ctx, item.ID)
}

func (s *itemService) Get(ctx context.Context, id int64) (*domain.Item, error) {
	return s.items.Get(ctx, id)
}

func (s *itemService) List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.items.List(ctx, filter)
}

func (s *itemService) Update(ctx context.Context, id int64, input ItemInput, actor Actor) (*domain.Item, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	current, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		sku = current.SKU
	}
	minStock := current.MinStockLevel
	if input.MinStockLevel != nil {
		minStock = *input.MinStockLevel
	}

	updated := &domain.Item{
		ID:            id,
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Quantity:      input.Quantity,
		Price:         input.Price,
		Category:      strings.TrimSpace(input.Category),
		SKU:           sku,
		Supplier:      strings.TrimSpace(input.Supplier),
		Location:      strings.TrimSpace(input.Location),
		MinStockLevel: minStock,
		UpdatedBy:     actor.UserID,
	}
	if err := s.items.Update(ctx, updated); err != nil {
		return nil, err
	}

	return s.items.Get(ctx, id)
}

func (s *itemService) Delete(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) Stats(ctx context.Context) (*domain.ItemStats, error) {
	return s.items.Stats(ctx)
}

func validateItemInput(input ItemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return domain.ValidationError("item name is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return domain.ValidationError("item description is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return domain.ValidationError("item category is required")
	}
	if input.Quantity < 0 {
		return domain.ValidationError("quantity cannot be negative")
	}
	if input.Price < 0 {
		return domain.ValidationError("price cannot be negative")
	}
	if input.MinStockLevel != nil && *input.MinStockLevel < 0 {
		return domain.ValidationError("minimum stock level cannot be negative")
	}
	return nil
}

func generateSKU() string {
	return fmt.Sprintf("SKU-%s", strings.ToUpper(uuid.NewString()[:8]))
}
