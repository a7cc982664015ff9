package service

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
)

type fakeItemRepo struct {
	items  map[int64]*domain.Item
	nextID int64
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[int64]*domain.Item{}, nextID: 1}
}

func (r *fakeItemRepo) Init(ctx context.Context) error { return nil }

func (r *fakeItemRepo) Create(ctx context.Context, item *domain.Item) (int64, error) {
	for _, existing := range r.items {
		if existing.SKU == item.SKU {
			return 0, domain.ConflictError("item sku already exists")
		}
	}
	item.ID = r.nextID
	r.nextID++
	copied := *item
	r.items[item.ID] = &copied
	return item.ID, nil
}

func (r *fakeItemRepo) Get(ctx context.Context, id int64) (*domain.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, domain.NotFoundError("item not found")
	}
	copied := *item
	return &copied, nil
}

func (r *fakeItemRepo) List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	var out []domain.Item
	for _, item := range r.items {
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(item.Name), needle) &&
				!strings.Contains(strings.ToLower(item.Description), needle) {
				continue
			}
		}
		if filter.LowStock && !item.LowStock() {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeItemRepo) Update(ctx context.Context, item *domain.Item) error {
	if _, ok := r.items[item.ID]; !ok {
		return domain.NotFoundError("item not found")
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeItemRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return domain.NotFoundError("item not found")
	}
	delete(r.items, id)
	return nil
}

func (r *fakeItemRepo) Stats(ctx context.Context) (*domain.ItemStats, error) {
	stats := &domain.ItemStats{}
	categories := map[string]struct{}{}
	for _, item := range r.items {
		stats.TotalItems++
		if item.LowStock() {
			stats.LowStockItems++
		}
		stats.TotalValue += float64(item.Quantity) * item.Price
		categories[item.Category] = struct{}{}
	}
	stats.Categories = int64(len(categories))
	return stats, nil
}

func validInput() ItemInput {
	return ItemInput{
		Name:        "Widget",
		Description: "A standard widget",
		Quantity:    5,
		Price:       9.99,
		Category:    "hardware",
	}
}

func TestItemCreateGeneratesSKU(t *testing.T) {
	svc := NewItemService(newFakeItemRepo())

	item, err := svc.Create(context.Background(), validInput(), Actor{UserID: 1})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(item.SKU, "SKU-"))
	require.Equal(t, int64(10), item.MinStockLevel)
	require.Equal(t, int64(1), item.CreatedBy)
}

func TestItemCreateDuplicateSKU(t *testing.T) {
	svc := NewItemService(newFakeItemRepo())
	ctx := context.Background()

	input := validInput()
	input.SKU = "SKU-FIXED"
	_, err := svc.Create(ctx, input, Actor{UserID: 1})
	require.NoError(t, err)

	_, err = svc.Create(ctx, input, Actor{UserID: 1})
	require.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestItemCreateValidation(t *testing.T) {
	svc := NewItemService(newFakeItemRepo())
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*ItemInput)
	}{
		{"missing name", func(in *ItemInput) { in.Name = "" }},
		{"missing description", func(in *ItemInput) { in.Description = "" }},
		{"missing category", func(in *ItemInput) { in.Category = "" }},
		{"negative quantity", func(in *ItemInput) { in.Quantity = -1 }},
		{"negative price", func(in *ItemInput) { in.Price = -0.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := svc.Create(ctx, input, Actor{UserID: 1})
			require.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestItemListFilters(t *testing.T) {
	svc := NewItemService(newFakeItemRepo())
	ctx := context.Background()

	inputs := []ItemInput{
		{Name: "Hammer", Description: "Claw hammer", Quantity: 3, Price: 15, Category: "tools", SKU: "T-1"},
		{Name: "Screwdriver", Description: "Flat head", Quantity: 50, Price: 5, Category: "tools", SKU: "T-2"},
		{Name: "Paint", Description: "White hammer finish", Quantity: 20, Price: 30, Category: "supplies", SKU: "S-1"},
	}
	for _, in := range inputs {
		_, err := svc.Create(ctx, in, Actor{UserID: 1})
		require.NoError(t, err)
	}

	tools, err := svc.List(ctx, domain.ItemFilter{Category: "tools"})
	require.NoError(t, err)
	require.Len(t, tools, 2)

	hammers, err := svc.List(ctx, domain.ItemFilter{Search: "hammer"})
	require.NoError(t, err)
	require.Len(t, hammers, 2, "search matches name and description, case-insensitive")

	low, err := svc.List(ctx, domain.ItemFilter{LowStock: true})
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "Hammer", low[0].Name)
}

func TestItemUpdate(t *testing.T) {
	svc := NewItemService(newFakeItemRepo())
	ctx := context.Background()

	item, err := svc.Create(ctx, validInput(), Actor{UserID: 1})
	require.NoError(t, err)

	input := validInput()
	input.Quantity = 99
	updated, err := svc.Update(ctx, item.ID, input, Actor{UserID: 2})
	require.NoError(t, err)
	require.Equal(t, int64(99), updated.Quantity)
	require.Equal(t, item.SKU, updated.SKU, "blank sku keeps the existing one")
	require.Equal(t, int64(2), updated.UpdatedBy)

	_, err = svc.Update(ctx, 9999, input, Actor{UserID: 2})
	require.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestItemDelete(t *testing.T) {
	svc := NewItemService(newFakeItemRepo())
	ctx := context.Background()

	item, err := svc.Create(ctx, validInput(), Actor{UserID: 1})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, item.ID, deleted.ID)

	_, err = svc.Delete(ctx, item.ID)
	require.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestItemStats(t *testing.T) {
	svc := NewItemService(newFakeItemRepo())
	ctx := context.Background()

	inputs := []ItemInput{
		{Name: "A", Description: "a", Quantity: 2, Price: 10, Category: "x", SKU: "A-1"},
		{Name: "B", Description: "b", Quantity: 5, Price: 4, Category: "y", SKU: "B-1"},
		{Name: "C", Description: "c", Quantity: 1, Price: 100, Category: "x", SKU: "C-1"},
	}
	for _, in := range inputs {
		_, err := svc.Create(ctx, in, Actor{UserID: 1})
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.TotalItems)
	require.Equal(t, int64(3), stats.LowStockItems, "all quantities below the default minimum of 10")
	require.InDelta(t, 2*10.0+5*4.0+1*100.0, stats.TotalValue, 0.001)
	require.Equal(t, int64(2), stats.Categories)
}
