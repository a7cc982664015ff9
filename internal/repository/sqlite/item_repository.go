package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/repository"
)

const createItemsTable = `
CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	quantity INTEGER NOT NULL DEFAULT 0,
	price REAL NOT NULL DEFAULT 0,
	category TEXT NOT NULL,
	sku TEXT NOT NULL UNIQUE,
	supplier TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	min_stock_level INTEGER NOT NULL DEFAULT 10,
	created_by INTEGER NOT NULL DEFAULT 0,
	updated_by INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const itemColumns = `
i.id, i.name, i.description, i.quantity, i.price, i.category, i.sku,
i.supplier, i.location, i.min_stock_level,
i.created_by, COALESCE(cu.username, ''),
i.updated_by, COALESCE(uu.username, ''),
i.created_at, i.updated_at`

const itemJoins = `
FROM items i
LEFT JOIN users cu ON cu.id = i.created_by
LEFT JOIN users uu ON uu.id = i.updated_by`

type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createItemsTable); err != nil {
		return fmt.Errorf("create items table: %w", err)
	}
	if err := r.ensureItemColumns(ctx); err != nil {
		return err
	}
	return nil
}

// ensureItemColumns adds columns introduced after the first schema
// version so existing databases keep working without a migration tool.
func (r *ItemRepository) ensureItemColumns(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `PRAGMA table_info(items)`)
	if err != nil {
		return fmt.Errorf("describe items table: %w", err)
	}
	defer rows.Close()

	columns := map[string]struct{}{}
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scan pragma table info: %w", err)
		}
		columns[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate pragma table info: %w", err)
	}

	addColumn := func(name, statement string) error {
		if _, exists := columns[name]; exists {
			return nil
		}
		if _, err := r.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("add column %s: %w", name, err)
		}
		return nil
	}

	if err := addColumn("supplier", `ALTER TABLE items ADD COLUMN supplier TEXT NOT NULL DEFAULT ''`); err != nil {
		return err
	}
	if err := addColumn("location", `ALTER TABLE items ADD COLUMN location TEXT NOT NULL DEFAULT ''`); err != nil {
		return err
	}
	if err := addColumn("min_stock_level", `ALTER TABLE items ADD COLUMN min_stock_level INTEGER NOT NULL DEFAULT 10`); err != nil {
		return err
	}
	return nil
}

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) (int64, error) {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO items (name, description, quantity, price, category, sku, supplier, location, min_stock_level, created_by, updated_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Name,
		item.Description,
		item.Quantity,
		item.Price,
		item.Category,
		item.SKU,
		item.Supplier,
		item.Location,
		item.MinStockLevel,
		item.CreatedBy,
		item.UpdatedBy,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ConflictError("item sku already exists")
		}
		return 0, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("item last insert id: %w", err)
	}
	item.ID = id
	return id, nil
}

func (r *ItemRepository) Get(ctx context.Context, id int64) (*domain.Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+itemJoins+` WHERE i.id = ?`, id)
	return scanItem(row)
}

func (r *ItemRepository) List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + itemJoins
	var conditions []string
	var args []any

	if filter.Category != "" {
		conditions = append(conditions, "i.category = ?")
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		conditions = append(conditions, "(i.name LIKE ? COLLATE NOCASE OR i.description LIKE ? COLLATE NOCASE)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if filter.LowStock {
		conditions = append(conditions, "i.quantity < i.min_stock_level")
	}

	for idx, cond := range conditions {
		if idx == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY i.created_at DESC, i.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) error {
	item.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE items
SET name = ?, description = ?, quantity = ?, price = ?, category = ?, sku = ?,
    supplier = ?, location = ?, min_stock_level = ?, updated_by = ?, updated_at = ?
WHERE id = ?`,
		item.Name,
		item.Description,
		item.Quantity,
		item.Price,
		item.Category,
		item.SKU,
		item.Supplier,
		item.Location,
		item.MinStockLevel,
		item.UpdatedBy,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ConflictError("item sku already exists")
		}
		return fmt.Errorf("update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NotFoundError("item not found")
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NotFoundError("item not found")
	}
	return nil
}

func (r *ItemRepository) Stats(ctx context.Context) (*domain.ItemStats, error) {
	var stats domain.ItemStats
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(1),
       COALESCE(SUM(CASE WHEN quantity < min_stock_level THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(quantity * price), 0),
       COUNT(DISTINCT category)
FROM items`).Scan(
		&stats.TotalItems,
		&stats.LowStockItems,
		&stats.TotalValue,
		&stats.Categories,
	)
	if err != nil {
		return nil, fmt.Errorf("item stats: %w", err)
	}
	return &stats, nil
}

func scanItem(row interface {
	Scan(dest ...any) error
}) (*domain.Item, error) {
	var item domain.Item
	if err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Quantity,
		&item.Price,
		&item.Category,
		&item.SKU,
		&item.Supplier,
		&item.Location,
		&item.MinStockLevel,
		&item.CreatedBy,
		&item.CreatedByName,
		&item.UpdatedBy,
		&item.UpdatedByName,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError("item not found")
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	return &item, nil
}
