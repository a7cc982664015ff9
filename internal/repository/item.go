package repository

import (
	"context"

	"stockroom/internal/domain"
)

// ItemRepository exposes persistence operations for inventory items.
type ItemRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, item *domain.Item) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Item, error)
	List(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*domain.ItemStats, error)
}

// ExportJobRepository tracks asynchronous report export jobs.
type ExportJobRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, job *domain.ExportJob) (int64, error)
	Get(ctx context.Context, id int64) (*domain.ExportJob, error)
	List(ctx context.Context) ([]domain.ExportJob, error)
	ListByStatuses(ctx context.Context, statuses ...domain.ExportStatus) ([]domain.ExportJob, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ExportStatus, errorMessage *string) error
	MarkCompleted(ctx context.Context, id int64, location string) error
}
