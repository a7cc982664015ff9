package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"stockroom/internal/domain"
	"stockroom/internal/repository"
	"stockroom/internal/service"
	"stockroom/internal/storage"
)

// Manager coordinates asynchronous CSV report exports and their upload lifecycle.
type Manager interface {
	Start(ctx context.Context) error
	Shutdown()
	Enqueue(ctx context.Context, jobID int64) error
	Resume(ctx context.Context) error
}

type Config struct {
	Bucket        string
	KeyPrefix     string
	MaxConcurrent int
	Logger        *logrus.Logger
}

type manager struct {
	cfg     Config
	items   service.ItemService
	jobs    repository.ExportJobRepository
	storage storage.Service

	sem    chan struct{}
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager(cfg Config, items service.ItemService, jobs repository.ExportJobRepository, store storage.Service) Manager {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 2
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &manager{
		cfg:     cfg,
		items:   items,
		jobs:    jobs,
		storage: store,
		sem:     make(chan struct{}, cfg.MaxConcurrent),
	}
}

func (m *manager) Start(ctx context.Context) error {
	if m.storage == nil || m.cfg.Bucket == "" {
		return fmt.Errorf("export manager requires configured object storage")
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.cfg.Logger.Infof("export manager started, bucket: %s", m.cfg.Bucket)
	return nil
}

func (m *manager) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.cfg.Logger.Info("export manager stopped")
}

func (m *manager) Enqueue(ctx context.Context, jobID int64) error {
	job, err := m.jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}
	m.spawnJob(*job)
	return nil
}

// Resume re-enqueues jobs left pending or mid-run by a previous process.
func (m *manager) Resume(ctx context.Context) error {
	jobs, err := m.jobs.ListByStatuses(ctx,
		domain.ExportStatusPending,
		domain.ExportStatusRunning,
	)
	if err != nil {
		return err
	}

	for i := range jobs {
		m.spawnJob(jobs[i])
	}
	return nil
}

func (m *manager) spawnJob(job domain.ExportJob) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		select {
		case <-m.ctx.Done():
			return
		case m.sem <- struct{}{}:
			defer func() { <-m.sem }()
			m.handleJob(m.ctx, &job)
		}
	}()
}

func (m *manager) handleJob(ctx context.Context, job *domain.ExportJob) {
	logger := m.cfg.Logger.WithField("export_id", job.ID)

	if job.Status == domain.ExportStatusCompleted {
		logger.Debug("job already completed, skipping")
		return
	}

	if err := m.jobs.UpdateStatus(ctx, job.ID, domain.ExportStatusRunning, nil); err != nil {
		logger.Errorf("update status failed: %v", err)
		return
	}

	items, err := m.items.List(ctx, job.Filter)
	if err != nil {
		m.failJob(ctx, job.ID, fmt.Errorf("load items: %w", err))
		return
	}

	body, err := renderCSV(items)
	if err != nil {
		m.failJob(ctx, job.ID, fmt.Errorf("render report: %w", err))
		return
	}

	key := fmt.Sprintf("export-%s.csv", uuid.NewString())
	if prefix := m.cfg.KeyPrefix; prefix != "" {
		key = fmt.Sprintf("%s/%s", prefix, key)
	}

	logger.Infof("uploading report (%d items)", len(items))
	dest, err := m.storage.PutObject(ctx, bytes.NewReader(body), storage.PutOptions{
		Bucket:      m.cfg.Bucket,
		Key:         key,
		ContentType: "text/csv",
	})
	if err != nil {
		m.failJob(ctx, job.ID, fmt.Errorf("upload report: %w", err))
		return
	}

	if err := m.jobs.MarkCompleted(ctx, job.ID, dest); err != nil {
		logger.Errorf("mark completed: %v", err)
		return
	}
	logger.Infof("export completed, uploaded to %s", dest)
}

func (m *manager) failJob(ctx context.Context, jobID int64, failErr error) {
	msg := failErr.Error()
	if err := m.jobs.UpdateStatus(ctx, jobID, domain.ExportStatusFailed, &msg); err != nil {
		m.cfg.Logger.WithField("export_id", jobID).Errorf("persist failure status: %v", err)
	}
	m.cfg.Logger.WithField("export_id", jobID).Error(msg)
}

func renderCSV(items []domain.Item) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "name", "description", "quantity", "price", "category", "sku", "supplier", "location", "min_stock_level", "created_at", "updated_at"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, item := range items {
		record := []string{
			strconv.FormatInt(item.ID, 10),
			item.Name,
			item.Description,
			strconv.FormatInt(item.Quantity, 10),
			strconv.FormatFloat(item.Price, 'f', 2, 64),
			item.Category,
			item.SKU,
			item.Supplier,
			item.Location,
			strconv.FormatInt(item.MinStockLevel, 10),
			item.CreatedAt.Format(time.RFC3339),
			item.UpdatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

var _ Manager = (*manager)(nil)
