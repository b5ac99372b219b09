package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agencycrm/internal/caching"
	"agencycrm/internal/models"
	"agencycrm/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type InvoiceService interface {
	ListInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error)
	CreateInvoice(ctx context.Context, tenantID uuid.UUID, req *models.CreateInvoiceRequest) (*models.Invoice, error)
	UpdateStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, status string) error
	MarkOverdue(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error)
}

type invoiceService struct {
	invoiceRepo repositories.InvoiceRepository
	clientRepo  repositories.ClientRepository
	cache       caching.CacheService
	logger      *zap.Logger
}

func NewInvoiceService(invoiceRepo repositories.InvoiceRepository, clientRepo repositories.ClientRepository,
	cache caching.CacheService, logger *zap.Logger) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		cache:       cache,
		logger:      logger,
	}
}

func (s *invoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	limit, offset = clampPage(limit, offset)
	return s.invoiceRepo.List(ctx, tenantID, limit, offset)
}

func (s *invoiceService) CreateInvoice(ctx context.Context, tenantID uuid.UUID, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if req.ClientID == uuid.Nil {
		return nil, fmt.Errorf("%w: clientId is required", ErrInvalidInput)
	}
	due, err := time.Parse("2006-01-02", strings.TrimSpace(req.DueDate))
	if err != nil {
		return nil, fmt.Errorf("%w: dueDate must be in YYYY-MM-DD format", ErrInvalidInput)
	}
	status := req.Status
	if status == "" {
		status = models.InvoiceStatusPending
	}
	if !models.IsValidInvoiceStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	client, err := s.clientRepo.GetByID(ctx, tenantID, req.ClientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: client does not belong to this workspace", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	invoice := &models.Invoice{
		ID:          uuid.New(),
		TenantID:    tenantID,
		ClientID:    client.ID,
		ProjectID:   req.ProjectID,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     due,
		Status:      status,
		Client:      client,
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	s.invalidateAlerts(ctx, tenantID)
	return invoice, nil
}

func (s *invoiceService) UpdateStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, status string) error {
	if !models.IsValidInvoiceStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if err := s.invoiceRepo.UpdateStatus(ctx, tenantID, invoiceID, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	s.invalidateAlerts(ctx, tenantID)
	return nil
}

// MarkOverdue flips PENDING invoices whose due date is before today to OVERDUE.
func (s *invoiceService) MarkOverdue(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	n, err := s.invoiceRepo.MarkOverdue(ctx, tenantID, today)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue invoices: %w", err)
	}
	if n > 0 {
		s.logger.Info("invoices marked overdue", zap.String("tenant_id", tenantID.String()), zap.Int64("count", n))
		s.invalidateAlerts(ctx, tenantID)
	}
	return n, nil
}

func (s *invoiceService) invalidateAlerts(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTenantCache(ctx, tenantID); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
	}
}
