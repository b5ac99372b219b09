package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agencycrm/internal/caching"
	"agencycrm/internal/models"
	"agencycrm/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeadService manages the sales pipeline. Any change to a lead restarts its
// staleness clock, so the cached alert list is dropped on every write.
type LeadService interface {
	ListLeads(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lead, error)
	CreateLead(ctx context.Context, tenantID uuid.UUID, req *models.CreateLeadRequest) (*models.Lead, error)
	UpdateStatus(ctx context.Context, tenantID, leadID uuid.UUID, status string) error
}

type leadService struct {
	leadRepo repositories.LeadRepository
	cache    caching.CacheService
	logger   *zap.Logger
}

func NewLeadService(leadRepo repositories.LeadRepository, cache caching.CacheService, logger *zap.Logger) LeadService {
	return &leadService{
		leadRepo: leadRepo,
		cache:    cache,
		logger:   logger,
	}
}

func (s *leadService) ListLeads(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lead, error) {
	limit, offset = clampPage(limit, offset)
	leads, err := s.leadRepo.List(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

func (s *leadService) CreateLead(ctx context.Context, tenantID uuid.UUID, req *models.CreateLeadRequest) (*models.Lead, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		status = models.LeadStatusNew
	}
	if !models.IsValidLeadStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}
	if req.Value != nil && *req.Value < 0 {
		return nil, fmt.Errorf("%w: value must not be negative", ErrInvalidInput)
	}

	lead := &models.Lead{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     name,
		Email:    trimmedOrNil(req.Email),
		Phone:    trimmedOrNil(req.Phone),
		Company:  trimmedOrNil(req.Company),
		Value:    req.Value,
		Status:   status,
		Notes:    trimmedOrNil(req.Notes),
	}
	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	s.invalidateAlerts(ctx, tenantID)
	return lead, nil
}

func (s *leadService) UpdateStatus(ctx context.Context, tenantID, leadID uuid.UUID, status string) error {
	if !models.IsValidLeadStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if err := s.leadRepo.UpdateStatus(ctx, tenantID, leadID, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update lead status: %w", err)
	}
	s.logger.Info("lead status changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("lead_id", leadID.String()),
		zap.String("status", status),
	)
	s.invalidateAlerts(ctx, tenantID)
	return nil
}

func (s *leadService) invalidateAlerts(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTenantCache(ctx, tenantID); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
	}
}
