package jobs

import (
	"context"
	"time"

	"agencycrm/internal/models"
	"agencycrm/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Lead, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadRepository) ListByStatuses(ctx context.Context, tenantID uuid.UUID, statuses []string) ([]*models.Lead, error) {
	args := m.Called(ctx, tenantID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Lead), args.Error(1)
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockLeadRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lead, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	return m.Called(ctx, tenantID, id, status).Error(0)
}

type MockProposalRepository struct {
	mock.Mock
}

func (m *MockProposalRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Proposal, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}

func (m *MockProposalRepository) ListByStatus(ctx context.Context, tenantID uuid.UUID, status string) ([]*models.Proposal, error) {
	args := m.Called(ctx, tenantID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Proposal), args.Error(1)
}

func (m *MockProposalRepository) SetPDFObjectKey(ctx context.Context, tenantID, id uuid.UUID, key string) error {
	args := m.Called(ctx, tenantID, id, key)
	return args.Error(0)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListByStatus(ctx context.Context, tenantID uuid.UUID, status string) ([]*models.Invoice, error) {
	args := m.Called(ctx, tenantID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *MockInvoiceRepository) MarkReminded(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, tenantID, id, at)
	return args.Error(0)
}

func (m *MockInvoiceRepository) MarkOverdue(ctx context.Context, tenantID uuid.UUID, dueBefore time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, dueBefore)
	return args.Get(0).(int64), args.Error(1)
}

type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockSettingsService) ResolveMessaging(ctx context.Context, tenantID uuid.UUID) (*services.MessagingConfig, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.MessagingConfig), args.Error(1)
}

func (m *MockSettingsService) GetWorkspaceSettings(ctx context.Context, tenantID uuid.UUID) (*services.WorkspaceSettingsView, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.WorkspaceSettingsView), args.Error(1)
}

func (m *MockSettingsService) UpdateWorkspaceSettings(ctx context.Context, tenantID uuid.UUID, settings *models.WorkspaceSettings) (*services.WorkspaceSettingsView, error) {
	args := m.Called(ctx, tenantID, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.WorkspaceSettingsView), args.Error(1)
}

func (m *MockSettingsService) UpdateReminderTemplates(ctx context.Context, tenantID uuid.UUID, tmpl *models.ReminderTemplates) (*services.WorkspaceSettingsView, error) {
	args := m.Called(ctx, tenantID, tmpl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.WorkspaceSettingsView), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockCacheService) SetTenant(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error {
	args := m.Called(ctx, tenant, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteTenant(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) GetAlerts(ctx context.Context, tenantID uuid.UUID) ([]models.Alert, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Alert), args.Error(1)
}

func (m *MockCacheService) SetAlerts(ctx context.Context, tenantID uuid.UUID, alerts []models.Alert, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, alerts, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	args := m.Called(ctx, key, window)
	return args.Get(0).(int64), args.Get(1).(time.Duration), args.Error(2)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockMessageGateway struct {
	mock.Mock
}

func (m *MockMessageGateway) Send(ctx context.Context, tenantID uuid.UUID, phone, body string) error {
	args := m.Called(ctx, tenantID, phone, body)
	return args.Error(0)
}

func strPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}
