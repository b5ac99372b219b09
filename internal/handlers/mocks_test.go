package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"agencycrm/internal/caching"
	"agencycrm/internal/common"
	"agencycrm/internal/jobs/background"
	"agencycrm/internal/models"
	"agencycrm/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
)

type MockReminderRunner struct {
	mock.Mock
}

func (m *MockReminderRunner) Run(ctx context.Context, tenantID uuid.UUID, now time.Time) (*models.ReminderRunResult, error) {
	args := m.Called(ctx, tenantID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReminderRunResult), args.Error(1)
}

type MockAlertLister struct {
	mock.Mock
}

func (m *MockAlertLister) ListAlerts(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]models.Alert, error) {
	args := m.Called(ctx, tenantID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Alert), args.Error(1)
}

type MockFollowUpService struct {
	mock.Mock
}

func (m *MockFollowUpService) LeadFollowUp(ctx context.Context, tenantID, leadID uuid.UUID) (*services.FollowUpMessage, error) {
	args := m.Called(ctx, tenantID, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.FollowUpMessage), args.Error(1)
}

func (m *MockFollowUpService) AlertMessage(ctx context.Context, alertType models.AlertType, alertData json.RawMessage) (string, error) {
	args := m.Called(ctx, alertType, alertData)
	return args.String(0), args.Error(1)
}

func (m *MockFollowUpService) LeadScore(ctx context.Context, tenantID, leadID uuid.UUID) (*services.LeadScore, error) {
	args := m.Called(ctx, tenantID, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LeadScore), args.Error(1)
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

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, tenantID uuid.UUID, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) UpdateStatus(ctx context.Context, tenantID, invoiceID uuid.UUID, status string) error {
	return m.Called(ctx, tenantID, invoiceID, status).Error(0)
}

func (m *MockInvoiceService) MarkOverdue(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) ListClients(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Client, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Client), args.Error(1)
}

func (m *MockClientService) CreateClient(ctx context.Context, tenantID uuid.UUID, req *models.CreateClientRequest) (*models.Client, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

type MockLeadService struct {
	mock.Mock
}

func (m *MockLeadService) ListLeads(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lead, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Lead), args.Error(1)
}

func (m *MockLeadService) CreateLead(ctx context.Context, tenantID uuid.UUID, req *models.CreateLeadRequest) (*models.Lead, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadService) UpdateStatus(ctx context.Context, tenantID, leadID uuid.UUID, status string) error {
	return m.Called(ctx, tenantID, leadID, status).Error(0)
}

type MockJobRunner struct {
	mock.Mock
}

func (m *MockJobRunner) GetJobStatus() []background.JobStatus {
	return m.Called().Get(0).([]background.JobStatus)
}

func (m *MockJobRunner) RunNow(name string) error {
	return m.Called(name).Error(0)
}

type MockProposalService struct {
	mock.Mock
}

func (m *MockProposalService) GeneratePDF(ctx context.Context, tenantID, proposalID uuid.UUID) (*services.ProposalDocument, error) {
	args := m.Called(ctx, tenantID, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ProposalDocument), args.Error(1)
}

func (m *MockProposalService) Send(ctx context.Context, tenantID, proposalID uuid.UUID) (*services.ProposalDocument, error) {
	args := m.Called(ctx, tenantID, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ProposalDocument), args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockCache only implements Ping; the embedded interface panics on anything else.
type MockCache struct {
	caching.CacheService
	mock.Mock
}

func (m *MockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockStorage struct {
	services.MinioService
	mock.Mock
}

func (m *MockStorage) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

// newRequest builds an echo context for a tenant-scoped request. A nil tenant
// leaves the context unauthenticated.
func newRequest(method, target, body string, tenantID *uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if tenantID != nil {
		req = req.WithContext(context.WithValue(req.Context(), common.TenantIDKey, *tenantID))
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func decodeBody(rec *httptest.ResponseRecorder, v interface{}) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func strPtr(s string) *string { return &s }
