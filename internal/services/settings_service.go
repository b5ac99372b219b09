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
	"agencycrm/internal/templates"
	"agencycrm/internal/whatsapp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const tenantCacheTTL = 5 * time.Minute

// MessagingConfig is the result of resolving a tenant's messaging credentials.
// Credentials is only usable when Complete reports true.
type MessagingConfig struct {
	Credentials whatsapp.Credentials
	Missing     MissingCredentials
}

func (c *MessagingConfig) Complete() bool {
	return !c.Missing.Any()
}

// WorkspaceSettingsView is what the settings endpoint returns. The API key is
// never echoed back.
type WorkspaceSettingsView struct {
	WhatsappURL              string `json:"whatsappUrl"`
	WhatsappInstance         string `json:"whatsappInstance"`
	HasWhatsappAPIKey        bool   `json:"hasWhatsappApiKey"`
	N8nWebhookURL            string `json:"n8nWebhookUrl"`
	ReminderTemplateUpcoming string `json:"reminderTemplateUpcoming"`
	ReminderTemplateOverdue  string `json:"reminderTemplateOverdue"`
}

type SettingsService interface {
	GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error)
	ResolveMessaging(ctx context.Context, tenantID uuid.UUID) (*MessagingConfig, error)
	GetWorkspaceSettings(ctx context.Context, tenantID uuid.UUID) (*WorkspaceSettingsView, error)
	UpdateWorkspaceSettings(ctx context.Context, tenantID uuid.UUID, settings *models.WorkspaceSettings) (*WorkspaceSettingsView, error)
	UpdateReminderTemplates(ctx context.Context, tenantID uuid.UUID, tmpl *models.ReminderTemplates) (*WorkspaceSettingsView, error)
}

type settingsService struct {
	tenantRepo repositories.TenantRepository
	cache      caching.CacheService
	logger     *zap.Logger
}

func NewSettingsService(tenantRepo repositories.TenantRepository, cache caching.CacheService, logger *zap.Logger) SettingsService {
	return &settingsService{
		tenantRepo: tenantRepo,
		cache:      cache,
		logger:     logger,
	}
}

// GetTenant reads through the cache. Cache failures are logged and the
// database is used instead.
func (s *settingsService) GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	if s.cache != nil {
		cached, err := s.cache.GetTenant(ctx, tenantID)
		if err != nil {
			s.logger.Warn("tenant cache read failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetTenant(ctx, tenant, tenantCacheTTL); err != nil {
			s.logger.Warn("tenant cache write failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		}
	}
	return tenant, nil
}

// ResolveMessaging is the single place tenant messaging credentials are read.
// Blank values count as missing.
func (s *settingsService) ResolveMessaging(ctx context.Context, tenantID uuid.UUID) (*MessagingConfig, error) {
	tenant, err := s.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ResolveCredentials(tenant), nil
}

// ResolveCredentials extracts the messaging credentials of tenant.
func ResolveCredentials(tenant *models.Tenant) *MessagingConfig {
	url := trimmed(tenant.WhatsappURL)
	key := trimmed(tenant.WhatsappAPIKey)
	instance := trimmed(tenant.WhatsappInstance)

	return &MessagingConfig{
		Credentials: whatsapp.Credentials{URL: url, APIKey: key, Instance: instance},
		Missing: MissingCredentials{
			WhatsappURL:      url == "",
			WhatsappAPIKey:   key == "",
			WhatsappInstance: instance == "",
		},
	}
}

func (s *settingsService) GetWorkspaceSettings(ctx context.Context, tenantID uuid.UUID) (*WorkspaceSettingsView, error) {
	tenant, err := s.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return settingsView(tenant), nil
}

func (s *settingsService) UpdateWorkspaceSettings(ctx context.Context, tenantID uuid.UUID, settings *models.WorkspaceSettings) (*WorkspaceSettingsView, error) {
	if settings.WhatsappURL != nil {
		u := strings.TrimRight(strings.TrimSpace(*settings.WhatsappURL), "/")
		if u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return nil, fmt.Errorf("%w: whatsappUrl must start with http:// or https://", ErrInvalidInput)
		}
		settings.WhatsappURL = &u
	}

	if err := s.tenantRepo.UpdateMessagingSettings(ctx, tenantID, settings); err != nil {
		return nil, fmt.Errorf("failed to update workspace settings: %w", err)
	}
	s.invalidate(ctx, tenantID)

	s.logger.Info("workspace messaging settings updated", zap.String("tenant_id", tenantID.String()))
	return s.GetWorkspaceSettings(ctx, tenantID)
}

func (s *settingsService) UpdateReminderTemplates(ctx context.Context, tenantID uuid.UUID, tmpl *models.ReminderTemplates) (*WorkspaceSettingsView, error) {
	if tmpl.Upcoming == nil && tmpl.Overdue == nil {
		return nil, fmt.Errorf("%w: at least one template is required", ErrInvalidInput)
	}
	if err := s.tenantRepo.UpdateReminderTemplates(ctx, tenantID, tmpl); err != nil {
		return nil, fmt.Errorf("failed to update reminder templates: %w", err)
	}
	s.invalidate(ctx, tenantID)
	return s.GetWorkspaceSettings(ctx, tenantID)
}

func (s *settingsService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTenantCache(ctx, tenantID); err != nil {
		s.logger.Warn("tenant cache invalidation failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
	}
}

func settingsView(tenant *models.Tenant) *WorkspaceSettingsView {
	return &WorkspaceSettingsView{
		WhatsappURL:              trimmed(tenant.WhatsappURL),
		WhatsappInstance:         trimmed(tenant.WhatsappInstance),
		HasWhatsappAPIKey:        trimmed(tenant.WhatsappAPIKey) != "",
		N8nWebhookURL:            trimmed(tenant.N8nWebhookURL),
		ReminderTemplateUpcoming: templates.ReminderTemplate(tenant, models.ReminderTypeUpcoming),
		ReminderTemplateOverdue:  templates.ReminderTemplate(tenant, models.ReminderTypeOverdue),
	}
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
