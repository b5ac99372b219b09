package repositories

import (
	"context"

	"agencycrm/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
	UpdateMessagingSettings(ctx context.Context, id uuid.UUID, settings *models.WorkspaceSettings) error
	UpdateReminderTemplates(ctx context.Context, id uuid.UUID, templates *models.ReminderTemplates) error
}

type tenantRepo struct {
	db DBTX
}

func NewTenantRepo(db DBTX) TenantRepository {
	return &tenantRepo{db: db}
}

const tenantColumns = `id, name, slug, status, whatsapp_url, whatsapp_api_key, whatsapp_instance, n8n_webhook_url, reminder_template_upcoming, reminder_template_overdue, created_at, updated_at`

func scanTenant(row interface{ Scan(dest ...any) error }, tenant *models.Tenant) error {
	return row.Scan(&tenant.ID, &tenant.Name, &tenant.Slug, &tenant.Status,
		&tenant.WhatsappURL, &tenant.WhatsappAPIKey, &tenant.WhatsappInstance, &tenant.N8nWebhookURL,
		&tenant.ReminderTemplateUpcoming, &tenant.ReminderTemplateOverdue,
		&tenant.CreatedAt, &tenant.UpdatedAt)
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	if err := scanTenant(r.db.QueryRow(ctx, query, id), tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant := &models.Tenant{}
		if err := scanTenant(rows, tenant); err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

// UpdateMessagingSettings only overwrites the fields present in settings.
func (r *tenantRepo) UpdateMessagingSettings(ctx context.Context, id uuid.UUID, settings *models.WorkspaceSettings) error {
	query := `
		UPDATE tenants
		SET whatsapp_url = COALESCE($1, whatsapp_url),
			whatsapp_api_key = COALESCE($2, whatsapp_api_key),
			whatsapp_instance = COALESCE($3, whatsapp_instance),
			n8n_webhook_url = COALESCE($4, n8n_webhook_url),
			updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, settings.WhatsappURL, settings.WhatsappAPIKey, settings.WhatsappInstance, settings.N8nWebhookURL, id)
	return err
}

func (r *tenantRepo) UpdateReminderTemplates(ctx context.Context, id uuid.UUID, templates *models.ReminderTemplates) error {
	query := `
		UPDATE tenants
		SET reminder_template_upcoming = COALESCE($1, reminder_template_upcoming),
			reminder_template_overdue = COALESCE($2, reminder_template_overdue),
			updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, templates.Upcoming, templates.Overdue, id)
	return err
}
