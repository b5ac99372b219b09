package repositories

import (
	"context"

	"agencycrm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Lead, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lead, error)
	ListByStatuses(ctx context.Context, tenantID uuid.UUID, statuses []string) ([]*models.Lead, error)
	// UpdateStatus moves the lead to status and bumps updated_at, which is the
	// staleness clock for follow-up alerts.
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
}

type leadRepo struct {
	db DBTX
}

func NewLeadRepo(db DBTX) LeadRepository {
	return &leadRepo{db: db}
}

const leadColumns = `id, tenant_id, name, email, phone, company, value, status, notes, created_at, updated_at`

func scanLead(row interface{ Scan(dest ...any) error }, lead *models.Lead) error {
	return row.Scan(&lead.ID, &lead.TenantID, &lead.Name, &lead.Email, &lead.Phone,
		&lead.Company, &lead.Value, &lead.Status, &lead.Notes, &lead.CreatedAt, &lead.UpdatedAt)
}

func (r *leadRepo) Create(ctx context.Context, lead *models.Lead) error {
	query := `
		INSERT INTO leads (id, tenant_id, name, email, phone, company, value, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, lead.ID, lead.TenantID, lead.Name, lead.Email, lead.Phone,
		lead.Company, lead.Value, lead.Status, lead.Notes).Scan(&lead.CreatedAt, &lead.UpdatedAt)
}

func (r *leadRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Lead, error) {
	lead := &models.Lead{}
	query := `SELECT ` + leadColumns + ` FROM leads WHERE tenant_id = $1 AND id = $2`
	if err := scanLead(r.db.QueryRow(ctx, query, tenantID, id), lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *leadRepo) ListByStatuses(ctx context.Context, tenantID uuid.UUID, statuses []string) ([]*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE tenant_id = $1 AND status = ANY($2) ORDER BY updated_at ASC`
	rows, err := r.db.Query(ctx, query, tenantID, statuses)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

func (r *leadRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

func (r *leadRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	query := `UPDATE leads SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, query, status, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectLeads(rows pgx.Rows) ([]*models.Lead, error) {
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead := &models.Lead{}
		if err := scanLead(rows, lead); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}
