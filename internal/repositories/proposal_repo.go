package repositories

import (
	"context"

	"agencycrm/internal/models"

	"github.com/google/uuid"
)

type ProposalRepository interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Proposal, error)
	ListByStatus(ctx context.Context, tenantID uuid.UUID, status string) ([]*models.Proposal, error)
	SetPDFObjectKey(ctx context.Context, tenantID, id uuid.UUID, key string) error
}

type proposalRepo struct {
	db DBTX
}

func NewProposalRepo(db DBTX) ProposalRepository {
	return &proposalRepo{db: db}
}

func (r *proposalRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Proposal, error) {
	p := &models.Proposal{}
	query := `
		SELECT id, tenant_id, title, client_name, client_email, content, value, status, pdf_object_key, created_at, updated_at
		FROM proposals
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&p.ID, &p.TenantID, &p.Title, &p.ClientName, &p.ClientEmail,
		&p.Content, &p.Value, &p.Status, &p.PDFObjectKey, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *proposalRepo) ListByStatus(ctx context.Context, tenantID uuid.UUID, status string) ([]*models.Proposal, error) {
	query := `
		SELECT id, tenant_id, title, client_name, client_email, content, value, status, pdf_object_key, created_at, updated_at
		FROM proposals
		WHERE tenant_id = $1 AND status = $2
		ORDER BY updated_at ASC
	`
	rows, err := r.db.Query(ctx, query, tenantID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []*models.Proposal
	for rows.Next() {
		p := &models.Proposal{}
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Title, &p.ClientName, &p.ClientEmail,
			&p.Content, &p.Value, &p.Status, &p.PDFObjectKey, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

func (r *proposalRepo) SetPDFObjectKey(ctx context.Context, tenantID, id uuid.UUID, key string) error {
	query := `UPDATE proposals SET pdf_object_key = $1 WHERE tenant_id = $2 AND id = $3`
	_, err := r.db.Exec(ctx, query, key, tenantID, id)
	return err
}
