package repositories

import (
	"context"
	"time"

	"agencycrm/internal/models"

	"github.com/google/uuid"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error)
	ListByStatus(ctx context.Context, tenantID uuid.UUID, status string) ([]*models.Invoice, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
	MarkReminded(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error
	MarkOverdue(ctx context.Context, tenantID uuid.UUID, dueBefore time.Time) (int64, error)
}

type invoiceRepo struct {
	db DBTX
}

func NewInvoiceRepo(db DBTX) InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceSelect = `
		SELECT i.id, i.tenant_id, i.client_id, i.project_id, i.description, i.amount, i.due_date, i.status, i.last_reminder_at, i.created_at, i.updated_at,
			c.id, c.name, c.phone
		FROM invoices i
		JOIN clients c ON c.id = i.client_id AND c.tenant_id = i.tenant_id
`

func scanInvoice(row interface{ Scan(dest ...any) error }) (*models.Invoice, error) {
	invoice := &models.Invoice{Client: &models.Client{}}
	err := row.Scan(&invoice.ID, &invoice.TenantID, &invoice.ClientID, &invoice.ProjectID, &invoice.Description,
		&invoice.Amount, &invoice.DueDate, &invoice.Status, &invoice.LastReminderAt, &invoice.CreatedAt, &invoice.UpdatedAt,
		&invoice.Client.ID, &invoice.Client.Name, &invoice.Client.Phone)
	if err != nil {
		return nil, err
	}
	invoice.Client.TenantID = invoice.TenantID
	return invoice, nil
}

func (r *invoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (id, tenant_id, client_id, project_id, description, amount, due_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, invoice.ID, invoice.TenantID, invoice.ClientID, invoice.ProjectID, invoice.Description, invoice.Amount, invoice.DueDate, invoice.Status)
	return err
}

func (r *invoiceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	query := invoiceSelect + `		WHERE i.tenant_id = $1 AND i.id = $2`
	return scanInvoice(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *invoiceRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	query := invoiceSelect + `		WHERE i.tenant_id = $1
		ORDER BY i.due_date DESC
		LIMIT $2 OFFSET $3`
	return r.queryInvoices(ctx, query, tenantID, limit, offset)
}

// ListByStatus returns every invoice of the tenant in the given status,
// joined with its client, ordered by due date.
func (r *invoiceRepo) ListByStatus(ctx context.Context, tenantID uuid.UUID, status string) ([]*models.Invoice, error) {
	query := invoiceSelect + `		WHERE i.tenant_id = $1 AND i.status = $2
		ORDER BY i.due_date ASC`
	return r.queryInvoices(ctx, query, tenantID, status)
}

func (r *invoiceRepo) queryInvoices(ctx context.Context, query string, args ...any) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	query := `UPDATE invoices SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	tag, err := r.db.Exec(ctx, query, status, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *invoiceRepo) MarkReminded(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error {
	query := `UPDATE invoices SET last_reminder_at = $1 WHERE tenant_id = $2 AND id = $3`
	_, err := r.db.Exec(ctx, query, at, tenantID, id)
	return err
}

// MarkOverdue moves every PENDING invoice due before dueBefore to OVERDUE.
func (r *invoiceRepo) MarkOverdue(ctx context.Context, tenantID uuid.UUID, dueBefore time.Time) (int64, error) {
	query := `
		UPDATE invoices
		SET status = 'OVERDUE', updated_at = NOW()
		WHERE tenant_id = $1 AND status = 'PENDING' AND due_date < $2::date
	`
	tag, err := r.db.Exec(ctx, query, tenantID, dueBefore)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
