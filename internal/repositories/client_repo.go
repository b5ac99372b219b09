package repositories

import (
	"context"

	"agencycrm/internal/models"

	"github.com/google/uuid"
)

type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Client, error)
}

type clientRepo struct {
	db DBTX
}

func NewClientRepo(db DBTX) ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) Create(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (id, tenant_id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, client.ID, client.TenantID, client.Name, client.Email, client.Phone).
		Scan(&client.CreatedAt, &client.UpdatedAt)
}

func (r *clientRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	client := &models.Client{}
	query := `
		SELECT id, tenant_id, name, email, phone, created_at, updated_at
		FROM clients
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&client.ID, &client.TenantID, &client.Name, &client.Email, &client.Phone, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *clientRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Client, error) {
	query := `
		SELECT id, tenant_id, name, email, phone, created_at, updated_at
		FROM clients
		WHERE tenant_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client := &models.Client{}
		if err := rows.Scan(&client.ID, &client.TenantID, &client.Name, &client.Email, &client.Phone, &client.CreatedAt, &client.UpdatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}
