package services

import (
	"context"
	"fmt"
	"strings"

	"agencycrm/internal/models"
	"agencycrm/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ClientService interface {
	ListClients(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Client, error)
	CreateClient(ctx context.Context, tenantID uuid.UUID, req *models.CreateClientRequest) (*models.Client, error)
}

type clientService struct {
	clientRepo repositories.ClientRepository
	logger     *zap.Logger
}

func NewClientService(clientRepo repositories.ClientRepository, logger *zap.Logger) ClientService {
	return &clientService{
		clientRepo: clientRepo,
		logger:     logger,
	}
}

func (s *clientService) ListClients(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Client, error) {
	limit, offset = clampPage(limit, offset)
	clients, err := s.clientRepo.List(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (s *clientService) CreateClient(ctx context.Context, tenantID uuid.UUID, req *models.CreateClientRequest) (*models.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	client := &models.Client{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     name,
		Email:    trimmedOrNil(req.Email),
		Phone:    trimmedOrNil(req.Phone),
	}
	if client.Email != nil && !strings.Contains(*client.Email, "@") {
		return nil, fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	s.logger.Info("client created", zap.String("tenant_id", tenantID.String()), zap.String("client_id", client.ID.String()))
	return client, nil
}

// clampPage applies the list defaults shared by the paginated endpoints.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
