package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agencycrm/internal/models"
	"agencycrm/internal/repositories"
	"agencycrm/internal/templates"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

const proposalLinkExpiry = 7 * 24 * time.Hour

var (
	// ErrNoRecipient is returned when a proposal has no client email to send to.
	ErrNoRecipient = errors.New("proposal has no client email")
	// ErrMailNotConfigured is returned by Send when no SMTP host is configured.
	ErrMailNotConfigured = errors.New("mail delivery not configured")
)

// ProposalDocument points at a stored proposal PDF.
type ProposalDocument struct {
	ObjectKey string    `json:"objectKey"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ProposalService interface {
	GeneratePDF(ctx context.Context, tenantID, proposalID uuid.UUID) (*ProposalDocument, error)
	Send(ctx context.Context, tenantID, proposalID uuid.UUID) (*ProposalDocument, error)
}

type proposalService struct {
	proposalRepo repositories.ProposalRepository
	settings     SettingsService
	storage      MinioService
	mailer       Mailer
	bucket       string
	now          func() time.Time
	logger       *zap.Logger
}

func NewProposalService(proposalRepo repositories.ProposalRepository, settings SettingsService, storage MinioService,
	mailer Mailer, bucket string, now func() time.Time, logger *zap.Logger) ProposalService {
	return &proposalService{
		proposalRepo: proposalRepo,
		settings:     settings,
		storage:      storage,
		mailer:       mailer,
		bucket:       bucket,
		now:          now,
		logger:       logger,
	}
}

func proposalObjectKey(tenantID, proposalID uuid.UUID) string {
	return fmt.Sprintf("proposals/%s/%s.pdf", tenantID.String(), proposalID.String())
}

func (s *proposalService) load(ctx context.Context, tenantID, proposalID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, tenantID, proposalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load proposal: %w", err)
	}
	return proposal, nil
}

func (s *proposalService) GeneratePDF(ctx context.Context, tenantID, proposalID uuid.UUID) (*ProposalDocument, error) {
	proposal, err := s.load(ctx, tenantID, proposalID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.settings.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, tenant, proposal)
}

// Send generates a fresh PDF and emails its link to the proposal's client.
func (s *proposalService) Send(ctx context.Context, tenantID, proposalID uuid.UUID) (*ProposalDocument, error) {
	if s.mailer == nil {
		return nil, ErrMailNotConfigured
	}
	proposal, err := s.load(ctx, tenantID, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.ClientEmail == nil || strings.TrimSpace(*proposal.ClientEmail) == "" {
		return nil, ErrNoRecipient
	}
	tenant, err := s.settings.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	doc, err := s.store(ctx, tenant, proposal)
	if err != nil {
		return nil, err
	}
	if err := s.mailer.SendProposal(*proposal.ClientEmail, proposal.ClientName, proposal.Title, tenant.Name, doc.URL); err != nil {
		return nil, err
	}

	s.logger.Info("proposal sent", zap.String("tenant_id", tenant.ID.String()), zap.String("proposal_id", proposal.ID.String()))
	return doc, nil
}

func (s *proposalService) store(ctx context.Context, tenant *models.Tenant, proposal *models.Proposal) (*ProposalDocument, error) {
	now := s.now()
	pdfBytes, err := RenderProposalPDF(tenant.Name, proposal, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	key := proposalObjectKey(tenant.ID, proposal.ID)
	if err := s.storage.Upload(ctx, s.bucket, key, bytes.NewReader(pdfBytes), int64(len(pdfBytes)), "application/pdf"); err != nil {
		return nil, fmt.Errorf("failed to upload PDF to storage: %w", err)
	}
	if err := s.proposalRepo.SetPDFObjectKey(ctx, tenant.ID, proposal.ID, key); err != nil {
		return nil, fmt.Errorf("failed to record PDF location: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.bucket, key, proposalLinkExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate download URL: %w", err)
	}

	s.logger.Info("proposal PDF stored",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("proposal_id", proposal.ID.String()),
		zap.Int("bytes", len(pdfBytes)),
	)
	return &ProposalDocument{ObjectKey: key, URL: url, ExpiresAt: now.Add(proposalLinkExpiry)}, nil
}

// RenderProposalPDF lays out a proposal as an A4 document. The content is run
// through the placeholder renderer first.
func RenderProposalPDF(agency string, proposal *models.Proposal, now time.Time) ([]byte, error) {
	values := templates.ProposalValues(proposal, now)
	content := templates.Render(proposal.Content, values)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, tr(strings.ToUpper(agency)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr(proposal.Title))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Cliente: %s", values["client_name"])))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Data: %s", values["date"])))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, tr(content), "", "L", false)
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(120, 8, tr("Investimento"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 8, "R$ "+values["value"], "1", 0, "R", true, 0, "")
	pdf.Ln(8)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
