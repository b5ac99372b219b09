package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"agencycrm/internal/ai"
	"agencycrm/internal/models"
	"agencycrm/internal/repositories"
	"agencycrm/internal/templates"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// AINotConfiguredMessage is returned in place of generated text when the
// service runs without an AI key.
const AINotConfiguredMessage = "A chave da API da OpenAI não foi configurada. Adicione OPENAI_API_KEY ao ambiente do servidor."

const alertSystemPrompt = "Você é um assistente de vendas de alta performance. Gere mensagens de WhatsApp curtas, persuasivas e cordiais. Use emojis de forma moderada. Não use placeholders como [Seu Nome], apenas gere a mensagem direta."

const leadFollowUpPrompt = `Você é um assistente de vendas de alta performance.
Sua tarefa é gerar uma mensagem de follow-up amigável, profissional e persuasiva para o WhatsApp.
O objetivo é reengajar o lead de forma natural.

Contexto do Lead:
Nome: %s
Status Atual: %s
Empresa: %s
Valor Potencial: R$ %s

Regras:
1. Use o primeiro nome do lead.
2. Seja conciso (máximo 3 parágrafos curtos).
3. Termine com uma pergunta aberta para incentivar a resposta.
4. Use emojis de forma moderada e profissional.
5. O tom deve ser de ajuda, não de cobrança.
6. Se o status for "NEW", dê boas-vindas.
7. Se for "CONTACTED" ou "QUALIFIED", pergunte se ele teve tempo de ver o que conversaram.
8. Se for "PROPOSAL", pergunte se restou alguma dúvida sobre os valores ou escopo.`

// FollowUpMessage is a generated message ready to be sent by the user.
type FollowUpMessage struct {
	Message string  `json:"message"`
	Phone   *string `json:"phone"`
}

// LeadScore is the score heuristic result for one lead.
type LeadScore struct {
	LeadID uuid.UUID `json:"leadId"`
	Score  int       `json:"score"`
	Band   string    `json:"band"`
}

type FollowUpService interface {
	LeadFollowUp(ctx context.Context, tenantID, leadID uuid.UUID) (*FollowUpMessage, error)
	AlertMessage(ctx context.Context, alertType models.AlertType, alertData json.RawMessage) (string, error)
	LeadScore(ctx context.Context, tenantID, leadID uuid.UUID) (*LeadScore, error)
}

type followUpService struct {
	leadRepo  repositories.LeadRepository
	completer ai.Completer
	logger    *zap.Logger
}

func NewFollowUpService(leadRepo repositories.LeadRepository, completer ai.Completer, logger *zap.Logger) FollowUpService {
	return &followUpService{
		leadRepo:  leadRepo,
		completer: completer,
		logger:    logger,
	}
}

func (s *followUpService) getLead(ctx context.Context, tenantID, leadID uuid.UUID) (*models.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, tenantID, leadID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}
	return lead, nil
}

func (s *followUpService) LeadFollowUp(ctx context.Context, tenantID, leadID uuid.UUID) (*FollowUpMessage, error) {
	lead, err := s.getLead(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}

	company := "Não informada"
	if lead.Company != nil && *lead.Company != "" {
		company = *lead.Company
	}
	value := templates.FormatAmount(0)
	if lead.Value != nil {
		value = templates.FormatAmount(*lead.Value)
	}

	system := fmt.Sprintf(leadFollowUpPrompt, lead.Name, lead.Status, company, value)
	text, err := s.complete(ctx, system, "Gere uma mensagem de follow-up para este lead.")
	if err != nil {
		return nil, err
	}
	return &FollowUpMessage{Message: text, Phone: lead.Phone}, nil
}

func (s *followUpService) AlertMessage(ctx context.Context, alertType models.AlertType, alertData json.RawMessage) (string, error) {
	if len(alertData) == 0 {
		return "", fmt.Errorf("%w: alertData is required", ErrInvalidInput)
	}

	var prompt string
	switch alertType {
	case models.AlertTypeLeadStale:
		var lead models.Lead
		if err := json.Unmarshal(alertData, &lead); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		prompt = fmt.Sprintf("Gere uma mensagem amigável e profissional de follow-up para o lead %s que não recebe contato há alguns dias. O objetivo é reengajar sem ser invasivo.", lead.Name)
	case models.AlertTypeProposalStale:
		var proposal models.Proposal
		if err := json.Unmarshal(alertData, &proposal); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		prompt = fmt.Sprintf("Gere uma mensagem profissional para o cliente %s sobre a proposta \"%s\". A proposta foi enviada há 3 dias e ainda não tivemos retorno. Pergunte se ele tem alguma dúvida.", proposal.ClientName, proposal.Title)
	case models.AlertTypeInvoiceDue:
		var invoice models.Invoice
		if err := json.Unmarshal(alertData, &invoice); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		values := templates.ReminderValues(&invoice)
		prompt = fmt.Sprintf("Gere um lembrete gentil de pagamento para %s. A fatura no valor de R$ %s vence em %s.", values["client_name"], values["amount"], values["due_date"])
	default:
		return "", fmt.Errorf("%w: unknown alert type %q", ErrInvalidInput, alertType)
	}

	return s.complete(ctx, alertSystemPrompt, prompt)
}

func (s *followUpService) LeadScore(ctx context.Context, tenantID, leadID uuid.UUID) (*LeadScore, error) {
	lead, err := s.getLead(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}
	score := lead.Score()
	return &LeadScore{LeadID: lead.ID, Score: score, Band: models.ScoreBand(score)}, nil
}

func (s *followUpService) complete(ctx context.Context, system, user string) (string, error) {
	text, err := s.completer.Complete(ctx, system, user)
	if errors.Is(err, ai.ErrNotConfigured) {
		return AINotConfiguredMessage, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate message: %w", err)
	}
	return text, nil
}
