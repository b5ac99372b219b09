package templates

import (
	"strings"
	"time"

	"agencycrm/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultUpcomingTemplate = "Olá {{client_name}}! Lembramos que sua fatura no valor de R$ {{amount}} vence em {{due_date}}. Evite multas efetuando o pagamento em dia."
	DefaultOverdueTemplate  = "Olá {{client_name}}! Identificamos que sua fatura no valor de R$ {{amount}} com vencimento em {{due_date}} ainda não foi quitada. Por favor, regularize sua situação."

	// DefaultClientName is used when an invoice has no client name to greet.
	DefaultClientName = "Cliente"

	DateLayout = "02/01/2006"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatAmount renders amount with pt-BR grouping and two decimals, e.g. 1.500,00.
func FormatAmount(amount float64) string {
	return brPrinter.Sprintf("%.2f", amount)
}

// FormatDate renders the calendar date of t as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ReminderValues builds the placeholder values for an invoice reminder.
func ReminderValues(invoice *models.Invoice) map[string]string {
	name := DefaultClientName
	if invoice.Client != nil && strings.TrimSpace(invoice.Client.Name) != "" {
		name = invoice.Client.Name
	}
	amount := FormatAmount(invoice.Amount)
	return map[string]string{
		"client_name": name,
		"amount":      amount,
		"valor":       amount,
		"due_date":    FormatDate(invoice.DueDate),
	}
}

// ProposalValues builds the placeholder values for a proposal document.
func ProposalValues(proposal *models.Proposal, now time.Time) map[string]string {
	return map[string]string{
		"client_name": proposal.ClientName,
		"title":       proposal.Title,
		"date":        FormatDate(now),
		"value":       FormatAmount(proposal.Value),
		"valor":       FormatAmount(proposal.Value),
	}
}

// ReminderTemplate picks the tenant's template for the reminder type, falling
// back to the built-in default when the tenant has none.
func ReminderTemplate(tenant *models.Tenant, kind models.ReminderType) string {
	var custom *string
	fallback := DefaultUpcomingTemplate
	if kind == models.ReminderTypeOverdue {
		custom = tenant.ReminderTemplateOverdue
		fallback = DefaultOverdueTemplate
	} else {
		custom = tenant.ReminderTemplateUpcoming
	}
	if custom != nil && strings.TrimSpace(*custom) != "" {
		return *custom
	}
	return fallback
}
