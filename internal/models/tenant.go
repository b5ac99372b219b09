package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

// Tenant is an agency workspace. Messaging credentials and reminder
// templates are optional and configured by the workspace owner.
type Tenant struct {
	ID                       uuid.UUID `json:"id" db:"id"`
	Name                     string    `json:"name" db:"name"`
	Slug                     string    `json:"slug" db:"slug"`
	Status                   string    `json:"status" db:"status"`
	WhatsappURL              *string   `json:"whatsapp_url" db:"whatsapp_url"`
	WhatsappAPIKey           *string   `json:"-" db:"whatsapp_api_key"`
	WhatsappInstance         *string   `json:"whatsapp_instance" db:"whatsapp_instance"`
	N8nWebhookURL            *string   `json:"n8n_webhook_url" db:"n8n_webhook_url"`
	ReminderTemplateUpcoming *string   `json:"reminder_template_upcoming" db:"reminder_template_upcoming"`
	ReminderTemplateOverdue  *string   `json:"reminder_template_overdue" db:"reminder_template_overdue"`
	CreatedAt                time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time `json:"updated_at" db:"updated_at"`
}

// WorkspaceSettings is the patch body for messaging settings. Nil fields are
// left untouched.
type WorkspaceSettings struct {
	WhatsappURL      *string `json:"whatsappUrl"`
	WhatsappAPIKey   *string `json:"whatsappApiKey"`
	WhatsappInstance *string `json:"whatsappInstance"`
	N8nWebhookURL    *string `json:"n8nWebhookUrl"`
}

// ReminderTemplates is the patch body for the two reminder templates.
type ReminderTemplates struct {
	Upcoming *string `json:"reminderTemplateUpcoming"`
	Overdue  *string `json:"reminderTemplateOverdue"`
}
