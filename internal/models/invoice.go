package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InvoiceStatusPending   = "PENDING"
	InvoiceStatusPaid      = "PAID"
	InvoiceStatusOverdue   = "OVERDUE"
	InvoiceStatusCancelled = "CANCELLED"
)

type Invoice struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	TenantID       uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	ClientID       uuid.UUID  `json:"client_id" db:"client_id"`
	ProjectID      *uuid.UUID `json:"project_id" db:"project_id"`
	Description    *string    `json:"description" db:"description"`
	Amount         float64    `json:"amount" db:"amount"`
	DueDate        time.Time  `json:"due_date" db:"due_date"`
	Status         string     `json:"status" db:"status"`
	LastReminderAt *time.Time `json:"last_reminder_at" db:"last_reminder_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`

	// Joined from clients
	Client *Client `json:"client,omitempty" db:"-"`
}

// IsValidInvoiceStatus reports whether status is one of the known invoice states.
func IsValidInvoiceStatus(status string) bool {
	switch status {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// RemindedSince reports whether a reminder was recorded at or after t.
func (i *Invoice) RemindedSince(t time.Time) bool {
	return i.LastReminderAt != nil && !i.LastReminderAt.Before(t)
}

// CreateInvoiceRequest is the create body accepted by the invoice endpoint.
type CreateInvoiceRequest struct {
	ClientID    uuid.UUID  `json:"clientId"`
	ProjectID   *uuid.UUID `json:"projectId"`
	Description *string    `json:"description"`
	Amount      float64    `json:"amount"`
	DueDate     string     `json:"dueDate"`
	Status      string     `json:"status"`
}
