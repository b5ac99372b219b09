package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProposalStatusSent     = "SENT"
	ProposalStatusOpened   = "OPENED"
	ProposalStatusAccepted = "ACCEPTED"
	ProposalStatusRejected = "REJECTED"
)

type Proposal struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TenantID     uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Title        string    `json:"title" db:"title"`
	ClientName   string    `json:"client_name" db:"client_name"`
	ClientEmail  *string   `json:"client_email" db:"client_email"`
	Content      string    `json:"content" db:"content"`
	Value        float64   `json:"value" db:"value"`
	Status       string    `json:"status" db:"status"`
	PDFObjectKey *string   `json:"pdf_object_key" db:"pdf_object_key"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
