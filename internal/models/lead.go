package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	LeadStatusNew         = "NEW"
	LeadStatusContacted   = "CONTACTED"
	LeadStatusQualified   = "QUALIFIED"
	LeadStatusProposal    = "PROPOSAL"
	LeadStatusNegotiation = "NEGOTIATION"
	LeadStatusWon         = "WON"
	LeadStatusLost        = "LOST"
)

type Lead struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name      string    `json:"name" db:"name"`
	Email     *string   `json:"email" db:"email"`
	Phone     *string   `json:"phone" db:"phone"`
	Company   *string   `json:"company" db:"company"`
	Value     *float64  `json:"value" db:"value"`
	Status    string    `json:"status" db:"status"`
	Notes     *string   `json:"notes" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateLeadRequest is the create body accepted by the lead endpoint.
type CreateLeadRequest struct {
	Name    string   `json:"name"`
	Email   *string  `json:"email"`
	Phone   *string  `json:"phone"`
	Company *string  `json:"company"`
	Value   *float64 `json:"value"`
	Status  string   `json:"status"`
	Notes   *string  `json:"notes"`
}

// IsValidLeadStatus reports whether status is one of the pipeline stages.
func IsValidLeadStatus(status string) bool {
	switch status {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusProposal,
		LeadStatusNegotiation, LeadStatusWon, LeadStatusLost:
		return true
	}
	return false
}

// OpenLeadStatuses are the pipeline stages still waiting on first contact or
// qualification.
var OpenLeadStatuses = []string{LeadStatusNew, LeadStatusContacted, LeadStatusQualified}

var leadStatusPoints = map[string]int{
	LeadStatusNew:         0,
	LeadStatusContacted:   10,
	LeadStatusQualified:   20,
	LeadStatusProposal:    30,
	LeadStatusNegotiation: 40,
}

// Score is a 0-100 heuristic of how promising the lead is.
func (l *Lead) Score() int {
	score := 0
	if l.Email != nil && *l.Email != "" {
		score += 20
	}
	if l.Phone != nil && *l.Phone != "" {
		score += 20
	}
	if l.Company != nil && *l.Company != "" {
		score += 15
	}

	if l.Value != nil {
		switch v := *l.Value; {
		case v > 10000:
			score += 25
		case v > 5000:
			score += 15
		case v > 0:
			score += 10
		}
	}

	score += leadStatusPoints[l.Status]

	if score > 100 {
		return 100
	}
	return score
}

// ScoreBand buckets a score for display: "success", "warning" or "default".
func ScoreBand(score int) string {
	switch {
	case score >= 70:
		return "success"
	case score >= 40:
		return "warning"
	default:
		return "default"
	}
}
