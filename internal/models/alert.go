package models

// AlertType represents the kinds of follow-up alerts raised for a tenant
type AlertType string

const (
	AlertTypeLeadStale     AlertType = "LEAD_STALE"
	AlertTypeProposalStale AlertType = "PROPOSAL_STALE"
	AlertTypeInvoiceDue    AlertType = "INVOICE_DUE"
)

type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert is a read-only follow-up suggestion derived from a scan.
type Alert struct {
	ID          string        `json:"id"`
	Type        AlertType     `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Data        interface{}   `json:"data"`
	Severity    AlertSeverity `json:"severity"`
}
