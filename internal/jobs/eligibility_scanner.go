package jobs

import (
	"context"
	"fmt"
	"time"

	"agencycrm/internal/models"
	"agencycrm/internal/repositories"

	"github.com/google/uuid"
)

const (
	LeadStaleAfter     = 7 * 24 * time.Hour
	ProposalStaleAfter = 3 * 24 * time.Hour

	// ReminderWindowDays is how many calendar days ahead of today an unpaid
	// invoice counts as upcoming.
	ReminderWindowDays = 3
)

// ScanResult is the classification of one tenant's outstanding records.
// UpcomingInvoices and OverdueInvoices are disjoint and only hold invoices not
// yet reminded today. DueSoonInvoices holds every pending invoice inside the
// reminder window regardless of reminder state.
type ScanResult struct {
	StaleLeads       []*models.Lead
	StaleProposals   []*models.Proposal
	UpcomingInvoices []*models.Invoice
	OverdueInvoices  []*models.Invoice
	DueSoonInvoices  []*models.Invoice
}

type EligibilityScanner struct {
	leadRepo     repositories.LeadRepository
	proposalRepo repositories.ProposalRepository
	invoiceRepo  repositories.InvoiceRepository
}

func NewEligibilityScanner(leadRepo repositories.LeadRepository, proposalRepo repositories.ProposalRepository,
	invoiceRepo repositories.InvoiceRepository) *EligibilityScanner {
	return &EligibilityScanner{
		leadRepo:     leadRepo,
		proposalRepo: proposalRepo,
		invoiceRepo:  invoiceRepo,
	}
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// calendarDay reads the stored due date as a calendar date in loc.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// InReminderWindow reports whether due falls on a calendar day in
// [today, today+ReminderWindowDays].
func InReminderWindow(due, today time.Time) bool {
	day := calendarDay(due, today.Location())
	return !day.Before(today) && !day.After(today.AddDate(0, 0, ReminderWindowDays))
}

// Scan classifies every outstanding record of the tenant. It never writes.
func (s *EligibilityScanner) Scan(ctx context.Context, tenantID uuid.UUID, now time.Time) (*ScanResult, error) {
	today := StartOfDay(now)

	leads, err := s.leadRepo.ListByStatuses(ctx, tenantID, models.OpenLeadStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	proposals, err := s.proposalRepo.ListByStatus(ctx, tenantID, models.ProposalStatusSent)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}

	result := &ScanResult{}
	for _, lead := range leads {
		if now.Sub(lead.UpdatedAt) >= LeadStaleAfter {
			result.StaleLeads = append(result.StaleLeads, lead)
		}
	}
	for _, p := range proposals {
		if now.Sub(p.UpdatedAt) >= ProposalStaleAfter {
			result.StaleProposals = append(result.StaleProposals, p)
		}
	}

	if err := s.scanInvoices(ctx, tenantID, today, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ScanInvoices returns only the invoice lists the reminder job needs.
func (s *EligibilityScanner) ScanInvoices(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]*models.Invoice, []*models.Invoice, error) {
	result := &ScanResult{}
	if err := s.scanInvoices(ctx, tenantID, StartOfDay(now), result); err != nil {
		return nil, nil, err
	}
	return result.UpcomingInvoices, result.OverdueInvoices, nil
}

func (s *EligibilityScanner) scanInvoices(ctx context.Context, tenantID uuid.UUID, today time.Time, result *ScanResult) error {
	pending, err := s.invoiceRepo.ListByStatus(ctx, tenantID, models.InvoiceStatusPending)
	if err != nil {
		return fmt.Errorf("failed to list pending invoices: %w", err)
	}
	overdue, err := s.invoiceRepo.ListByStatus(ctx, tenantID, models.InvoiceStatusOverdue)
	if err != nil {
		return fmt.Errorf("failed to list overdue invoices: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, len(pending))
	for _, inv := range pending {
		if inv.TenantID != tenantID || !InReminderWindow(inv.DueDate, today) {
			continue
		}
		result.DueSoonInvoices = append(result.DueSoonInvoices, inv)
		if inv.RemindedSince(today) {
			continue
		}
		result.UpcomingInvoices = append(result.UpcomingInvoices, inv)
		seen[inv.ID] = struct{}{}
	}

	for _, inv := range overdue {
		if inv.TenantID != tenantID || inv.RemindedSince(today) {
			continue
		}
		// A status flip between the two reads could list an invoice twice.
		if _, dup := seen[inv.ID]; dup {
			continue
		}
		result.OverdueInvoices = append(result.OverdueInvoices, inv)
	}
	return nil
}
