package inventory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/labstock/internal/domain/models"
)

// PendingReport is a validated BOM waiting for the deduction request.
type PendingReport struct {
	Token     string                  `json:"token"`
	Kind      models.Kind             `json:"kind"`
	Report    models.ValidationReport `json:"report"`
	Complete  bool                    `json:"complete"`
	ExpiresAt time.Time               `json:"expires_at"`
}

// ReportRegistry keeps pending BOM reports between validation and deduction.
type ReportRegistry struct {
	reports map[string]PendingReport
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
}

// NewReportRegistry creates a registry whose entries live for ttl.
func NewReportRegistry(ttl time.Duration) *ReportRegistry {
	return &ReportRegistry{
		reports: make(map[string]PendingReport),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores a report under a fresh token.
func (r *ReportRegistry) Put(kind models.Kind, report models.ValidationReport) PendingReport {
	pending := PendingReport{
		Token:     uuid.NewString(),
		Kind:      kind,
		Report:    report,
		Complete:  report.Complete(),
		ExpiresAt: r.now().Add(r.ttl),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[pending.Token] = pending
	return pending
}

// Get retrieves a report that has not expired.
func (r *ReportRegistry) Get(token string) (PendingReport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pending, ok := r.reports[token]
	if !ok || !r.now().Before(pending.ExpiresAt) {
		return PendingReport{}, false
	}
	return pending, true
}

// Remove forgets a report.
func (r *ReportRegistry) Remove(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reports, token)
}

// Restore puts back a report taken for a deduction that could not be saved.
// It keeps its original expiry.
func (r *ReportRegistry) Restore(pending PendingReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[pending.Token] = pending
}

// Purge drops expired reports and returns how many were removed.
func (r *ReportRegistry) Purge() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for token, pending := range r.reports {
		if !now.Before(pending.ExpiresAt) {
			delete(r.reports, token)
			removed++
		}
	}
	return removed
}
