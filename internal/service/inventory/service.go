// Package inventory orchestrates load, transform and save of inventory tables
// and keeps validated BOM reports until they are deducted.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/labstock/internal/domain/models"
	engine "github.com/mamadbah2/labstock/internal/inventory"
	"github.com/mamadbah2/labstock/internal/repository"
	"github.com/mamadbah2/labstock/internal/upload"
)

var (
	// ErrReportNotFound indicates an unknown or expired BOM report token.
	ErrReportNotFound = errors.New("bom report not found or expired")

	// ErrProblemsPresent indicates a complete deduction was requested for a
	// report that still lists problems.
	ErrProblemsPresent = errors.New("bom report has problems")

	// ErrInvalidRequest indicates a malformed query or selection.
	ErrInvalidRequest = errors.New("invalid request")
)

// Options tune the service. Zero values fall back to the schema defaults.
type Options struct {
	LowStock       map[models.Kind]int
	NoStockMarkers []string
	ReportTTL      time.Duration
}

// Manager describes the operations the HTTP layer and the scheduler perform.
type Manager interface {
	Schemas() []models.Schema
	View(ctx context.Context, kind string, query ViewQuery) (*View, error)
	Stats(ctx context.Context, kind string) (engine.Stats, error)
	AppendRow(ctx context.Context, kind string, edit engine.RowEdit) (int, error)
	UpdateRow(ctx context.Context, kind string, index int, edit engine.RowEdit) error
	DeleteRow(ctx context.Context, kind string, index int) error
	Take(ctx context.Context, kind string, index, qty int) (models.Record, error)
	QuickAdd(ctx context.Context, kind string, fields map[string]string, qty int) (QuickAddResult, error)
	Intake(ctx context.Context, kind string, sheet *upload.Sheet, mapping upload.Mapping) (IntakeResult, error)
	ValidateBOM(ctx context.Context, kind string, sheet *upload.Sheet, mapping upload.Mapping) (PendingReport, error)
	DeductBOM(ctx context.Context, kind string, req DeductRequest) (DeductResult, error)
	PurgeReports() int
}

// Service is the store-backed Manager.
type Service struct {
	store   repository.Store
	opts    Options
	reports *ReportRegistry
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[models.Kind]*sync.Mutex
}

var _ Manager = (*Service)(nil)

// NewService wires a new service instance.
func NewService(store repository.Store, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.NoStockMarkers) == 0 {
		opts.NoStockMarkers = []string{engine.DefaultNoStockMarker}
	}
	if opts.ReportTTL <= 0 {
		opts.ReportTTL = 30 * time.Minute
	}
	return &Service{
		store:   store,
		opts:    opts,
		reports: NewReportRegistry(opts.ReportTTL),
		logger:  logger,
		locks:   make(map[models.Kind]*sync.Mutex),
	}
}

// Schemas lists every inventory kind.
func (s *Service) Schemas() []models.Schema {
	return models.Schemas()
}

// Threshold returns the low-stock threshold of a schema.
func (s *Service) Threshold(schema models.Schema) int {
	if v, ok := s.opts.LowStock[schema.Kind]; ok {
		return v
	}
	return schema.LowStock
}

// Stats summarizes one kind.
func (s *Service) Stats(ctx context.Context, kind string) (engine.Stats, error) {
	table, err := s.read(ctx, kind)
	if err != nil {
		return engine.Stats{}, err
	}
	return engine.Summarize(table, s.Threshold(table.Schema)), nil
}

// AppendRow adds a row and returns its index.
func (s *Service) AppendRow(ctx context.Context, kind string, edit engine.RowEdit) (int, error) {
	table, err := s.mutate(ctx, kind, func(t *models.Table) (*models.Table, error) {
		return engine.AppendRow(t, edit), nil
	})
	if err != nil {
		return 0, err
	}
	return table.Len() - 1, nil
}

// UpdateRow edits one row in place.
func (s *Service) UpdateRow(ctx context.Context, kind string, index int, edit engine.RowEdit) error {
	_, err := s.mutate(ctx, kind, func(t *models.Table) (*models.Table, error) {
		return engine.UpdateRow(t, index, edit)
	})
	return err
}

// DeleteRow removes one row.
func (s *Service) DeleteRow(ctx context.Context, kind string, index int) error {
	_, err := s.mutate(ctx, kind, func(t *models.Table) (*models.Table, error) {
		return engine.DeleteRow(t, index)
	})
	return err
}

// Take removes units from one row and returns the updated row.
func (s *Service) Take(ctx context.Context, kind string, index, qty int) (models.Record, error) {
	table, err := s.mutate(ctx, kind, func(t *models.Table) (*models.Table, error) {
		return engine.Take(t, index, qty)
	})
	if err != nil {
		return models.Record{}, err
	}
	return table.Rows[index], nil
}

// QuickAddResult tells where the quick-added stock landed.
type QuickAddResult struct {
	Index   int  `json:"index"`
	Created bool `json:"created"`
}

// QuickAdd adds stock for an exactly identified item.
func (s *Service) QuickAdd(ctx context.Context, kind string, fields map[string]string, qty int) (QuickAddResult, error) {
	if qty <= 0 {
		return QuickAddResult{}, fmt.Errorf("%w: got %d", engine.ErrInvalidQuantity, qty)
	}

	var result QuickAddResult
	_, err := s.mutate(ctx, kind, func(t *models.Table) (*models.Table, error) {
		if models.NormalizeCell(fields[t.Schema.NameField]) == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidRequest, t.Schema.NameField)
		}
		out, idx, created := engine.QuickAdd(t, fields, qty)
		result = QuickAddResult{Index: idx, Created: created}
		return out, nil
	})
	return result, err
}

// IntakeResult reports a merged intake batch.
type IntakeResult struct {
	Lines   int `json:"lines"`
	Applied int `json:"applied"`
	Rows    int `json:"rows"`
}

// Intake merges an uploaded sheet into the kind's table and saves once.
func (s *Service) Intake(ctx context.Context, kind string, sheet *upload.Sheet, mapping upload.Mapping) (IntakeResult, error) {
	var result IntakeResult
	table, err := s.mutate(ctx, kind, func(t *models.Table) (*models.Table, error) {
		lines, err := upload.IntakeLines(t.Schema, sheet, mapping)
		if err != nil {
			return nil, err
		}
		out, applied := engine.Merge(t, lines)
		result.Lines = len(lines)
		result.Applied = applied
		if applied == 0 {
			return nil, nil
		}
		return out, nil
	})
	if err != nil {
		return IntakeResult{}, err
	}
	result.Rows = table.Len()

	s.logger.Info("intake applied",
		zap.String("kind", string(table.Schema.Kind)),
		zap.Int("lines", result.Lines),
		zap.Int("applied", result.Applied),
	)
	return result, nil
}

// ValidateBOM checks an uploaded BOM against current stock and keeps the
// report for a later deduction.
func (s *Service) ValidateBOM(ctx context.Context, kind string, sheet *upload.Sheet, mapping upload.Mapping) (PendingReport, error) {
	table, err := s.read(ctx, kind)
	if err != nil {
		return PendingReport{}, err
	}

	lines, err := upload.BOMLines(table.Schema, sheet, mapping)
	if err != nil {
		return PendingReport{}, err
	}

	report := engine.Validate(table, lines, s.opts.NoStockMarkers)
	pending := s.reports.Put(table.Schema.Kind, report)

	s.logger.Info("bom validated",
		zap.String("kind", string(table.Schema.Kind)),
		zap.String("token", pending.Token),
		zap.Int("satisfiable", len(report.Satisfiable)),
		zap.Int("problems", len(report.Problems)),
		zap.Int("skipped", report.Skipped),
	)
	return pending, nil
}

// DeductRequest selects what to deduct from a validated report. Without Lines
// and Force the whole report is deducted, which requires it to be problem
// free. Force deducts every satisfiable line; Lines narrows to those BOM line
// numbers.
type DeductRequest struct {
	Token string `json:"token"`
	Lines []int  `json:"lines,omitempty"`
	Force bool   `json:"force"`
}

// DeductResult lists the BOM lines deducted and those refused on re-check.
type DeductResult struct {
	Deducted []int            `json:"deducted"`
	Problems []models.Problem `json:"problems"`
}

// DeductBOM applies a validated report to the current table.
func (s *Service) DeductBOM(ctx context.Context, kind string, req DeductRequest) (DeductResult, error) {
	schema, err := models.LookupSchema(kind)
	if err != nil {
		return DeductResult{}, err
	}

	var taken *PendingReport
	result := DeductResult{Deducted: []int{}, Problems: []models.Problem{}}
	_, err = s.mutate(ctx, kind, func(t *models.Table) (*models.Table, error) {
		// The lookup and removal of the token happen under the kind's lock so a
		// report is deducted at most once.
		pending, ok := s.reports.Get(req.Token)
		if !ok || pending.Kind != schema.Kind {
			return nil, ErrReportNotFound
		}
		selected, err := selectLines(pending, req)
		if err != nil {
			return nil, err
		}

		out, problems := engine.Deduct(t, selected)
		refused := make(map[int]struct{}, len(problems))
		for _, p := range problems {
			refused[p.Line] = struct{}{}
		}
		for _, line := range selected {
			if _, bad := refused[line.Line]; !bad {
				result.Deducted = append(result.Deducted, line.Line)
			}
		}
		result.Problems = append(result.Problems, problems...)

		s.reports.Remove(req.Token)
		taken = &pending
		if len(result.Deducted) == 0 {
			return nil, nil
		}
		return out, nil
	})
	if err != nil {
		if taken != nil {
			s.reports.Restore(*taken)
		}
		return DeductResult{}, err
	}

	s.logger.Info("bom deducted",
		zap.String("kind", string(schema.Kind)),
		zap.String("token", req.Token),
		zap.Int("deducted", len(result.Deducted)),
		zap.Int("refused", len(result.Problems)),
	)
	return result, nil
}

// PurgeReports drops expired pending reports.
func (s *Service) PurgeReports() int {
	return s.reports.Purge()
}

func selectLines(pending PendingReport, req DeductRequest) ([]models.SatisfiableLine, error) {
	all := pending.Report.Satisfiable
	if len(req.Lines) == 0 {
		if !req.Force && !pending.Complete {
			return nil, fmt.Errorf("%w: %d problem(s), deduct with force or choose lines", ErrProblemsPresent, len(pending.Report.Problems))
		}
		return all, nil
	}

	byLine := make(map[int]models.SatisfiableLine, len(all))
	for _, line := range all {
		byLine[line.Line] = line
	}

	selected := make([]models.SatisfiableLine, 0, len(req.Lines))
	seen := make(map[int]struct{}, len(req.Lines))
	for _, n := range req.Lines {
		line, ok := byLine[n]
		if !ok {
			return nil, fmt.Errorf("%w: line %d is not satisfiable in this report", ErrInvalidRequest, n)
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		selected = append(selected, line)
	}
	return selected, nil
}

// read loads a table for viewing.
func (s *Service) read(ctx context.Context, kind string) (*models.Table, error) {
	schema, err := models.LookupSchema(kind)
	if err != nil {
		return nil, err
	}
	table, err := s.store.Load(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", schema.Kind, err)
	}
	return table, nil
}

// mutate runs load, transform and save under the kind's lock. A nil table from
// fn means nothing changed and nothing is written. On a failed save the
// caller gets the error and no table.
func (s *Service) mutate(ctx context.Context, kind string, fn func(*models.Table) (*models.Table, error)) (*models.Table, error) {
	schema, err := models.LookupSchema(kind)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(schema.Kind)
	lock.Lock()
	defer lock.Unlock()

	table, err := s.store.Load(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", schema.Kind, err)
	}

	next, err := fn(table)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return table, nil
	}

	if err := s.store.Save(ctx, next); err != nil {
		s.logger.Error("inventory save failed", zap.String("kind", string(schema.Kind)), zap.Error(err))
		return nil, err
	}
	return next, nil
}

func (s *Service) lockFor(kind models.Kind) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[kind]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[kind] = lock
	}
	return lock
}
