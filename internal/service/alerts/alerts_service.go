package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/labstock/internal/domain/models"
	"github.com/mamadbah2/labstock/internal/service/inventory"
	"github.com/mamadbah2/labstock/pkg/clients/notify"
)

const (
	dateLayout  = "2006-01-02"
	maxPerKind  = 20
	alertsTitle = "Low stock"
)

// Source is the slice of the inventory service the alerts need.
type Source interface {
	Schemas() []models.Schema
	View(ctx context.Context, kind string, query inventory.ViewQuery) (*inventory.View, error)
}

// Service builds low-stock summaries and delivers them.
type Service struct {
	source   Source
	notifier notify.Client
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new alerts service. A nil notifier means summaries are
// only logged.
func NewService(source Source, notifier notify.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, notifier: notifier, logger: logger, now: time.Now}
}

// LowStockSummary renders every row below its kind's threshold, lowest
// quantity first. The count is the number of low rows across all kinds.
func (s *Service) LowStockSummary(ctx context.Context) (string, int, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Low stock report (%s)", s.now().Format(dateLayout))

	total := 0
	for _, schema := range s.source.Schemas() {
		view, err := s.source.View(ctx, string(schema.Kind), inventory.ViewQuery{Sort: "qty_asc"})
		if err != nil {
			return "", 0, fmt.Errorf("load %s: %w", schema.Kind, err)
		}

		var low []inventory.ViewRow
		for _, row := range view.Rows {
			if row.LowStock {
				low = append(low, row)
			}
		}
		if len(low) == 0 {
			continue
		}
		total += len(low)

		fmt.Fprintf(&b, "\n\n%s: %d item(s)", schema.Title, len(low))
		for i, row := range low {
			if i == maxPerKind {
				fmt.Fprintf(&b, "\n... and %d more", len(low)-maxPerKind)
				break
			}
			fmt.Fprintf(&b, "\n- %s: %d", label(schema, row.Fields), row.Quantity)
		}
	}

	if total == 0 {
		return fmt.Sprintf("Low stock report (%s): every item is above its threshold.", s.now().Format(dateLayout)), 0, nil
	}
	return b.String(), total, nil
}

// SendLowStockAlert builds the summary and posts it when anything is low.
func (s *Service) SendLowStockAlert(ctx context.Context) error {
	summary, count, err := s.LowStockSummary(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		s.logger.Info("no low stock items")
		return nil
	}

	if s.notifier == nil {
		s.logger.Warn("low stock items found, no notifier configured", zap.Int("items", count), zap.String("summary", summary))
		return nil
	}

	if err := s.notifier.Send(ctx, notify.Message{Title: alertsTitle, Text: summary}); err != nil {
		return fmt.Errorf("send low stock alert: %w", err)
	}
	s.logger.Info("low stock alert sent", zap.Int("items", count))
	return nil
}

func label(schema models.Schema, fields map[string]string) string {
	parts := []string{fields[schema.NameField]}
	if p := schema.ParameterField(); p != "" && fields[p] != "" {
		parts = append(parts, fields[p])
	}
	if schema.PackageField != "" && fields[schema.PackageField] != "" {
		parts = append(parts, "("+fields[schema.PackageField]+")")
	}
	return strings.Join(parts, " ")
}
