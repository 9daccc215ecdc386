package ports

import (
	"context"

	"github.com/bft-labs/spreads/internal/domain"
)

// ReportRepository persists the outcome of one autocrop batch.
type ReportRepository interface {
	Save(ctx context.Context, report domain.Report) error
	Load(ctx context.Context) (domain.Report, error)
}
