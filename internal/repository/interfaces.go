package repository

import (
	"context"

	"github.com/ateliervote/concours/internal/contest"
	"github.com/ateliervote/concours/internal/models"
)

// SnapshotRepository persists whole-contest snapshots. The engine treats
// a mutation as committed only once SaveSnapshot returned.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, c *contest.Contest) error
	LoadSnapshot(ctx context.Context, id string) (*contest.Contest, error)
}

// ExportRepository appends audit rows for external visualization. The
// export table is append-only; rows are never updated.
type ExportRepository interface {
	AppendExport(ctx context.Context, contestID string, rows []models.ExportRow) error
	ListExport(ctx context.Context, contestID string) ([]models.ExportRow, error)
}

// FullRepository combines all repository interfaces.
type FullRepository interface {
	SnapshotRepository
	ExportRepository
}
