package service

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dkoshelev/restobook/internal/model"
	"github.com/dkoshelev/restobook/internal/repository"
)

// AvailabilityFinder searches for tables that can seat a party in a window.
// Results are a best-effort snapshot: a table reported free can be taken
// before the caller books it, so Create always re-validates.
type AvailabilityFinder struct {
	store  repository.Store
	logger *zap.Logger
}

func NewAvailabilityFinder(store repository.Store, logger *zap.Logger) *AvailabilityFinder {
	return &AvailabilityFinder{
		store:  store,
		logger: logger,
	}
}

// FindAvailableTables returns the active, conflict-free tables whose capacity
// fits the party, smallest capacity first so large tables stay free for large
// parties. The ordering is a seating-efficiency bias, not a guarantee. An
// empty result is a normal outcome.
func (f *AvailabilityFinder) FindAvailableTables(ctx context.Context, window model.Window, partySize int) ([]*model.Table, error) {
	if partySize <= 0 {
		return nil, &model.ValidationError{Field: "party_size", Reason: "must be positive"}
	}
	if !window.IsValid() {
		return nil, &model.ValidationError{Field: "window", Reason: "start must be set and precede end"}
	}

	tables, err := f.store.Tables().GetActive(ctx)
	if err != nil {
		return nil, &model.StorageError{Op: "list active tables", Err: err}
	}

	var candidates []*model.Table
	for _, table := range tables {
		if table.Capacity >= partySize {
			candidates = append(candidates, table)
		}
	}

	detector := NewConflictDetector(f.store.Reservations())

	// Per-table checks are independent reads, run them in parallel.
	available := make([]*model.Table, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i, table := range candidates {
		g.Go(func() error {
			busy, err := detector.HasConflict(gctx, table.ID, window, 0)
			if err != nil {
				return err
			}
			if !busy {
				available[i] = table
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &model.StorageError{Op: "check table availability", Err: err}
	}

	result := make([]*model.Table, 0, len(available))
	for _, table := range available {
		if table != nil {
			result = append(result, table)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Capacity != result[j].Capacity {
			return result[i].Capacity < result[j].Capacity
		}
		return result[i].Number < result[j].Number
	})

	f.logger.Debug("availability search",
		zap.Time("start", window.Start),
		zap.Int("party_size", partySize),
		zap.Int("candidates", len(candidates)),
		zap.Int("available", len(result)),
	)

	return result, nil
}
