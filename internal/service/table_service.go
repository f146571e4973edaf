package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/dkoshelev/restobook/internal/model"
	"github.com/dkoshelev/restobook/internal/repository"
)

// TableService covers staff configuration of the floor plan. Tables are never
// deleted: reservations keep referencing them, so retiring a table means
// setting it inactive.
type TableService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewTableService(store repository.Store, logger *zap.Logger) *TableService {
	return &TableService{
		store:  store,
		logger: logger,
	}
}

func (s *TableService) Create(ctx context.Context, number string, capacity int) (*model.Table, error) {
	if number == "" {
		return nil, &model.ValidationError{Field: "number", Reason: "must be set"}
	}
	if capacity <= 0 {
		return nil, &model.ValidationError{Field: "capacity", Reason: "must be positive"}
	}

	table := &model.Table{
		Number:   number,
		Capacity: capacity,
		Status:   model.TableStatusActive,
	}
	if err := s.store.Tables().Create(ctx, table); err != nil {
		return nil, wrapStorage("create table", err)
	}

	s.logger.Info("table created",
		zap.Int64("table_id", table.ID),
		zap.String("number", table.Number),
		zap.Int("capacity", table.Capacity),
	)

	return table, nil
}

func (s *TableService) List(ctx context.Context) ([]*model.Table, error) {
	tables, err := s.store.Tables().GetAll(ctx)
	if err != nil {
		return nil, wrapStorage("list tables", err)
	}
	return tables, nil
}

func (s *TableService) Get(ctx context.Context, id int64) (*model.Table, error) {
	table, err := s.store.Tables().GetByID(ctx, id)
	if err != nil {
		return nil, wrapStorage("load table", err)
	}
	return table, nil
}

// SetStatus flips a table between active and inactive. Inactive tables stop
// taking new reservations; existing ones are untouched.
func (s *TableService) SetStatus(ctx context.Context, id int64, status model.TableStatus) (*model.Table, error) {
	if status != model.TableStatusActive && status != model.TableStatusInactive {
		return nil, &model.ValidationError{Field: "status", Reason: "must be active or inactive"}
	}

	if err := s.store.Tables().UpdateStatus(ctx, id, status); err != nil {
		return nil, wrapStorage("update table status", err)
	}

	table, err := s.store.Tables().GetByID(ctx, id)
	if err != nil {
		return nil, wrapStorage("load table", err)
	}

	s.logger.Info("table status changed",
		zap.Int64("table_id", id),
		zap.String("status", string(status)),
	)

	return table, nil
}
