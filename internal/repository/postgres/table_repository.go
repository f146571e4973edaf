package postgres

import (
	"context"
	"fmt"

	"github.com/dkoshelev/restobook/internal/model"
	"github.com/dkoshelev/restobook/internal/repository/base"
)

type TableRepository struct {
	*base.Repository
}

func NewTableRepository(q base.Querier) *TableRepository {
	return &TableRepository{Repository: base.NewRepository(q)}
}

func (r *TableRepository) Create(ctx context.Context, table *model.Table) error {
	query := `
		INSERT INTO tables (number, capacity, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.Q().QueryRow(ctx, query, table.Number, table.Capacity, table.Status).
		Scan(&table.ID, &table.CreatedAt, &table.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	return nil
}

func (r *TableRepository) GetByID(ctx context.Context, id int64) (*model.Table, error) {
	query := `
		SELECT id, number, capacity, status, created_at, updated_at
		FROM tables
		WHERE id = $1
	`

	var table model.Table
	err := r.Q().QueryRow(ctx, query, id).Scan(
		&table.ID,
		&table.Number,
		&table.Capacity,
		&table.Status,
		&table.CreatedAt,
		&table.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, &model.NotFoundError{Entity: "table", ID: id}
		}
		return nil, fmt.Errorf("get table by id: %w", err)
	}

	return &table, nil
}

func (r *TableRepository) GetActive(ctx context.Context) ([]*model.Table, error) {
	query := `
		SELECT id, number, capacity, status, created_at, updated_at
		FROM tables
		WHERE status = 'active'
		ORDER BY capacity, number
	`

	return r.queryTables(ctx, query)
}

func (r *TableRepository) GetAll(ctx context.Context) ([]*model.Table, error) {
	query := `
		SELECT id, number, capacity, status, created_at, updated_at
		FROM tables
		ORDER BY number
	`

	return r.queryTables(ctx, query)
}

func (r *TableRepository) UpdateStatus(ctx context.Context, id int64, status model.TableStatus) error {
	query := `
		UPDATE tables
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	result, err := r.Q().Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update table status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &model.NotFoundError{Entity: "table", ID: id}
	}

	return nil
}

func (r *TableRepository) queryTables(ctx context.Context, query string, args ...any) ([]*model.Table, error) {
	rows, err := r.Q().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []*model.Table
	for rows.Next() {
		var table model.Table
		err := rows.Scan(
			&table.ID,
			&table.Number,
			&table.Capacity,
			&table.Status,
			&table.CreatedAt,
			&table.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, &table)
	}

	return tables, rows.Err()
}
