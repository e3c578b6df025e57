package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/cyclesched/internal/domain"
)

// ProxyRepo — репозиторий для работы с task_states.
type ProxyRepo struct {
	pool *pgxpool.Pool
}

// NewProxyRepo создаёт новый ProxyRepo.
func NewProxyRepo(pool *pgxpool.Pool) *ProxyRepo {
	return &ProxyRepo{pool: pool}
}

// Upsert записывает или обновляет снимок состояния проси.
func (r *ProxyRepo) Upsert(ctx context.Context, row domain.ProxyStateRow) error {
	query := `
		INSERT INTO task_states (name, cycle_point, status, submit_num, try_num, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name, cycle_point) DO UPDATE
		SET status = $3, submit_num = $4, try_num = $5, updated_at = $6
	`
	_, err := r.pool.Exec(ctx, query,
		row.Name, row.CyclePoint, row.Status, row.SubmitNum, row.TryNum, row.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert task state: %w", err)
	}
	return nil
}

// UpsertBatch записывает несколько снимков за один round trip —
// этим пользуется repo.Writer при разгрузке DeltaBuffer.
func (r *ProxyRepo) UpsertBatch(ctx context.Context, rows []domain.ProxyStateRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `
		INSERT INTO task_states (name, cycle_point, status, submit_num, try_num, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name, cycle_point) DO UPDATE
		SET status = $3, submit_num = $4, try_num = $5, updated_at = $6
	`
	for _, row := range rows {
		batch.Queue(query, row.Name, row.CyclePoint, row.Status, row.SubmitNum, row.TryNum, row.UpdatedAt)
	}
	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range rows {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch upsert task state: %w", err)
		}
	}
	return nil
}

// GetByIdentity возвращает последний известный снимок по (name, cycle_point).
func (r *ProxyRepo) GetByIdentity(ctx context.Context, name, cyclePoint string) (*domain.ProxyStateRow, error) {
	query := `
		SELECT name, cycle_point, status, submit_num, try_num, updated_at
		FROM task_states
		WHERE name = $1 AND cycle_point = $2
	`
	var row domain.ProxyStateRow
	err := r.pool.QueryRow(ctx, query, name, cyclePoint).Scan(
		&row.Name, &row.CyclePoint, &row.Status, &row.SubmitNum, &row.TryNum, &row.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan task state: %w", err)
	}
	return &row, nil
}

// ListByCyclePoint возвращает все известные снимки проси для cycle_point.
func (r *ProxyRepo) ListByCyclePoint(ctx context.Context, cyclePoint string) ([]domain.ProxyStateRow, error) {
	query := `
		SELECT name, cycle_point, status, submit_num, try_num, updated_at
		FROM task_states
		WHERE cycle_point = $1
		ORDER BY name ASC
	`
	rows, err := r.pool.Query(ctx, query, cyclePoint)
	if err != nil {
		return nil, fmt.Errorf("list task states: %w", err)
	}
	defer rows.Close()

	var out []domain.ProxyStateRow
	for rows.Next() {
		var row domain.ProxyStateRow
		if err := rows.Scan(&row.Name, &row.CyclePoint, &row.Status, &row.SubmitNum, &row.TryNum, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task state: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
