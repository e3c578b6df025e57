package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/cyclesched/internal/domain"
)

// TaskEventRepo — репозиторий для работы с task_events.
type TaskEventRepo struct {
	pool *pgxpool.Pool
}

// NewTaskEventRepo создаёт новый TaskEventRepo.
func NewTaskEventRepo(pool *pgxpool.Pool) *TaskEventRepo {
	return &TaskEventRepo{pool: pool}
}

// Insert записывает один event, независимо от того, сработал ли по нему handler.
func (r *TaskEventRepo) Insert(ctx context.Context, row domain.EventRow) error {
	query := `
		INSERT INTO task_events (name, cycle_point, submit_num, event, message, at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query, row.Name, row.CyclePoint, row.SubmitNum, row.Event, row.Message, row.At)
	if err != nil {
		return fmt.Errorf("insert task event: %w", err)
	}
	return nil
}

// ListByIdentity возвращает историю событий для (name, cycle_point), по возрастанию времени.
func (r *TaskEventRepo) ListByIdentity(ctx context.Context, name, cyclePoint string) ([]domain.EventRow, error) {
	query := `
		SELECT name, cycle_point, submit_num, event, message, at
		FROM task_events
		WHERE name = $1 AND cycle_point = $2
		ORDER BY at ASC
	`
	rows, err := r.pool.Query(ctx, query, name, cyclePoint)
	if err != nil {
		return nil, fmt.Errorf("list task events: %w", err)
	}
	defer rows.Close()

	var out []domain.EventRow
	for rows.Next() {
		var row domain.EventRow
		if err := rows.Scan(&row.Name, &row.CyclePoint, &row.SubmitNum, &row.Event, &row.Message, &row.At); err != nil {
			return nil, fmt.Errorf("scan task event: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
