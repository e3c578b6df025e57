package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/cyclesched/internal/domain"
)

// TaskJobLogRepo — репозиторий для работы с task_job_logs.
type TaskJobLogRepo struct {
	pool *pgxpool.Pool
}

// NewTaskJobLogRepo создаёт новый TaskJobLogRepo.
func NewTaskJobLogRepo(pool *pgxpool.Pool) *TaskJobLogRepo {
	return &TaskJobLogRepo{pool: pool}
}

// Insert регистрирует один артефакт лога для попытки отправки.
func (r *TaskJobLogRepo) Insert(ctx context.Context, row domain.JobLogRow) error {
	query := `
		INSERT INTO task_job_logs (name, cycle_point, submit_num, path, retrieved_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, row.Name, row.CyclePoint, row.SubmitNum, row.Path, row.RetrievedAt)
	if err != nil {
		return fmt.Errorf("insert task job log: %w", err)
	}
	return nil
}

// ListBySubmitNum возвращает все зарегистрированные логи для (name, cycle_point, submit_num).
func (r *TaskJobLogRepo) ListBySubmitNum(ctx context.Context, name, cyclePoint string, submitNum int) ([]domain.JobLogRow, error) {
	query := `
		SELECT name, cycle_point, submit_num, path, retrieved_at
		FROM task_job_logs
		WHERE name = $1 AND cycle_point = $2 AND submit_num = $3
		ORDER BY retrieved_at ASC
	`
	rows, err := r.pool.Query(ctx, query, name, cyclePoint, submitNum)
	if err != nil {
		return nil, fmt.Errorf("list task job logs: %w", err)
	}
	defer rows.Close()

	var out []domain.JobLogRow
	for rows.Next() {
		var row domain.JobLogRow
		if err := rows.Scan(&row.Name, &row.CyclePoint, &row.SubmitNum, &row.Path, &row.RetrievedAt); err != nil {
			return nil, fmt.Errorf("scan task job log: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
