package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/cyclesched/internal/domain"
)

// TaskJobRepo — репозиторий для работы с task_jobs.
type TaskJobRepo struct {
	pool *pgxpool.Pool
}

// NewTaskJobRepo создаёт новый TaskJobRepo.
func NewTaskJobRepo(pool *pgxpool.Pool) *TaskJobRepo {
	return &TaskJobRepo{pool: pool}
}

// upsertJobQuery keys on (name, cycle_point, submit_num) since one
// submission attempt accumulates several partial updates over its
// lifetime (a row at prep-submit time, a batch job ID once submission
// succeeds, an exit status once it finishes) — each later write merges
// in only the fields it actually carries rather than clobbering the
// ones recorded earlier with NULL.
const upsertJobQuery = `
	INSERT INTO task_jobs (name, cycle_point, submit_num, batch_system, batch_job_id,
	                        submitted_at, started_at, finished_at, exit_status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (name, cycle_point, submit_num) DO UPDATE
	SET batch_system = COALESCE(EXCLUDED.batch_system, task_jobs.batch_system),
	    batch_job_id  = COALESCE(EXCLUDED.batch_job_id, task_jobs.batch_job_id),
	    submitted_at  = COALESCE(EXCLUDED.submitted_at, task_jobs.submitted_at),
	    started_at    = COALESCE(EXCLUDED.started_at, task_jobs.started_at),
	    finished_at   = COALESCE(EXCLUDED.finished_at, task_jobs.finished_at),
	    exit_status   = COALESCE(EXCLUDED.exit_status, task_jobs.exit_status)
`

// Insert записывает или дополняет запись о попытке отправки job.
func (r *TaskJobRepo) Insert(ctx context.Context, row domain.JobRow) error {
	_, err := r.pool.Exec(ctx, upsertJobQuery,
		row.Name, row.CyclePoint, row.SubmitNum, nullString(row.BatchSystem), nullString(row.BatchJobID),
		nullTime(row.SubmittedAt), nullTime(row.StartedAt), nullTime(row.FinishedAt), nullString(row.ExitStatus),
	)
	if err != nil {
		return fmt.Errorf("upsert task job: %w", err)
	}
	return nil
}

// InsertBatch записывает или дополняет несколько job-записей за один round trip.
func (r *TaskJobRepo) InsertBatch(ctx context.Context, rows []domain.JobRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(upsertJobQuery,
			row.Name, row.CyclePoint, row.SubmitNum, nullString(row.BatchSystem), nullString(row.BatchJobID),
			nullTime(row.SubmittedAt), nullTime(row.StartedAt), nullTime(row.FinishedAt), nullString(row.ExitStatus),
		)
	}
	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range rows {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch upsert task job: %w", err)
		}
	}
	return nil
}

// ListBySubmitNum возвращает запись по (name, cycle_point, submit_num).
func (r *TaskJobRepo) ListBySubmitNum(ctx context.Context, name, cyclePoint string, submitNum int) (*domain.JobRow, error) {
	query := `
		SELECT name, cycle_point, submit_num, batch_system, batch_job_id,
		       submitted_at, started_at, finished_at, exit_status
		FROM task_jobs
		WHERE name = $1 AND cycle_point = $2 AND submit_num = $3
	`
	var row domain.JobRow
	var batchJobID, exitStatus *string
	err := r.pool.QueryRow(ctx, query, name, cyclePoint, submitNum).Scan(
		&row.Name, &row.CyclePoint, &row.SubmitNum, &row.BatchSystem, &batchJobID,
		&row.SubmittedAt, &row.StartedAt, &row.FinishedAt, &exitStatus,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan task job: %w", err)
	}
	if batchJobID != nil {
		row.BatchJobID = *batchJobID
	}
	if exitStatus != nil {
		row.ExitStatus = *exitStatus
	}
	return &row, nil
}

// ListByIdentity возвращает все попытки отправки для (name, cycle_point), по возрастанию submit_num.
func (r *TaskJobRepo) ListByIdentity(ctx context.Context, name, cyclePoint string) ([]domain.JobRow, error) {
	query := `
		SELECT name, cycle_point, submit_num, batch_system, batch_job_id,
		       submitted_at, started_at, finished_at, exit_status
		FROM task_jobs
		WHERE name = $1 AND cycle_point = $2
		ORDER BY submit_num ASC
	`
	rows, err := r.pool.Query(ctx, query, name, cyclePoint)
	if err != nil {
		return nil, fmt.Errorf("list task jobs: %w", err)
	}
	defer rows.Close()

	var out []domain.JobRow
	for rows.Next() {
		var row domain.JobRow
		var batchJobID, exitStatus *string
		if err := rows.Scan(&row.Name, &row.CyclePoint, &row.SubmitNum, &row.BatchSystem, &batchJobID,
			&row.SubmittedAt, &row.StartedAt, &row.FinishedAt, &exitStatus); err != nil {
			return nil, fmt.Errorf("scan task job: %w", err)
		}
		if batchJobID != nil {
			row.BatchJobID = *batchJobID
		}
		if exitStatus != nil {
			row.ExitStatus = *exitStatus
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
