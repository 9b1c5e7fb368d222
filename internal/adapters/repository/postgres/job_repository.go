package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/shop-crew-clock/internal/core/timeclock"
	pgdb "github.com/ogurasousui/shop-crew-clock/internal/platform/db/postgres"
)

// JobRepository は jobs テーブルを読み取り専用で参照します。
type JobRepository struct {
	pool pgdb.Queryer
}

// NewJobRepository は JobRepository を生成します。
func NewJobRepository(pool pgdb.Queryer) *JobRepository {
	return &JobRepository{pool: pool}
}

// FindJobByID は ID で作業を取得します。
func (r *JobRepository) FindJobByID(ctx context.Context, id string) (*timeclock.Job, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, title, equipment, status, priority
          FROM jobs
         WHERE id = $1
         LIMIT 1
    `, id)

	var job timeclock.Job
	if err := row.Scan(&job.ID, &job.Title, &job.Equipment, &job.Status, &job.Priority); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, timeclock.ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}
