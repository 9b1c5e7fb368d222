package postgres

import (
	"context"
	"time"

	"github.com/ogurasousui/shop-crew-clock/internal/core/activity"
	pgdb "github.com/ogurasousui/shop-crew-clock/internal/platform/db/postgres"
)

// ActivityRepository は PostgreSQL を利用したアクティビティ永続化の実装です。
type ActivityRepository struct {
	pool pgdb.Queryer
}

// NewActivityRepository は ActivityRepository を生成します。
func NewActivityRepository(pool pgdb.Queryer) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// Append は記録を追加し、activity.MaxEntries 件を超えた古い記録を削除します。
func (r *ActivityRepository) Append(ctx context.Context, entry *activity.Entry) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	if _, err := exec.Exec(ctx, `
        INSERT INTO activities (message, created_at)
        VALUES ($1, $2)
    `, entry.Message, entry.CreatedAt); err != nil {
		return err
	}

	_, err := exec.Exec(ctx, `
        DELETE FROM activities
         WHERE seq NOT IN (
               SELECT seq FROM activities ORDER BY seq DESC LIMIT $1
         )
    `, activity.MaxEntries)
	return err
}

// ListRecent は新しい順に最大 limit 件を取得します。
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]*activity.Entry, error) {
	if limit <= 0 || limit > activity.MaxEntries {
		limit = activity.MaxEntries
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, message, created_at
          FROM activities
         ORDER BY seq DESC
         LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*activity.Entry
	for rows.Next() {
		var (
			e         activity.Entry
			createdAt time.Time
		)
		if err := rows.Scan(&e.ID, &e.Message, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = createdAt.UTC()
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
