package pg

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/qrcall/internal/domain/repository"
)

// AnalyticsRepo implements repository.AnalyticsRepository.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// RecordScan is a single UPDATE so the row lock makes concurrent scans
// serialize; a plain read-increment-write here would undercount.
// The jsonb ? operator tests top-level membership of the scanner id.
func (r *AnalyticsRepo) RecordScan(ctx context.Context, qrID string, scannerID *string, at time.Time) error {
	const query = `
		UPDATE qr_analytics SET
			scan_count   = scan_count + 1,
			unique_users = unique_users + CASE
				WHEN $2::text IS NOT NULL AND NOT (unique_user_ids ? $2::text) THEN 1
				ELSE 0 END,
			unique_user_ids = CASE
				WHEN $2::text IS NOT NULL AND NOT (unique_user_ids ? $2::text)
				THEN unique_user_ids || to_jsonb($2::text)
				ELSE unique_user_ids END,
			last_scanned = $3
		WHERE qr_id = $1
	`
	tag, err := r.pool.Exec(ctx, query, qrID, scannerID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AnalyticsRepo) GetByQRID(ctx context.Context, qrID string) (*repository.QRAnalytics, error) {
	const query = `
		SELECT qr_id, scan_count, unique_users, unique_user_ids, last_scanned
		FROM qr_analytics WHERE qr_id = $1
	`
	var (
		a      repository.QRAnalytics
		rawIDs []byte
	)
	err := r.pool.QueryRow(ctx, query, qrID).Scan(
		&a.QRID, &a.ScanCount, &a.UniqueUsers, &rawIDs, &a.LastScanned,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(rawIDs) > 0 {
		if err := json.Unmarshal(rawIDs, &a.UniqueUserIDs); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func (r *AnalyticsRepo) Aggregate(ctx context.Context) (*repository.AggregateAnalytics, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM qr_code),
			COALESCE(SUM(scan_count), 0),
			COALESCE(SUM(unique_users), 0)
		FROM qr_analytics
	`
	var agg repository.AggregateAnalytics
	if err := r.pool.QueryRow(ctx, query).Scan(
		&agg.TotalQRCodes, &agg.TotalScans, &agg.TotalUniqueUsers,
	); err != nil {
		return nil, err
	}
	return &agg, nil
}
