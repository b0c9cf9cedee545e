package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	workforcedomain "github.com/civicworks/fieldwatch/internal/workforce/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() workforcedomain.Repository {
	return &repo{}
}

func (r *repo) ListActiveWorkers(ctx context.Context, db *gorm.DB) ([]workforcedomain.Worker, error) {
	var workers []workforcedomain.Worker
	err := db.WithContext(ctx).Raw(
		`SELECT id, full_name, mobile, status, eo_id, ward_id, supervisor_id, created_at, updated_at
		 FROM workers
		 WHERE status = ?
		 ORDER BY id`,
		workforcedomain.WorkerStatusActive,
	).Scan(&workers).Error
	if err != nil {
		return nil, err
	}
	return workers, nil
}

func (r *repo) WorkerIDsPresentOn(ctx context.Context, db *gorm.DB, date string) (map[snowflake.ID]struct{}, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT worker_id FROM attendance_records WHERE attendance_date = ?`,
		date,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

func (r *repo) WorkerIDsPresentBetween(ctx context.Context, db *gorm.DB, start, end string) (map[snowflake.ID]struct{}, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT worker_id FROM attendance_records WHERE attendance_date BETWEEN ? AND ?`,
		start,
		end,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

func (r *repo) SupervisorIDsMarkedOn(ctx context.Context, db *gorm.DB, date string) (map[snowflake.ID]struct{}, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT supervisor_id FROM attendance_records
		 WHERE attendance_date = ? AND supervisor_id IS NOT NULL AND supervisor_id <> 0`,
		date,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

func (r *repo) ListSupervisorsWithActiveWorkers(ctx context.Context, db *gorm.DB) ([]workforcedomain.SupervisorWorkload, error) {
	var supervisors []workforcedomain.SupervisorWorkload
	err := db.WithContext(ctx).Raw(
		`SELECT s.id, s.full_name, s.eo_id, s.ward_id, COUNT(w.id) AS active_workers
		 FROM supervisors s
		 JOIN workers w ON w.supervisor_id = s.id AND w.status = ?
		 GROUP BY s.id, s.full_name, s.eo_id, s.ward_id
		 ORDER BY s.id`,
		workforcedomain.WorkerStatusActive,
	).Scan(&supervisors).Error
	if err != nil {
		return nil, err
	}
	return supervisors, nil
}

func (r *repo) GeoViolationCounts(ctx context.Context, db *gorm.DB, start, end string, min int) ([]workforcedomain.GeoViolationCount, error) {
	var counts []workforcedomain.GeoViolationCount
	err := db.WithContext(ctx).Raw(
		`SELECT w.id AS worker_id, w.full_name, w.eo_id, w.ward_id, COUNT(a.id) AS violations
		 FROM attendance_records a
		 JOIN workers w ON w.id = a.worker_id
		 WHERE a.geo_status = ? AND a.attendance_date BETWEEN ? AND ?
		 GROUP BY w.id, w.full_name, w.eo_id, w.ward_id
		 HAVING COUNT(a.id) > ?
		 ORDER BY violations DESC`,
		workforcedomain.GeoStatusOutsideWard,
		start,
		end,
		min,
	).Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func toSet(ids []snowflake.ID) map[snowflake.ID]struct{} {
	set := make(map[snowflake.ID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
