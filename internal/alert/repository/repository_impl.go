package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/fieldwatch/internal/alert/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, alert *domain.Alert) error {
	if alert == nil {
		return nil
	}
	err := db.WithContext(ctx).Exec(
		`INSERT INTO alerts (
			id, alert_type, severity, entity_type, entity_id, eo_id, ward_id,
			title, message, metadata, sms_sent, sms_sent_at,
			acknowledged, acknowledged_at, acknowledged_by,
			created_at, created_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID,
		alert.AlertType,
		alert.Severity,
		alert.EntityType,
		alert.EntityID,
		alert.EOID,
		alert.WardID,
		alert.Title,
		alert.Message,
		alert.Metadata,
		alert.SMSSent,
		alert.SMSSentAt,
		alert.Acknowledged,
		alert.AcknowledgedAt,
		alert.AcknowledgedBy,
		alert.CreatedAt,
		alert.CreatedDate,
	).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateAlert
	}
	return err
}

func (r *repo) HasAlertToday(ctx context.Context, db *gorm.DB, alertType domain.AlertType, entityType domain.EntityType, entityID string, dayStart, now time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM alerts
		 WHERE alert_type = ? AND entity_type = ? AND entity_id = ?
		   AND created_at >= ? AND created_at < ?`,
		alertType,
		entityType,
		entityID,
		dayStart.UTC(),
		now.UTC(),
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) MarkSMSSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE alerts SET sms_sent = ?, sms_sent_at = ? WHERE id = ?`,
		true,
		at.UTC(),
		id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Alert, error) {
	var alert domain.Alert
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM alerts WHERE id = ?`,
		id,
	).Scan(&alert).Error
	if err != nil {
		return nil, err
	}
	if alert.ID == 0 {
		return nil, nil
	}
	return &alert, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Alert, error) {
	var alerts []*domain.Alert
	stmt := db.WithContext(ctx).Model(&domain.Alert{})

	if filter.EOID != 0 {
		stmt = stmt.Where("eo_id = ?", filter.EOID)
	}
	if filter.Acknowledged != nil {
		stmt = stmt.Where("acknowledged = ?", *filter.Acknowledged)
	}
	if alertType := strings.TrimSpace(filter.AlertType); alertType != "" {
		stmt = stmt.Where("alert_type = ?", alertType)
	}
	if severity := strings.TrimSpace(filter.Severity); severity != "" {
		stmt = stmt.Where("severity = ?", severity)
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		)
	}

	stmt = stmt.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	if err := stmt.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *repo) Summarize(ctx context.Context, db *gorm.DB, eoID snowflake.ID) ([]domain.SummaryRow, error) {
	var rows []domain.SummaryRow
	query := `SELECT alert_type, severity,
	                 COUNT(*) AS total,
	                 SUM(CASE WHEN acknowledged THEN 0 ELSE 1 END) AS unacknowledged
	          FROM alerts`
	args := []any{}
	if eoID != 0 {
		query += ` WHERE eo_id = ?`
		args = append(args, eoID)
	}
	query += ` GROUP BY alert_type, severity`

	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Acknowledge(ctx context.Context, db *gorm.DB, id snowflake.ID, by string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE alerts SET acknowledged = ?, acknowledged_at = ?, acknowledged_by = ?
		 WHERE id = ? AND acknowledged = ?`,
		true,
		at.UTC(),
		by,
		id,
		false,
	).Error
}
