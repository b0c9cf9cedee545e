package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/fieldwatch/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListFilter narrows alert reads. EOID zero means no owner restriction.
type ListFilter struct {
	EOID         snowflake.ID
	Acknowledged *bool
	AlertType    string
	Severity     string
	Cursor       *pagination.Cursor
	Limit        int
}

// SummaryRow is one grouped count from the summary query.
type SummaryRow struct {
	AlertType      AlertType
	Severity       Severity
	Total          int64
	Unacknowledged int64
}

type Repository interface {
	// Insert persists a new alert. Returns ErrDuplicateAlert when the
	// per-day dedup index rejects the row.
	Insert(ctx context.Context, db *gorm.DB, alert *Alert) error
	// HasAlertToday reports whether an alert with the same
	// (type, entity_type, entity_id) key exists with created_at in
	// [dayStart, now). Pure read; the dedup gate.
	HasAlertToday(ctx context.Context, db *gorm.DB, alertType AlertType, entityType EntityType, entityID string, dayStart, now time.Time) (bool, error)
	MarkSMSSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Alert, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Alert, error)
	Summarize(ctx context.Context, db *gorm.DB, eoID snowflake.ID) ([]SummaryRow, error)
	Acknowledge(ctx context.Context, db *gorm.DB, id snowflake.ID, by string, at time.Time) error
}
