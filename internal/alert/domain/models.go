package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// AlertType is the closed set of rules this engine produces. The wider
// municipal backend may define others; those never originate here.
type AlertType string

const (
	AlertTypeWorkerNotPresent        AlertType = "worker_not_present_by_9am"
	AlertTypeSupervisorInactive      AlertType = "supervisor_inactive"
	AlertTypeGeoViolationsThreshold  AlertType = "geo_violations_threshold"
	AlertTypeThreeConsecutiveAbsence AlertType = "three_consecutive_absences"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type EntityType string

const (
	EntityTypeWorker     EntityType = "worker"
	EntityTypeSupervisor EntityType = "supervisor"
)

// SeverityFor returns the fixed severity for an alert type.
func SeverityFor(t AlertType) Severity {
	switch t {
	case AlertTypeGeoViolationsThreshold, AlertTypeThreeConsecutiveAbsence:
		return SeverityCritical
	default:
		return SeverityWarning
	}
}

// Alert is the engine's sole owned entity. CreatedDate carries the calendar
// day (in the engine's configured zone) backing the per-day dedup index.
type Alert struct {
	ID             snowflake.ID      `json:"id" gorm:"primaryKey"`
	AlertType      AlertType         `json:"alert_type" gorm:"type:text;not null"`
	Severity       Severity          `json:"severity" gorm:"type:text;not null"`
	EntityType     EntityType        `json:"entity_type" gorm:"type:text;not null"`
	EntityID       string            `json:"entity_id" gorm:"type:text;not null"`
	EOID           snowflake.ID      `json:"eo_id" gorm:"column:eo_id;not null;default:0"`
	WardID         snowflake.ID      `json:"ward_id" gorm:"not null;default:0"`
	Title          string            `json:"title" gorm:"type:text;not null"`
	Message        string            `json:"message" gorm:"type:text;not null"`
	Metadata       datatypes.JSONMap `json:"metadata"`
	SMSSent        bool              `json:"sms_sent" gorm:"column:sms_sent;not null;default:false"`
	SMSSentAt      *time.Time        `json:"sms_sent_at" gorm:"column:sms_sent_at"`
	Acknowledged   bool              `json:"acknowledged" gorm:"not null;default:false"`
	AcknowledgedAt *time.Time        `json:"acknowledged_at"`
	AcknowledgedBy *string           `json:"acknowledged_by"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null"`
	CreatedDate    string            `json:"-" gorm:"type:date;not null"`
}

func (Alert) TableName() string { return "alerts" }
