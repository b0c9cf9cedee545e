package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/fieldwatch/pkg/db/pagination"
)

// Service is the alert query/management surface consumed by the HTTP layer.
// The engine writes alerts through Repository directly; this service never
// creates alerts.
type Service interface {
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Summary(ctx context.Context, scope Scope) (*SummaryResponse, error)
	Acknowledge(ctx context.Context, req AcknowledgeRequest) (*Response, error)
}

// Scope restricts reads and acknowledgements to one executive officer.
// Zero means unrestricted (administrative caller).
type Scope struct {
	EOID snowflake.ID
}

type ListRequest struct {
	Scope        Scope
	Acknowledged *bool
	AlertType    string
	Severity     string
	EOID         string // admin-only explicit filter
	Pagination   pagination.Pagination
}

type ListResponse struct {
	Alerts   []Response          `json:"alerts"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type SummaryResponse struct {
	Total          int64            `json:"total"`
	Unacknowledged int64            `json:"unacknowledged"`
	ByType         map[string]int64 `json:"by_type"`
	BySeverity     map[string]int64 `json:"by_severity"`
}

type AcknowledgeRequest struct {
	Scope   Scope
	AlertID string
	ActorID string
}

type Response struct {
	ID             string         `json:"id"`
	AlertType      AlertType      `json:"alert_type"`
	Severity       Severity       `json:"severity"`
	EntityType     EntityType     `json:"entity_type"`
	EntityID       string         `json:"entity_id"`
	EOID           string         `json:"eo_id"`
	WardID         string         `json:"ward_id"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Metadata       map[string]any `json:"metadata"`
	SMSSent        bool           `json:"sms_sent"`
	SMSSentAt      *time.Time     `json:"sms_sent_at"`
	Acknowledged   bool           `json:"acknowledged"`
	AcknowledgedAt *time.Time     `json:"acknowledged_at"`
	AcknowledgedBy *string        `json:"acknowledged_by"`
	CreatedAt      time.Time      `json:"created_at"`
}

var (
	ErrNotFound         = errors.New("not_found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidAlertType = errors.New("invalid_alert_type")
	ErrInvalidSeverity  = errors.New("invalid_severity")
	ErrInvalidActor     = errors.New("invalid_actor")
	// ErrDuplicateAlert is the dedup index firing on insert: an alert with
	// the same (type, entity, day) key already exists.
	ErrDuplicateAlert = errors.New("duplicate_alert")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}

func ValidAlertType(value string) bool {
	switch AlertType(value) {
	case AlertTypeWorkerNotPresent, AlertTypeSupervisorInactive,
		AlertTypeGeoViolationsThreshold, AlertTypeThreeConsecutiveAbsence:
		return true
	default:
		return false
	}
}

func ValidSeverity(value string) bool {
	switch Severity(value) {
	case SeverityWarning, SeverityCritical:
		return true
	default:
		return false
	}
}
