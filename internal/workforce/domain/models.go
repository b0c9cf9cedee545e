package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	WorkerStatusActive   = "active"
	WorkerStatusInactive = "inactive"
)

// Geo-fence status recorded at check-in time.
const (
	GeoStatusWithinWard  = "WITHIN_WARD"
	GeoStatusOutsideWard = "OUTSIDE_WARD"
	GeoStatusUnknown     = "UNKNOWN"
)

// Worker is a field employee. Created by the administrative workflow of the
// wider municipal backend; read-only here.
type Worker struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	FullName     string       `json:"full_name" gorm:"type:text;not null"`
	Mobile       string       `json:"mobile" gorm:"type:text;not null"`
	Status       string       `json:"status" gorm:"type:text;not null;default:active"`
	EOID         snowflake.ID `json:"eo_id" gorm:"column:eo_id;not null"`
	WardID       snowflake.ID `json:"ward_id" gorm:"not null"`
	SupervisorID snowflake.ID `json:"supervisor_id"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (Worker) TableName() string { return "workers" }

// Supervisor is responsible for marking attendance for a set of workers.
type Supervisor struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	FullName  string       `json:"full_name" gorm:"type:text;not null"`
	EOID      snowflake.ID `json:"eo_id" gorm:"column:eo_id;not null"`
	WardID    snowflake.ID `json:"ward_id" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (Supervisor) TableName() string { return "supervisors" }

// AttendanceRecord is one row per worker per calendar date on which a
// check-in occurred. Presence is "row exists for worker+date". Never mutated
// or deleted by the alert engine.
type AttendanceRecord struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	WorkerID       snowflake.ID `json:"worker_id" gorm:"not null"`
	SupervisorID   snowflake.ID `json:"supervisor_id"`
	AttendanceDate string       `json:"attendance_date" gorm:"type:date;not null"`
	GeoStatus      string       `json:"geo_status" gorm:"type:text;not null;default:UNKNOWN"`
	CheckInAt      time.Time    `json:"check_in_at" gorm:"not null"`
	PhotoURL       *string      `json:"photo_url,omitempty"`
	Latitude       *float64     `json:"latitude,omitempty"`
	Longitude      *float64     `json:"longitude,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

func (AttendanceRecord) TableName() string { return "attendance_records" }

// SupervisorWorkload is a Supervisor plus the number of active workers
// currently assigned to them.
type SupervisorWorkload struct {
	ID            snowflake.ID
	FullName      string
	EOID          snowflake.ID `gorm:"column:eo_id"`
	WardID        snowflake.ID
	ActiveWorkers int
}

// GeoViolationCount aggregates OUTSIDE_WARD check-ins per worker over a
// date window.
type GeoViolationCount struct {
	WorkerID   snowflake.ID
	FullName   string
	EOID       snowflake.ID `gorm:"column:eo_id"`
	WardID     snowflake.ID
	Violations int
}
