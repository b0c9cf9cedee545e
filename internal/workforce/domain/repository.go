package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the engine's read surface over the workforce tables.
// Dates are calendar days formatted as 2006-01-02.
type Repository interface {
	ListActiveWorkers(ctx context.Context, db *gorm.DB) ([]Worker, error)
	// WorkerIDsPresentOn returns the set of worker ids with an attendance
	// row dated exactly date.
	WorkerIDsPresentOn(ctx context.Context, db *gorm.DB, date string) (map[snowflake.ID]struct{}, error)
	// WorkerIDsPresentBetween returns worker ids with any attendance row in
	// [start, end] inclusive.
	WorkerIDsPresentBetween(ctx context.Context, db *gorm.DB, start, end string) (map[snowflake.ID]struct{}, error)
	// SupervisorIDsMarkedOn returns supervisor ids that marked at least one
	// attendance row dated date.
	SupervisorIDsMarkedOn(ctx context.Context, db *gorm.DB, date string) (map[snowflake.ID]struct{}, error)
	// ListSupervisorsWithActiveWorkers returns supervisors managing at least
	// one active worker, with the worker count.
	ListSupervisorsWithActiveWorkers(ctx context.Context, db *gorm.DB) ([]SupervisorWorkload, error)
	// GeoViolationCounts aggregates OUTSIDE_WARD rows per worker over
	// [start, end] inclusive, returning only workers with violations > min.
	GeoViolationCounts(ctx context.Context, db *gorm.DB, start, end string, min int) ([]GeoViolationCount, error)
}
