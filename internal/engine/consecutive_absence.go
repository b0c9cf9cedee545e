package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	alertdomain "github.com/civicworks/fieldwatch/internal/alert/domain"
	"gorm.io/datatypes"
)

// checkConsecutiveAbsences flags active workers with zero attendance rows
// across today and the two prior dates. A single row on any of the three
// days exempts the worker. Not gated on the cutoff hour.
func (e *Engine) checkConsecutiveAbsences(ctx context.Context, now time.Time) (int, error) {
	end := now.Format(dateLayout)
	start := now.AddDate(0, 0, -2).Format(dateLayout)
	dates := []string{
		start,
		now.AddDate(0, 0, -1).Format(dateLayout),
		end,
	}

	workers, err := e.workforce.ListActiveWorkers(ctx, e.db)
	if err != nil {
		return 0, fmt.Errorf("list active workers: %w", err)
	}
	present, err := e.workforce.WorkerIDsPresentBetween(ctx, e.db, start, end)
	if err != nil {
		return 0, fmt.Errorf("present worker ids: %w", err)
	}

	created := 0
	var errs error
	for _, w := range workers {
		if _, ok := present[w.ID]; ok {
			continue
		}
		alert := &alertdomain.Alert{
			AlertType:  alertdomain.AlertTypeThreeConsecutiveAbsence,
			EntityType: alertdomain.EntityTypeWorker,
			EntityID:   w.ID.String(),
			EOID:       w.EOID,
			WardID:     w.WardID,
			Title:      "Three consecutive absences",
			Message: fmt.Sprintf("%s has no attendance recorded for the last 3 consecutive days (%s to %s).",
				w.FullName, start, end),
			Metadata: datatypes.JSONMap{
				"worker_id":   w.ID.String(),
				"worker_name": w.FullName,
				"dates":       dates,
			},
		}
		ok, err := e.persistCandidate(ctx, now, alert)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("worker %s: %w", w.ID, err))
			continue
		}
		if ok {
			created++
		}
	}
	return created, errs
}
