package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	alertdomain "github.com/civicworks/fieldwatch/internal/alert/domain"
	"gorm.io/datatypes"
)

// checkWorkersNotPresent flags active workers with no attendance row dated
// today. Gated on the local cutoff hour: before it the check is a no-op, not
// an error.
func (e *Engine) checkWorkersNotPresent(ctx context.Context, now time.Time) (int, error) {
	if now.Hour() < e.cfg.CutoffHour {
		return 0, nil
	}
	today := now.Format(dateLayout)

	workers, err := e.workforce.ListActiveWorkers(ctx, e.db)
	if err != nil {
		return 0, fmt.Errorf("list active workers: %w", err)
	}
	present, err := e.workforce.WorkerIDsPresentOn(ctx, e.db, today)
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
			AlertType:  alertdomain.AlertTypeWorkerNotPresent,
			EntityType: alertdomain.EntityTypeWorker,
			EntityID:   w.ID.String(),
			EOID:       w.EOID,
			WardID:     w.WardID,
			Title:      "Worker not marked present",
			Message:    fmt.Sprintf("%s has not been marked present today by %s.", w.FullName, formatHour(e.cfg.CutoffHour)),
			Metadata: datatypes.JSONMap{
				"worker_id":   w.ID.String(),
				"worker_name": w.FullName,
				"mobile":      w.Mobile,
				"date":        today,
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
