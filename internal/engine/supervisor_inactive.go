package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	alertdomain "github.com/civicworks/fieldwatch/internal/alert/domain"
	"gorm.io/datatypes"
)

// checkSupervisorsInactive flags supervisors managing at least one active
// worker who have marked no attendance today. Same cutoff gate as the worker
// presence check.
func (e *Engine) checkSupervisorsInactive(ctx context.Context, now time.Time) (int, error) {
	if now.Hour() < e.cfg.CutoffHour {
		return 0, nil
	}
	today := now.Format(dateLayout)

	supervisors, err := e.workforce.ListSupervisorsWithActiveWorkers(ctx, e.db)
	if err != nil {
		return 0, fmt.Errorf("list supervisors: %w", err)
	}
	marked, err := e.workforce.SupervisorIDsMarkedOn(ctx, e.db, today)
	if err != nil {
		return 0, fmt.Errorf("marked supervisor ids: %w", err)
	}

	created := 0
	var errs error
	for _, s := range supervisors {
		if _, ok := marked[s.ID]; ok {
			continue
		}
		alert := &alertdomain.Alert{
			AlertType:  alertdomain.AlertTypeSupervisorInactive,
			EntityType: alertdomain.EntityTypeSupervisor,
			EntityID:   s.ID.String(),
			EOID:       s.EOID,
			WardID:     s.WardID,
			Title:      "Supervisor inactive",
			Message: fmt.Sprintf("Supervisor %s has not marked any worker attendance today by %s (%d worker(s) under supervision).",
				s.FullName, formatHour(e.cfg.CutoffHour), s.ActiveWorkers),
			Metadata: datatypes.JSONMap{
				"supervisor_id":   s.ID.String(),
				"supervisor_name": s.FullName,
				"worker_count":    s.ActiveWorkers,
				"date":            today,
			},
		}
		ok, err := e.persistCandidate(ctx, now, alert)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("supervisor %s: %w", s.ID, err))
			continue
		}
		if ok {
			created++
		}
	}
	return created, errs
}
