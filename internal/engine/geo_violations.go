package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	alertdomain "github.com/civicworks/fieldwatch/internal/alert/domain"
	"gorm.io/datatypes"
)

// checkGeoViolations flags workers whose OUTSIDE_WARD check-ins over the last
// 7 calendar days (today inclusive) exceed the configured threshold. Strictly
// greater: a count equal to the threshold does not fire.
func (e *Engine) checkGeoViolations(ctx context.Context, now time.Time) (int, error) {
	windowEnd := now.Format(dateLayout)
	windowStart := now.AddDate(0, 0, -6).Format(dateLayout)

	counts, err := e.workforce.GeoViolationCounts(ctx, e.db, windowStart, windowEnd, e.cfg.GeoViolationThreshold)
	if err != nil {
		return 0, fmt.Errorf("geo violation counts: %w", err)
	}

	created := 0
	var errs error
	for _, v := range counts {
		alert := &alertdomain.Alert{
			AlertType:  alertdomain.AlertTypeGeoViolationsThreshold,
			EntityType: alertdomain.EntityTypeWorker,
			EntityID:   v.WorkerID.String(),
			EOID:       v.EOID,
			WardID:     v.WardID,
			Title:      "Repeated geo-fence violations",
			Message: fmt.Sprintf("%s has %d geo violations in the last 7 days (threshold: %d).",
				v.FullName, v.Violations, e.cfg.GeoViolationThreshold),
			Metadata: datatypes.JSONMap{
				"worker_id":    v.WorkerID.String(),
				"worker_name":  v.FullName,
				"count":        v.Violations,
				"threshold":    e.cfg.GeoViolationThreshold,
				"window_start": windowStart,
				"window_end":   windowEnd,
			},
		}
		ok, err := e.persistCandidate(ctx, now, alert)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("worker %s: %w", v.WorkerID, err))
			continue
		}
		if ok {
			created++
		}
	}
	return created, errs
}
