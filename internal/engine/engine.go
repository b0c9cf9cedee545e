package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/civicworks/fieldwatch/internal/alert/domain"
	"github.com/civicworks/fieldwatch/internal/clock"
	"github.com/civicworks/fieldwatch/internal/metrics"
	"github.com/civicworks/fieldwatch/internal/notifier"
	workforcedomain "github.com/civicworks/fieldwatch/internal/workforce/domain"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// CycleResult is what one evaluation cycle produced: alerts created per rule
// check, plus the failures of checks that did not complete. A check that ran
// and found nothing contributes a zero, not an error.
type CycleResult struct {
	WorkerNotPresent         int      `json:"worker_not_present"`
	SupervisorInactive       int      `json:"supervisor_inactive"`
	GeoViolations            int      `json:"geo_violations"`
	ThreeConsecutiveAbsences int      `json:"three_consecutive_absences"`
	Errors                   []string `json:"errors"`
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	GenID     *snowflake.Node
	Config    Config
	Workforce workforcedomain.Repository
	Alerts    alertdomain.Repository
	Notifier  notifier.Notifier
	Metrics   *metrics.Metrics `optional:"true"`
}

// Engine runs the four rule checks on a fixed cadence and on demand.
type Engine struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	genID     *snowflake.Node
	cfg       Config
	workforce workforcedomain.Repository
	alerts    alertdomain.Repository
	notifier  notifier.Notifier
	metrics   *metrics.Metrics

	mu        sync.Mutex
	cron      *cron.Cron
	lastRunAt *time.Time
}

func New(p Params) *Engine {
	return &Engine{
		db:        p.DB,
		log:       p.Log.Named("engine"),
		clock:     p.Clock,
		genID:     p.GenID,
		cfg:       p.Config.withDefaults(),
		workforce: p.Workforce,
		alerts:    p.Alerts,
		notifier:  p.Notifier,
		metrics:   p.Metrics,
	}
}

// Start begins firing RunCycle every Interval. Calling Start on a running
// engine is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cron != nil {
		e.log.Info("engine already running, start ignored")
		return
	}

	c := cron.New(cron.WithLocation(e.cfg.Location))
	_, err := c.AddFunc("@every "+e.cfg.Interval.String(), func() {
		e.RunCycle(context.Background())
	})
	if err != nil {
		e.log.Error("schedule evaluation cycle", zap.Error(err))
		return
	}
	c.Start()
	e.cron = c
	e.log.Info("engine started",
		zap.Duration("interval", e.cfg.Interval),
		zap.String("timezone", e.cfg.Location.String()),
	)
}

// Stop halts the schedule. In-flight cycles finish on their own.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cron == nil {
		return
	}
	e.cron.Stop()
	e.cron = nil
	e.log.Info("engine stopped")
}

func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cron != nil
}

// LastRunAt returns when the most recent cycle started, nil before the first.
func (e *Engine) LastRunAt() *time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastRunAt == nil {
		return nil
	}
	t := *e.lastRunAt
	return &t
}

// RunCycle executes the four rule checks concurrently and reports what they
// produced. The checks write disjoint alert_type partitions, so they never
// contend on the dedup index. lastRunAt is recorded at cycle start whether or
// not any check succeeds.
func (e *Engine) RunCycle(ctx context.Context) CycleResult {
	started := e.clock.Now()
	e.mu.Lock()
	t := started
	e.lastRunAt = &t
	e.mu.Unlock()

	now := started.In(e.cfg.Location)
	e.log.Info("evaluation cycle started", zap.Time("local_now", now))

	var result CycleResult
	checks := []struct {
		name string
		dst  *int
		run  func(context.Context, time.Time) (int, error)
	}{
		{"worker_not_present", &result.WorkerNotPresent, e.checkWorkersNotPresent},
		{"supervisor_inactive", &result.SupervisorInactive, e.checkSupervisorsInactive},
		{"geo_violations", &result.GeoViolations, e.checkGeoViolations},
		{"three_consecutive_absences", &result.ThreeConsecutiveAbsences, e.checkConsecutiveAbsences},
	}

	errs := make([]error, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := e.runCheck(ctx, check.name, now, check.run)
			*check.dst = created
			errs[i] = err
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", checks[i].name, err))
		}
	}

	elapsed := time.Since(started)
	if e.metrics != nil {
		e.metrics.CyclesTotal.Inc()
		e.metrics.CycleDuration.Observe(elapsed.Seconds())
	}
	e.log.Info("evaluation cycle finished",
		zap.Int("worker_not_present", result.WorkerNotPresent),
		zap.Int("supervisor_inactive", result.SupervisorInactive),
		zap.Int("geo_violations", result.GeoViolations),
		zap.Int("three_consecutive_absences", result.ThreeConsecutiveAbsences),
		zap.Int("check_errors", len(result.Errors)),
		zap.Duration("elapsed", elapsed),
	)
	return result
}

// runCheck isolates one rule check: a panic or error here must never take
// down the cycle or its sibling checks.
func (e *Engine) runCheck(ctx context.Context, name string, now time.Time, run func(context.Context, time.Time) (int, error)) (created int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			e.log.Error("rule check failed", zap.String("check", name), zap.Error(err))
			if e.metrics != nil {
				e.metrics.CheckErrors.WithLabelValues(name).Inc()
			}
		}
		if created > 0 && e.metrics != nil {
			e.metrics.AlertsCreated.WithLabelValues(name).Add(float64(created))
		}
	}()
	return run(ctx, now)
}

// persistCandidate runs the dedup gate, inserts the alert and fires the
// notification hook. Returns true only when a new row was written. A
// concurrent insert losing to the dedup index is a silent skip, not an
// error.
func (e *Engine) persistCandidate(ctx context.Context, now time.Time, alert *alertdomain.Alert) (bool, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.cfg.Location)
	exists, err := e.alerts.HasAlertToday(ctx, e.db, alert.AlertType, alert.EntityType, alert.EntityID, dayStart, now)
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		return false, nil
	}

	alert.ID = e.genID.Generate()
	alert.Severity = alertdomain.SeverityFor(alert.AlertType)
	alert.CreatedAt = now.UTC()
	alert.CreatedDate = now.Format(dateLayout)
	if err := e.alerts.Insert(ctx, e.db, alert); err != nil {
		if errors.Is(err, alertdomain.ErrDuplicateAlert) {
			return false, nil
		}
		return false, fmt.Errorf("insert alert: %w", err)
	}

	e.notify(ctx, alert)
	return true, nil
}

// notify is best effort. The alert row is already committed; delivery
// failures are logged and the row stays sms_sent = false.
func (e *Engine) notify(ctx context.Context, alert *alertdomain.Alert) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("notifier panicked",
				zap.String("alert_id", alert.ID.String()),
				zap.Any("panic", r),
			)
		}
	}()

	sent, err := e.notifier.Send(ctx, alert)
	if err != nil {
		e.log.Warn("notification failed",
			zap.String("alert_id", alert.ID.String()),
			zap.Error(err),
		)
		return
	}
	if !sent {
		return
	}

	sentAt := e.clock.Now()
	if err := e.alerts.MarkSMSSent(ctx, e.db, alert.ID, sentAt); err != nil {
		e.log.Warn("mark sms sent failed",
			zap.String("alert_id", alert.ID.String()),
			zap.Error(err),
		)
		return
	}
	alert.SMSSent = true
	alert.SMSSentAt = &sentAt
}

// formatHour renders a 24h hour the way the alert copy reads, e.g. 9 -> "9 AM".
func formatHour(h int) string {
	switch {
	case h == 0:
		return "12 AM"
	case h < 12:
		return fmt.Sprintf("%d AM", h)
	case h == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", h-12)
	}
}
