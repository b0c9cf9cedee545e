package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	alertdomain "github.com/civicworks/fieldwatch/internal/alert/domain"
	alertrepo "github.com/civicworks/fieldwatch/internal/alert/repository"
	"github.com/civicworks/fieldwatch/internal/clock"
	"github.com/civicworks/fieldwatch/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const alertsSchema = `
CREATE TABLE alerts (
	id INTEGER PRIMARY KEY,
	alert_type TEXT NOT NULL,
	severity TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	eo_id INTEGER NOT NULL DEFAULT 0,
	ward_id INTEGER NOT NULL DEFAULT 0,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	metadata TEXT,
	sms_sent BOOLEAN NOT NULL DEFAULT 0,
	sms_sent_at DATETIME,
	acknowledged BOOLEAN NOT NULL DEFAULT 0,
	acknowledged_at DATETIME,
	acknowledged_by TEXT,
	created_at DATETIME NOT NULL,
	created_date TEXT NOT NULL
);
CREATE UNIQUE INDEX ux_alerts_dedup_day ON alerts (alert_type, entity_type, entity_id, created_date);
`

func setupService(t *testing.T) (*Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Exec(strings.Split(alertsSchema, ";")[0]).Error)
	require.NoError(t, db.Exec(strings.Split(alertsSchema, ";")[1]).Error)

	fc := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		Clock: fc,
		Repo:  alertrepo.Provide(),
	}).(*Service)
	return svc, db, fc
}

func seedAlert(t *testing.T, db *gorm.DB, id int64, alertType alertdomain.AlertType, eoID int64, createdAt time.Time) {
	t.Helper()
	repo := alertrepo.Provide()
	require.NoError(t, repo.Insert(context.Background(), db, &alertdomain.Alert{
		ID:          snowflake.ID(id),
		AlertType:   alertType,
		Severity:    alertdomain.SeverityFor(alertType),
		EntityType:  alertdomain.EntityTypeWorker,
		EntityID:    fmt.Sprintf("w%d", id),
		EOID:        snowflake.ID(eoID),
		WardID:      5,
		Title:       "t",
		Message:     "m",
		CreatedAt:   createdAt.UTC(),
		CreatedDate: createdAt.UTC().Format("2006-01-02"),
	}))
}

func paginationOf(token string, size int) pagination.Pagination {
	return pagination.Pagination{PageToken: token, PageSize: size}
}

func TestListScoping(t *testing.T) {
	svc, db, fc := setupService(t)
	base := fc.Now()
	seedAlert(t, db, 1, alertdomain.AlertTypeWorkerNotPresent, 77, base.Add(-3*time.Hour))
	seedAlert(t, db, 2, alertdomain.AlertTypeGeoViolationsThreshold, 77, base.Add(-2*time.Hour))
	seedAlert(t, db, 3, alertdomain.AlertTypeWorkerNotPresent, 88, base.Add(-1*time.Hour))

	// unscoped admin sees everything, newest first
	resp, err := svc.List(context.Background(), alertdomain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 3)
	assert.Equal(t, "3", resp.Alerts[0].ID)
	assert.False(t, resp.PageInfo.HasMore)

	// scoped caller only sees their own EO
	resp, err = svc.List(context.Background(), alertdomain.ListRequest{
		Scope: alertdomain.Scope{EOID: 77},
	})
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 2)

	// the explicit eo_id filter cannot widen a scoped caller
	resp, err = svc.List(context.Background(), alertdomain.ListRequest{
		Scope: alertdomain.Scope{EOID: 77},
		EOID:  "88",
	})
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 2)

	// admin may filter by eo_id
	resp, err = svc.List(context.Background(), alertdomain.ListRequest{EOID: "88"})
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, "3", resp.Alerts[0].ID)
}

func TestListFiltersAndValidation(t *testing.T) {
	svc, db, fc := setupService(t)
	base := fc.Now()
	seedAlert(t, db, 1, alertdomain.AlertTypeWorkerNotPresent, 77, base.Add(-2*time.Hour))
	seedAlert(t, db, 2, alertdomain.AlertTypeGeoViolationsThreshold, 77, base.Add(-1*time.Hour))

	resp, err := svc.List(context.Background(), alertdomain.ListRequest{
		AlertType: string(alertdomain.AlertTypeGeoViolationsThreshold),
	})
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, alertdomain.SeverityCritical, resp.Alerts[0].Severity)

	resp, err = svc.List(context.Background(), alertdomain.ListRequest{
		Severity: string(alertdomain.SeverityWarning),
	})
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 1)

	_, err = svc.List(context.Background(), alertdomain.ListRequest{AlertType: "bogus"})
	assert.ErrorIs(t, err, alertdomain.ErrInvalidAlertType)

	_, err = svc.List(context.Background(), alertdomain.ListRequest{Severity: "bogus"})
	assert.ErrorIs(t, err, alertdomain.ErrInvalidSeverity)

	_, err = svc.List(context.Background(), alertdomain.ListRequest{EOID: "not-a-number"})
	assert.ErrorIs(t, err, alertdomain.ErrInvalidID)
}

func TestListPagination(t *testing.T) {
	svc, db, fc := setupService(t)
	base := fc.Now()
	for i := int64(1); i <= 5; i++ {
		seedAlert(t, db, i, alertdomain.AlertTypeWorkerNotPresent, 77, base.Add(time.Duration(i)*time.Minute))
	}

	resp, err := svc.List(context.Background(), alertdomain.ListRequest{
		Pagination: paginationOf("", 2),
	})
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 2)
	assert.Equal(t, "5", resp.Alerts[0].ID)
	assert.Equal(t, "4", resp.Alerts[1].ID)
	require.True(t, resp.PageInfo.HasMore)
	require.NotEmpty(t, resp.PageInfo.NextPageToken)

	resp, err = svc.List(context.Background(), alertdomain.ListRequest{
		Pagination: paginationOf(resp.PageInfo.NextPageToken, 2),
	})
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 2)
	assert.Equal(t, "3", resp.Alerts[0].ID)
	assert.Equal(t, "2", resp.Alerts[1].ID)
	require.True(t, resp.PageInfo.HasMore)

	resp, err = svc.List(context.Background(), alertdomain.ListRequest{
		Pagination: paginationOf(resp.PageInfo.NextPageToken, 2),
	})
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, "1", resp.Alerts[0].ID)
	assert.False(t, resp.PageInfo.HasMore)

	_, err = svc.List(context.Background(), alertdomain.ListRequest{
		Pagination: paginationOf("%%%not-base64%%%", 2),
	})
	assert.ErrorIs(t, err, alertdomain.ErrInvalidID)
}

func TestSummary(t *testing.T) {
	svc, db, fc := setupService(t)
	base := fc.Now()
	seedAlert(t, db, 1, alertdomain.AlertTypeWorkerNotPresent, 77, base.Add(-3*time.Hour))
	seedAlert(t, db, 2, alertdomain.AlertTypeWorkerNotPresent, 77, base.Add(-2*time.Hour))
	seedAlert(t, db, 3, alertdomain.AlertTypeGeoViolationsThreshold, 88, base.Add(-1*time.Hour))

	_, err := svc.Acknowledge(context.Background(), alertdomain.AcknowledgeRequest{
		AlertID: "1", ActorID: "admin-1",
	})
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), alertdomain.Scope{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Total)
	assert.Equal(t, int64(2), summary.Unacknowledged)
	assert.Equal(t, int64(2), summary.ByType[string(alertdomain.AlertTypeWorkerNotPresent)])
	assert.Equal(t, int64(1), summary.BySeverity[string(alertdomain.SeverityCritical)])

	summary, err = svc.Summary(context.Background(), alertdomain.Scope{EOID: 88})
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Total)
}

func TestAcknowledge(t *testing.T) {
	svc, db, fc := setupService(t)
	seedAlert(t, db, 1, alertdomain.AlertTypeWorkerNotPresent, 77, fc.Now().Add(-time.Hour))

	resp, err := svc.Acknowledge(context.Background(), alertdomain.AcknowledgeRequest{
		AlertID: "1", ActorID: "eo-user-7", Scope: alertdomain.Scope{EOID: 77},
	})
	require.NoError(t, err)
	assert.True(t, resp.Acknowledged)
	require.NotNil(t, resp.AcknowledgedBy)
	assert.Equal(t, "eo-user-7", *resp.AcknowledgedBy)
	require.NotNil(t, resp.AcknowledgedAt)
	firstAt := *resp.AcknowledgedAt

	// idempotent: a second acknowledge returns the record unchanged
	fc.Advance(time.Hour)
	resp, err = svc.Acknowledge(context.Background(), alertdomain.AcknowledgeRequest{
		AlertID: "1", ActorID: "someone-else",
	})
	require.NoError(t, err)
	assert.True(t, resp.Acknowledged)
	assert.Equal(t, "eo-user-7", *resp.AcknowledgedBy)
	assert.Equal(t, firstAt.Unix(), resp.AcknowledgedAt.Unix())
}

func TestAcknowledgeErrors(t *testing.T) {
	svc, db, fc := setupService(t)
	seedAlert(t, db, 1, alertdomain.AlertTypeWorkerNotPresent, 77, fc.Now().Add(-time.Hour))

	_, err := svc.Acknowledge(context.Background(), alertdomain.AcknowledgeRequest{
		AlertID: "1", ActorID: "",
	})
	assert.ErrorIs(t, err, alertdomain.ErrInvalidActor)

	_, err = svc.Acknowledge(context.Background(), alertdomain.AcknowledgeRequest{
		AlertID: "nope", ActorID: "admin-1",
	})
	assert.ErrorIs(t, err, alertdomain.ErrInvalidID)

	_, err = svc.Acknowledge(context.Background(), alertdomain.AcknowledgeRequest{
		AlertID: "424242", ActorID: "admin-1",
	})
	assert.ErrorIs(t, err, alertdomain.ErrNotFound)

	_, err = svc.Acknowledge(context.Background(), alertdomain.AcknowledgeRequest{
		AlertID: "1", ActorID: "eo-user-9", Scope: alertdomain.Scope{EOID: 88},
	})
	assert.ErrorIs(t, err, alertdomain.ErrForbidden)
}

func TestDuplicateInsertSurfacesSentinel(t *testing.T) {
	_, db, fc := setupService(t)
	repo := alertrepo.Provide()
	seedAlert(t, db, 1, alertdomain.AlertTypeWorkerNotPresent, 77, fc.Now())

	err := repo.Insert(context.Background(), db, &alertdomain.Alert{
		ID:          2,
		AlertType:   alertdomain.AlertTypeWorkerNotPresent,
		Severity:    alertdomain.SeverityWarning,
		EntityType:  alertdomain.EntityTypeWorker,
		EntityID:    "w1",
		Title:       "t",
		Message:     "m",
		CreatedAt:   fc.Now(),
		CreatedDate: fc.Now().Format("2006-01-02"),
	})
	assert.ErrorIs(t, err, alertdomain.ErrDuplicateAlert)
}
