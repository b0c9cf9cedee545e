package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/civicworks/fieldwatch/internal/alert/domain"
	"github.com/civicworks/fieldwatch/internal/clock"
	"github.com/civicworks/fieldwatch/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  alertdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  alertdomain.Repository
}

func New(p Params) alertdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("alert.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req alertdomain.ListRequest) (*alertdomain.ListResponse, error) {
	if t := strings.TrimSpace(req.AlertType); t != "" && !alertdomain.ValidAlertType(t) {
		return nil, alertdomain.ErrInvalidAlertType
	}
	if sev := strings.TrimSpace(req.Severity); sev != "" && !alertdomain.ValidSeverity(sev) {
		return nil, alertdomain.ErrInvalidSeverity
	}

	filter := alertdomain.ListFilter{
		EOID:         req.Scope.EOID,
		Acknowledged: req.Acknowledged,
		AlertType:    strings.TrimSpace(req.AlertType),
		Severity:     strings.TrimSpace(req.Severity),
	}

	// A scoped caller is always pinned to their own EO; the explicit eo_id
	// filter is only honored for unscoped (administrative) callers.
	if req.Scope.EOID == 0 {
		if eo := strings.TrimSpace(req.EOID); eo != "" {
			eoID, err := alertdomain.ParseID(eo)
			if err != nil {
				return nil, alertdomain.ErrInvalidID
			}
			filter.EOID = eoID
		}
	}

	limit := req.Pagination.PageSize
	if limit <= 0 {
		limit = 20
	}
	if limit > 250 {
		limit = 250
	}
	filter.Limit = limit

	if token := strings.TrimSpace(req.Pagination.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, alertdomain.ErrInvalidID
		}
		filter.Cursor = cursor
	}

	alerts, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	hasMore := len(alerts) > limit
	if hasMore {
		alerts = alerts[:limit]
	}

	resp := &alertdomain.ListResponse{
		Alerts:   make([]alertdomain.Response, 0, len(alerts)),
		PageInfo: pagination.PageInfo{HasMore: hasMore},
	}
	for _, a := range alerts {
		resp.Alerts = append(resp.Alerts, toResponse(a))
	}
	if hasMore && len(alerts) > 0 {
		last := alerts[len(alerts)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.UTC().Format("2006-01-02 15:04:05.999999999"),
		})
		if err == nil {
			resp.PageInfo.NextPageToken = token
		}
	}
	return resp, nil
}

func (s *Service) Summary(ctx context.Context, scope alertdomain.Scope) (*alertdomain.SummaryResponse, error) {
	rows, err := s.repo.Summarize(ctx, s.db, scope.EOID)
	if err != nil {
		return nil, err
	}

	summary := &alertdomain.SummaryResponse{
		ByType:     make(map[string]int64),
		BySeverity: make(map[string]int64),
	}
	for _, row := range rows {
		summary.Total += row.Total
		summary.Unacknowledged += row.Unacknowledged
		summary.ByType[string(row.AlertType)] += row.Total
		summary.BySeverity[string(row.Severity)] += row.Total
	}
	return summary, nil
}

func (s *Service) Acknowledge(ctx context.Context, req alertdomain.AcknowledgeRequest) (*alertdomain.Response, error) {
	actor := strings.TrimSpace(req.ActorID)
	if actor == "" {
		return nil, alertdomain.ErrInvalidActor
	}

	id, err := alertdomain.ParseID(strings.TrimSpace(req.AlertID))
	if err != nil {
		return nil, alertdomain.ErrInvalidID
	}

	alert, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, alertdomain.ErrNotFound
	}
	if req.Scope.EOID != 0 && alert.EOID != req.Scope.EOID {
		return nil, alertdomain.ErrForbidden
	}

	if !alert.Acknowledged {
		now := s.clock.Now()
		if err := s.repo.Acknowledge(ctx, s.db, id, actor, now); err != nil {
			return nil, err
		}
		alert.Acknowledged = true
		alert.AcknowledgedAt = &now
		alert.AcknowledgedBy = &actor
		s.log.Info("alert acknowledged",
			zap.String("alert_id", id.String()),
			zap.String("acknowledged_by", actor),
		)
	}

	resp := toResponse(alert)
	return &resp, nil
}

func toResponse(a *alertdomain.Alert) alertdomain.Response {
	return alertdomain.Response{
		ID:             a.ID.String(),
		AlertType:      a.AlertType,
		Severity:       a.Severity,
		EntityType:     a.EntityType,
		EntityID:       a.EntityID,
		EOID:           idString(a.EOID),
		WardID:         idString(a.WardID),
		Title:          a.Title,
		Message:        a.Message,
		Metadata:       a.Metadata,
		SMSSent:        a.SMSSent,
		SMSSentAt:      a.SMSSentAt,
		Acknowledged:   a.Acknowledged,
		AcknowledgedAt: a.AcknowledgedAt,
		AcknowledgedBy: a.AcknowledgedBy,
		CreatedAt:      a.CreatedAt,
	}
}

func idString(id snowflake.ID) string {
	if id == 0 {
		return ""
	}
	return id.String()
}
