package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	alertdomain "github.com/civicworks/fieldwatch/internal/alert/domain"
	"github.com/civicworks/fieldwatch/pkg/db/pagination"
)

func (s *Server) ListAlerts(c *gin.Context) {
	act := currentActor(c)

	acknowledged, err := parseOptionalBool(c.Query("acknowledged"))
	if err != nil {
		AbortWithError(c, newValidationError("acknowledged", "invalid_bool", "must be true or false"))
		return
	}
	pageSize, err := parseOptionalInt(c.Query("page_size"))
	if err != nil || pageSize < 0 {
		AbortWithError(c, newValidationError("page_size", "invalid_int", "must be a non-negative integer"))
		return
	}

	req := alertdomain.ListRequest{
		Scope:        act.scope(),
		Acknowledged: acknowledged,
		AlertType:    c.Query("type"),
		Severity:     c.Query("severity"),
		Pagination: pagination.Pagination{
			PageToken: c.Query("page_token"),
			PageSize:  pageSize,
		},
	}
	if act.Role == roleAdmin {
		req.EOID = c.Query("eo_id")
	}

	resp, err := s.alertSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AlertsSummary(c *gin.Context) {
	resp, err := s.alertSvc.Summary(c.Request.Context(), currentActor(c).scope())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AcknowledgeAlert(c *gin.Context) {
	act := currentActor(c)

	resp, err := s.alertSvc.Acknowledge(c.Request.Context(), alertdomain.AcknowledgeRequest{
		Scope:   act.scope(),
		AlertID: c.Param("id"),
		ActorID: act.ID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// TriggerAlertCycle runs one evaluation cycle synchronously. Check failures
// land in the result payload, not in the HTTP status.
func (s *Server) TriggerAlertCycle(c *gin.Context) {
	result := s.detector.RunCycle(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"result":      result,
		"last_run_at": formatLastRun(s.detector.LastRunAt()),
	}})
}

func (s *Server) AlertEngineStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"last_run_at": formatLastRun(s.detector.LastRunAt()),
		"running":     s.detector.Running(),
	}})
}

func formatLastRun(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(time.RFC3339)
	return &v
}
