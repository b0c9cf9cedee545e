package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	alertdomain "github.com/civicworks/fieldwatch/internal/alert/domain"
)

// Actor identity arrives pre-authenticated from the upstream municipal
// gateway as headers. This service trusts them; authentication itself lives
// upstream.
const (
	headerActorID   = "X-Actor-ID"
	headerActorRole = "X-Actor-Role"
	headerActorEOID = "X-Actor-EO-ID"

	roleAdmin = "admin"
	roleEO    = "eo"

	actorContextKey = "fieldwatch.actor"
)

type actor struct {
	ID   string
	Role string
	// EOID is set for eo-scoped actors and zero for admins.
	EOID snowflake.ID
}

func (a actor) scope() alertdomain.Scope {
	if a.Role == roleEO {
		return alertdomain.Scope{EOID: a.EOID}
	}
	return alertdomain.Scope{}
}

// ActorRequired rejects requests without a valid actor identity.
func (s *Server) ActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerActorID))
		role := strings.TrimSpace(c.GetHeader(headerActorRole))
		if id == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		act := actor{ID: id, Role: role}
		switch role {
		case roleAdmin:
		case roleEO:
			eoID, err := snowflake.ParseString(strings.TrimSpace(c.GetHeader(headerActorEOID)))
			if err != nil || eoID == 0 {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			act.EOID = eoID
		default:
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(actorContextKey, act)
		c.Next()
	}
}

// AdminRequired gates administrative operations. Must run after
// ActorRequired.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentActor(c).Role != roleAdmin {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func currentActor(c *gin.Context) actor {
	value, ok := c.Get(actorContextKey)
	if !ok {
		return actor{}
	}
	act, _ := value.(actor)
	return act
}
