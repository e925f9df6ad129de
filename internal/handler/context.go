package handler

import (
	"net/http"

	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/service"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/internal/workflow"
	"github.com/namandisafari-sketch/kabejjasystems-sub005/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actorFromContext rebuilds the acting user from the claims the auth
// middleware stored on the request. Aborts with 401 when the identifiers
// are missing or malformed, which only happens if a route skipped the
// middleware.
func actorFromContext(c *gin.Context) (service.Actor, bool) {
	userID, err := uuid.Parse(c.GetString("userID"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid user identity"))
		return service.Actor{}, false
	}

	tenantID, err := uuid.Parse(c.GetString("tenantID"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid tenant identity"))
		return service.Actor{}, false
	}

	role := workflow.Role(c.GetString("userRole"))
	if !workflow.ValidRole(role) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid role"))
		return service.Actor{}, false
	}

	return service.Actor{UserID: userID, TenantID: tenantID, Role: role}, true
}
