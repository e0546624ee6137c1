package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-floor/utils"
)

// RoleRequired lets through the listed roles. Admin always passes, so no
// roles means admin only.
func RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextRole)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		role, _ := userRole.(string)
		if role == utils.RoleAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}

		allowed := append([]string{utils.RoleAdmin}, roles...)
		utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s access required", strings.Join(allowed, " or ")))
		c.Abort()
	}
}
