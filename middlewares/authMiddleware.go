package middlewares

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/solarpark-se/members_backend/utils"
)

// AuthMiddleware accepts either the static machine key (API_KEY env,
// used by the admin frontend and import jobs) or a signed HS256 JWT.
// Requests without any bearer token are rejected; /healthz is routed
// before this middleware.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")

		bearer := "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		token := auth[len(bearer):]

		if apiKey := os.Getenv("API_KEY"); apiKey != "" &&
			subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) == 1 {
			c.Request = c.Request.WithContext(
				utils.SetUserNameInContext(c.Request.Context(), "ApiKey"))
			c.Next()
			return
		}

		validated, err := utils.JwtValidate(token)
		if err != nil || !validated.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		claim, _ := validated.Claims.(*utils.JwtCustomClaim)
		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		if claim != nil {
			ctx = utils.SetUserNameInContext(ctx, claim.Subject)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
