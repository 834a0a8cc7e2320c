package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vnkhanh/roompush/utils"
)

const (
	CtxUserID = "userID"
	CtxClaims = "claims"
)

// AuthJWT checks Authorization: Bearer <token> and puts the caller's id into
// the context. A missing token is 401, a bad or expired one is 400.
func AuthJWT(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return authenticate(issuer, false)
}

// AuthJWTQuery is AuthJWT that also accepts ?access_token=, for websocket
// clients that cannot set headers.
func AuthJWTQuery(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return authenticate(issuer, true)
}

func authenticate(issuer *utils.TokenIssuer, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken := bearerToken(c.GetHeader("Authorization"))
		if rawToken == "" && allowQuery {
			rawToken = c.Query("access_token")
		}
		if rawToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access denied, no token provided"})
			return
		}

		claims, err := issuer.VerifyToken(rawToken)
		if err != nil {
			log.Debug().Err(err).Str("path", c.FullPath()).Msg("rejected token")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserID returns the id AuthJWT stored for this request.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}
