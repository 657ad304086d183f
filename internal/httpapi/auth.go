package httpapi

import (
	"net/http"
	"strings"

	"github.com/MarkoPoloResearchLab/timelock/pkg/timelock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	contextKeyPrincipal = "auth_principal"
	bearerPrefix        = "Bearer "
)

// bearerAuth resolves the caller principal from an HS256 bearer token. The
// token's subject claim is the principal; authorization decisions (owner,
// administrator) stay inside the ledger service.
func bearerAuth(cfg Config) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing bearer token"))
			return
		}
		rawToken := strings.TrimPrefix(header, bearerPrefix)
		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(rawToken, claims,
			func(*jwt.Token) (any, error) { return []byte(cfg.JWTSigningKey), nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.JWTIssuer),
		)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized", "invalid bearer token"))
			return
		}
		principal, err := timelock.NewPrincipal(claims.Subject)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized", "token has no subject"))
			return
		}
		ctx.Set(contextKeyPrincipal, principal)
		ctx.Next()
	}
}

func callerPrincipal(ctx *gin.Context) (timelock.Principal, bool) {
	value, ok := ctx.Get(contextKeyPrincipal)
	if !ok {
		return timelock.Principal{}, false
	}
	principal, ok := value.(timelock.Principal)
	return principal, ok
}
