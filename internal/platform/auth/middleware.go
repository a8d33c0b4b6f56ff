package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"GEMA-backend/internal/platform/session"
)

const (
	CtxUsernameKey  = "username"
	CtxSessionIDKey = "session_id"
	CtxGateKey      = "session_gate"
)

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "UNAUTHENTICATED", "message": msg}})
}

// parseSessionToken validates a bearer token and returns its sid claim.
func parseSessionToken(tokenStr string, secret []byte, now func() time.Time) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		// pin the algorithm; rejects alg=none and RS/HS confusion
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(now))
	if err != nil || token == nil || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}
	sid, ok := claims["sid"].(string)
	if !ok || !session.ValidID(sid) {
		return "", jwt.ErrTokenInvalidClaims
	}
	return sid, nil
}

// RequireAuth: validates "Authorization: Bearer <token>", then asks the gate
// for the token's session whether it is still live. Token validity alone is
// not enough; a logged-out or expired session is rejected.
func RequireAuth(svc AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			unauthorized(c, "missing Authorization header")
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, "invalid Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			unauthorized(c, "empty token")
			return
		}

		sid, err := svc.SessionFromToken(tokenStr)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}

		gate := svc.GateFor(sid)
		user := gate.CurrentUser(c.Request.Context())
		if user == nil {
			unauthorized(c, "session expired")
			return
		}

		c.Set(CtxSessionIDKey, sid)
		c.Set(CtxUsernameKey, user.Username)
		c.Set(CtxGateKey, SessionGate(gate))
		c.Next()
	}
}

// GateFrom returns the gate RequireAuth attached, or a gate over no storage
// (which denies everything) when the route is unauthenticated.
func GateFrom(c *gin.Context) SessionGate {
	if v, ok := c.Get(CtxGateKey); ok {
		if g, ok := v.(SessionGate); ok {
			return g
		}
	}
	return NewGate(nil)
}

// RequirePermission must run after RequireAuth.
func RequirePermission(action Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GateFrom(c).HasPermission(c.Request.Context(), action) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": gin.H{"code": "FORBIDDEN", "message": "not permitted: " + string(action)}})
			return
		}
		c.Next()
	}
}
