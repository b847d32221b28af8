package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	identityKey = "auth.identity"
	guestKey    = "auth.guest"
)

// Identify resolves the caller on every request without rejecting anyone:
// a valid bearer token or session cookie yields an identity, a guest-mode
// cookie marks the caller as guest, and anonymous callers pass through.
// Handlers that need a hard requirement stack RequireUser on top.
func Identify(service Service) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token := extractToken(ctx); token != "" {
			if identity, err := service.VerifyToken(token); err == nil {
				ctx.Set(identityKey, identity)
			}
		}
		if cookie, err := ctx.Cookie(GuestCookie); err == nil && cookie == "true" {
			ctx.Set(guestKey, true)
		}
		ctx.Next()
	}
}

// RequireUser rejects requests that carry no verified identity.
func RequireUser() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if UserID(ctx) == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx.Next()
	}
}

// UserID returns the authenticated caller's id, or "" for guests and
// anonymous callers.
func UserID(ctx *gin.Context) string {
	if v, ok := ctx.Get(identityKey); ok {
		if identity, ok := v.(*Identity); ok {
			return identity.UserID
		}
	}
	return ""
}

// CurrentIdentity returns the verified identity, if any.
func CurrentIdentity(ctx *gin.Context) (*Identity, bool) {
	v, ok := ctx.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*Identity)
	return identity, ok
}

// IsGuest reports whether the caller opted into guest mode.
func IsGuest(ctx *gin.Context) bool {
	v, ok := ctx.Get(guestKey)
	if !ok {
		return false
	}
	guest, _ := v.(bool)
	return guest
}

// ------------------Private helper function------------------

func extractToken(ctx *gin.Context) string {
	if header := ctx.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := ctx.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}
