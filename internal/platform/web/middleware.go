// Package web provides Gin middleware and rendering helpers shared by all
// HTML handlers: current-user resolution, the login gate, and error pages.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"blog_server/internal/feature/auth/domain/entity"
	"blog_server/internal/platform/token"
)

// SessionCookie is the cookie holding the signed session token.
const SessionCookie = "session"

const (
	contextUser    = "currentUser"
	contextSession = "currentSession"
)

// Authenticator resolves a session ID to its user and session.
// Following Go convention: interfaces are defined by the consumer (web), not the provider (usecase).
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*entity.User, *entity.Session, error)
}

// UserResolver resolves the authenticated user from the session cookie.
type UserResolver struct {
	codec *token.Codec
	auth  Authenticator
}

// NewUserResolver creates a new UserResolver.
func NewUserResolver(codec *token.Codec, auth Authenticator) *UserResolver {
	return &UserResolver{codec: codec, auth: auth}
}

// CurrentUser returns a middleware that resolves the session cookie into the
// current user and stores both user and session in the request context.
// Resolution is best effort: anonymous requests pass through untouched.
func (r *UserResolver) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Request.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			c.Next()
			return
		}

		sessionID, err := r.codec.Parse(cookie.Value)
		if err != nil {
			// Tampered or stale cookie; treat as logged out.
			c.Next()
			return
		}

		user, session, err := r.auth.Authenticate(c.Request.Context(), sessionID)
		if err != nil {
			slog.Debug("session rejected", "error", err, "remote_addr", c.ClientIP())
			c.Next()
			return
		}

		SetUser(c, user, session)
		c.Next()
	}
}

// SetUser stores the authenticated user and session in the request context.
func SetUser(c *gin.Context, user *entity.User, session *entity.Session) {
	c.Set(contextUser, user)
	if session != nil {
		c.Set(contextSession, session)
	}
}

// LoginRequired returns a middleware that redirects anonymous requests to the
// login page, preserving the original target in the next query parameter.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := User(c); !ok {
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, "/login?next="+next)
			c.Abort()
			return
		}
		c.Next()
	}
}

// User returns the authenticated user for this request, if any.
func User(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(contextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*entity.User)
	return user, ok
}

// Session returns the authenticated session for this request, if any.
func Session(c *gin.Context) (*entity.Session, bool) {
	v, ok := c.Get(contextSession)
	if !ok {
		return nil, false
	}
	session, ok := v.(*entity.Session)
	return session, ok
}

// SafeNext validates a post-login redirect target. Only local paths are
// honored; anything else falls back to the home page.
func SafeNext(next string) string {
	if next == "" {
		return "/home"
	}
	if unescaped, err := url.QueryUnescape(next); err == nil {
		next = unescaped
	}
	// Reject "//host" and "/\host": browsers normalize backslashes, so
	// either form becomes a protocol-relative redirect.
	if len(next) > 0 && next[0] == '/' && (len(next) == 1 || (next[1] != '/' && next[1] != '\\')) {
		return next
	}
	return "/home"
}
