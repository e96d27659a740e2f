// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller identity. The tutor sits behind an
// authenticating gateway that forwards the student id in X-User-ID; the
// middleware validates it, stores it in the Gin context and tags the
// request-scoped logger with it.
package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderUserID carries the authenticated student id.
const HeaderUserID = "X-User-ID"

const ctxKeyUserID = "userID"

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9._@:\-]{1,64}$`)

// IdentityOptions configures Identity.
type IdentityOptions struct {
	// Fallback is used when the header is absent. Empty means such
	// requests are rejected with 401.
	Fallback string
}

// Identity requires a valid X-User-ID (or the configured fallback).
func Identity(opts IdentityOptions) gin.HandlerFunc {
	fallback := strings.TrimSpace(opts.Fallback)
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if uid == "" {
			uid = fallback
		}
		if uid == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "missing "+HeaderUserID+" header")
			return
		}
		if !userIDPattern.MatchString(uid) {
			abortJSON(c, http.StatusBadRequest, "bad_request", "invalid "+HeaderUserID+" header")
			return
		}

		c.Set(ctxKeyUserID, uid)
		lg := LoggerFrom(c).With().Str("user_id", uid).Logger()
		attachLogger(c, &lg)
		c.Next()
	}
}

// UserID returns the caller set by Identity, or "" when none.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// abortJSON writes the API error envelope. Handlers have their own copy;
// middleware cannot import them.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
