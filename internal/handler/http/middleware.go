package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/partsunlimited/storefront/pkg/httputil"
	"github.com/partsunlimited/storefront/pkg/logger"
)

// SessionCookieName is the cookie carrying the shopper's cart identifier.
const SessionCookieName = "Session"

type contextKey string

const (
	cartIDKey   contextKey = "cart_id"
	usernameKey contextKey = "username"
	adminKey    contextKey = "admin"
)

// CartSession resolves the shopper's cart identifier from the Session cookie,
// minting a fresh UUID and setting the cookie when none is present. Every
// request downstream of this middleware has a cart ID in its context.
func CartSession(cookieTTL time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cartID := ""
			if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
				if _, err := uuid.Parse(c.Value); err == nil {
					cartID = c.Value
				}
			}

			if cartID == "" {
				cartID = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    cartID,
					Path:     "/",
					Expires:  time.Now().Add(cookieTTL),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), cartIDKey, cartID)
			ctx = logger.WithCartID(ctx, cartID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CartIDFromRequest returns the cart identifier placed by CartSession.
func CartIDFromRequest(r *http.Request) string {
	if id, ok := r.Context().Value(cartIDKey).(string); ok {
		return id
	}
	return ""
}

// Authenticate reads the caller identity from the X-Username and X-Admin
// headers set by the edge proxy. It does not reject anonymous requests;
// handlers that need an identity use RequireUser.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if username := r.Header.Get("X-Username"); username != "" {
			ctx = context.WithValue(ctx, usernameKey, username)
		}
		if r.Header.Get("X-Admin") == "true" {
			ctx = context.WithValue(ctx, adminKey, true)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects requests that carry no authenticated username.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UsernameFromRequest(r) == "" {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests that are not flagged as admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r) {
			httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "FORBIDDEN", Message: "admin access required"},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UsernameFromRequest returns the authenticated username, or "" when anonymous.
func UsernameFromRequest(r *http.Request) string {
	if u, ok := r.Context().Value(usernameKey).(string); ok {
		return u
	}
	return ""
}

// IsAdmin reports whether the request carries the admin flag.
func IsAdmin(r *http.Request) bool {
	admin, ok := r.Context().Value(adminKey).(bool)
	return ok && admin
}
