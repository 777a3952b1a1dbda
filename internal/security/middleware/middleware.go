package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/biv3k224/ecommerce/internal/security"
	"github.com/biv3k224/ecommerce/internal/security/audit"
	"github.com/biv3k224/ecommerce/internal/security/auth"
	"github.com/biv3k224/ecommerce/internal/security/ratelimit"
)

type ClaimsContextKey struct{}
type RequestIDContextKey struct{}

// JWTMiddleware protects the admin surface. Everything outside
// /api/admin/ passes through untouched; admin requests need a valid
// bearer token whose role carries the list_products permission, with
// mutations additionally role-checked in the handler path.
func JWTMiddleware(tm *auth.TokenManager, authz *security.AuthorizationService, auditLog *audit.Logger, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/admin/") {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.Validate(tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			role := security.Role(claims.Role)
			if !authz.HasPermission(role, security.PermListProducts) {
				if auditLog != nil {
					auditLog.LogDenied(r.Context(), claims.Subject, "insufficient role for admin api")
				}
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}
			if isMutation(r.Method) && !authz.HasPermission(role, security.PermUpdateProduct) {
				if auditLog != nil {
					auditLog.LogDenied(r.Context(), claims.Subject, "insufficient role for catalog mutation")
				}
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// RateLimitMiddleware applies the general per-caller limit everywhere
// except the ops endpoints, plus a much tighter window on login to slow
// down credential stuffing.
func RateLimitMiddleware(limiter *ratelimit.Limiter, strictMax int, strictWindow time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			key := callerKey(r)

			if r.URL.Path == "/api/auth/login" {
				if !limiter.AllowStrict(key, strictMax, strictWindow) {
					log.Warn("login rate limit exceeded", slog.String("caller", key))
					http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
					return
				}
			}

			if !limiter.Allow(key) {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if c := r.Context().Value(ClaimsContextKey{}); c != nil {
		if claims, ok := c.(*auth.Claims); ok && claims.Subject != "" {
			return claims.Subject
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RequestIDMiddleware tags every request with an ID for log correlation.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), RequestIDContextKey{}, requestID)
		ctx = audit.WithRequestID(ctx, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccessLogMiddleware logs one line per request.
func AccessLogMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", GetRequestIDFromContext(r.Context())),
			)
		})
	}
}

// CORSMiddleware handles cross-origin requests for the configured origins.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
						w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
						break
					}
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records catalog mutations before they execute.
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/admin/products") && isMutation(r.Method) {
				actor := ""
				if claims := GetClaimsFromContext(r.Context()); claims != nil {
					actor = claims.Subject
				}
				auditLog.LogMutation(r.Context(), actor, strings.ToLower(r.Method), r.PathValue("id"), "initiated")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

func GetRequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(RequestIDContextKey{}); v != nil {
		return v.(string)
	}
	return ""
}
