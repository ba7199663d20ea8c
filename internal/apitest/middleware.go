package apitest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/auth"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

type ctxKey int

const claimsKey ctxKey = iota

func claimsFrom(ctx context.Context) *auth.AccessTokenClaims {
	claims, _ := ctx.Value(claimsKey).(*auth.AccessTokenClaims)
	return claims
}

func recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					ctx := logg.WithFields(r.Context(), map[string]any{"panic": rec})
					logg.Error(ctx, "panic.recovered", err)
					writeError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func requestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)
			next.ServeHTTP(w, r.WithContext(logg.WithRequestID(r.Context(), reqID)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			ctx = logg.WithFields(ctx, map[string]any{
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			logg.Debug(ctx, "request.complete")
		})
	}
}

// record keeps a copy of every request header set and serves injected
// failures before the route runs.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r.Method, r.URL.Path)
		s.mu.Lock()
		s.requests[key] = append(s.requests[key], r.Header.Clone())
		failure, failing := s.failures[key]
		if failing {
			delete(s.failures, key)
		}
		s.mu.Unlock()

		if failing {
			writeJSON(w, failure.status, messageEnvelope{Message: failure.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireToken rejects requests without a valid x-access-token.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(s.tokenHeader)
		if raw == "" {
			writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, MissingTokenMessage))
			return
		}

		claims, err := auth.ParseAccessToken(s.tokens, raw)
		if err != nil {
			writeError(r.Context(), s.logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, InvalidTokenMessage))
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		ctx = s.logg.WithUserID(ctx, claims.UserID)
		ctx = s.logg.WithUserType(ctx, string(claims.UserType))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireStaff limits a route to admins and employees.
func (s *Server) requireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims == nil || !claims.UserType.IsStaff() {
			writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeForbidden, ForbiddenMessage))
			return
		}
		next.ServeHTTP(w, r)
	})
}
