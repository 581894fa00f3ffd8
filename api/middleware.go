package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/garnizeh/helpermatch/internal/auth"
)

type ctxKey string

const (
	CtxUserID ctxKey = "user_id"
	CtxEmail  ctxKey = "email"
)

// package-level logger used by middleware and helpers; can be set via SetLogger from caller
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the api package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// UserIDFromContext returns the signed-in user id, or "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(CtxUserID).(string)
	return id
}

func withUser(ctx context.Context, c *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxUserID, c.Subject)
	return context.WithValue(ctx, CtxEmail, c.Email)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// CORSMiddleware allows the given origins; "*" allows any.
func CORSMiddleware(origins []string) mux.MiddlewareFunc {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic", slog.Any("err", err), slog.String("path", r.URL.Path))
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error", Code: CodeInternal})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	tok, ok := strings.CutPrefix(h, "Bearer ")
	tok = strings.TrimSpace(tok)
	return tok, ok && tok != ""
}

// JWTAuthMiddleware rejects requests without a valid session token and puts
// the user id from the "sub" claim into the request context.
func JWTAuthMiddleware(tokens *auth.Tokens) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := bearerToken(r)
			if !ok {
				writeError(w, r, newError(http.StatusUnauthorized, CodeSignInRequired, "missing or invalid Authorization header", nil))
				return
			}
			claims, err := tokens.Parse(tok)
			if err != nil {
				writeError(w, r, newError(http.StatusUnauthorized, CodeUnauthorized, "invalid or expired token", err))
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), claims)))
		})
	}
}

// OptionalAuthMiddleware attaches the user when a valid token is present and
// lets the request through anonymously otherwise.
func OptionalAuthMiddleware(tokens *auth.Tokens) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok, ok := bearerToken(r); ok {
				if claims, err := tokens.Parse(tok); err == nil {
					r = r.WithContext(withUser(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
