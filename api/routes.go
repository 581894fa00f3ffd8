package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/garnizeh/helpermatch/internal/auth"
	"github.com/garnizeh/helpermatch/internal/config"
	"github.com/garnizeh/helpermatch/internal/db"
	"github.com/garnizeh/helpermatch/internal/directory"
	"github.com/garnizeh/helpermatch/internal/media"
	"github.com/garnizeh/helpermatch/internal/otp"
	"github.com/garnizeh/helpermatch/internal/repository/sqlite"
	"github.com/garnizeh/helpermatch/internal/storage"
	"github.com/garnizeh/helpermatch/internal/wizard"
)

// Backends are the external services the router is wired to.
type Backends struct {
	DB     *db.DB
	Store  *storage.Store
	Redis  redis.Cmdable
	Sender otp.Sender
}

func SetupRoutes(cfg *config.Config, version, buildTime string, b Backends) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	corsMiddleware := CORSMiddleware(cfg.CORS.AllowedOrigins)
	r.Use(LoggingMiddleware)
	r.Use(corsMiddleware)
	r.Use(RecoveryMiddleware)
	// Preflights match no route by method, so they land here.
	r.MethodNotAllowedHandler = corsMiddleware(http.HandlerFunc(methodNotAllowed))
	r.NotFoundHandler = http.HandlerFunc(routeNotFound)

	// Repository and services
	repo := sqlite.New(b.DB, logger)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenDuration)
	otpSvc := otp.NewService(b.Redis, b.Sender, cfg.OTP.TTL, cfg.OTP.Cooldown, logger)
	wizardSvc := wizard.NewService(repo, b.Store, logger)
	mediaSvc := media.NewService(repo, repo, b.Store, logger)
	directorySvc := directory.NewService(repo, repo, repo, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	storageHandler := NewStorageHandler(b.Store)
	authHandler := NewAuthHandler(repo, repo, tokens, otpSvc)
	oauthHandler := NewOAuthHandler(repo, tokens, auth.Providers(cfg.OAuth), cfg.CORS.AllowedOrigins)
	employersHandler := NewEmployersHandler(repo, repo)
	workersHandler := NewWorkersHandler(directorySvc)
	profileHandler := NewWorkerProfileHandler(wizardSvc, cfg.Storage.MaxUploadBytes)
	mediaHandler := NewMediaHandler(mediaSvc, cfg.Storage.MaxUploadBytes)
	feedHandler := NewFeedHandler(repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/storage/{bucket}/{path:.+}", storageHandler.Serve).Methods("GET", "HEAD")
	r.HandleFunc("/v1/worker/auth/signup", authHandler.WorkerSignup).Methods("POST")
	r.HandleFunc("/v1/employer/auth/signup", authHandler.EmployerSignup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")
	r.HandleFunc("/v1/auth/oauth/{provider}", oauthHandler.Start).Methods("GET")
	r.HandleFunc("/v1/auth/oauth/{provider}/callback", oauthHandler.Callback).Methods("GET")
	r.HandleFunc("/v1/workers", workersHandler.List).Methods("GET")
	if cfg.Diagnostics.Enabled {
		diagnosticsHandler := NewDiagnosticsHandler(otpSvc, cfg.Env)
		r.HandleFunc("/v1/diagnostics/sms", diagnosticsHandler.SMS).Methods("POST")
	}

	// Anonymous or signed-in
	optional := r.PathPrefix("/v1/feed").Subrouter()
	optional.Use(OptionalAuthMiddleware(tokens))
	optional.HandleFunc("", feedHandler.List).Methods("GET")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddleware(tokens))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")
	authV1.HandleFunc("/me", authHandler.Me).Methods("GET")
	authV1.HandleFunc("/otp", authHandler.RequestOTP).Methods("POST")
	authV1.HandleFunc("/otp/verify", authHandler.VerifyOTP).Methods("POST")

	// Employer profile
	apiV1.HandleFunc("/employers/me", employersHandler.GetMe).Methods("GET")
	apiV1.HandleFunc("/employers/me", employersHandler.UpdateMe).Methods("PUT")

	// Worker's own profile and gallery; registered before /workers/{id}
	apiV1.HandleFunc("/workers/me", profileHandler.Me).Methods("GET")
	apiV1.HandleFunc("/workers/me", profileHandler.Register).Methods("POST")
	apiV1.HandleFunc("/workers/me", profileHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/workers/me/form", profileHandler.Form).Methods("GET")
	apiV1.HandleFunc("/workers/me/photo", profileHandler.UploadPhoto).Methods("POST")
	apiV1.HandleFunc("/workers/me/media", mediaHandler.List).Methods("GET")
	apiV1.HandleFunc("/workers/me/media", mediaHandler.Upload).Methods("POST")
	apiV1.HandleFunc("/workers/me/media/{id}", mediaHandler.Delete).Methods("DELETE")

	// Directory detail and inquiries
	apiV1.HandleFunc("/workers/{id}/inquiries", workersHandler.Inquire).Methods("POST")

	// Feed toggles
	apiV1.HandleFunc("/feed/{mediaID}/like", feedHandler.Like()).Methods("PUT")
	apiV1.HandleFunc("/feed/{mediaID}/like", feedHandler.Unlike()).Methods("DELETE")
	apiV1.HandleFunc("/feed/{mediaID}/bookmark", feedHandler.Bookmark()).Methods("PUT")
	apiV1.HandleFunc("/feed/{mediaID}/bookmark", feedHandler.Unbookmark()).Methods("DELETE")

	// Public detail, after the /workers/me routes so "me" is not taken as an id
	r.HandleFunc("/v1/workers/{id}", workersHandler.Detail).Methods("GET")

	return r
}
