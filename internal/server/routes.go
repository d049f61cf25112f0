package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/yasinhessnawi1/Forum_Backend/internal/auth"
	"github.com/yasinhessnawi1/Forum_Backend/internal/config"
	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/middleware"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// SetupRoutes configures the router.
//
// Public: health, version, metrics, signup and login. Everything under
// /api/users needs a token and passes the ban guard; ban management and
// maintenance are staff only.
func (s *Server) SetupRoutes() {
	r := chi.NewRouter()

	r.Use(corsMiddleware(s.Config.CORS))

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RealIP(s.trustedProxies))
	r.Use(middleware.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(s.metrics.Middleware)
	if s.Config.Logging.RequestLog {
		r.Use(middleware.RequestLogger())
	}

	r.Get(constants.HealthPath, s.Handlers.SystemHandler.Health)
	r.Get("/version", s.Handlers.SystemHandler.Version)
	r.Method(http.MethodGet, constants.MetricsPath, s.metrics.Handler())

	requireAuth := auth.RequireAuth(s.authProviders.JWTService)

	r.Route(constants.APIBasePath, func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(chimiddleware.NoCache)

			r.With(middleware.RateLimit(s.limiter, constants.RateLimitCategorySignup)).
				Post("/signup", s.Handlers.AuthHandler.Register)
			r.With(middleware.RateLimit(s.limiter, constants.RateLimitCategoryLogin)).
				Post("/login", s.Handlers.AuthHandler.Login)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.BanGuard(s.services.bans))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", s.Handlers.UserHandler.GetCurrentUser)
				r.Put("/username", s.Handlers.UserHandler.ChangeOwnUsername)
				r.Get("/name-history", s.Handlers.UserHandler.GetNameHistory)
				r.Post("/data-archive", s.Handlers.UserHandler.DownloadOwnDataArchive)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireStaff)

				r.Put("/{"+constants.ParamUserID+"}/username", s.Handlers.UserHandler.ChangeUsername)
				r.Post("/{"+constants.ParamUserID+"}/data-archive", s.Handlers.UserHandler.DownloadDataArchive)
			})
		})

		r.Route("/bans", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(auth.RequireStaff)

			r.Get("/", s.Handlers.BanHandler.ListBans)
			r.Post("/", s.Handlers.BanHandler.CreateBan)
			r.Post("/check", s.Handlers.BanHandler.CheckBan)
			r.Get("/{"+constants.ParamBanID+"}", s.Handlers.BanHandler.GetBan)
			r.Delete("/{"+constants.ParamBanID+"}", s.Handlers.BanHandler.DeleteBan)
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(auth.RequireStaff)

			r.Post("/remove-old-ips", s.Handlers.MaintenanceHandler.RemoveOldIPs)
			r.Post("/delete-expired-bans", s.Handlers.MaintenanceHandler.DeleteExpiredBans)
		})
	})

	s.router = r
}

// GetRouter returns the configured router
func (s *Server) GetRouter() chi.Router {
	return s.router
}

// corsMiddleware answers preflight requests and sets CORS headers for
// allowed origins. "*" allows any origin.
func corsMiddleware(cfg config.CORSSettings) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !originAllowed(cfg.AllowedOrigins, origin) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", strconv.FormatBool(true))
			}

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "300")
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	if utils.ContainsString(allowed, "*") {
		return true
	}
	for _, o := range allowed {
		if strings.EqualFold(strings.TrimSpace(o), origin) {
			return true
		}
	}
	return false
}
