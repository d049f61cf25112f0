package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/Forum_Backend/internal/auth"
	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils/ratelimit"
)

// BanChecker returns a non-nil error when the query matches an active ban.
type BanChecker interface {
	CheckBan(ctx context.Context, query models.BanQuery) error
}

// SecurityHeaders adds security-related HTTP headers to responses
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(constants.HeaderXContentTypeOptions, constants.ContentTypeOptionsNoSniff)
			w.Header().Set(constants.HeaderXFrameOptions, constants.FrameOptionsDeny)
			w.Header().Set(constants.HeaderReferrerPolicy, constants.ReferrerPolicyStrictOrigin)
			w.Header().Set(constants.HeaderContentSecurityPolicy, constants.CSPDefaultSrc)

			next.ServeHTTP(w, r)
		})
	}
}

// BanGuard rejects requests from banned clients.
//
// The client IP is always tested; when the request carries an identity the
// username is tested too, so a new username ban also locks out existing
// sessions. Staff members are never blocked. It must run after RequireAuth
// to see the identity.
func BanGuard(checker BanChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isExemptedPath(r.URL.Path) || auth.IsStaff(r) {
				next.ServeHTTP(w, r)
				return
			}

			query := models.BanQuery{IP: utils.ClientIP(r)}
			if username, ok := auth.GetUsername(r); ok {
				query.Username = username
			}

			if err := checker.CheckBan(r.Context(), query); err != nil {
				var appErr *utils.AppError
				if errors.As(err, &appErr) {
					log.Warn().
						Str("client_ip", query.IP).
						Str("path", r.URL.Path).
						Str("method", r.Method).
						Msg("Request from banned client")
					utils.ErrorFromAppError(w, appErr)
					return
				}
				utils.InternalServerError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit throttles requests per client IP within category.
func RateLimit(store *ratelimit.Store, category string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := utils.ClientIP(r)

			if !store.Allow(category, clientIP) {
				log.Warn().
					Str("client_ip", clientIP).
					Str("category", category).
					Msg("Rate limit exceeded")
				utils.Error(w, constants.StatusTooManyRequests, constants.CodeRateLimited, constants.MsgRateLimited, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isExemptedPath returns true for paths never subject to bans (health
// checks and metrics scrapes).
func isExemptedPath(path string) bool {
	for _, prefix := range []string{constants.HealthPath, "/version", constants.MetricsPath} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
