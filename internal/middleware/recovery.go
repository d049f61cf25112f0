package middleware

import (
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// Recovery is a middleware that recovers from panics and returns a 500 Internal Server Error
func Recovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// the server relies on this panic to abort the response
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error().
					Str(constants.RequestIDContextKey, chimiddleware.GetReqID(r.Context())).
					Interface("panic", rec).
					Str("stack", string(debug.Stack())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("Panic recovered in request handler")

				utils.Error(
					w,
					http.StatusInternalServerError,
					constants.CodeInternalError,
					"An unexpected error occurred while processing your request",
					nil,
				)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// LogAndContinueOnError logs a non-critical error and lets execution continue.
func LogAndContinueOnError(err error, message string) {
	if err != nil {
		log.Error().Err(err).Msg(message)
	}
}
