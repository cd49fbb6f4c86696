package verify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"notes_service/internal/auth"
	resp "notes_service/internal/lib/api/response"
	sl "notes_service/internal/lib/logger"
	"notes_service/internal/notesfs"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const provisioningFault = "Failed to create a user folder.\n" +
	"This is server-side error and " +
	"should not happen at all.\n" +
	"Please contact administartor for help."

func New(
	log *slog.Logger,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verify.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(header, "Bearer ") {
			log.Warn("missing bearer token")

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.New(http.StatusUnauthorized, "Authorization not provided."))

			return
		}

		token := strings.SplitN(header, " ", 2)[1]

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err := authService.VerifyRegistration(ctx, token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidToken):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.New(http.StatusForbidden, "JWT signature mismatch."))
			case errors.Is(err, auth.ErrMalformedToken):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.New(http.StatusBadRequest, "Invalid token format."))
			case errors.Is(err, notesfs.ErrProvisioning):
				log.Error("provisioning fault", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.New(http.StatusInternalServerError, provisioningFault))
			default:
				log.Error("failed to verify registration", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.New(http.StatusInternalServerError, "Internal error."))
			}

			return
		}

		log.Info("registration verified")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.New(http.StatusCreated, "Successfully registered!"))
	}
}
