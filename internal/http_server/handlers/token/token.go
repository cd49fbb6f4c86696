package token

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"notes_service/internal/auth"
	resp "notes_service/internal/lib/api/response"
	sl "notes_service/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type TokenData struct {
	Token string `json:"token"`
}

func New(
	log *slog.Logger,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.token.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		creds := auth.BasicCredentials(r.BasicAuth())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		issued, err := authService.IssueToken(ctx, creds)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrNoCredentials):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.New(http.StatusUnauthorized, "Authorization not provided."))
			case errors.Is(err, auth.ErrInvalidCredentials):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.New(http.StatusUnauthorized, "Wrong Username or Password."))
			default:
				log.Error("failed to issue token", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.New(http.StatusInternalServerError, "Internal error."))
			}

			return
		}

		log.Info("token issued")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.WithData(http.StatusCreated, "Token issued successfully.",
			TokenData{Token: issued}))
	}
}
