package register

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
	"github.com/go-playground/validator/v10"
)

// Form fields; credentials arrive via basic auth. Field order matters: the
// first missing field names the failure.
type Request struct {
	Email    string `validate:"required"`
	Nickname string `validate:"required"`
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		username, password, ok := r.BasicAuth()
		if !ok {
			log.Warn("missing basic auth")

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.New(http.StatusBadRequest, "Authorization not provided."))

			return
		}

		req := Request{
			Email:    r.FormValue("email"),
			Nickname: r.FormValue("nickname"),
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Warn("invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err := authService.Register(ctx, username, password, req.Email, req.Nickname)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrUsernameTaken):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.New(http.StatusForbidden, "Username already exists."))
			case errors.Is(err, auth.ErrEmailTaken):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.New(http.StatusForbidden, "Email already used."))
			default:
				log.Error("failed to register user", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.New(http.StatusInternalServerError, "Internal error."))
			}

			return
		}

		log.Info("registration token created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.New(http.StatusCreated,
			"Email has been sent to your account. "+
				"Please use the link provided in email to "+
				"register your account."))
	}
}
