package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"notes_service/internal/lib/hash"
	"notes_service/internal/lib/jwt"
	sl "notes_service/internal/lib/logger"
	"notes_service/internal/models"
	"notes_service/internal/storage"
)

var (
	ErrNoCredentials      = errors.New("no credentials provided")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already used")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMalformedToken     = errors.New("malformed token claims")
)

const purposeRegistration = "registration"

type UserSaver interface {
	BeginUserCreate(ctx context.Context, user models.User) (storage.UserCreate, error)
	UpdateRecentTokenIssued(ctx context.Context, userID, issuedAt int64) error
}

type UserProvider interface {
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
}

type FolderProvisioner interface {
	Provision(userID int64) error
}

type Publisher interface {
	SendMessage(ctx context.Context, msg models.Message) error
}

// TokenMarker remembers redeemed registration tokens. Optional; without it
// a replayed token is only stopped by the store's uniqueness constraint.
type TokenMarker interface {
	TokenUsed(ctx context.Context, token string) (bool, error)
	MarkTokenUsed(ctx context.Context, token string, ttl time.Duration) error
}

// Credentials is a basic-auth credential pair. A nil *Credentials means no
// credentials were supplied at all, which callers must keep distinguishable
// from a wrong pair.
type Credentials struct {
	Username string
	Password string
}

// BasicCredentials adapts http.Request.BasicAuth results.
func BasicCredentials(username, password string, ok bool) *Credentials {
	if !ok {
		return nil
	}

	return &Credentials{Username: username, Password: password}
}

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	codec       *jwt.Codec
	folders     FolderProvisioner
	publisher   Publisher
	marker      TokenMarker
}

// New constructs the auth flows. publisher and marker may be nil: token
// delivery and the single-use marker are both best-effort collaborators.
func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	codec *jwt.Codec,
	folders FolderProvisioner,
	publisher Publisher,
	marker TokenMarker,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		codec:       codec,
		folders:     folders,
		publisher:   publisher,
		marker:      marker,
	}
}

// Register runs the first registration phase: validate uniqueness, hash the
// password and seal the whole proposed user inside a signed token. Nothing
// is persisted; the token is the only artifact and is handed to the mail
// queue for out-of-band delivery.
func (a *Auth) Register(ctx context.Context, username, password, email, nickname string) error {
	const op = "auth.Register"

	log := a.log.With(slog.String("op", op))

	_, err := a.usrProvider.UserByUsername(ctx, username)
	if err == nil {
		log.Warn("username already exists")
		return ErrUsernameTaken
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		log.Error("failed to check username", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = a.usrProvider.UserByEmail(ctx, email)
	if err == nil {
		log.Warn("email already used")
		return ErrEmailTaken
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		log.Error("failed to check email", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := hash.Password(password)
	if err != nil {
		log.Error("failed to hash password", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	pending := models.PendingRegistration{
		Username: username,
		PassHash: passHash,
		Email:    email,
		Nickname: nickname,
	}

	token, _, err := a.codec.Encode(pending.Claims())
	if err != nil {
		log.Error("failed to encode registration token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("registration token issued", slog.String("token", token))

	if a.publisher != nil {
		msg := models.Message{
			Email:   email,
			Token:   token,
			Purpose: purposeRegistration,
		}

		if err := a.publisher.SendMessage(ctx, msg); err != nil {
			// Delivery is best-effort; the flow's contract is producing
			// the token, not shipping it.
			log.Error("failed to publish registration token", sl.Err(err))
		}
	}

	log.Info("registration token created", slog.String("username", username))

	return nil
}

// VerifyRegistration redeems a pending-registration token: the user row is
// staged first so its id is known, the storage folder is provisioned, and
// only then is the insert committed. A provisioning failure rolls the whole
// thing back.
func (a *Auth) VerifyRegistration(ctx context.Context, token string) error {
	const op = "auth.VerifyRegistration"

	log := a.log.With(slog.String("op", op))

	claims, err := a.codec.Decode(token)
	if err != nil {
		log.Warn("rejected registration token", sl.Err(err))
		return ErrInvalidToken
	}

	if a.marker != nil {
		used, err := a.marker.TokenUsed(ctx, token)
		if err != nil {
			log.Warn("token marker unavailable", sl.Err(err))
		} else if used {
			log.Warn("registration token replayed")
			return ErrInvalidToken
		}
	}

	pending, err := models.PendingRegistrationFromClaims(claims)
	if err != nil {
		log.Warn("registration token with incomplete claims")
		return ErrMalformedToken
	}

	create, err := a.usrSaver.BeginUserCreate(ctx, pending.ToUser())
	if err != nil {
		log.Error("failed to stage user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.folders.Provision(create.UserID()); err != nil {
		log.Error("failed to provision user folder", sl.Err(err))

		if rbErr := create.Rollback(ctx); rbErr != nil {
			log.Error("failed to roll back staged user", sl.Err(rbErr))
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := create.Commit(ctx); err != nil {
		log.Error("failed to commit user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if a.marker != nil {
		if err := a.marker.MarkTokenUsed(ctx, token, a.codec.TTL()); err != nil {
			log.Warn("failed to mark token as used", sl.Err(err))
		}
	}

	log.Info("user registered", slog.Int64("uid", create.UserID()))

	return nil
}

// Authenticate checks a basic-auth pair against the store. The three
// outcomes stay distinguishable: ErrNoCredentials when nothing was
// supplied, ErrInvalidCredentials when the pair does not match (the error
// never says which half was wrong), or the user on success.
func (a *Auth) Authenticate(ctx context.Context, creds *Credentials) (models.User, error) {
	const op = "auth.Authenticate"

	log := a.log.With(slog.String("op", op))

	if creds == nil {
		return models.User{}, ErrNoCredentials
	}

	user, err := a.usrProvider.UserByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("unknown username")
			return models.User{}, ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if !hash.Verify(creds.Password, user.PassHash) {
		log.Info("password mismatch", slog.Int64("uid", user.ID))
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken authenticates and mints a session token carrying the user id,
// recording the issuance time on the user record.
func (a *Auth) IssueToken(ctx context.Context, creds *Credentials) (string, error) {
	const op = "auth.IssueToken"

	log := a.log.With(slog.String("op", op))

	user, err := a.Authenticate(ctx, creds)
	if err != nil {
		return "", err
	}

	token, issued, err := a.codec.Encode(map[string]any{"userid": user.ID})
	if err != nil {
		log.Error("failed to encode session token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := a.usrSaver.UpdateRecentTokenIssued(ctx, user.ID, issued); err != nil {
		log.Error("failed to record token issuance", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("session token issued", slog.Int64("uid", user.ID))

	return token, nil
}
