package token

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notes_service/internal/auth"
	"notes_service/internal/lib/hash"
	"notes_service/internal/lib/jwt"
	"notes_service/internal/models"
	"notes_service/internal/storage/memory"
)

type envelope struct {
	Status  int        `json:"status"`
	Message string     `json:"message"`
	Data    *TokenData `json:"data"`
}

type noopFolders struct{}

func (noopFolders) Provision(int64) error { return nil }

func newHandler(t *testing.T) (http.HandlerFunc, *memory.Repo, *jwt.Codec) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.New()
	codec := jwt.NewCodec("test-secret", time.Hour)

	authService := auth.New(log, repo, repo, codec, noopFolders{}, nil, nil)

	return New(log, authService), repo, codec
}

func seedAlice(t *testing.T, repo *memory.Repo) models.User {
	t.Helper()

	passHash, err := hash.Password("p1")
	if err != nil {
		t.Fatalf("hash.Password error: %v", err)
	}

	return repo.SeedUser(models.User{
		Username: "alice",
		Email:    "a@x.com",
		PassHash: passHash,
		Nickname: "Al",
	})
}

func doToken(t *testing.T, h http.HandlerFunc, username, password string) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/user/token", nil)
	if username != "" {
		req.SetBasicAuth(username, password)
	}

	rec := httptest.NewRecorder()
	h(rec, req)

	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	return rec.Code, env
}

func TestToken_MissingAuth(t *testing.T) {
	t.Parallel()

	h, repo, _ := newHandler(t)
	seedAlice(t, repo)

	code, env := doToken(t, h, "", "")
	if code != http.StatusUnauthorized || env.Message != "Authorization not provided." {
		t.Fatalf("got %d %q", code, env.Message)
	}
}

func TestToken_WrongCredentials(t *testing.T) {
	t.Parallel()

	h, repo, _ := newHandler(t)
	seedAlice(t, repo)

	// The response never says whether the username or the password was
	// wrong.
	for name, creds := range map[string][2]string{
		"unknown user":   {"nobody", "p1"},
		"wrong password": {"alice", "p2"},
	} {
		code, env := doToken(t, h, creds[0], creds[1])
		if code != http.StatusUnauthorized || env.Message != "Wrong Username or Password." {
			t.Errorf("%s: got %d %q", name, code, env.Message)
		}
	}
}

func TestToken_Success(t *testing.T) {
	t.Parallel()

	h, repo, codec := newHandler(t)
	seeded := seedAlice(t, repo)

	code, env := doToken(t, h, "alice", "p1")
	if code != http.StatusCreated || env.Message != "Token issued successfully." {
		t.Fatalf("got %d %q", code, env.Message)
	}
	if env.Data == nil || env.Data.Token == "" {
		t.Fatal("response carries no token")
	}

	claims, err := codec.Decode(env.Data.Token)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if uid := int64(claims["userid"].(float64)); uid != seeded.ID {
		t.Errorf("userid claim: got %d want %d", uid, seeded.ID)
	}

	iat := int64(claims["iat"].(float64))
	user, err := repo.UserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("UserByUsername error: %v", err)
	}
	if user.RecentTokenIssuedTime != iat {
		t.Errorf("recent token time: got %d want %d", user.RecentTokenIssuedTime, iat)
	}
}
