package models

import (
	"errors"
	"testing"
)

func TestPendingRegistrationClaims_Roundtrip(t *testing.T) {
	t.Parallel()

	in := PendingRegistration{
		Username: "alice",
		PassHash: []byte("salted-hash"),
		Email:    "a@x.com",
		Nickname: "Al",
	}

	out, err := PendingRegistrationFromClaims(in.Claims())
	if err != nil {
		t.Fatalf("PendingRegistrationFromClaims error: %v", err)
	}

	if out.Username != in.Username || out.Email != in.Email || out.Nickname != in.Nickname {
		t.Errorf("roundtrip mismatch: %+v", out)
	}
	if string(out.PassHash) != string(in.PassHash) {
		t.Errorf("hash roundtrip mismatch: %q", out.PassHash)
	}
}

func TestPendingRegistrationFromClaims_Incomplete(t *testing.T) {
	t.Parallel()

	full := PendingRegistration{
		Username: "alice",
		PassHash: []byte("h"),
		Email:    "a@x.com",
		Nickname: "Al",
	}.Claims()

	for _, missing := range []string{"username", "password", "email", "nickname"} {
		claims := map[string]any{}
		for k, v := range full {
			claims[k] = v
		}
		delete(claims, missing)

		if _, err := PendingRegistrationFromClaims(claims); !errors.Is(err, ErrIncompleteClaims) {
			t.Errorf("missing %s: expected ErrIncompleteClaims, got %v", missing, err)
		}
	}

	// Non-string and undecodable values are rejected too.
	bad := map[string]any{}
	for k, v := range full {
		bad[k] = v
	}
	bad["password"] = "%%% not base64 %%%"
	if _, err := PendingRegistrationFromClaims(bad); !errors.Is(err, ErrIncompleteClaims) {
		t.Errorf("bad base64: expected ErrIncompleteClaims, got %v", err)
	}

	bad["password"] = 42
	if _, err := PendingRegistrationFromClaims(bad); !errors.Is(err, ErrIncompleteClaims) {
		t.Errorf("non-string: expected ErrIncompleteClaims, got %v", err)
	}
}

func TestToUser(t *testing.T) {
	t.Parallel()

	u := PendingRegistration{
		Username: "alice",
		PassHash: []byte("h"),
		Email:    "a@x.com",
		Nickname: "Al",
	}.ToUser()

	if u.ID != 0 {
		t.Error("pending registration must not carry an identity")
	}
	if u.Username != "alice" || u.Email != "a@x.com" || u.Nickname != "Al" {
		t.Errorf("unexpected user: %+v", u)
	}
}
