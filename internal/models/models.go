package models

import (
	"encoding/base64"
	"errors"
)

var ErrIncompleteClaims = errors.New("incomplete registration claims")

type User struct {
	ID                    int64
	Username              string
	Email                 string
	PassHash              []byte
	Nickname              string
	RecentTokenIssuedTime int64
}

// PendingRegistration is a proposed user that lives only inside a signed
// registration token. It has no identity until verification persists it.
type PendingRegistration struct {
	Username string
	PassHash []byte
	Email    string
	Nickname string
}

// Claims flattens the pending registration into token claims. The password
// hash is base64-encoded so it travels as a plain string claim.
func (p PendingRegistration) Claims() map[string]any {
	return map[string]any{
		"username": p.Username,
		"password": base64.StdEncoding.EncodeToString(p.PassHash),
		"email":    p.Email,
		"nickname": p.Nickname,
	}
}

// PendingRegistrationFromClaims is the inverse of Claims. Any missing,
// empty or undecodable field yields ErrIncompleteClaims.
func PendingRegistrationFromClaims(claims map[string]any) (PendingRegistration, error) {
	var p PendingRegistration

	for key, dst := range map[string]*string{
		"username": &p.Username,
		"email":    &p.Email,
		"nickname": &p.Nickname,
	} {
		v, ok := claims[key].(string)
		if !ok || v == "" {
			return PendingRegistration{}, ErrIncompleteClaims
		}
		*dst = v
	}

	encoded, ok := claims["password"].(string)
	if !ok || encoded == "" {
		return PendingRegistration{}, ErrIncompleteClaims
	}

	passHash, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return PendingRegistration{}, ErrIncompleteClaims
	}
	p.PassHash = passHash

	return p, nil
}

func (p PendingRegistration) ToUser() User {
	return User{
		Username: p.Username,
		PassHash: p.PassHash,
		Email:    p.Email,
		Nickname: p.Nickname,
	}
}

type Message struct {
	Email   string `json:"to"`
	Token   string `json:"token"`
	Purpose string `json:"purpose"`
}
