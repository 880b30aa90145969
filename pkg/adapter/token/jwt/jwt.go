// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package jwt implements the token.Signer interface with HS256 signed
// JSON web tokens. The custom userId, phone, and role claims are put
// next to the registered iat, exp, and iss claims.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/token"
)

// MinSecretLen is the minimum accepted length of the HMAC secret.
const MinSecretLen = 32

// Issuer is the value of the iss claim of the issued tokens.
const Issuer = "dispatch-pool"

type claims struct {
	UserID uuid.UUID  `json:"userId"`
	Phone  string     `json:"phone"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Signer signs and verifies driver tokens with a shared secret.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// Option configures a Signer.
type Option func(s *Signer) error

// WithClock option replaces the wall clock which is used for the
// expiration checks.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		s.now = now
		return nil
	}
}

// New instantiates a Signer for the secret HMAC key.
func New(secret string, opts ...Option) (*Signer, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf(
			"token secret must have at least %d bytes", MinSecretLen,
		)
	}
	s := &Signer{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Sign creates a signed token carrying c claims.
func (s *Signer) Sign(c token.Claims) (string, error) {
	if err := c.Role.Validate(); err != nil {
		return "", err
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		UserID: c.UserID,
		Phone:  c.Phone,
		Role:   c.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   c.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	})
	return t.SignedString(s.secret)
}

// Verify checks the signature, algorithm, issuer, and expiration of
// tok and returns its claims.
func (s *Signer) Verify(tok string) (*token.Claims, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(tok, c,
		func(*jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", token.ErrInvalid, err)
	}
	out := &token.Claims{
		UserID: c.UserID,
		Phone:  c.Phone,
		Role:   c.Role,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}
