// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package token exports the expected interface of the signed bearer
// token codec which is used for authenticating drivers.
package token

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/core/model"
)

// ErrInvalid indicates a malformed, expired, or forged token.
var ErrInvalid = errors.New("invalid token")

// Claims are the facts which a token asserts about its bearer.
type Claims struct {
	UserID    uuid.UUID
	Phone     string
	Role      model.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Signer issues and validates tokens.
type Signer interface {
	Sign(c Claims) (string, error)

	// Verify returns the claims of a valid token. Every failure,
	// including expiration, is reported as an error wrapping
	// ErrInvalid.
	Verify(tok string) (*Claims, error)
}
