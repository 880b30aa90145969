// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package session exports the expected interface of the externally
// managed back-office sessions. Sessions are issued by an identity
// provider out of this module; this module only looks them up.
package session

import (
	"context"
	"time"
)

// Session is an authenticated back-office browser session.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Provider finds sessions by their opaque identifiers.
type Provider interface {
	// Session returns the session with the given id. Missing and
	// expired sessions are reported with an error wrapping
	// model.ErrNotFound.
	Session(ctx context.Context, id string) (*Session, error)
}
