// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authuc

import (
	"errors"
	"fmt"
	"time"
)

// Option is a functional option for the auth use case.
type Option func(uc *UseCase) error

// WithTokenTTL option configures the lifetime of the driver tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(uc *UseCase) error {
		if ttl <= 0 {
			return fmt.Errorf("token ttl (%v) is not positive", ttl)
		}
		if uc.tokenTTL != 0 {
			return errors.New("token ttl is already configured")
		}
		uc.tokenTTL = ttl
		return nil
	}
}

// WithClock option replaces the wall clock which is used for issuing
// tokens and checking session expiry.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		uc.now = now
		return nil
	}
}

// WithPinGenerator option replaces the random generator of temporary
// PINs. The generated PINs must satisfy the PIN format.
func WithPinGenerator(gen func() (string, error)) Option {
	return func(uc *UseCase) error {
		if gen == nil {
			return errors.New("pin generator is nil")
		}
		uc.genPin = gen
		return nil
	}
}
