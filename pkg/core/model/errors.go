// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
)

// Sentinel errors of the dispatch domain. Use cases wrap them (usually
// inside a cerr.Error which carries the HTTP status code) so callers
// may classify failures with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("forbidden")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrPinChangeRequired = errors.New("pin change required")
	ErrConflict          = errors.New("conflict")
)

// TransitionError describes a rejected From to To status change.
// It unwraps to ErrInvalidTransition.
type TransitionError struct {
	From, To JobStatus
	Stale    bool // job was written concurrently after it was read
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	from, to := statusName(e.From), statusName(e.To)
	if e.Stale {
		return fmt.Sprintf(
			"job changed concurrently, cannot move it from %s to %s",
			from, to,
		)
	}
	return fmt.Sprintf("cannot move job from %s to %s", from, to)
}

// Unwrap returns ErrInvalidTransition.
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func statusName(s JobStatus) string {
	if s.Validate() != nil {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return s.String()
}
