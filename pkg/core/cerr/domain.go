// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr

import (
	"fmt"

	"github.com/momeni/dispatch-pool/pkg/core/model"
)

// Invalid returns a 400 error wrapping model.ErrValidation.
func Invalid(format string, args ...any) *Error {
	return BadRequest(wrap(model.ErrValidation, format, args))
}

// Forbidden returns a 403 error wrapping model.ErrForbidden.
func Forbidden(format string, args ...any) *Error {
	return Authorization(wrap(model.ErrForbidden, format, args))
}

// Missing returns a 404 error wrapping model.ErrNotFound.
func Missing(format string, args ...any) *Error {
	return NotFound(wrap(model.ErrNotFound, format, args))
}

// Duplicate returns a 409 error wrapping model.ErrConflict.
func Duplicate(format string, args ...any) *Error {
	return Conflict(wrap(model.ErrConflict, format, args))
}

// Transition returns a 400 error for a rejected status change.
func Transition(from, to model.JobStatus, stale bool) *Error {
	return BadRequest(&model.TransitionError{
		From: from, To: to, Stale: stale,
	})
}

func wrap(sentinel error, format string, args []any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
