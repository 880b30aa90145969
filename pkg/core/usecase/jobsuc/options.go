// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jobsuc

import (
	"errors"
	"fmt"
	"time"
)

// Option is a functional option for the jobs use case.
type Option func(uc *UseCase) error

// WithObserver option registers o in order to be notified about the
// applied and rejected status transitions.
func WithObserver(o Observer) Option {
	return func(uc *UseCase) error {
		if o == nil {
			return errors.New("observer is nil")
		}
		if uc.observer != nil {
			return errors.New("observer is already configured")
		}
		uc.observer = o
		return nil
	}
}

// WithClock option replaces the wall clock which stamps jobs and logs.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		uc.now = now
		return nil
	}
}

// WithMaxBulkSize option limits the number of distinct jobs which may
// be named by one BulkTransition call.
func WithMaxBulkSize(n int) Option {
	return func(uc *UseCase) error {
		if n <= 0 {
			return fmt.Errorf("max bulk size (%d) is not positive", n)
		}
		if uc.maxBulk != 0 {
			return errors.New("max bulk size is already configured")
		}
		uc.maxBulk = n
		return nil
	}
}

// WithListLimits option configures the default and maximum number of
// jobs which are returned by List.
func WithListLimits(def, most int) Option {
	return func(uc *UseCase) error {
		if def <= 0 || most < def {
			return fmt.Errorf("invalid list limits: %d, %d", def, most)
		}
		uc.defLimit, uc.maxLimit = def, most
		return nil
	}
}
