// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

import (
	"cmp"
	"fmt"
)

// OutOfRangeError indicates that a Value was less than its Min or
// greater than its Max boundary, or that Min was greater than Max.
type OutOfRangeError[T cmp.Ordered] struct {
	Value    T
	Min, Max *T
}

func (e *OutOfRangeError[T]) Error() string {
	switch {
	case e.Min != nil && e.Max != nil && *e.Min > *e.Max:
		return fmt.Sprintf("minimum %v is greater than maximum %v", *e.Min, *e.Max)
	case e.Min != nil && e.Value < *e.Min:
		return fmt.Sprintf("%v is less than minimum %v", e.Value, *e.Min)
	default:
		return fmt.Sprintf("%v is greater than maximum %v", e.Value, *e.Max)
	}
}

// VerifyRange ensures that value is within the inclusive minb and maxb
// boundaries. A nil boundary is not checked and a nil value passes.
// Out of range values are reported, not clamped, so a typo in the
// config file stops the server instead of silently changing a limit.
func VerifyRange[T cmp.Ordered](value, minb, maxb *T) error {
	if minb != nil && maxb != nil && *minb > *maxb {
		var zero T
		return &OutOfRangeError[T]{Value: zero, Min: minb, Max: maxb}
	}
	if value == nil {
		return nil
	}
	v := *value
	if (minb != nil && v < *minb) || (maxb != nil && v > *maxb) {
		return &OutOfRangeError[T]{Value: v, Min: minb, Max: maxb}
	}
	return nil
}
