// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/goccy/go-json"
)

// Deletion is the soft-deletion state of a record. The zero value is
// an active record. A deleted record remembers its deletion time.
type Deletion struct {
	at *time.Time
}

// Active returns the Deletion state of a non-deleted record.
func Active() Deletion {
	return Deletion{}
}

// DeletedAt returns the Deletion state of a record which was soft
// deleted at the t time.
func DeletedAt(t time.Time) Deletion {
	return Deletion{at: &t}
}

// IsDeleted reports if the record is soft deleted.
func (d Deletion) IsDeleted() bool {
	return d.at != nil
}

// At returns the deletion time and true for a deleted record, or
// the zero time and false for an active one.
func (d Deletion) At() (time.Time, bool) {
	if d.at == nil {
		return time.Time{}, false
	}
	return *d.at, true
}

// MarshalJSON encodes an active record as null and a deleted one
// as its deletion time.
func (d Deletion) MarshalJSON() ([]byte, error) {
	if d.at == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*d.at)
}
