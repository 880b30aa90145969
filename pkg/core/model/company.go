// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// CompanyKind tells how a company takes part in the dispatch flow.
type CompanyKind int

// Valid values for the CompanyKind enum.
const (
	CompanyKindInvalid CompanyKind = iota // zero value is invalid

	CompanyKindClient   // contributes jobs
	CompanyKindSupplier // external fleet which serves jobs
	CompanyKindOwnFleet // the operator itself, at most one record
)

// ErrUnknownCompanyKind indicates an unparsable company kind string.
var ErrUnknownCompanyKind = errors.New("unknown company kind")

// CompanyKindError indicates an invalid company kind integer.
type CompanyKindError int

// Error implements the error interface.
func (e CompanyKindError) Error() string {
	return fmt.Sprintf("invalid company kind: %d", e)
}

// Validate returns nil for known kinds.
func (k CompanyKind) Validate() error {
	switch k {
	case CompanyKindClient, CompanyKindSupplier, CompanyKindOwnFleet:
		return nil
	default:
		return CompanyKindError(k)
	}
}

// String returns the canonical name of k. Invalid kinds panic.
func (k CompanyKind) String() string {
	switch k {
	case CompanyKindClient:
		return "CLIENT"
	case CompanyKindSupplier:
		return "SUPPLIER"
	case CompanyKindOwnFleet:
		return "OWN_FLEET"
	default:
		panic(CompanyKindError(k))
	}
}

// ParseCompanyKind parses the canonical name of a company kind.
func ParseCompanyKind(s string) (CompanyKind, error) {
	switch s {
	case "CLIENT":
		return CompanyKindClient, nil
	case "SUPPLIER":
		return CompanyKindSupplier, nil
	case "OWN_FLEET":
		return CompanyKindOwnFleet, nil
	default:
		return CompanyKindInvalid, ErrUnknownCompanyKind
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k CompanyKind) MarshalText() ([]byte, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *CompanyKind) UnmarshalText(data []byte) error {
	kk, err := ParseCompanyKind(string(data))
	if err != nil {
		return err
	}
	*k = kk
	return nil
}

// Company is a client, an external supplier, or the own fleet.
type Company struct {
	ID   uuid.UUID   `json:"id"`
	Name string      `json:"name"`
	Kind CompanyKind `json:"kind"`
}
