// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Role specifies the kind of an authenticated actor.
type Role int

// Valid values for the Role enum.
const (
	RoleInvalid Role = iota // zero value is invalid

	RoleSuperAdmin // back-office staff with full control
	RoleAccountant // back-office staff who may create and read jobs
	RoleDriver     // own-fleet driver, authenticated by phone and PIN
)

// ErrUnknownRole indicates that a given string may not be parsed as
// a known role.
var ErrUnknownRole = errors.New("unknown role")

// RoleError indicates an invalid role integer.
type RoleError int

// Error implements the error interface.
func (e RoleError) Error() string {
	return fmt.Sprintf("invalid role: %d", e)
}

// Validate returns nil if r is a known role, otherwise a RoleError.
func (r Role) Validate() error {
	switch r {
	case RoleSuperAdmin, RoleAccountant, RoleDriver:
		return nil
	default:
		return RoleError(r)
	}
}

// String returns the canonical name of r. Invalid roles cause a panic.
func (r Role) String() string {
	switch r {
	case RoleSuperAdmin:
		return "SUPER_ADMIN"
	case RoleAccountant:
		return "ACCOUNTANT"
	case RoleDriver:
		return "DRIVER"
	default:
		panic(RoleError(r))
	}
}

// ParseRole parses the canonical name of a role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "SUPER_ADMIN":
		return RoleSuperAdmin, nil
	case "ACCOUNTANT":
		return RoleAccountant, nil
	case "DRIVER":
		return RoleDriver, nil
	default:
		return RoleInvalid, ErrUnknownRole
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(data []byte) error {
	rr, err := ParseRole(string(data))
	if err != nil {
		return err
	}
	*r = rr
	return nil
}

// Admin reports if r belongs to the back-office staff.
func (r Role) Admin() bool {
	return r == RoleSuperAdmin || r == RoleAccountant
}

// Actor is the verified identity behind a request. It is produced by
// the credential layer and never taken from a request body.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// LogValue implements slog.LogValuer.
func (a Actor) LogValue() slog.Value {
	role := "invalid"
	if a.Role.Validate() == nil {
		role = a.Role.String()
	}
	return slog.GroupValue(
		slog.String("id", a.ID.String()),
		slog.String("role", role),
	)
}
