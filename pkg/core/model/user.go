// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "github.com/google/uuid"

// User is a locally known person. Admins are looked up by Email and
// drivers by Phone. Drivers form the own-fleet roster.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	VehiclePlate string    `json:"vehicle_plate,omitempty"`

	PinHash      string `json:"-"`
	PinTemporary bool   `json:"pin_temporary"`
}

// Actor returns the Actor which is authenticated as u.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
