// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jobsuc

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/core/cerr"
	"github.com/momeni/dispatch-pool/pkg/core/model"
)

// Draft contains the fields of a job which is going to be created.
// A non-nil SupplierID asks for an immediate assignment.
type Draft struct {
	ClientID uuid.UUID

	GuestName      string
	GuestContact   string
	PickupLocation string
	DropLocation   string
	Flight         string
	PickupTime     time.Time
	Adults         int

	Category     string
	VehicleModel string
	SupplierID   *uuid.UUID
	DriverID     *uuid.UUID

	Price       float64
	TaxAmount   float64
	TotalAmount float64
}

func (d *Draft) validate() error {
	switch {
	case d.ClientID == uuid.Nil:
		return cerr.Invalid("client is required")
	case strings.TrimSpace(d.GuestName) == "":
		return cerr.Invalid("guest name is required")
	case strings.TrimSpace(d.PickupLocation) == "":
		return cerr.Invalid("pickup location is required")
	case strings.TrimSpace(d.DropLocation) == "":
		return cerr.Invalid("drop location is required")
	case d.PickupTime.IsZero():
		return cerr.Invalid("pickup time is required")
	case d.Adults < 1:
		return cerr.Invalid("adults must be at least one")
	case d.SupplierID == nil && d.DriverID != nil:
		return cerr.Invalid("a driver needs a supplier")
	}
	return validateAmounts(d.Price, d.TaxAmount, d.TotalAmount)
}

func validateAmounts(amounts ...float64) error {
	for _, a := range amounts {
		if a < 0 {
			return cerr.Invalid("amounts may not be negative")
		}
	}
	return nil
}

// Patch lists the changes of a job update. Nil fields are left
// untouched. A non-nil Assign replaces the assignment and a nil
// Assign.SupplierID asks for an unassigned job.
type Patch struct {
	ClientID *uuid.UUID

	GuestName      *string
	GuestContact   *string
	PickupLocation *string
	DropLocation   *string
	Flight         *string
	PickupTime     *time.Time
	Adults         *int

	Category     *string
	VehicleModel *string
	Assign       *Assign

	Price       *float64
	TaxAmount   *float64
	TotalAmount *float64
}

// Assign is the desired supplier and own-fleet driver of a job.
type Assign struct {
	SupplierID *uuid.UUID
	DriverID   *uuid.UUID
}

func (p *Patch) validate() error {
	required := []struct {
		v    *string
		name string
	}{
		{p.GuestName, "guest name"},
		{p.PickupLocation, "pickup location"},
		{p.DropLocation, "drop location"},
	}
	for _, r := range required {
		if r.v != nil && strings.TrimSpace(*r.v) == "" {
			return cerr.Invalid("%s may not be empty", r.name)
		}
	}
	switch {
	case p.ClientID != nil && *p.ClientID == uuid.Nil:
		return cerr.Invalid("client may not be empty")
	case p.PickupTime != nil && p.PickupTime.IsZero():
		return cerr.Invalid("pickup time may not be empty")
	case p.Adults != nil && *p.Adults < 1:
		return cerr.Invalid("adults must be at least one")
	}
	for _, a := range []*float64{p.Price, p.TaxAmount, p.TotalAmount} {
		if a != nil && *a < 0 {
			return cerr.Invalid("amounts may not be negative")
		}
	}
	return nil
}

// apply copies the descriptive and commercial changes into j and
// returns the names of the changed fields.
func (p *Patch) apply(j *model.Job) []string {
	var changed []string
	setS := func(dst *string, v *string, name string) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = append(changed, name)
		}
	}
	setF := func(dst *float64, v *float64, name string) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = append(changed, name)
		}
	}
	if p.ClientID != nil && j.ClientID != *p.ClientID {
		j.ClientID = *p.ClientID
		changed = append(changed, "client_id")
	}
	setS(&j.GuestName, p.GuestName, "guest_name")
	setS(&j.GuestContact, p.GuestContact, "guest_contact")
	setS(&j.PickupLocation, p.PickupLocation, "pickup_location")
	setS(&j.DropLocation, p.DropLocation, "drop_location")
	setS(&j.Flight, p.Flight, "flight")
	if p.PickupTime != nil && !j.PickupTime.Equal(*p.PickupTime) {
		j.PickupTime = *p.PickupTime
		changed = append(changed, "pickup_time")
	}
	if p.Adults != nil && j.Adults != *p.Adults {
		j.Adults = *p.Adults
		changed = append(changed, "adults")
	}
	setS(&j.Category, p.Category, "category")
	setS(&j.VehicleModel, p.VehicleModel, "vehicle_model")
	setF(&j.Price, p.Price, "price")
	setF(&j.TaxAmount, p.TaxAmount, "tax_amount")
	setF(&j.TotalAmount, p.TotalAmount, "total_amount")
	return changed
}
