// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package assignuc contains the dispatch assignment resolver which
// decides the assignment fields of a job when a supplier (and maybe
// an own-fleet driver) is chosen for it.
package assignuc

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/core/cerr"
	"github.com/momeni/dispatch-pool/pkg/core/model"
)

// Roster gives the resolver read access to companies and drivers.
// Both methods return an error wrapping model.ErrNotFound for unknown
// identifiers. Callers usually back it with the same transaction which
// is going to persist the resolved assignment.
type Roster interface {
	Company(ctx context.Context, id uuid.UUID) (*model.Company, error)
	User(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Request is the desired assignment. A nil SupplierID asks for an
// unassigned job.
type Request struct {
	SupplierID *uuid.UUID
	DriverID   *uuid.UUID
}

// Resolver resolves assignment requests. It keeps no state and may be
// shared by concurrent callers.
type Resolver struct {
}

// New instantiates a Resolver.
func New() *Resolver {
	return &Resolver{}
}

// Resolve computes the assignment fields which should replace the
// current ones in order to satisfy req.
//
// If req names the same supplier and driver as current, current is
// returned as is. Otherwise the old driver details are dropped and the
// new supplier decides the outcome. An OWN_FLEET supplier needs a
// driver from the roster whose name and vehicle plate are copied. An
// external SUPPLIER takes no driver. CLIENT companies may not serve
// jobs.
func (r *Resolver) Resolve(
	ctx context.Context,
	roster Roster,
	current model.Assignment,
	req Request,
) (model.Assignment, error) {
	if sameID(current.SupplierID, req.SupplierID) &&
		sameID(current.DriverID, req.DriverID) {
		return current, nil
	}
	asg := model.Assignment{}
	if req.SupplierID == nil {
		if req.DriverID != nil {
			return asg, cerr.Invalid("a driver needs a supplier")
		}
		return asg, nil
	}
	supplier, err := roster.Company(ctx, *req.SupplierID)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return asg, cerr.Missing("supplier %s", *req.SupplierID)
	case err != nil:
		return asg, fmt.Errorf("finding supplier: %w", err)
	}
	sid := supplier.ID
	asg.SupplierID = &sid
	switch supplier.Kind {
	case model.CompanyKindSupplier:
		if req.DriverID != nil {
			return model.Assignment{}, cerr.Invalid(
				"external supplier %q takes no own-fleet driver",
				supplier.Name,
			)
		}
		return asg, nil
	case model.CompanyKindOwnFleet:
		if req.DriverID == nil {
			return model.Assignment{}, cerr.Invalid(
				"own-fleet assignment requires a driver",
			)
		}
		d, err := r.driver(ctx, roster, *req.DriverID)
		if err != nil {
			return model.Assignment{}, err
		}
		did := d.ID
		asg.DriverID = &did
		asg.DriverName = d.Name
		asg.AssignedPlate = d.VehiclePlate
		return asg, nil
	default:
		return model.Assignment{}, cerr.Invalid(
			"company %q is not a supplier", supplier.Name,
		)
	}
}

func (r *Resolver) driver(
	ctx context.Context, roster Roster, id uuid.UUID,
) (*model.User, error) {
	u, err := roster.User(ctx, id)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return nil, cerr.Missing("driver %s", id)
	case err != nil:
		return nil, fmt.Errorf("finding driver: %w", err)
	case u.Role != model.RoleDriver:
		return nil, cerr.Missing("driver %s", id)
	}
	return u, nil
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
