// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package assignuc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/core/cerr"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/assignuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roster struct {
	companies map[uuid.UUID]*model.Company
	users     map[uuid.UUID]*model.User
	lookups   int
}

func (r *roster) Company(_ context.Context, id uuid.UUID) (*model.Company, error) {
	r.lookups++
	if c, ok := r.companies[id]; ok {
		return c, nil
	}
	return nil, cerr.Missing("company %s", id)
}

func (r *roster) User(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.lookups++
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, cerr.Missing("user %s", id)
}

type fixture struct {
	r                          *roster
	ownFleet, supplier, client uuid.UUID
	driver, otherDriver, admin uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		r: &roster{
			companies: map[uuid.UUID]*model.Company{},
			users:     map[uuid.UUID]*model.User{},
		},
		ownFleet: uuid.New(), supplier: uuid.New(), client: uuid.New(),
		driver: uuid.New(), otherDriver: uuid.New(), admin: uuid.New(),
	}
	f.r.companies[f.ownFleet] = &model.Company{ID: f.ownFleet, Name: "Fleet", Kind: model.CompanyKindOwnFleet}
	f.r.companies[f.supplier] = &model.Company{ID: f.supplier, Name: "Cabs", Kind: model.CompanyKindSupplier}
	f.r.companies[f.client] = &model.Company{ID: f.client, Name: "Hotel", Kind: model.CompanyKindClient}
	f.r.users[f.driver] = &model.User{ID: f.driver, Name: "Ali", Role: model.RoleDriver, VehiclePlate: "12-ABC"}
	f.r.users[f.otherDriver] = &model.User{ID: f.otherDriver, Name: "Sara", Role: model.RoleDriver, VehiclePlate: "34-XYZ"}
	f.r.users[f.admin] = &model.User{ID: f.admin, Name: "Boss", Role: model.RoleSuperAdmin}
	return f
}

func TestOwnFleetCopiesDriver(t *testing.T) {
	f := newFixture()
	asg, err := assignuc.New().Resolve(context.Background(), f.r, model.Assignment{}, assignuc.Request{
		SupplierID: &f.ownFleet, DriverID: &f.driver,
	})
	require.NoError(t, err)
	require.NotNil(t, asg.SupplierID)
	require.NotNil(t, asg.DriverID)
	assert.Equal(t, f.ownFleet, *asg.SupplierID)
	assert.Equal(t, f.driver, *asg.DriverID)
	assert.Equal(t, "Ali", asg.DriverName)
	assert.Equal(t, "12-ABC", asg.AssignedPlate)
}

func TestExternalSupplierLeavesDriverEmpty(t *testing.T) {
	f := newFixture()
	current := model.Assignment{SupplierID: &f.ownFleet, DriverID: &f.driver, DriverName: "Ali", AssignedPlate: "12-ABC"}
	asg, err := assignuc.New().Resolve(context.Background(), f.r, current, assignuc.Request{SupplierID: &f.supplier})
	require.NoError(t, err)
	assert.Equal(t, f.supplier, *asg.SupplierID)
	assert.Nil(t, asg.DriverID)
	assert.Empty(t, asg.DriverName)
	assert.Empty(t, asg.AssignedPlate)
	assert.Equal(t, 1, f.r.lookups, "no roster lookup for external suppliers")
}

func TestReassignDriverReplacesDetails(t *testing.T) {
	f := newFixture()
	current := model.Assignment{SupplierID: &f.ownFleet, DriverID: &f.driver, DriverName: "Ali", AssignedPlate: "12-ABC"}
	asg, err := assignuc.New().Resolve(context.Background(), f.r, current, assignuc.Request{
		SupplierID: &f.ownFleet, DriverID: &f.otherDriver,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sara", asg.DriverName)
	assert.Equal(t, "34-XYZ", asg.AssignedPlate)
}

func TestUnchangedRequestKeepsCurrent(t *testing.T) {
	f := newFixture()
	current := model.Assignment{SupplierID: &f.ownFleet, DriverID: &f.driver, DriverName: "Old name", AssignedPlate: "old"}
	sid, did := f.ownFleet, f.driver
	asg, err := assignuc.New().Resolve(context.Background(), f.r, current, assignuc.Request{SupplierID: &sid, DriverID: &did})
	require.NoError(t, err)
	assert.Equal(t, current, asg)
	assert.Zero(t, f.r.lookups)
}

func TestNoSupplierMeansUnassigned(t *testing.T) {
	f := newFixture()
	asg, err := assignuc.New().Resolve(context.Background(), f.r, model.Assignment{}, assignuc.Request{})
	require.NoError(t, err)
	assert.False(t, asg.Assigned())
}

func TestResolveErrors(t *testing.T) {
	f := newFixture()
	unknown := uuid.New()
	cases := []struct {
		name     string
		req      assignuc.Request
		sentinel error
	}{
		{"own fleet without driver", assignuc.Request{SupplierID: &f.ownFleet}, model.ErrValidation},
		{"own fleet unknown driver", assignuc.Request{SupplierID: &f.ownFleet, DriverID: &unknown}, model.ErrNotFound},
		{"own fleet admin as driver", assignuc.Request{SupplierID: &f.ownFleet, DriverID: &f.admin}, model.ErrNotFound},
		{"driver for external supplier", assignuc.Request{SupplierID: &f.supplier, DriverID: &f.driver}, model.ErrValidation},
		{"client as supplier", assignuc.Request{SupplierID: &f.client}, model.ErrValidation},
		{"unknown supplier", assignuc.Request{SupplierID: &unknown}, model.ErrNotFound},
		{"driver without supplier", assignuc.Request{DriverID: &f.driver}, model.ErrValidation},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := assignuc.New().Resolve(context.Background(), f.r, model.Assignment{}, c.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, c.sentinel), err.Error())
		})
	}
}
