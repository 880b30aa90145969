// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package testdb is an internal helper for the test packages. It opens
// a *postgres.Pool on a temporary SQLite file (through the same GORM
// repositories which serve PostgreSQL in production), creates the
// tables, and seeds the companies and users which most tests need.
package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/companiesrp"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/usersrp"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

// New returns a pool on a fresh database file which is removed when
// the t test finishes. Write transactions take the database lock when
// they begin, so concurrent writers wait for each other instead of
// failing with a busy error.
func New(t *testing.T) *postgres.Pool {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dispatch.db")
	dsn := "file:" + path + "?_busy_timeout=10000&_txlock=immediate"
	pool, err := postgres.FromDialector(ctx, sqlite.Open(dsn))
	require.NoError(t, err, "opening sqlite database")
	t.Cleanup(func() {
		assert.NoError(t, pool.Close(), "closing sqlite database")
	})
	err = InTx(ctx, pool, func(ctx context.Context, tx repo.Tx) error {
		return schemarp.New().Tx(tx).CreateTables(ctx)
	})
	require.NoError(t, err, "creating tables")
	return pool
}

// InTx runs f in a transaction of pool.
func InTx(ctx context.Context, pool repo.Pool, f repo.TxHandler) error {
	return pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, f)
	})
}

// Fixture holds the seeded records.
type Fixture struct {
	Client      model.Company
	OtherClient model.Company
	Supplier    model.Company
	OwnFleet    model.Company

	SuperAdmin model.User
	Accountant model.User
	Driver     model.User
	Driver2    model.User
}

// Seed inserts a client, a second client, an external supplier, the
// own-fleet company, one admin of each role, and two drivers. The
// drivers have no PIN hash.
func Seed(t *testing.T, pool repo.Pool) *Fixture {
	t.Helper()
	f := &Fixture{
		Client:      company("Grand Hotel", model.CompanyKindClient),
		OtherClient: company("Airport Lounge", model.CompanyKindClient),
		Supplier:    company("City Cabs", model.CompanyKindSupplier),
		OwnFleet:    company("Own Fleet", model.CompanyKindOwnFleet),
		SuperAdmin: model.User{
			ID: uuid.New(), Name: "Root", Email: "root@example.com",
			Role: model.RoleSuperAdmin,
		},
		Accountant: model.User{
			ID: uuid.New(), Name: "Ledger", Email: "acc@example.com",
			Role: model.RoleAccountant,
		},
		Driver: model.User{
			ID: uuid.New(), Name: "Ali", Phone: "+989120000001",
			Role: model.RoleDriver, VehiclePlate: "12-ABC",
		},
		Driver2: model.User{
			ID: uuid.New(), Name: "Sara", Phone: "+989120000002",
			Role: model.RoleDriver, VehiclePlate: "34-XYZ",
		},
	}
	ctx := context.Background()
	err := InTx(ctx, pool, func(ctx context.Context, tx repo.Tx) error {
		cq := companiesrp.New().Tx(tx)
		for _, c := range []*model.Company{
			&f.Client, &f.OtherClient, &f.Supplier, &f.OwnFleet,
		} {
			if err := cq.Create(ctx, c); err != nil {
				return err
			}
		}
		uq := usersrp.New().Tx(tx)
		for _, u := range []*model.User{
			&f.SuperAdmin, &f.Accountant, &f.Driver, &f.Driver2,
		} {
			if err := uq.Create(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err, "seeding database")
	return f
}

func company(name string, kind model.CompanyKind) model.Company {
	return model.Company{ID: uuid.New(), Name: name, Kind: kind}
}
