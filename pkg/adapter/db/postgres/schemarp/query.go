// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemarp

import (
	"context"
	"fmt"

	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/companiesrp"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/jobsrp"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/usersrp"
)

// CreateTables creates the missing tables, columns, and indices.
// Existing tables are altered by GORM auto-migration in a backward
// compatible way, so calling it on an initialized database is safe.
func CreateTables[Q postgres.Queryer](ctx context.Context, q Q) error {
	var tables []any
	tables = append(tables, companiesrp.Tables()...)
	tables = append(tables, usersrp.Tables()...)
	tables = append(tables, jobsrp.Tables()...)
	gdb := q.GORM(ctx)
	if err := gdb.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	for _, stmt := range companiesrp.Indices() {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}
