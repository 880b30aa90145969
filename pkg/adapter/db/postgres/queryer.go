// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"

	"github.com/momeni/dispatch-pool/pkg/core/repo"
	"gorm.io/gorm"
)

// Queryer is the type constraint of the generic query functions in
// the repository packages, so one implementation may serve both of
// the connection and transaction queryers.
type Queryer interface {
	*Conn | *Tx
	repo.Queryer

	GORM(ctx context.Context) *gorm.DB
}

// exec runs sql with args on gdb. The $1 numbered placeholders of
// PostgreSQL and the ? placeholders of GORM are both accepted.
func exec(gdb *gorm.DB, sql string, args ...any) (int64, error) {
	r := gdb.Exec(sql, args...)
	if err := r.Error; err != nil {
		return 0, err
	}
	return r.RowsAffected, nil
}
