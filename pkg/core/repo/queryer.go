// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// Queryer runs raw SQL statements on a connection or transaction.
// Repositories build their row queries with the adapter framework, so
// Exec is only needed for statements without a model, such as the
// partial unique indices of the schema.
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (count int64, err error)
}
