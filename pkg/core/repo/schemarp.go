// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// Schema repository creates the tables, indices, and constraints which
// are required by other repositories. Its operations are idempotent.
type Schema interface {
	Conn(Conn) SchemaConnQueryer
	Tx(Tx) SchemaTxQueryer
}

// SchemaConnQueryer lists the schema operations which may run on a
// plain connection.
type SchemaConnQueryer interface {
	SchemaQueryer
}

// SchemaTxQueryer lists the schema operations which may run in a
// transaction, so the whole schema appears at once or not at all.
type SchemaTxQueryer interface {
	SchemaQueryer
}

// SchemaQueryer contains the common schema operations.
type SchemaQueryer interface {
	// CreateTables creates the missing tables and indices.
	CreateTables(ctx context.Context) error
}
