// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// TxHandler runs in a transaction. Returning an error (or panicking)
// rolls back the transaction, otherwise it is committed.
type TxHandler func(context.Context, Tx) error

// Conn is a database connection. Reads which need no atomicity run on
// the connection itself, while every write of a job and its log entry
// runs in one transaction begun by the Tx method.
type Conn interface {
	Queryer
	Tx(ctx context.Context, handler TxHandler) error

	// IsConn prevents a Tx from implementing the Conn interface.
	IsConn()
}
