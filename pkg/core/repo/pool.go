// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo declares the persistence interfaces which the use cases
// depend on. The adapter layer implements them for a SQL database.
package repo

import "context"

// ConnHandler runs with a connection which is released after return.
type ConnHandler func(context.Context, Conn) error

// Pool hands out connections to the use cases on demand.
type Pool interface {
	Conn(ctx context.Context, handler ConnHandler) error
}
