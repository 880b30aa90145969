// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Tx represents a database transaction which is unsafe to be used
// concurrently. A READ-COMMITTED isolation is expected, so two jobs
// transactions may read the same status. Status changes must be
// written with a guarded update (matching the observed status) and
// a zero affected rows count reports the lost race.
type Tx interface {
	Queryer

	// IsTx prevents a Conn from implementing the Tx interface.
	IsTx()
}
