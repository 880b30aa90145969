// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jobsuc

import "github.com/momeni/dispatch-pool/pkg/core/model"

// Observer is notified after each status transition commits or gets
// rejected. Implementations must be safe for concurrent use and must
// not block.
type Observer interface {
	Transitioned(from, to model.JobStatus, by model.Role)
	Rejected(to model.JobStatus, by model.Role, err error)
}

type nopObserver struct{}

func (nopObserver) Transitioned(model.JobStatus, model.JobStatus, model.Role) {
}

func (nopObserver) Rejected(model.JobStatus, model.Role, error) {
}
