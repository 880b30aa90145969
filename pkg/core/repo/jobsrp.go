// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/core/model"
)

// JobsConnQueryer lists the read-only jobs operations which may run
// on a plain connection.
type JobsConnQueryer interface {
	JobsQueryer
}

// JobsTxQueryer lists the jobs operations which must run in a
// transaction. Status writes and their log rows are always performed
// through one JobsTxQueryer, so they commit or roll back together.
type JobsTxQueryer interface {
	JobsQueryer

	// Create inserts j (with its ID, timestamps, and status already
	// filled by the caller).
	Create(ctx context.Context, j *model.Job) error

	// Update writes all mutable fields of j, including its status,
	// if and only if the stored job is active, still has the
	// observed status, and has not been written since j was read
	// (its version equals j.Version). It reports if a row was
	// updated and increments j.Version in that case.
	Update(
		ctx context.Context, j *model.Job, observed model.JobStatus,
	) (bool, error)

	// SoftDelete marks an active job as deleted at the given time.
	// It reports if a row was updated.
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// AppendLog inserts a JobLog row. Log rows are never updated.
	AppendLog(ctx context.Context, l *model.JobLog) error
}

// JobsQueryer contains the common read operations.
type JobsQueryer interface {
	// Get returns an active job or an error wrapping
	// model.ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*model.Job, error)

	// List returns active jobs matching f, ordered by pickup time.
	List(ctx context.Context, f model.JobFilter) ([]model.Job, error)

	// Logs returns all log rows of a job (deleted or not), oldest
	// first.
	Logs(ctx context.Context, jobID uuid.UUID) ([]model.JobLog, error)
}

// Jobs is the repository of jobs and their logs.
type Jobs interface {
	Conn(Conn) JobsConnQueryer
	Tx(Tx) JobsTxQueryer
}
