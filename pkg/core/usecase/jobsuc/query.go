// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jobsuc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/core/cerr"
	"github.com/momeni/dispatch-pool/pkg/core/log"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/repo"
)

// Get use case returns an active job. Drivers may only read the jobs
// in their custody.
func (uc *UseCase) Get(
	ctx context.Context, actor model.Actor, id uuid.UUID,
) (job *model.Job, err error) {
	if err = actor.Role.Validate(); err != nil {
		return nil, cerr.Forbidden("unknown role")
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		job, err = uc.jobs.Conn(c).Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if actor.Role == model.RoleDriver && !job.InCustodyOf(actor.ID) {
		return nil, cerr.Forbidden("job is not assigned to this driver")
	}
	return job, nil
}

// List use case returns the active jobs which match f. The driver
// actors only see the jobs in their custody, whatever f says.
func (uc *UseCase) List(
	ctx context.Context, actor model.Actor, f model.JobFilter,
) (jobs []model.Job, err error) {
	switch {
	case actor.Role == model.RoleDriver:
		id := actor.ID
		f.DriverID = &id
	case !actor.Role.Admin():
		return nil, cerr.Forbidden("unknown role")
	}
	if f.Status != nil {
		if err := f.Status.Validate(); err != nil {
			return nil, cerr.Invalid("unknown status filter")
		}
	}
	switch {
	case f.Limit < 0 || f.Offset < 0:
		return nil, cerr.Invalid("limit and offset may not be negative")
	case f.Limit == 0:
		f.Limit = uc.defLimit
	case f.Limit > uc.maxLimit:
		f.Limit = uc.maxLimit
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		jobs, err = uc.jobs.Conn(c).List(ctx, f)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return jobs, nil
}

// Logs use case returns the log rows of a job, including the jobs
// which are soft deleted. Only the back-office staff may read logs.
func (uc *UseCase) Logs(
	ctx context.Context, actor model.Actor, id uuid.UUID,
) (logs []model.JobLog, err error) {
	if !actor.Role.Admin() {
		return nil, cerr.Forbidden("only back-office staff may read logs")
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		logs, err = uc.jobs.Conn(c).Logs(ctx, id)
		return err
	})
	switch {
	case err != nil:
		return nil, fmt.Errorf("listing job logs: %w", err)
	case len(logs) == 0:
		return nil, cerr.Missing("job %s", id)
	}
	return logs, nil
}

// Delete use case soft deletes an active job and logs it.
// Only the SUPER_ADMIN actor may delete jobs.
func (uc *UseCase) Delete(
	ctx context.Context, actor model.Actor, id uuid.UUID,
) error {
	if actor.Role != model.RoleSuperAdmin {
		return cerr.Forbidden("only super admins may delete jobs")
	}
	err := uc.inTx(ctx, func(ctx context.Context, tx repo.Tx) error {
		q := uc.jobs.Tx(tx)
		ok, err := q.SoftDelete(ctx, id, uc.timestamp())
		switch {
		case err != nil:
			return fmt.Errorf("deleting job: %w", err)
		case !ok:
			return cerr.Missing("job %s", id)
		}
		return uc.appendLog(
			ctx, q, id, actor, model.LogActionDeleted, "Job deleted",
		)
	})
	if err != nil {
		return err
	}
	log.Info(ctx, "job deleted",
		log.UUID("job", id), log.Valuer("actor", actor),
	)
	return nil
}
