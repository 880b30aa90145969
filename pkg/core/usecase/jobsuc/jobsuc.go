// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package jobsuc contains the jobs UseCase which implements the job
// lifecycle engine. It creates jobs in the pool, assigns them through
// the assignuc resolver, moves them through their statuses on behalf
// of authorized actors, and records every change in the job logs
// within the same transaction which changes the job itself.
package jobsuc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/core/cerr"
	"github.com/momeni/dispatch-pool/pkg/core/log"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/repo"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/assignuc"
)

// UseCase represents the jobs use case. It holds a database connection
// pool and the repositories which are guided with it.
type UseCase struct {
	pool      repo.Pool
	jobs      repo.Jobs
	companies repo.Companies
	users     repo.Users
	resolver  *assignuc.Resolver

	observer Observer
	now      func() time.Time
	maxBulk  int
	defLimit int
	maxLimit int
}

// New instantiates a jobs use case.
func New(
	p repo.Pool,
	j repo.Jobs,
	c repo.Companies,
	u repo.Users,
	r *assignuc.Resolver,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{
		pool: p, jobs: j, companies: c, users: u, resolver: r,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.observer == nil {
		uc.observer = nopObserver{}
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.maxBulk == 0 {
		uc.maxBulk = 500
	}
	if uc.defLimit == 0 {
		uc.defLimit, uc.maxLimit = 100, 500
	}
	return uc, nil
}

// timestamp returns the current time as it will be read back from
// the database.
func (uc *UseCase) timestamp() time.Time {
	return uc.now().UTC().Truncate(time.Microsecond)
}

// roster exposes the companies and users of one transaction to the
// assignment resolver.
type roster struct {
	companies repo.CompaniesTxQueryer
	users     repo.UsersTxQueryer
}

func (r roster) Company(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	return r.companies.Get(ctx, id)
}

func (r roster) User(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.users.Get(ctx, id)
}

func (uc *UseCase) roster(tx repo.Tx) roster {
	return roster{companies: uc.companies.Tx(tx), users: uc.users.Tx(tx)}
}

func (uc *UseCase) inTx(
	ctx context.Context, f func(context.Context, repo.Tx) error,
) error {
	return uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, f)
	})
}

// Create use case records a new job in the pool. SUPER_ADMIN and
// ACCOUNTANT actors may create jobs. When d names a supplier, the job
// is assigned right away and so moves from IN_POOL to ASSIGNED in the
// same transaction.
func (uc *UseCase) Create(
	ctx context.Context, actor model.Actor, d Draft,
) (*model.Job, error) {
	if !actor.Role.Admin() {
		return nil, cerr.Forbidden("only back-office staff may create jobs")
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	var job *model.Job
	err := uc.inTx(ctx, func(ctx context.Context, tx repo.Tx) error {
		rs := uc.roster(tx)
		if err := uc.checkClient(ctx, rs, d.ClientID); err != nil {
			return err
		}
		var asg model.Assignment
		if d.SupplierID != nil {
			var err error
			asg, err = uc.resolver.Resolve(
				ctx, rs, model.Assignment{}, assignuc.Request{
					SupplierID: d.SupplierID,
					DriverID:   d.DriverID,
				},
			)
			if err != nil {
				return err
			}
		}
		now := uc.timestamp()
		j := &model.Job{
			ID:             uuid.New(),
			ClientID:       d.ClientID,
			GuestName:      d.GuestName,
			GuestContact:   d.GuestContact,
			PickupLocation: d.PickupLocation,
			DropLocation:   d.DropLocation,
			Flight:         d.Flight,
			PickupTime:     d.PickupTime.UTC().Truncate(time.Microsecond),
			Adults:         d.Adults,
			Category:       d.Category,
			VehicleModel:   d.VehicleModel,
			Price:          d.Price,
			TaxAmount:      d.TaxAmount,
			TotalAmount:    d.TotalAmount,
			Status:         model.JobStatusInPool,
			EnteredBy:      actor.ID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		q := uc.jobs.Tx(tx)
		if err := q.Create(ctx, j); err != nil {
			return fmt.Errorf("inserting job: %w", err)
		}
		err := uc.appendLog(ctx, q, j.ID, actor, model.LogActionCreated, "Job created")
		if err != nil {
			return err
		}
		if asg.Assigned() {
			j.Assignment = asg
			j.Status = model.JobStatusAssigned
			if err := uc.persistMove(ctx, q, actor, j, model.JobStatusInPool, ""); err != nil {
				return err
			}
		}
		job = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	if job.Status == model.JobStatusAssigned {
		uc.observer.Transitioned(model.JobStatusInPool, job.Status, actor.Role)
	}
	log.Info(ctx, "job created",
		log.UUID("job", job.ID), log.Valuer("actor", actor),
		log.Status("status", job.Status),
	)
	return job, nil
}

func (uc *UseCase) checkClient(ctx context.Context, rs roster, id uuid.UUID) error {
	c, err := rs.Company(ctx, id)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return cerr.Missing("client %s", id)
	case err != nil:
		return fmt.Errorf("finding client: %w", err)
	case c.Kind != model.CompanyKindClient:
		return cerr.Invalid("company %q is not a client", c.Name)
	}
	return nil
}

// Update use case changes the fields of an active job. Only the
// SUPER_ADMIN actor may update jobs. Assignment changes pass through
// the resolver and an IN_POOL job which gains a supplier moves to
// ASSIGNED. Other changes are logged as one UPDATED log row.
func (uc *UseCase) Update(
	ctx context.Context, actor model.Actor, id uuid.UUID, p Patch,
) (*model.Job, error) {
	if actor.Role != model.RoleSuperAdmin {
		return nil, cerr.Forbidden("only super admins may update jobs")
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	var (
		job      *model.Job
		observed model.JobStatus
	)
	err := uc.inTx(ctx, func(ctx context.Context, tx repo.Tx) error {
		q := uc.jobs.Tx(tx)
		j, err := q.Get(ctx, id)
		if err != nil {
			return err
		}
		observed = j.Status
		rs := uc.roster(tx)
		if p.ClientID != nil && *p.ClientID != j.ClientID {
			if err := uc.checkClient(ctx, rs, *p.ClientID); err != nil {
				return err
			}
		}
		changed := p.apply(j)
		if p.Assign != nil {
			if p.Assign.SupplierID == nil && j.Assigned() &&
				observed != model.JobStatusInPool {
				return cerr.Invalid(
					"supplier of a %s job may not be removed", observed,
				)
			}
			asg, err := uc.resolver.Resolve(
				ctx, rs, j.Assignment, assignuc.Request{
					SupplierID: p.Assign.SupplierID,
					DriverID:   p.Assign.DriverID,
				},
			)
			if err != nil {
				return err
			}
			if asg != j.Assignment {
				j.Assignment = asg
				changed = append(changed, "assignment")
			}
		}
		if observed == model.JobStatusInPool && j.Assigned() {
			j.Status = model.JobStatusAssigned
			job = j
			return uc.persistMove(
				ctx, q, actor, j, observed, updatedFields(changed),
			)
		}
		if len(changed) == 0 {
			job = j
			return nil
		}
		j.UpdatedAt = uc.timestamp()
		ok, err := q.Update(ctx, j, observed)
		if err != nil {
			return fmt.Errorf("updating job: %w", err)
		}
		if !ok {
			return cerr.BadRequest(fmt.Errorf(
				"%w: job was changed concurrently while %s",
				model.ErrInvalidTransition, observed,
			))
		}
		job = j
		return uc.appendLog(
			ctx, q, j.ID, actor, model.LogActionUpdated,
			"Updated fields: "+strings.Join(changed, ", "),
		)
	})
	if err != nil {
		return nil, err
	}
	if job.Status != observed {
		uc.observer.Transitioned(observed, job.Status, actor.Role)
	}
	return job, nil
}

// updatedFields describes the changed fields of a job which is moved
// from IN_POOL by its update, so they are kept in the notes of the
// STATUS_CHANGED log. The assignment itself is implied by the move.
func updatedFields(changed []string) string {
	fields := make([]string, 0, len(changed))
	for _, f := range changed {
		if f != "assignment" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return ""
	}
	return "updated fields: " + strings.Join(fields, ", ")
}
