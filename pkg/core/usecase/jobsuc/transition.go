// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jobsuc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/core/cerr"
	"github.com/momeni/dispatch-pool/pkg/core/log"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/repo"
)

// driverPath lists the only transitions which a driver may request,
// from each status to its successor.
var driverPath = map[model.JobStatus]model.JobStatus{
	model.JobStatusAssigned: model.JobStatusStarted,
	model.JobStatusStarted:  model.JobStatusPicked,
	model.JobStatusPicked:   model.JobStatusCompleted,
}

// permitted decides if role may move a job from the from status to
// the to status, assuming that the lifecycle table allows that move.
func permitted(role model.Role, from, to model.JobStatus) bool {
	switch role {
	case model.RoleSuperAdmin:
		return true
	case model.RoleDriver:
		next, ok := driverPath[from]
		return ok && next == to
	default:
		return false
	}
}

// custody checks if actor may act on j at all.
func custody(actor model.Actor, j *model.Job) error {
	switch actor.Role {
	case model.RoleSuperAdmin:
		return nil
	case model.RoleDriver:
		if !j.InCustodyOf(actor.ID) {
			return cerr.Forbidden("job is not assigned to this driver")
		}
		return nil
	case model.RoleAccountant:
		return cerr.Forbidden("accountants may not change jobs")
	default:
		return cerr.Forbidden("unknown role")
	}
}

// RequestTransition use case moves the jobID job to the target status
// on behalf of actor. The checks are performed in this order: target
// validity, job existence, actor custody, lifecycle table, role path,
// and finally the target specific requirements (a supplier for
// ASSIGNED and a failure reason for FAILED, which defaults to notes).
// The status change and its STATUS_CHANGED log row are committed
// together. A concurrent change of the same job causes an error
// wrapping model.ErrInvalidTransition.
func (uc *UseCase) RequestTransition(
	ctx context.Context,
	actor model.Actor,
	jobID uuid.UUID,
	target model.JobStatus,
	notes, failureReason string,
) (*model.Job, error) {
	if err := target.Validate(); err != nil {
		err = cerr.Invalid("unknown target status")
		uc.observer.Rejected(target, actor.Role, err)
		return nil, err
	}
	var (
		job  *model.Job
		from model.JobStatus
	)
	err := uc.inTx(ctx, func(ctx context.Context, tx repo.Tx) (err error) {
		job, from, err = uc.transition(
			ctx, tx, actor, jobID, target, notes, failureReason,
		)
		return err
	})
	if err != nil {
		uc.observer.Rejected(target, actor.Role, err)
		return nil, err
	}
	uc.observer.Transitioned(from, target, actor.Role)
	log.Info(ctx, "job status changed",
		log.UUID("job", jobID), log.Valuer("actor", actor),
		log.Status("from", from), log.Status("to", target),
	)
	return job, nil
}

func (uc *UseCase) transition(
	ctx context.Context,
	tx repo.Tx,
	actor model.Actor,
	jobID uuid.UUID,
	target model.JobStatus,
	notes, failureReason string,
) (*model.Job, model.JobStatus, error) {
	q := uc.jobs.Tx(tx)
	j, err := q.Get(ctx, jobID)
	if err != nil {
		return nil, 0, err
	}
	from := j.Status
	if err := custody(actor, j); err != nil {
		return nil, from, err
	}
	if !from.CanTransition(target) {
		return nil, from, cerr.Transition(from, target, false)
	}
	if !permitted(actor.Role, from, target) {
		return nil, from, cerr.Forbidden(
			"%s may not move a job from %s to %s",
			actor.Role, from, target,
		)
	}
	j.FailureReason = ""
	switch target {
	case model.JobStatusAssigned:
		if !j.Assigned() {
			return nil, from, cerr.Invalid("job has no supplier")
		}
	case model.JobStatusFailed:
		reason := strings.TrimSpace(failureReason)
		if reason == "" {
			reason = strings.TrimSpace(notes)
		}
		if reason == "" {
			return nil, from, cerr.Invalid("failure reason is required")
		}
		j.FailureReason = reason
	}
	j.Status = target
	if err := uc.persistMove(ctx, q, actor, j, from, notes); err != nil {
		return nil, from, err
	}
	return j, from, nil
}

// persistMove writes j, which already carries its new status, if the
// stored job still has the from status and logs the change.
func (uc *UseCase) persistMove(
	ctx context.Context,
	q repo.JobsTxQueryer,
	actor model.Actor,
	j *model.Job,
	from model.JobStatus,
	notes string,
) error {
	j.UpdatedAt = uc.timestamp()
	ok, err := q.Update(ctx, j, from)
	if err != nil {
		return fmt.Errorf("updating job status: %w", err)
	}
	if !ok {
		log.Warn(ctx, "stale job status",
			log.UUID("job", j.ID), log.Status("observed", from),
		)
		return cerr.Transition(from, j.Status, true)
	}
	return uc.appendLog(
		ctx, q, j.ID, actor, model.LogActionStatusChanged,
		model.StatusChangeNotes(from, j.Status, strings.TrimSpace(notes)),
	)
}

func (uc *UseCase) appendLog(
	ctx context.Context,
	q repo.JobsTxQueryer,
	jobID uuid.UUID,
	actor model.Actor,
	action model.LogAction,
	notes string,
) error {
	l := &model.JobLog{
		ID:        uuid.Must(uuid.NewV7()),
		JobID:     jobID,
		ActorID:   actor.ID,
		Action:    action,
		Notes:     notes,
		CreatedAt: uc.timestamp(),
	}
	if err := q.AppendLog(ctx, l); err != nil {
		return fmt.Errorf("appending %s log: %w", action, err)
	}
	return nil
}

// Skip describes a job which a bulk transition could not move.
type Skip struct {
	JobID uuid.UUID
	Err   error
}

// BulkResult is the outcome of a bulk transition.
type BulkResult struct {
	Updated []model.Job
	Skipped []Skip
}

// BulkTransition use case moves each one of the ids jobs to the target
// status. Only the SUPER_ADMIN actor may use it. Duplicate ids are
// ignored and each job is moved in its own transaction, so a failed
// job is reported in the Skipped list without affecting the others.
func (uc *UseCase) BulkTransition(
	ctx context.Context,
	actor model.Actor,
	ids []uuid.UUID,
	target model.JobStatus,
	notes, failureReason string,
) (*BulkResult, error) {
	if actor.Role != model.RoleSuperAdmin {
		return nil, cerr.Forbidden("only super admins may bulk update jobs")
	}
	if err := target.Validate(); err != nil {
		return nil, cerr.Invalid("unknown target status")
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	uniq := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	switch n := len(uniq); {
	case n == 0:
		return nil, cerr.Invalid("no job is selected")
	case n > uc.maxBulk:
		return nil, cerr.Invalid("at most %d jobs may be selected", uc.maxBulk)
	}
	ctx = log.With(ctx, log.UUID("bulk", uuid.New()))
	res := &BulkResult{}
	for _, id := range uniq {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("bulk transition: %w", err)
		}
		j, err := uc.RequestTransition(
			ctx, actor, id, target, notes, failureReason,
		)
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{JobID: id, Err: err})
			continue
		}
		res.Updated = append(res.Updated, *j)
	}
	log.Info(ctx, "bulk transition finished",
		log.Status("to", target),
		slog.Int("updated", len(res.Updated)),
		slog.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}
