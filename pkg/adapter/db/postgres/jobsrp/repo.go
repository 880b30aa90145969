// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jobsrp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/repo"
)

type Repo struct {
}

func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

func (jobs *Repo) Conn(c repo.Conn) repo.JobsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	return Get(ctx, cq.Conn, id)
}

func (cq connQueryer) List(ctx context.Context, f model.JobFilter) ([]model.Job, error) {
	return List(ctx, cq.Conn, f)
}

func (cq connQueryer) Logs(ctx context.Context, jobID uuid.UUID) ([]model.JobLog, error) {
	return Logs(ctx, cq.Conn, jobID)
}

type txQueryer struct {
	*postgres.Tx
}

func (jobs *Repo) Tx(tx repo.Tx) repo.JobsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	return Get(ctx, tq.Tx, id)
}

func (tq txQueryer) List(ctx context.Context, f model.JobFilter) ([]model.Job, error) {
	return List(ctx, tq.Tx, f)
}

func (tq txQueryer) Logs(ctx context.Context, jobID uuid.UUID) ([]model.JobLog, error) {
	return Logs(ctx, tq.Tx, jobID)
}

func (tq txQueryer) Create(ctx context.Context, j *model.Job) error {
	return Create(ctx, tq.Tx, j)
}

func (tq txQueryer) Update(ctx context.Context, j *model.Job, observed model.JobStatus) (bool, error) {
	return Update(ctx, tq.Tx, j, observed)
}

func (tq txQueryer) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	return SoftDelete(ctx, tq.Tx, id, at)
}

func (tq txQueryer) AppendLog(ctx context.Context, l *model.JobLog) error {
	return AppendLog(ctx, tq.Tx, l)
}
