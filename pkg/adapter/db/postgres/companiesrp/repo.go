// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package companiesrp

import (
	"context"

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

func (companies *Repo) Conn(c repo.Conn) repo.CompaniesConnQueryer {
	return connQueryer{Conn: c.(*postgres.Conn)}
}

func (cq connQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	return Get(ctx, cq.Conn, id)
}

func (cq connQueryer) OwnFleet(ctx context.Context) (*model.Company, error) {
	return OwnFleet(ctx, cq.Conn)
}

func (cq connQueryer) List(ctx context.Context, kind *model.CompanyKind) ([]model.Company, error) {
	return List(ctx, cq.Conn, kind)
}

type txQueryer struct {
	*postgres.Tx
}

func (companies *Repo) Tx(tx repo.Tx) repo.CompaniesTxQueryer {
	return txQueryer{Tx: tx.(*postgres.Tx)}
}

func (tq txQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	return Get(ctx, tq.Tx, id)
}

func (tq txQueryer) OwnFleet(ctx context.Context) (*model.Company, error) {
	return OwnFleet(ctx, tq.Tx)
}

func (tq txQueryer) List(ctx context.Context, kind *model.CompanyKind) ([]model.Company, error) {
	return List(ctx, tq.Tx, kind)
}

func (tq txQueryer) Create(ctx context.Context, c *model.Company) error {
	return Create(ctx, tq.Tx, c)
}
