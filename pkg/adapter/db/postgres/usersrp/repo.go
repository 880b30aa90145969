// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package usersrp

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

func (users *Repo) Conn(c repo.Conn) repo.UsersConnQueryer {
	return connQueryer{Conn: c.(*postgres.Conn)}
}

func (cq connQueryer) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return Get(ctx, cq.Conn, id)
}

func (cq connQueryer) ByPhone(ctx context.Context, phone string) (*model.User, error) {
	return ByPhone(ctx, cq.Conn, phone)
}

func (cq connQueryer) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return ByEmail(ctx, cq.Conn, email)
}

func (cq connQueryer) List(ctx context.Context, role model.Role) ([]model.User, error) {
	return List(ctx, cq.Conn, role)
}

func (cq connQueryer) Create(ctx context.Context, u *model.User) error {
	return Create(ctx, cq.Conn, u)
}

func (cq connQueryer) SetPin(ctx context.Context, id uuid.UUID, hash string, temporary bool) error {
	return SetPin(ctx, cq.Conn, id, hash, temporary)
}

type txQueryer struct {
	*postgres.Tx
}

func (users *Repo) Tx(tx repo.Tx) repo.UsersTxQueryer {
	return txQueryer{Tx: tx.(*postgres.Tx)}
}

func (tq txQueryer) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return Get(ctx, tq.Tx, id)
}

func (tq txQueryer) ByPhone(ctx context.Context, phone string) (*model.User, error) {
	return ByPhone(ctx, tq.Tx, phone)
}

func (tq txQueryer) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return ByEmail(ctx, tq.Tx, email)
}

func (tq txQueryer) List(ctx context.Context, role model.Role) ([]model.User, error) {
	return List(ctx, tq.Tx, role)
}

func (tq txQueryer) Create(ctx context.Context, u *model.User) error {
	return Create(ctx, tq.Tx, u)
}

func (tq txQueryer) SetPin(ctx context.Context, id uuid.UUID, hash string, temporary bool) error {
	return SetPin(ctx, tq.Tx, id, hash, temporary)
}
