// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/core/model"
)

type UsersConnQueryer interface {
	UsersQueryer
}

type UsersTxQueryer interface {
	UsersQueryer
}

// UsersQueryer contains the users operations. Lookups return an error
// wrapping model.ErrNotFound for missing users and Create reports a
// duplicate phone or email as model.ErrConflict.
type UsersQueryer interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	ByPhone(ctx context.Context, phone string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, role model.Role) ([]model.User, error)
	Create(ctx context.Context, u *model.User) error
	SetPin(ctx context.Context, id uuid.UUID, hash string, temporary bool) error
}

type Users interface {
	Conn(Conn) UsersConnQueryer
	Tx(Tx) UsersTxQueryer
}
