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

type CompaniesConnQueryer interface {
	CompaniesQueryer
}

type CompaniesTxQueryer interface {
	CompaniesQueryer

	// Create inserts c. A second OWN_FLEET company is reported as an
	// error wrapping model.ErrConflict.
	Create(ctx context.Context, c *model.Company) error
}

type CompaniesQueryer interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Company, error)
	OwnFleet(ctx context.Context) (*model.Company, error)
	List(ctx context.Context, kind *model.CompanyKind) ([]model.Company, error)
}

type Companies interface {
	Conn(Conn) CompaniesConnQueryer
	Tx(Tx) CompaniesTxQueryer
}
