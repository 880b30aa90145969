// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package companiesuc contains the companies UseCase. Companies are
// only managed to the extent which is needed by the dispatch flow:
// clients contribute jobs, suppliers serve them, and exactly one
// OWN_FLEET company represents the operator's drivers.
package companiesuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/core/cerr"
	"github.com/momeni/dispatch-pool/pkg/core/log"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/repo"
)

// UseCase represents the companies use case.
type UseCase struct {
	pool      repo.Pool
	companies repo.Companies
}

// New instantiates a companies use case.
func New(p repo.Pool, c repo.Companies) (*UseCase, error) {
	return &UseCase{pool: p, companies: c}, nil
}

// Create use case records a company. Only SUPER_ADMIN may create
// companies and a second OWN_FLEET company is rejected with an error
// wrapping model.ErrConflict.
func (uc *UseCase) Create(
	ctx context.Context, actor model.Actor, name string, kind model.CompanyKind,
) (*model.Company, error) {
	if actor.Role != model.RoleSuperAdmin {
		return nil, cerr.Forbidden("only super admins may create companies")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, cerr.Invalid("company name is required")
	}
	if err := kind.Validate(); err != nil {
		return nil, cerr.Invalid("unknown company kind")
	}
	c := &model.Company{ID: uuid.New(), Name: name, Kind: kind}
	err := uc.pool.Conn(ctx, func(ctx context.Context, cn repo.Conn) error {
		return cn.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			q := uc.companies.Tx(tx)
			if kind == model.CompanyKindOwnFleet {
				_, err := q.OwnFleet(ctx)
				switch {
				case err == nil:
					return cerr.Duplicate("an own-fleet company already exists")
				case !errors.Is(err, model.ErrNotFound):
					return fmt.Errorf("finding own fleet: %w", err)
				}
			}
			return q.Create(ctx, c)
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "company created",
		log.UUID("company", c.ID), slog.String("kind", kind.String()),
	)
	return c, nil
}

// List use case returns the companies, optionally of one kind.
func (uc *UseCase) List(
	ctx context.Context, kind *model.CompanyKind,
) (cs []model.Company, err error) {
	if kind != nil {
		if err := kind.Validate(); err != nil {
			return nil, cerr.Invalid("unknown company kind")
		}
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		cs, err = uc.companies.Conn(c).List(ctx, kind)
		return err
	})
	return cs, err
}

// OwnFleet use case returns the single OWN_FLEET company.
func (uc *UseCase) OwnFleet(ctx context.Context) (c *model.Company, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, cn repo.Conn) error {
		c, err = uc.companies.Conn(cn).OwnFleet(ctx)
		return err
	})
	return c, err
}
