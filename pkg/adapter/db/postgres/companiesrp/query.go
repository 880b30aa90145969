// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package companiesrp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres"
	"github.com/momeni/dispatch-pool/pkg/core/cerr"
	"github.com/momeni/dispatch-pool/pkg/core/model"
)

type gCompany struct {
	ID   uuid.UUID `gorm:"primaryKey;type:uuid"`
	Name string    `gorm:"not null"`
	Kind string    `gorm:"type:varchar(16);not null"`
}

func (gc *gCompany) TableName() string {
	return "companies"
}

func (gc *gCompany) Model() (*model.Company, error) {
	k, err := model.ParseCompanyKind(gc.Kind)
	if err != nil {
		return nil, fmt.Errorf("company %s has kind %q: %w", gc.ID, gc.Kind, err)
	}
	return &model.Company{ID: gc.ID, Name: gc.Name, Kind: k}, nil
}

// Tables returns the GORM models of this repository.
func Tables() []any {
	return []any{&gCompany{}}
}

// Indices returns the statements which create the indices that GORM
// tags may not express. At most one OWN_FLEET company may exist.
func Indices() []string {
	return []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS companies_single_own_fleet" +
			" ON companies (kind) WHERE kind = 'OWN_FLEET'",
	}
}

func Get[Q postgres.Queryer](ctx context.Context, q Q, id uuid.UUID) (*model.Company, error) {
	gc := &gCompany{}
	err := q.GORM(ctx).Where("id = ?", id).Take(gc).Error
	switch {
	case postgres.IsNotFound(err):
		return nil, cerr.Missing("company %s", id)
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	return gc.Model()
}

func OwnFleet[Q postgres.Queryer](ctx context.Context, q Q) (*model.Company, error) {
	gc := &gCompany{}
	err := q.GORM(ctx).Where(
		"kind = ?", model.CompanyKindOwnFleet.String(),
	).Take(gc).Error
	switch {
	case postgres.IsNotFound(err):
		return nil, cerr.Missing("own-fleet company")
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	return gc.Model()
}

func List[Q postgres.Queryer](ctx context.Context, q Q, kind *model.CompanyKind) ([]model.Company, error) {
	gdb := q.GORM(ctx)
	if kind != nil {
		gdb = gdb.Where("kind = ?", kind.String())
	}
	var gcs []gCompany
	if err := gdb.Order("name, id").Find(&gcs).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	cs := make([]model.Company, 0, len(gcs))
	for i := range gcs {
		c, err := gcs[i].Model()
		if err != nil {
			return nil, err
		}
		cs = append(cs, *c)
	}
	return cs, nil
}

func Create(ctx context.Context, tx *postgres.Tx, c *model.Company) error {
	gc := &gCompany{ID: c.ID, Name: c.Name, Kind: c.Kind.String()}
	err := tx.GORM(ctx).Create(gc).Error
	switch {
	case postgres.IsUniqueViolation(err):
		return cerr.Duplicate("an own-fleet company already exists")
	case err != nil:
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}
