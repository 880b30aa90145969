// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package usersrp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres"
	"github.com/momeni/dispatch-pool/pkg/core/cerr"
	"github.com/momeni/dispatch-pool/pkg/core/model"
)

type gUser struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid"`
	Name         string    `gorm:"not null"`
	Email        *string   `gorm:"uniqueIndex"`
	Phone        *string   `gorm:"uniqueIndex"`
	Role         string    `gorm:"type:varchar(16);not null"`
	VehiclePlate string
	PinHash      string
	PinTemporary bool `gorm:"not null"`
}

func (gu *gUser) TableName() string {
	return "users"
}

func (gu *gUser) Model() (*model.User, error) {
	r, err := model.ParseRole(gu.Role)
	if err != nil {
		return nil, fmt.Errorf("user %s has role %q: %w", gu.ID, gu.Role, err)
	}
	u := &model.User{
		ID:           gu.ID,
		Name:         gu.Name,
		Role:         r,
		VehiclePlate: gu.VehiclePlate,
		PinHash:      gu.PinHash,
		PinTemporary: gu.PinTemporary,
	}
	if gu.Email != nil {
		u.Email = *gu.Email
	}
	if gu.Phone != nil {
		u.Phone = *gu.Phone
	}
	return u, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Tables returns the GORM models of this repository.
func Tables() []any {
	return []any{&gUser{}}
}

func take[Q postgres.Queryer](ctx context.Context, q Q, what string, query string, args ...any) (*model.User, error) {
	gu := &gUser{}
	err := q.GORM(ctx).Where(query, args...).Take(gu).Error
	switch {
	case postgres.IsNotFound(err):
		return nil, cerr.Missing("user with %s", what)
	case err != nil:
		return nil, fmt.Errorf("query: %w", err)
	}
	return gu.Model()
}

func Get[Q postgres.Queryer](ctx context.Context, q Q, id uuid.UUID) (*model.User, error) {
	return take(ctx, q, "id "+id.String(), "id = ?", id)
}

func ByPhone[Q postgres.Queryer](ctx context.Context, q Q, phone string) (*model.User, error) {
	return take(ctx, q, "the given phone", "phone = ?", phone)
}

func ByEmail[Q postgres.Queryer](ctx context.Context, q Q, email string) (*model.User, error) {
	return take(ctx, q, "the given email", "email = ?", email)
}

func List[Q postgres.Queryer](ctx context.Context, q Q, role model.Role) ([]model.User, error) {
	var gus []gUser
	err := q.GORM(ctx).Where("role = ?", role.String()).Order("name, id").Find(&gus).Error
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	us := make([]model.User, 0, len(gus))
	for i := range gus {
		u, err := gus[i].Model()
		if err != nil {
			return nil, err
		}
		us = append(us, *u)
	}
	return us, nil
}

func Create[Q postgres.Queryer](ctx context.Context, q Q, u *model.User) error {
	gu := &gUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        nullable(u.Email),
		Phone:        nullable(u.Phone),
		Role:         u.Role.String(),
		VehiclePlate: u.VehiclePlate,
		PinHash:      u.PinHash,
		PinTemporary: u.PinTemporary,
	}
	err := q.GORM(ctx).Create(gu).Error
	switch {
	case postgres.IsUniqueViolation(err):
		return cerr.Duplicate("phone or email is already registered")
	case err != nil:
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

func SetPin[Q postgres.Queryer](ctx context.Context, q Q, id uuid.UUID, hash string, temporary bool) error {
	res := q.GORM(ctx).Model(&gUser{}).Where("id = ?", id).Updates(map[string]any{
		"pin_hash":      hash,
		"pin_temporary": temporary,
	})
	switch {
	case res.Error != nil:
		return fmt.Errorf("update: %w", res.Error)
	case res.RowsAffected != 1:
		return cerr.Missing("user with id %s", id)
	}
	return nil
}
