// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package authuc_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/internal/test/testdb"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/usersrp"
	"github.com/momeni/dispatch-pool/pkg/adapter/hash/scram"
	"github.com/momeni/dispatch-pool/pkg/adapter/token/jwt"
	"github.com/momeni/dispatch-pool/pkg/core/hash"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/session"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/authuc"
	"github.com/stretchr/testify/suite"
)

type sessions map[string]*session.Session

func (ss sessions) Session(_ context.Context, id string) (*session.Session, error) {
	if id == "broken" {
		return nil, errors.New("connection refused")
	}
	s, ok := ss[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, model.ErrNotFound)
	}
	return s, nil
}

// flakyHasher fails to hash the given secret while broken is set.
type flakyHasher struct {
	hash.Hasher
	secret string
	broken bool
}

func (fh *flakyHasher) Hash(secret string) (string, error) {
	if fh.broken && secret == fh.secret {
		return "", errors.New("entropy source unavailable")
	}
	return fh.Hasher.Hash(secret)
}

type AuthUseCaseTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pool *postgres.Pool
	F    *testdb.Fixture
	Now  time.Time
	UC   *authuc.UseCase

	Hasher *flakyHasher

	admin model.Actor
}

func TestAuthUseCaseTestSuite(t *testing.T) {
	suite.Run(t, new(AuthUseCaseTestSuite))
}

func (s *AuthUseCaseTestSuite) SetupTest() {
	s.Ctx = context.Background()
	s.Pool = testdb.New(s.T())
	s.F = testdb.Seed(s.T(), s.Pool)
	s.Now = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return s.Now }
	h, err := scram.NewHasher(scram.SHA256(), scram.WithIters(4096))
	s.Require().NoError(err)
	signer, err := jwt.New(
		"0123456789abcdef0123456789abcdef", jwt.WithClock(clock),
	)
	s.Require().NoError(err)
	ss := sessions{
		"root": {
			ID: "root", Email: "ROOT@example.com",
			ExpiresAt: s.Now.Add(time.Hour),
		},
		"acc": {
			ID: "acc", Email: "acc@example.com",
			ExpiresAt: s.Now.Add(time.Hour),
		},
		"old": {
			ID: "old", Email: "root@example.com",
			ExpiresAt: s.Now.Add(-time.Minute),
		},
		"stranger": {
			ID: "stranger", Email: "who@example.com",
			ExpiresAt: s.Now.Add(time.Hour),
		},
	}
	s.Hasher = &flakyHasher{Hasher: h, secret: "00000000"}
	s.UC, err = authuc.New(
		s.Pool, usersrp.New(), s.Hasher, signer, ss,
		authuc.WithClock(clock),
		authuc.WithTokenTTL(24*time.Hour),
		authuc.WithPinGenerator(func() (string, error) {
			return "777777", nil
		}),
	)
	s.Require().NoError(err)
	s.admin = s.F.SuperAdmin.Actor()
}

// setPin gives the first seeded driver a permanent PIN.
func (s *AuthUseCaseTestSuite) setPin(pin string) {
	_, err := s.UC.ResetPin(s.Ctx, s.admin, s.F.Driver.ID, pin)
	s.Require().NoError(err)
	s.Require().NoError(s.UC.ChangePin(s.Ctx, s.F.Driver.Phone, pin, "2580"))
}

func (s *AuthUseCaseTestSuite) TestVerifyDriverCredentials() {
	s.setPin("1234")
	u, err := s.UC.VerifyDriverCredentials(s.Ctx, "+98 912-000-0001", "2580")
	s.Require().NoError(err)
	s.Require().NotNil(u)
	s.Equal(s.F.Driver.ID, u.ID)

	for _, c := range []struct{ phone, pin string }{
		{s.F.Driver.Phone, "0000"},
		{"+989129999999", "2580"},
		{s.F.Driver2.Phone, "2580"},
		{"", "2580"},
		{s.F.Driver.Phone, ""},
	} {
		u, err := s.UC.VerifyDriverCredentials(s.Ctx, c.phone, c.pin)
		s.NoError(err, c.phone)
		s.Nil(u, c.phone)
	}
}

func (s *AuthUseCaseTestSuite) TestUnequalizedTimingIsLogged() {
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, nil)))
	defer slog.SetDefault(prev)

	s.Hasher.broken = true
	u, err := s.UC.VerifyDriverCredentials(s.Ctx, "+989129999999", "2580")
	s.NoError(err, "unknown phone numbers are not an infrastructure failure")
	s.Nil(u)
	s.Contains(buf.String(), "cannot equalize PIN verification time")
	s.Contains(buf.String(), "entropy source unavailable")

	buf.Reset()
	s.Hasher.broken = false
	u, err = s.UC.VerifyDriverCredentials(s.Ctx, "+989128888888", "2580")
	s.NoError(err)
	s.Nil(u)
	s.Zero(strings.Count(buf.String(), "cannot equalize"), "retried hashing")
}

func (s *AuthUseCaseTestSuite) TestLoginDriver() {
	s.setPin("1234")
	tok, u, err := s.UC.LoginDriver(s.Ctx, s.F.Driver.Phone, "2580")
	s.Require().NoError(err)
	s.Equal(s.F.Driver.ID, u.ID)
	actor, ok := s.UC.VerifyDriverToken(tok)
	s.Require().True(ok)
	s.Equal(model.Actor{ID: s.F.Driver.ID, Role: model.RoleDriver}, actor)

	_, _, err = s.UC.LoginDriver(s.Ctx, s.F.Driver.Phone, "9999")
	s.ErrorIs(err, model.ErrInvalidCredential)
	_, _, unknown := s.UC.LoginDriver(s.Ctx, "+989129999999", "9999")
	s.ErrorIs(unknown, model.ErrInvalidCredential)
	s.Equal(err.Error(), unknown.Error(), "mismatches must look alike")

	s.Now = s.Now.Add(25 * time.Hour)
	_, ok = s.UC.VerifyDriverToken(tok)
	s.False(ok, "expired token")
	_, ok = s.UC.VerifyDriverToken("garbage")
	s.False(ok)
	_, ok = s.UC.VerifyDriverToken("")
	s.False(ok)
}

func (s *AuthUseCaseTestSuite) TestTemporaryPin() {
	pin, err := s.UC.ResetPin(s.Ctx, s.admin, s.F.Driver.ID, "")
	s.Require().NoError(err)
	s.Equal("777777", pin)

	_, _, err = s.UC.LoginDriver(s.Ctx, s.F.Driver.Phone, pin)
	s.ErrorIs(err, model.ErrPinChangeRequired)

	err = s.UC.ChangePin(s.Ctx, s.F.Driver.Phone, pin, pin)
	s.ErrorIs(err, model.ErrValidation, "same PIN")
	err = s.UC.ChangePin(s.Ctx, s.F.Driver.Phone, pin, "12")
	s.ErrorIs(err, model.ErrValidation, "short PIN")
	err = s.UC.ChangePin(s.Ctx, s.F.Driver.Phone, "000000", "4321")
	s.ErrorIs(err, model.ErrInvalidCredential)

	s.Require().NoError(s.UC.ChangePin(s.Ctx, s.F.Driver.Phone, pin, "4321"))
	_, _, err = s.UC.LoginDriver(s.Ctx, s.F.Driver.Phone, pin)
	s.ErrorIs(err, model.ErrInvalidCredential, "old PIN")
	_, _, err = s.UC.LoginDriver(s.Ctx, s.F.Driver.Phone, "4321")
	s.NoError(err)
}

func (s *AuthUseCaseTestSuite) TestResetPinRules() {
	_, err := s.UC.ResetPin(
		s.Ctx, s.F.Accountant.Actor(), s.F.Driver.ID, "1234",
	)
	s.ErrorIs(err, model.ErrForbidden)
	_, err = s.UC.ResetPin(s.Ctx, s.admin, s.F.Accountant.ID, "1234")
	s.ErrorIs(err, model.ErrNotFound, "not a driver")
	_, err = s.UC.ResetPin(s.Ctx, s.admin, uuid.New(), "1234")
	s.ErrorIs(err, model.ErrNotFound)
	_, err = s.UC.ResetPin(s.Ctx, s.admin, s.F.Driver.ID, "12ab")
	s.ErrorIs(err, model.ErrValidation)
}

func (s *AuthUseCaseTestSuite) TestProvisionDriver() {
	u, pin, err := s.UC.ProvisionDriver(s.Ctx, &s.admin, authuc.DriverDraft{
		Name: " Reza ", Phone: "+98 912 000 0003", VehiclePlate: "56-DEF",
	})
	s.Require().NoError(err)
	s.Equal("Reza", u.Name)
	s.Equal("+989120000003", u.Phone)
	s.Equal("777777", pin)
	s.True(u.PinTemporary)

	_, _, err = s.UC.LoginDriver(s.Ctx, u.Phone, pin)
	s.ErrorIs(err, model.ErrPinChangeRequired)

	_, _, err = s.UC.ProvisionDriver(s.Ctx, nil, authuc.DriverDraft{
		Name: "Dup", Phone: s.F.Driver2.Phone,
	})
	s.ErrorIs(err, model.ErrConflict)

	acc := s.F.Accountant.Actor()
	_, _, err = s.UC.ProvisionDriver(s.Ctx, &acc, authuc.DriverDraft{
		Name: "X", Phone: "+989120000004",
	})
	s.ErrorIs(err, model.ErrForbidden)
	_, _, err = s.UC.ProvisionDriver(s.Ctx, nil, authuc.DriverDraft{
		Name: "X", Phone: "12",
	})
	s.ErrorIs(err, model.ErrValidation)
}

func (s *AuthUseCaseTestSuite) TestSeedAdmin() {
	u, err := s.UC.SeedAdmin(
		s.Ctx, "Boss", " Boss@Example.com ", model.RoleSuperAdmin,
	)
	s.Require().NoError(err)
	s.Equal("boss@example.com", u.Email)

	_, err = s.UC.SeedAdmin(s.Ctx, "D", "d@example.com", model.RoleDriver)
	s.ErrorIs(err, model.ErrValidation)
	_, err = s.UC.SeedAdmin(s.Ctx, "B", "boss@example.com", model.RoleAccountant)
	s.ErrorIs(err, model.ErrConflict)
}

func (s *AuthUseCaseTestSuite) TestResolveAdmin() {
	a, err := s.UC.ResolveAdmin(s.Ctx, "root")
	s.Require().NoError(err)
	s.Equal(s.F.SuperAdmin.Actor(), a)
	a, err = s.UC.ResolveAdmin(s.Ctx, "acc")
	s.Require().NoError(err)
	s.Equal(model.RoleAccountant, a.Role)

	for _, id := range []string{"", "missing", "old", "stranger"} {
		_, err := s.UC.ResolveAdmin(s.Ctx, id)
		s.ErrorIs(err, model.ErrInvalidCredential, id)
	}
	_, err = s.UC.ResolveAdmin(s.Ctx, "broken")
	s.Error(err)
	s.NotErrorIs(err, model.ErrInvalidCredential)
}

func (s *AuthUseCaseTestSuite) TestDrivers() {
	ds, err := s.UC.Drivers(s.Ctx, s.F.Accountant.Actor())
	s.Require().NoError(err)
	s.Len(ds, 2)
	for _, d := range ds {
		s.Equal(model.RoleDriver, d.Role)
	}
	_, err = s.UC.Drivers(s.Ctx, s.F.Driver.Actor())
	s.ErrorIs(err, model.ErrForbidden)
}
