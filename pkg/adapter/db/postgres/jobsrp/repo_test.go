// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jobsrp_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/internal/test/dbcontainer"
	"github.com/momeni/dispatch-pool/internal/test/testdb"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/companiesrp"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/jobsrp"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/repo"
	"github.com/stretchr/testify/suite"
)

// IntegrationJobsRepoTestSuite runs the repositories against a real
// PostgreSQL server, so the guarded updates and the partial unique
// index are checked with the production dialect.
type IntegrationJobsRepoTestSuite struct {
	suite.Suite

	Ctx  context.Context
	Pool *postgres.Pool
	F    *testdb.Fixture
}

func TestIntegrationJobsRepoTestSuite(t *testing.T) {
	if os.Getenv("DOCKER_HOST") == "" {
		t.Skip("DOCKER_HOST is not set, skipping PostgreSQL tests")
	}
	ctx := context.Background()
	_, pool, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	suite.Run(t, &IntegrationJobsRepoTestSuite{Ctx: ctx, Pool: pool})
}

func (s *IntegrationJobsRepoTestSuite) SetupSuite() {
	s.F = testdb.Seed(s.T(), s.Pool)
}

func (s *IntegrationJobsRepoTestSuite) inTx(f repo.TxHandler) error {
	return testdb.InTx(s.Ctx, s.Pool, f)
}

func (s *IntegrationJobsRepoTestSuite) newJob() *model.Job {
	now := time.Now().UTC().Truncate(time.Microsecond)
	j := &model.Job{
		ID:             uuid.New(),
		ClientID:       s.F.Client.ID,
		GuestName:      "John Doe",
		PickupLocation: "Airport T1",
		DropLocation:   "Grand Hotel",
		PickupTime:     now.Add(time.Hour),
		Adults:         1,
		Status:         model.JobStatusInPool,
		EnteredBy:      s.F.SuperAdmin.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.Require().NoError(s.inTx(func(ctx context.Context, tx repo.Tx) error {
		return jobsrp.New().Tx(tx).Create(ctx, j)
	}))
	return j
}

func (s *IntegrationJobsRepoTestSuite) TestGuardedUpdate() {
	j := s.newJob()
	j.Status = model.JobStatusCancelled
	var first, second bool
	s.Require().NoError(s.inTx(func(ctx context.Context, tx repo.Tx) error {
		var err error
		first, err = jobsrp.New().Tx(tx).Update(ctx, j, model.JobStatusInPool)
		return err
	}))
	s.True(first)

	j.Status = model.JobStatusFailed
	s.Require().NoError(s.inTx(func(ctx context.Context, tx repo.Tx) error {
		var err error
		second, err = jobsrp.New().Tx(tx).Update(ctx, j, model.JobStatusInPool)
		return err
	}))
	s.False(second, "stale observed status must not match")

	var got *model.Job
	s.Require().NoError(s.Pool.Conn(s.Ctx,
		func(ctx context.Context, c repo.Conn) error {
			var err error
			got, err = jobsrp.New().Conn(c).Get(ctx, j.ID)
			return err
		},
	))
	s.Equal(model.JobStatusCancelled, got.Status)
}

func (s *IntegrationJobsRepoTestSuite) TestStaleVersionUpdate() {
	j := s.newJob()
	stale := *j
	j.GuestName = "Mrs. Smith"
	var first, second bool
	s.Require().NoError(s.inTx(func(ctx context.Context, tx repo.Tx) error {
		var err error
		first, err = jobsrp.New().Tx(tx).Update(ctx, j, model.JobStatusInPool)
		return err
	}))
	s.Require().True(first)
	s.Equal(stale.Version+1, j.Version)

	stale.Status = model.JobStatusCancelled
	s.Require().NoError(s.inTx(func(ctx context.Context, tx repo.Tx) error {
		var err error
		second, err = jobsrp.New().Tx(tx).Update(ctx, &stale, model.JobStatusInPool)
		return err
	}))
	s.False(second, "a copy read before the last write must not match")

	var got *model.Job
	s.Require().NoError(s.Pool.Conn(s.Ctx,
		func(ctx context.Context, c repo.Conn) error {
			var err error
			got, err = jobsrp.New().Conn(c).Get(ctx, j.ID)
			return err
		},
	))
	s.Equal(model.JobStatusInPool, got.Status)
	s.Equal("Mrs. Smith", got.GuestName)
	s.Equal(j.Version, got.Version)
}

func (s *IntegrationJobsRepoTestSuite) TestSoftDeleteKeepsLogs() {
	j := s.newJob()
	s.Require().NoError(s.inTx(func(ctx context.Context, tx repo.Tx) error {
		q := jobsrp.New().Tx(tx)
		if err := q.AppendLog(ctx, &model.JobLog{
			ID: uuid.Must(uuid.NewV7()), JobID: j.ID,
			ActorID: s.F.SuperAdmin.ID, Action: model.LogActionCreated,
			Notes: "Job created", CreatedAt: j.CreatedAt,
		}); err != nil {
			return err
		}
		ok, err := q.SoftDelete(ctx, j.ID, time.Now())
		s.True(ok)
		return err
	}))
	err := s.Pool.Conn(s.Ctx, func(ctx context.Context, c repo.Conn) error {
		q := jobsrp.New().Conn(c)
		_, err := q.Get(ctx, j.ID)
		s.ErrorIs(err, model.ErrNotFound)
		logs, err := q.Logs(ctx, j.ID)
		s.Len(logs, 1)
		return err
	})
	s.NoError(err)
}

func (s *IntegrationJobsRepoTestSuite) TestSingleOwnFleetIndex() {
	err := s.inTx(func(ctx context.Context, tx repo.Tx) error {
		return companiesrp.New().Tx(tx).Create(ctx, &model.Company{
			ID: uuid.New(), Name: "Second Fleet",
			Kind: model.CompanyKindOwnFleet,
		})
	})
	s.ErrorIs(err, model.ErrConflict)
}
