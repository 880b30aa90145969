// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// instantiation and registration of all repo, use case, and resource
// packages based on the user provided configuration settings.
package routes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/dispatch-pool/pkg/adapter/config"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/companiesrp"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/jobsrp"
	"github.com/momeni/dispatch-pool/pkg/adapter/db/postgres/usersrp"
	"github.com/momeni/dispatch-pool/pkg/adapter/metrics/prom"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/actormw"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/authrs"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/companiesrs"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/jobsrs"
	"github.com/momeni/dispatch-pool/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/dispatch-pool/pkg/core/repo"
	"github.com/momeni/dispatch-pool/pkg/core/session"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/authuc"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/companiesuc"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/jobsuc"
)

// BasePath is the prefix of all REST APIs.
const BasePath = "/api/dispatch/v1"

// UseCases holds the use case instances which are served by Mount.
type UseCases struct {
	Jobs      *jobsuc.UseCase
	Companies *companiesuc.UseCase
	Auth      *authuc.UseCase
	Metrics   *prom.Metrics // optional
}

// Cookies names the cookies which carry the admin session id and the
// driver token.
type Cookies struct {
	Session string
	Driver  authrs.Cookie
}

// Register instantiates relevant repositories and use cases based on
// the c configuration settings. The p connections pool is passed to
// the use case instances, so they may acquire/release connections
// and transactions on demand. These connections/transactions will be
// passed to the repositories later in order to run relevant queries on
// them and accomplish those use cases. Each use case package is named
// like jobsuc and each repository package is named like jobsrp.
// The sp session provider resolves the back-office sessions and m
// (which may be nil) collects the metrics. Register then mounts the
// "resource" structs, from packages which are named like jobsrs, on
// the e gin-gonic engine instance using Mount.
func Register(
	_ context.Context,
	e *gin.Engine,
	p repo.Pool,
	c *config.Config,
	sp session.Provider,
	m *prom.Metrics,
) error {
	jobsRepo := jobsrp.New()
	companiesRepo := companiesrp.New()
	usersRepo := usersrp.New()

	var observer jobsuc.Observer
	if m != nil {
		observer = m
	}
	jobsUseCase, err := c.Usecases.Jobs.NewUseCase(
		p, jobsRepo, companiesRepo, usersRepo, observer,
	)
	if err != nil {
		return fmt.Errorf("creating jobs use case: %w", err)
	}
	companiesUseCase, err := companiesuc.New(p, companiesRepo)
	if err != nil {
		return fmt.Errorf("creating companies use case: %w", err)
	}
	authUseCase, err := c.Auth.NewUseCase(p, usersRepo, sp)
	if err != nil {
		return fmt.Errorf("creating auth use case: %w", err)
	}
	return Mount(e, UseCases{
		Jobs:      jobsUseCase,
		Companies: companiesUseCase,
		Auth:      authUseCase,
		Metrics:   m,
	}, Cookies{
		Session: c.Auth.SessionCookie,
		Driver: authrs.Cookie{
			Name:   c.Auth.DriverCookie,
			Secure: *c.Auth.SecureCookies,
		},
	})
}

// Mount registers the resources of uc use cases on e. The admin
// namespace is authenticated by sessions and the driver namespace
// by tokens (except its login and PIN APIs).
func Mount(e *gin.Engine, uc UseCases, cookies Cookies) error {
	if err := serdser.RegisterValidators(); err != nil {
		return fmt.Errorf("registering validators: %w", err)
	}
	e.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if uc.Metrics != nil {
		e.GET("/metrics", gin.WrapH(uc.Metrics.Handler()))
	}
	base := e.Group(BasePath)

	admin := base.Group("admin", actormw.Admin(uc.Auth, cookies.Session))
	jobsrs.RegisterAdmin(admin, uc.Jobs)
	companiesrs.Register(admin, uc.Companies)
	authrs.RegisterAdmin(admin, uc.Auth)

	driver := base.Group("driver")
	authrs.RegisterDriver(driver, uc.Auth, cookies.Driver)
	authed := driver.Group("", actormw.Driver(uc.Auth, cookies.Driver.Name))
	jobsrs.RegisterDriver(authed, uc.Jobs)
	return nil
}
