// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres adapts GORM to the repo.Pool, repo.Conn, and
// repo.Tx interfaces. Repositories in the sub-packages unwrap them and
// use the embedded *gorm.DB for querying. The PostgreSQL dialector is
// used in production while any other GORM dialector (e.g., SQLite in
// tests) may be wrapped with FromDialector.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/momeni/dispatch-pool/pkg/core/repo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Pool struct {
	*gorm.DB
}

// NewPool connects to the PostgreSQL database which is identified by
// the url connection string and checks the connection.
func NewPool(ctx context.Context, url string) (*Pool, error) {
	return FromDialector(ctx, postgres.Open(url))
}

// FromDialector opens a pool using the d GORM dialector. Driver errors
// are translated to GORM errors, so duplicate keys may be detected
// uniformly with IsUniqueViolation. Slow and failed statements are
// logged through the default slog logger.
func FromDialector(ctx context.Context, d gorm.Dialector) (*Pool, error) {
	gdb, err := gorm.Open(d, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open: %w", err)
	}
	gdb = gdb.Session(&gorm.Session{
		Logger: logger.New(
			slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
				// Set to false in order to log with replaced vars
				ParameterizedQueries: true,
			}),
	})
	pool := &Pool{DB: gdb}
	err = pool.Conn(ctx, NoOpConnHandler)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("testing connection: %w", err)
	}
	return pool, nil
}

type ConnHandler = repo.ConnHandler

func NoOpConnHandler(context.Context, repo.Conn) error {
	return nil
}

func (p *Pool) Conn(ctx context.Context, f ConnHandler) error {
	return p.DB.WithContext(ctx).Connection(func(c *gorm.DB) error {
		cc := &Conn{DB: c}
		return f(ctx, cc)
	})
}

func (p *Pool) Close() error {
	db, err := p.DB.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
