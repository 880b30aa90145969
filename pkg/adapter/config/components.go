// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/momeni/dispatch-pool/pkg/adapter/config/settings"
	"github.com/momeni/dispatch-pool/pkg/adapter/hash/bcrypt"
	"github.com/momeni/dispatch-pool/pkg/adapter/hash/multi"
	"github.com/momeni/dispatch-pool/pkg/adapter/hash/scram"
	sessredis "github.com/momeni/dispatch-pool/pkg/adapter/session/redis"
	"github.com/momeni/dispatch-pool/pkg/adapter/token/jwt"
	"github.com/momeni/dispatch-pool/pkg/core/hash"
	"github.com/momeni/dispatch-pool/pkg/core/repo"
	"github.com/momeni/dispatch-pool/pkg/core/session"
	"github.com/momeni/dispatch-pool/pkg/core/token"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/assignuc"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/authuc"
	"github.com/momeni/dispatch-pool/pkg/core/usecase/jobsuc"
	"github.com/redis/go-redis/v9"
)

// Gin contains the gin-gonic related configuration settings.
// Fields are defined as pointers, so it is possible to detect if they
// are or are not initialized and fill them by their default values.
type Gin struct {
	Address  string // listening address, like :8080
	Logger   *bool  // Whether to log requests with ginslog
	Recovery *bool  // Whether to recover panics with ginslog
	Metrics  *bool  // Whether to measure requests and serve /metrics
}

func (g *Gin) normalize() {
	if g.Address == "" {
		g.Address = ":8080"
	}
	settings.Default(&g.Logger, true)
	settings.Default(&g.Recovery, true)
	settings.Default(&g.Metrics, true)
}

// Redis contains the admin sessions store settings.
type Redis struct {
	Addr     string
	Password string `yaml:",omitempty"`
	DB       int
	Prefix   string // session keys prefix
}

func (r *Redis) normalize() {
	if r.Addr == "" {
		r.Addr = "localhost:6379"
	}
	if r.Prefix == "" {
		r.Prefix = sessredis.DefaultPrefix
	}
}

// NewSessionStore connects to Redis and returns the session store
// along with the client closer function.
func (r Redis) NewSessionStore() (*sessredis.Store, func() error) {
	client := redis.NewClient(&redis.Options{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
	})
	return sessredis.New(client, r.Prefix), client.Close
}

// Auth contains the driver tokens, PIN hashing, and cookie settings.
type Auth struct {
	// TokenSecret is the HMAC key of the driver tokens. It is usually
	// given by the DRIVER_TOKEN_SECRET environment variable.
	TokenSecret string `yaml:"token-secret,omitempty"`
	// TokenTTL is the lifetime of the driver tokens and cookies.
	TokenTTL *settings.Duration `yaml:"token-ttl"`
	// MinTokenTTL and MaxTokenTTL are the inclusive boundaries of the
	// TokenTTL. A missing value indicates that there is no bound.
	MinTokenTTL *settings.Duration `yaml:"token-ttl-minimum"`
	MaxTokenTTL *settings.Duration `yaml:"token-ttl-maximum"`

	// PinHash is the scheme of the new PIN hashes which may be
	// scram-sha-256 (default), scram-sha-1, or bcrypt. Hashes of all
	// schemes are verified regardless of this setting.
	PinHash    string `yaml:"pin-hash"`
	ScramIters *int   `yaml:"scram-iterations"`
	BcryptCost *int   `yaml:"bcrypt-cost"`

	SessionCookie string `yaml:"session-cookie"`
	DriverCookie  string `yaml:"driver-cookie"`
	SecureCookies *bool  `yaml:"secure-cookies"`
}

// ValidateAndNormalize fills the defaults and checks the ranges.
func (a *Auth) ValidateAndNormalize() error {
	if a.TokenSecret == "" {
		return errors.New("token secret is required")
	}
	if len(a.TokenSecret) < jwt.MinSecretLen {
		return fmt.Errorf(
			"token secret must have at least %d bytes", jwt.MinSecretLen,
		)
	}
	settings.Default(&a.TokenTTL, settings.Duration(30*24*time.Hour))
	err := settings.VerifyRange(a.TokenTTL, a.MinTokenTTL, a.MaxTokenTTL)
	if err != nil {
		return fmt.Errorf("token ttl: %w", err)
	}
	if *a.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	switch a.PinHash {
	case "":
		a.PinHash = "scram-sha-256"
	case "scram-sha-256", "scram-sha-1", "bcrypt":
	default:
		return fmt.Errorf("unsupported PIN hash scheme: %q", a.PinHash)
	}
	settings.Default(&a.ScramIters, scram.DefaultIters)
	settings.Nil2Zero(&a.BcryptCost)
	settings.Default(&a.SecureCookies, true)
	if a.SessionCookie == "" {
		a.SessionCookie = "admin_session"
	}
	if a.DriverCookie == "" {
		a.DriverCookie = "driver_token"
	}
	return nil
}

// NewHasher instantiates the PIN hasher. It hashes with the PinHash
// scheme and verifies the hashes of every supported scheme.
func (a Auth) NewHasher() (hash.Hasher, error) {
	sha256, err := scram.NewHasher(scram.SHA256(), scram.WithIters(*a.ScramIters))
	if err != nil {
		return nil, fmt.Errorf("scram-sha-256 hasher: %w", err)
	}
	sha1, err := scram.NewHasher(scram.SHA1(), scram.WithIters(*a.ScramIters))
	if err != nil {
		return nil, fmt.Errorf("scram-sha-1 hasher: %w", err)
	}
	bc, err := bcrypt.New(*a.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt hasher: %w", err)
	}
	var primary hash.Hasher
	switch a.PinHash {
	case "scram-sha-1":
		primary = sha1
	case "bcrypt":
		primary = bc
	default:
		primary = sha256
	}
	return multi.New(primary).
		Register(sha256, sha256.Prefix()).
		Register(sha1, sha1.Prefix()).
		Register(bc, bcrypt.Prefixes()...), nil
}

// NewSigner instantiates the driver token signer.
func (a Auth) NewSigner() (token.Signer, error) {
	return jwt.New(a.TokenSecret)
}

// NewUseCase instantiates an auth use case based on the settings in
// the a struct.
func (a Auth) NewUseCase(
	p repo.Pool, u repo.Users, sp session.Provider,
) (*authuc.UseCase, error) {
	h, err := a.NewHasher()
	if err != nil {
		return nil, err
	}
	s, err := a.NewSigner()
	if err != nil {
		return nil, err
	}
	return authuc.New(
		p, u, h, s, sp, authuc.WithTokenTTL(time.Duration(*a.TokenTTL)),
	)
}

// Logging contains the slog handler settings.
type Logging struct {
	Format string // text (default) or json
	Level  string // debug, info (default), warn, or error
}

// ValidateAndNormalize fills the defaults and checks the names.
func (l *Logging) ValidateAndNormalize() error {
	l.Format = strings.ToLower(l.Format)
	switch l.Format {
	case "":
		l.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %q", l.Format)
	}
	if l.Level == "" {
		l.Level = "info"
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	return nil
}

// NewLogger instantiates a slog logger which writes to w.
func (l Logging) NewLogger(w io.Writer) *slog.Logger {
	var lvl slog.Level
	_ = lvl.UnmarshalText([]byte(l.Level))
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Usecases contains the configuration settings for all use cases.
type Usecases struct {
	Jobs Jobs // jobs use cases related settings
}

// Jobs contains the configuration settings for the jobs use cases.
// Nil fields take the defaults of the jobsuc package.
type Jobs struct {
	MaxBulkSize     *int `yaml:"max-bulk-size"`
	DefaultPageSize *int `yaml:"default-page-size"`
	MaxPageSize     *int `yaml:"max-page-size"`
}

// ValidateAndNormalize checks that the given sizes are positive.
func (j *Jobs) ValidateAndNormalize() error {
	for name, v := range map[string]*int{
		"max bulk size":     j.MaxBulkSize,
		"default page size": j.DefaultPageSize,
		"max page size":     j.MaxPageSize,
	} {
		if v != nil && *v < 1 {
			return fmt.Errorf("%s (%d) is not positive", name, *v)
		}
	}
	if (j.DefaultPageSize == nil) != (j.MaxPageSize == nil) {
		return errors.New("default and max page sizes must be given together")
	}
	return nil
}

// NewUseCase instantiates a new jobs use case based on the settings
// in the j struct.
func (j Jobs) NewUseCase(
	p repo.Pool,
	jr repo.Jobs,
	cr repo.Companies,
	ur repo.Users,
	o jobsuc.Observer,
) (*jobsuc.UseCase, error) {
	opts := make([]jobsuc.Option, 0, 3)
	if o != nil {
		opts = append(opts, jobsuc.WithObserver(o))
	}
	if j.MaxBulkSize != nil {
		opts = append(opts, jobsuc.WithMaxBulkSize(*j.MaxBulkSize))
	}
	if j.DefaultPageSize != nil {
		opts = append(opts, jobsuc.WithListLimits(
			*j.DefaultPageSize, *j.MaxPageSize,
		))
	}
	return jobsuc.New(p, jr, cr, ur, assignuc.New(), opts...)
}
