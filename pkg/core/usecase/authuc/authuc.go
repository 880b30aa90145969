// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package authuc contains the auth UseCase which verifies the two
// kinds of credentials of this service. Back-office staff present an
// externally issued session which is resolved to a local admin user
// by its email. Drivers log in with their phone number and PIN and
// receive a signed bearer token. PIN changes and resets are also
// managed here.
package authuc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/dispatch-pool/pkg/core/cerr"
	"github.com/momeni/dispatch-pool/pkg/core/hash"
	"github.com/momeni/dispatch-pool/pkg/core/log"
	"github.com/momeni/dispatch-pool/pkg/core/model"
	"github.com/momeni/dispatch-pool/pkg/core/repo"
	"github.com/momeni/dispatch-pool/pkg/core/session"
	"github.com/momeni/dispatch-pool/pkg/core/token"
)

// UseCase represents the auth use case.
type UseCase struct {
	pool     repo.Pool
	users    repo.Users
	hasher   hash.Hasher
	signer   token.Signer
	sessions session.Provider

	tokenTTL time.Duration
	now      func() time.Time
	genPin   func() (string, error)

	dummyMu   sync.Mutex
	dummyHash string
}

// New instantiates an auth use case.
func New(
	p repo.Pool,
	u repo.Users,
	h hash.Hasher,
	s token.Signer,
	sp session.Provider,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{
		pool: p, users: u, hasher: h, signer: s, sessions: sp,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.tokenTTL == 0 {
		uc.tokenTTL = 720 * time.Hour
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.genPin == nil {
		uc.genPin = randomPin
	}
	return uc, nil
}

// TokenTTL returns the lifetime of the issued driver tokens.
func (uc *UseCase) TokenTTL() time.Duration {
	return uc.tokenTTL
}

func invalidCredentials() error {
	return cerr.Authentication(fmt.Errorf(
		"%w: phone number or PIN is wrong", model.ErrInvalidCredential,
	))
}

// burn spends about as much time as a real PIN verification, so the
// unknown phone numbers may not be told apart by the response time.
// A failure is logged and leaves the timing unequalized, but it does
// not fail the login attempt which is rejected anyway.
func (uc *UseCase) burn(ctx context.Context, pin string) {
	h, err := uc.dummy()
	if err == nil {
		_, err = uc.hasher.Verify(pin, h)
	}
	if err != nil {
		log.Warn(ctx, "cannot equalize PIN verification time",
			log.Err("err", err),
		)
	}
}

// dummy returns a hash which burn verifies against. It is computed
// lazily and retried on the next call if hashing fails.
func (uc *UseCase) dummy() (string, error) {
	uc.dummyMu.Lock()
	defer uc.dummyMu.Unlock()
	if uc.dummyHash == "" {
		h, err := uc.hasher.Hash("00000000")
		if err != nil {
			return "", fmt.Errorf("hashing dummy PIN: %w", err)
		}
		uc.dummyHash = h
	}
	return uc.dummyHash, nil
}

// VerifyDriverCredentials returns the driver user which is identified
// by phone if pin matches its stored PIN hash. A nil user and a nil
// error are returned for an unknown phone number, a non-driver user,
// a user without PIN, or a wrong PIN. Errors are only returned for
// infrastructure failures.
func (uc *UseCase) VerifyDriverCredentials(
	ctx context.Context, phone, pin string,
) (u *model.User, err error) {
	phone = NormalizePhone(phone)
	if phone == "" || pin == "" {
		return nil, nil
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		u, err = uc.users.Conn(c).ByPhone(ctx, phone)
		return err
	})
	switch {
	case errors.Is(err, model.ErrNotFound):
		uc.burn(ctx, pin)
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("finding user by phone: %w", err)
	case u.Role != model.RoleDriver || u.PinHash == "":
		uc.burn(ctx, pin)
		return nil, nil
	}
	ok, err := uc.hasher.Verify(pin, u.PinHash)
	if err != nil {
		log.Warn(ctx, "unverifiable PIN hash",
			log.UUID("user", u.ID), log.Err("err", err),
		)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	return u, nil
}

// LoginDriver verifies the phone and pin credentials and issues a
// driver token. Every mismatch is reported by the same error which
// wraps model.ErrInvalidCredential. A correct but temporary PIN is
// reported by an error wrapping model.ErrPinChangeRequired, so the
// driver has to replace it using ChangePin before logging in.
func (uc *UseCase) LoginDriver(
	ctx context.Context, phone, pin string,
) (string, *model.User, error) {
	u, err := uc.VerifyDriverCredentials(ctx, phone, pin)
	switch {
	case err != nil:
		return "", nil, err
	case u == nil:
		log.Info(ctx, "driver login failed")
		return "", nil, invalidCredentials()
	case u.PinTemporary:
		return "", nil, cerr.PreconditionRequired(fmt.Errorf(
			"%w: temporary PIN must be replaced",
			model.ErrPinChangeRequired,
		))
	}
	tok, err := uc.IssueDriverToken(u.ID, u.Phone)
	if err != nil {
		return "", nil, err
	}
	log.Info(ctx, "driver logged in", log.UUID("user", u.ID))
	return tok, u, nil
}

// IssueDriverToken signs a driver token for the userID user.
func (uc *UseCase) IssueDriverToken(userID uuid.UUID, phone string) (string, error) {
	now := uc.now()
	tok, err := uc.signer.Sign(token.Claims{
		UserID:    userID,
		Phone:     phone,
		Role:      model.RoleDriver,
		IssuedAt:  now,
		ExpiresAt: now.Add(uc.tokenTTL),
	})
	if err != nil {
		return "", fmt.Errorf("signing driver token: %w", err)
	}
	return tok, nil
}

// VerifyDriverToken returns the driver actor which tok was issued for.
// Invalid, expired, and non-driver tokens are reported as false.
func (uc *UseCase) VerifyDriverToken(tok string) (model.Actor, bool) {
	if tok == "" {
		return model.Actor{}, false
	}
	c, err := uc.signer.Verify(tok)
	if err != nil || c.Role != model.RoleDriver || c.UserID == uuid.Nil {
		return model.Actor{}, false
	}
	if !uc.now().Before(c.ExpiresAt) {
		return model.Actor{}, false
	}
	return model.Actor{ID: c.UserID, Role: model.RoleDriver}, true
}

// ChangePin replaces the PIN of a driver after verifying its current
// PIN. The new PIN must differ from the current one. It also clears
// the temporary flag, so the driver may log in afterwards.
func (uc *UseCase) ChangePin(
	ctx context.Context, phone, currentPin, newPin string,
) error {
	u, err := uc.VerifyDriverCredentials(ctx, phone, currentPin)
	switch {
	case err != nil:
		return err
	case u == nil:
		return invalidCredentials()
	}
	if err := checkPin(newPin); err != nil {
		return err
	}
	if newPin == currentPin {
		return cerr.Invalid("new PIN must differ from the current PIN")
	}
	if err := uc.storePin(ctx, u.ID, newPin, false); err != nil {
		return err
	}
	log.Info(ctx, "driver changed PIN", log.UUID("user", u.ID))
	return nil
}

// ResetPin use case sets a temporary PIN for the driverID driver on
// behalf of a SUPER_ADMIN actor. A random 6 digits PIN is generated
// when newPin is empty. The plain PIN is returned, so it may be handed
// to the driver.
func (uc *UseCase) ResetPin(
	ctx context.Context, actor model.Actor, driverID uuid.UUID, newPin string,
) (string, error) {
	if actor.Role != model.RoleSuperAdmin {
		return "", cerr.Forbidden("only super admins may reset PINs")
	}
	pin, err := uc.pinOrRandom(newPin)
	if err != nil {
		return "", err
	}
	var u *model.User
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		u, err = uc.users.Conn(c).Get(ctx, driverID)
		return err
	})
	switch {
	case err != nil:
		return "", err
	case u.Role != model.RoleDriver:
		return "", cerr.Missing("driver %s", driverID)
	}
	if err := uc.storePin(ctx, driverID, pin, true); err != nil {
		return "", err
	}
	log.Info(ctx, "driver PIN reset",
		log.UUID("user", driverID), log.Valuer("actor", actor),
	)
	return pin, nil
}

func (uc *UseCase) pinOrRandom(pin string) (string, error) {
	if pin == "" {
		p, err := uc.genPin()
		if err != nil {
			return "", fmt.Errorf("generating PIN: %w", err)
		}
		pin = p
	}
	if err := checkPin(pin); err != nil {
		return "", err
	}
	return pin, nil
}

func (uc *UseCase) storePin(
	ctx context.Context, id uuid.UUID, pin string, temporary bool,
) error {
	h, err := uc.hasher.Hash(pin)
	if err != nil {
		return fmt.Errorf("hashing PIN: %w", err)
	}
	return uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return uc.users.Conn(c).SetPin(ctx, id, h, temporary)
	})
}

// DriverDraft contains the fields of a driver which is going to be
// added to the own-fleet roster. An empty Pin asks for a random one.
type DriverDraft struct {
	Name         string
	Phone        string
	VehiclePlate string
	Pin          string
}

// ProvisionDriver use case adds a driver with a temporary PIN on
// behalf of a SUPER_ADMIN actor. The nil actor is accepted only from
// the command line interface. The plain PIN is returned once.
func (uc *UseCase) ProvisionDriver(
	ctx context.Context, actor *model.Actor, d DriverDraft,
) (*model.User, string, error) {
	if actor != nil && actor.Role != model.RoleSuperAdmin {
		return nil, "", cerr.Forbidden("only super admins may add drivers")
	}
	name, phone := strings.TrimSpace(d.Name), NormalizePhone(d.Phone)
	switch {
	case name == "":
		return nil, "", cerr.Invalid("driver name is required")
	case !phonePattern.MatchString(phone):
		return nil, "", cerr.Invalid("phone number is malformed")
	}
	pin, err := uc.pinOrRandom(d.Pin)
	if err != nil {
		return nil, "", err
	}
	h, err := uc.hasher.Hash(pin)
	if err != nil {
		return nil, "", fmt.Errorf("hashing PIN: %w", err)
	}
	u := &model.User{
		ID:           uuid.New(),
		Name:         name,
		Phone:        phone,
		Role:         model.RoleDriver,
		VehiclePlate: strings.TrimSpace(d.VehiclePlate),
		PinHash:      h,
		PinTemporary: true,
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return uc.users.Conn(c).Create(ctx, u)
	})
	if err != nil {
		return nil, "", err
	}
	log.Info(ctx, "driver provisioned", log.UUID("user", u.ID))
	return u, pin, nil
}

// SeedAdmin adds a back-office user. It is used by the command line
// interface for bootstrapping, so it takes no actor.
func (uc *UseCase) SeedAdmin(
	ctx context.Context, name, email string, role model.Role,
) (*model.User, error) {
	name, email = strings.TrimSpace(name), normalizeEmail(email)
	switch {
	case !role.Admin():
		return nil, cerr.Invalid("role must be SUPER_ADMIN or ACCOUNTANT")
	case name == "":
		return nil, cerr.Invalid("name is required")
	case !strings.Contains(email, "@"):
		return nil, cerr.Invalid("email is malformed")
	}
	u := &model.User{ID: uuid.New(), Name: name, Email: email, Role: role}
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return uc.users.Conn(c).Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ResolveAdmin returns the back-office actor who owns the sessionID
// session. The session email must belong to a local SUPER_ADMIN or
// ACCOUNTANT user. Every mismatch is reported as an authentication
// error, while the session store failures are returned as they are.
func (uc *UseCase) ResolveAdmin(
	ctx context.Context, sessionID string,
) (model.Actor, error) {
	unauthenticated := func(reason string) (model.Actor, error) {
		return model.Actor{}, cerr.Authentication(fmt.Errorf(
			"%w: %s", model.ErrInvalidCredential, reason,
		))
	}
	if sessionID == "" {
		return unauthenticated("no session")
	}
	s, err := uc.sessions.Session(ctx, sessionID)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return unauthenticated("unknown session")
	case err != nil:
		return model.Actor{}, fmt.Errorf("finding session: %w", err)
	case !uc.now().Before(s.ExpiresAt):
		return unauthenticated("session is expired")
	}
	var u *model.User
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		u, err = uc.users.Conn(c).ByEmail(ctx, normalizeEmail(s.Email))
		return err
	})
	switch {
	case errors.Is(err, model.ErrNotFound):
		return unauthenticated("unknown user")
	case err != nil:
		return model.Actor{}, fmt.Errorf("finding admin by email: %w", err)
	case !u.Role.Admin():
		return unauthenticated("user is not a back-office admin")
	}
	return u.Actor(), nil
}

// Drivers returns the own-fleet drivers, so the back-office actors
// may pick one for an assignment.
func (uc *UseCase) Drivers(
	ctx context.Context, actor model.Actor,
) (ds []model.User, err error) {
	if !actor.Role.Admin() {
		return nil, cerr.Forbidden("only back-office staff may list drivers")
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		ds, err = uc.users.Conn(c).List(ctx, model.RoleDriver)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing drivers: %w", err)
	}
	return ds, nil
}
