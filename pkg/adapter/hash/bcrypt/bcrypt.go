// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package bcrypt implements the hash.Hasher interface with the bcrypt
// algorithm. It is kept for PIN hashes which were imported from older
// rosters and is accepted by the multi hasher for verification.
package bcrypt

import (
	"errors"
	"fmt"

	"github.com/momeni/dispatch-pool/pkg/core/hash"
	"golang.org/x/crypto/bcrypt"
)

// Hasher is a bcrypt hash.Hasher with a fixed cost.
type Hasher struct {
	cost int
}

// New instantiates a Hasher. A zero cost selects bcrypt.DefaultCost.
func New(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost (%d) is out of range", cost)
	}
	return &Hasher{cost: cost}, nil
}

// Hash computes a bcrypt hash of secret.
func (h *Hasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

// Verify reports if secret matches the encoded bcrypt hash.
func (h *Hasher) Verify(secret, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case errors.Is(err, bcrypt.ErrHashTooShort):
		return false, fmt.Errorf("%w: %w", hash.ErrUnknownScheme, err)
	default:
		return false, fmt.Errorf("bcrypt: %w", err)
	}
}

// Prefixes returns the scheme prefixes of the bcrypt hash strings.
func Prefixes() []string {
	return []string{"$2a$", "$2b$", "$2y$"}
}
