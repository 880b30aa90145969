// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package multi provides a hash.Hasher which creates new hashes with
// one primary scheme and verifies hashes of every registered scheme.
// The scheme of an encoded hash is detected by its prefix.
package multi

import (
	"strings"

	"github.com/momeni/dispatch-pool/pkg/core/hash"
)

type scheme struct {
	prefix string
	h      hash.Hasher
}

// Hasher dispatches hash verifications by their scheme prefix.
type Hasher struct {
	primary hash.Hasher
	schemes []scheme
}

// New instantiates a Hasher which hashes with primary. The primary
// hasher is not used for verification unless registered by Register.
func New(primary hash.Hasher) *Hasher {
	return &Hasher{primary: primary}
}

// Register adds h as the verifier of hashes starting with prefixes.
// It returns the receiver so calls may be chained.
func (m *Hasher) Register(h hash.Hasher, prefixes ...string) *Hasher {
	for _, p := range prefixes {
		m.schemes = append(m.schemes, scheme{prefix: p, h: h})
	}
	return m
}

// Hash computes a hash string using the primary hasher.
func (m *Hasher) Hash(secret string) (string, error) {
	return m.primary.Hash(secret)
}

// Verify finds the hasher of encoded by its prefix and delegates to it.
func (m *Hasher) Verify(secret, encoded string) (bool, error) {
	for _, s := range m.schemes {
		if strings.HasPrefix(encoded, s.prefix) {
			return s.h.Verify(secret, encoded)
		}
	}
	return false, hash.ErrUnknownScheme
}
