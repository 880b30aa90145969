// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package hash exports the expected interface of a one-way secret
// hasher. Driver PINs are stored only in their hashed form and the
// use cases layer depends on this package instead of the concrete
// hashing schemes which are implemented in the adapter layer.
package hash

import "errors"

// ErrUnknownScheme indicates that an encoded hash string was produced
// by a scheme which the hasher does not recognize.
var ErrUnknownScheme = errors.New("unknown hash scheme")

// Hasher hashes secrets and verifies secrets against stored hashes.
type Hasher interface {
	// Hash computes a self-describing encoded hash string (including
	// the scheme, its parameters, and a random salt) for the secret.
	Hash(secret string) (string, error)

	// Verify reports if secret matches the encoded hash. Comparisons
	// must take constant time with respect to the secret. A mismatch
	// is reported as false with a nil error, while a malformed or
	// unsupported encoded string causes an error.
	Verify(secret, encoded string) (bool, error)
}
